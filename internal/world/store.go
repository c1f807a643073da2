// Package world владеет тайлами: Tile Store хранит записи слоеного
// пирога, стриминговый менеджер решает, какие чанки резидентны.
// Писатель у обоих один — главный цикл симуляции.
package world

import (
	"fmt"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain/constraints"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/worldgen"
)

// Store — отображение координаты в тайл. Владеет записями тайлов;
// чанки ссылаются на тайлы по ключу и никогда не делят тайл между собой.
type Store struct {
	tiles map[hexmath.Hex]*domain.LayerCakeTile
	rules *constraints.AdjacencyRules
}

func NewStore(rules *constraints.AdjacencyRules) *Store {
	if rules == nil {
		rules = constraints.DefaultAdjacencyRules()
	}
	return &Store{
		tiles: make(map[hexmath.Hex]*domain.LayerCakeTile),
		rules: rules,
	}
}

// Get возвращает резидентный тайл или nil.
func (s *Store) Get(coord hexmath.Hex) *domain.LayerCakeTile {
	return s.tiles[coord]
}

// Count возвращает число резидентных тайлов.
func (s *Store) Count() int {
	return len(s.tiles)
}

// Each обходит все резидентные тайлы. Порядок не определен.
func (s *Store) Each(fn func(*domain.LayerCakeTile)) {
	for _, t := range s.tiles {
		fn(t)
	}
}

// LoadTile вставляет полностью сформированное описание тайла.
// Возвращает ErrBiomeAdjacencyViolation, если биом запрещен рядом с
// биомом уже резидентного соседа; тайл при этом НЕ вставляется,
// вызывающий может повторить с другим биомом.
func (s *Store) LoadTile(desc worldgen.TileDesc) (*domain.LayerCakeTile, error) {
	if desc.Biome == domain.BiomeUnknown {
		return nil, domain.Invariant(false, "tile %v has no biome layer", desc.Coord)
	}

	for _, n := range desc.Coord.Neighbors() {
		neighbor, ok := s.tiles[n]
		if !ok {
			continue
		}
		if !s.rules.Compatible(desc.Biome, neighbor.Biome) {
			return nil, &domain.AdjacencyError{Proposed: desc.Biome, Neighbor: neighbor.Biome}
		}
	}

	tile := &domain.LayerCakeTile{
		Coord:      desc.Coord,
		Biome:      desc.Biome,
		Path:       desc.Path,
		Feature:    desc.Feature,
		Corruption: clamp01(desc.Corruption),
	}
	// Свежевставленный тайл грязен целиком: рендер рисует его с нуля.
	tile.Dirty = tile.Dirty.
		Set(domain.LayerBiome).
		Set(domain.LayerPath).
		Set(domain.LayerFeature).
		Set(domain.LayerCorruption)

	s.tiles[desc.Coord] = tile
	return tile, nil
}

// Remove выгружает тайл. Вызывается только стриминговым менеджером,
// который уже разослал TileUnloadEvent.
func (s *Store) Remove(coord hexmath.Hex) {
	delete(s.tiles, coord)
}

// UpdateBiome заменяет слой биома.
// Требования: скверна = 0, объекта на тайле нет, соседи совместимы.
func (s *Store) UpdateBiome(coord hexmath.Hex, biome domain.Biome) error {
	tile := s.tiles[coord]
	if tile == nil {
		return domain.ErrOutOfRange
	}
	if tile.Corruption != 0 {
		return fmt.Errorf("biome replacement requires zero corruption, have %g", tile.Corruption)
	}
	if tile.Feature != domain.FeatureNone {
		return fmt.Errorf("biome replacement requires a bare tile, feature present")
	}
	for _, n := range coord.Neighbors() {
		if neighbor, ok := s.tiles[n]; ok && !s.rules.Compatible(biome, neighbor.Biome) {
			return &domain.AdjacencyError{Proposed: biome, Neighbor: neighbor.Biome}
		}
	}
	tile.Biome = biome
	tile.Dirty = tile.Dirty.Set(domain.LayerBiome)
	return nil
}

// UpdatePath прокладывает (или снимает) тропу.
// Тропа ложится только на path-compatible биом. Мост — исключение:
// именно мостом вода становится проходимой.
func (s *Store) UpdatePath(coord hexmath.Hex, path domain.PathKind) error {
	tile := s.tiles[coord]
	if tile == nil {
		return domain.ErrOutOfRange
	}
	if path != domain.PathNone && !tile.Biome.PathCompatible() {
		if path != domain.PathBridge || tile.Biome != domain.BiomeWater {
			return fmt.Errorf("path is not compatible with biome %s", tile.Biome)
		}
	}
	tile.Path = path
	tile.Dirty = tile.Dirty.Set(domain.LayerPath)
	return nil
}

// UpdateFeature ставит объект. Требования: тайл проходим, объекта нет.
func (s *Store) UpdateFeature(coord hexmath.Hex, feature domain.FeatureKind) error {
	tile := s.tiles[coord]
	if tile == nil {
		return domain.ErrOutOfRange
	}
	if feature != domain.FeatureNone {
		if !tile.Passable() {
			return domain.ErrNotPassable
		}
		if tile.Feature != domain.FeatureNone {
			return fmt.Errorf("tile %v already has a feature", coord)
		}
	}
	tile.Feature = feature
	tile.Dirty = tile.Dirty.Set(domain.LayerFeature)
	return nil
}

// ApplyCorruption наращивает скверну. Отрицательная дельта отклоняется:
// скверна монотонна вне явных событий очищения.
func (s *Store) ApplyCorruption(coord hexmath.Hex, delta float64) error {
	tile := s.tiles[coord]
	if tile == nil {
		return domain.ErrOutOfRange
	}
	if delta < 0 {
		return domain.Invariant(false, "corruption delta %g < 0: use Cleanse", delta)
	}
	tile.Corruption = clamp01(tile.Corruption + delta)
	tile.Dirty = tile.Dirty.Set(domain.LayerCorruption)
	return nil
}

// Cleanse — единственный путь снижения скверны.
// questID обязан быть непустым: это авторизация события очищения.
func (s *Store) Cleanse(coord hexmath.Hex, amount float64, questID string) error {
	tile := s.tiles[coord]
	if tile == nil {
		return domain.ErrOutOfRange
	}
	if questID == "" {
		return domain.Invariant(false, "cleansing without authorization on %v", coord)
	}
	if amount <= 0 {
		return fmt.Errorf("cleanse amount must be positive, got %g", amount)
	}
	tile.Corruption = clamp01(tile.Corruption - amount)
	tile.Dirty = tile.Dirty.Set(domain.LayerCorruption)
	return nil
}

// MarkDirty помечает слои тайла для перерисовки.
func (s *Store) MarkDirty(coord hexmath.Hex, layers ...domain.Layer) {
	tile := s.tiles[coord]
	if tile == nil {
		return
	}
	for _, l := range layers {
		tile.Dirty = tile.Dirty.Set(l)
	}
}

// ConsumeDirty возвращает грязные тайлы и сбрасывает их маски.
// Потребитель (рендер-диспетчер) вызывает это раз в тик.
func (s *Store) ConsumeDirty() map[hexmath.Hex]domain.DirtyMask {
	var result map[hexmath.Hex]domain.DirtyMask
	for coord, tile := range s.tiles {
		if tile.Dirty == 0 {
			continue
		}
		if result == nil {
			result = make(map[hexmath.Hex]domain.DirtyMask)
		}
		result[coord] = tile.Dirty
		tile.Dirty = 0
	}
	return result
}

// QueryByRange возвращает резидентные тайлы в радиусе k от центра
// в каноническом порядке обхода hexmath.Range.
func (s *Store) QueryByRange(center hexmath.Hex, k int) []*domain.LayerCakeTile {
	var result []*domain.LayerCakeTile
	for _, coord := range hexmath.Range(center, k) {
		if tile, ok := s.tiles[coord]; ok {
			result = append(result, tile)
		}
	}
	return result
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
