// Package worldgen детерминированно генерирует содержимое чанков.
// Все функции чистые: вход — сид чанка, выход — описания тайлов.
// Воркеры пула генерации вызывают Generate вне главного цикла,
// готовые описания вставляются в Tile Store на границе тика.
package worldgen

import (
	"math/rand"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
)

// Константы генерации
const (
	// pathChance — шанс, что через чанк проходит тропа.
	pathChance = 0.35
	// featureChance — шанс объекта на отдельном проходимом тайле.
	featureChance = 0.04
	// corruptionScale — дистанция (в гексах от начала координат),
	// после которой фоновая скверна достигает максимума.
	corruptionScale = 240.0
)

// TileDesc — полностью сформированное описание тайла.
// Это продукт воркера: Store вставляет его атомарно, уже валидным.
type TileDesc struct {
	Coord      hexmath.Hex
	Biome      domain.Biome
	Path       domain.PathKind
	Feature    domain.FeatureKind
	Corruption float64
}

// Generate создает описания всех тайлов чанка.
// Один и тот же сид всегда дает один и тот же чанк — содержимое
// не сохраняется, а регенерируется при повторной загрузке.
func Generate(chunk hexmath.ChunkCoord, side int, seed int64) []TileDesc {
	rng := rand.New(rand.NewSource(seed))

	coords := chunk.Tiles(side)
	tiles := make([]TileDesc, 0, len(coords))

	// 1. Доминирующий биом чанка. Соседние тайлы внутри чанка тяготеют
	// к нему — мир получается пятнистым, а не шумным.
	dominant := pickDominantBiome(rng)

	// 2. Тропа: прямой проход через чанк по строке.
	hasPath := rng.Float64() < pathChance
	pathRow := rng.Intn(side)

	origin := hexmath.Hex{Q: 0, R: 0}

	for i, coord := range coords {
		biome := dominant
		// Немного вариации внутри чанка
		if rng.Float64() < 0.15 {
			biome = pickVariantBiome(rng, dominant)
		}

		desc := TileDesc{
			Coord: coord,
			Biome: biome,
		}

		// Фоновая скверна растет с удалением от дома.
		dist := float64(hexmath.Distance(origin, coord))
		base := dist / corruptionScale
		if base > 1 {
			base = 1
		}
		// Шум, но строго неотрицательный: скверна не рождается "чистой вниз".
		desc.Corruption = base * (0.75 + 0.25*rng.Float64())

		// Тропа ложится только на совместимый биом.
		if hasPath && i/side == pathRow && biome.PathCompatible() {
			desc.Path = domain.PathTrail
		}

		// Объект — только на проходимом тайле.
		if desc.Path == domain.PathNone && biome.Passable() && rng.Float64() < featureChance {
			desc.Feature = pickFeature(rng, dist)
		}

		tiles = append(tiles, desc)
	}

	return tiles
}

// pickDominantBiome выбирает основной биом чанка.
// Редкие биомы (лава, снег) выпадают реже: их правила соседства жестче.
func pickDominantBiome(rng *rand.Rand) domain.Biome {
	roll := rng.Float64()
	switch {
	case roll < 0.30:
		return domain.BiomePlains
	case roll < 0.55:
		return domain.BiomeForest
	case roll < 0.70:
		return domain.BiomeMountain
	case roll < 0.80:
		return domain.BiomeDesert
	case roll < 0.88:
		return domain.BiomeSwamp
	case roll < 0.94:
		return domain.BiomeWater
	case roll < 0.98:
		return domain.BiomeSnow
	default:
		return domain.BiomeLava
	}
}

// pickVariantBiome выбирает вариацию, совместимую с доминирующим биомом,
// чтобы внутренность чанка не нарушала правила соседства.
func pickVariantBiome(rng *rand.Rand, dominant domain.Biome) domain.Biome {
	variants := map[domain.Biome][]domain.Biome{
		domain.BiomePlains:   {domain.BiomeForest, domain.BiomeWater},
		domain.BiomeForest:   {domain.BiomePlains, domain.BiomeSwamp},
		domain.BiomeMountain: {domain.BiomeDesert, domain.BiomeSnow},
		domain.BiomeDesert:   {domain.BiomeMountain, domain.BiomePlains},
		domain.BiomeSwamp:    {domain.BiomeForest},
		domain.BiomeWater:    {domain.BiomePlains},
		domain.BiomeSnow:     {domain.BiomeMountain},
		domain.BiomeLava:     {domain.BiomeMountain},
	}
	opts := variants[dominant]
	if len(opts) == 0 {
		return dominant
	}
	return opts[rng.Intn(len(opts))]
}

// pickFeature выбирает объект: дальше от дома — мрачнее.
func pickFeature(rng *rand.Rand, dist float64) domain.FeatureKind {
	if dist > 120 && rng.Float64() < 0.3 {
		return domain.FeatureNest
	}
	switch rng.Intn(3) {
	case 0:
		return domain.FeatureRuin
	case 1:
		return domain.FeatureShrine
	default:
		return domain.FeatureBones
	}
}
