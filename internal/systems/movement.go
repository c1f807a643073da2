// Package systems содержит потребителей состояния ужаса и правила
// симуляции, не принадлежащие движку: движение, заражение, брокер
// модификаций, вехи, искажения, звук и психология.
package systems

import (
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/world"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
)

// MoveResult — исход проверки намерения движения.
type MoveResult struct {
	// Cost — итоговый множитель стоимости перемещения.
	Cost float64
	// Tile — целевой тайл (резидентный, проходимый).
	Tile *domain.LayerCakeTile
}

// ValidateMove проверяет намерение движения actor -> target.
//
// Цель обязана быть резидентной и проходимой. Переопределение
// снаряжения (водный маунт и т.п.) консультируется ДО стандартного
// множителя биома: снаряжение может сделать проходимым биом, который
// сам по себе непроходим.
func ValidateMove(store *world.Store, actor *domain.Entity, target hexmath.Hex) (MoveResult, error) {
	if hexmath.Distance(actor.Pos, target) != 1 {
		return MoveResult{}, domain.ErrOutOfRange
	}
	tile := store.Get(target)
	if tile == nil {
		return MoveResult{}, domain.ErrOutOfRange
	}

	if actor.Equipment != nil {
		if cost, ok := actor.Equipment.BiomeOverrides[tile.Biome]; ok {
			return MoveResult{Cost: cost, Tile: tile}, nil
		}
	}

	if !tile.Passable() {
		return MoveResult{}, domain.ErrNotPassable
	}
	return MoveResult{Cost: tile.Biome.MoveCost(), Tile: tile}, nil
}
