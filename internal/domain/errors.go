package domain

import (
	"errors"
	"fmt"
)

// Виды ошибок ядра. Горячий путь не паникует: все фальшируемые операции
// возвращают одну из этих ошибок, вызывающий различает их через errors.Is.
var (
	// ErrBiomeAdjacencyViolation — выбранный биом запрещен рядом с
	// биомом уже загруженного соседа. Тайл не вставляется, вызывающий
	// может повторить с другим биомом.
	ErrBiomeAdjacencyViolation = errors.New("biome adjacency violation")

	// ErrInvalidDreadSource — источник отклонен при регистрации
	// (NaN-интенсивность, отрицательный радиус).
	ErrInvalidDreadSource = errors.New("invalid dread source")

	// ErrChunkGenerationTimeout — генерация чанка не уложилась в бюджет.
	ErrChunkGenerationTimeout = errors.New("chunk generation timeout")

	// ErrChunkGenerationFailed — генерация чанка упала; оборачивает причину.
	ErrChunkGenerationFailed = errors.New("chunk generation failed")

	// ErrModificationCycle — регистрация модификации образовала цикл
	// приоритетов; отклоняется на этапе регистрации.
	ErrModificationCycle = errors.New("modification cycle")

	// ErrPersistenceCorrupt — сейв не читается; хостящее приложение
	// решает, начинать ли свежий мир.
	ErrPersistenceCorrupt = errors.New("persistence corrupt")

	// ErrOutOfRange — цель движения вне резидентного мира.
	ErrOutOfRange = errors.New("out of range")

	// ErrNotPassable — цель движения непроходима.
	ErrNotPassable = errors.New("not passable")

	// ErrInvariantViolated — программная ошибка, обнаруженная защитной
	// проверкой. Фатальна в debug-сборках (см. invariant.go).
	ErrInvariantViolated = errors.New("invariant violated")
)

// AdjacencyError уточняет, какая пара биомов нарушила правило.
type AdjacencyError struct {
	Proposed Biome
	Neighbor Biome
}

func (e *AdjacencyError) Error() string {
	return fmt.Sprintf("biome adjacency violation: %s next to %s", e.Proposed, e.Neighbor)
}

// Is позволяет errors.Is(err, ErrBiomeAdjacencyViolation).
func (e *AdjacencyError) Is(target error) bool {
	return target == ErrBiomeAdjacencyViolation
}
