// Package storage сохраняет и восстанавливает снапшот сессии.
//
// Формат — keyed JSON с каноническим порядком ключей. Неизвестные ключи
// переживают цикл load -> save: форматы будущих версий не теряются.
package storage

import (
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
)

const (
	FormatMarker string = "dread-core-save"
	Version1     int    = 1
)

// MilestoneRecord — достигнутая веха в сейве.
type MilestoneRecord struct {
	ID         string `json:"id"`
	AchievedAt int64  `json:"achievedAt"`
}

// CompanionRecord — состояние психики компаньона в сейве.
type CompanionRecord struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Pos  hexmath.Hex `json:"pos"`

	Psyche     *domain.CompanionPsyche `json:"psyche,omitempty"`
	Resistance *domain.DreadResistance `json:"resistance,omitempty"`
	Contagion  *domain.ContagionState  `json:"contagion,omitempty"`
}

// TileCorruption — скверна тайла, отличная от сгенерированной.
// Сами тайлы не сохраняются: мир детерминирован сидом, сохраняются
// только накопленные отклонения.
type TileCorruption struct {
	Q     int     `json:"q"`
	R     int     `json:"r"`
	Value float64 `json:"value"`
}

// Snapshot — полное сохраняемое состояние сессии.
type Snapshot struct {
	Seed int64  `json:"seed"`
	Tick uint64 `json:"tick"`
	Beat string `json:"beat,omitempty"`

	PlayerPos hexmath.Hex `json:"playerPos"`

	Dread     domain.DreadLevelState `json:"dread"`
	Narrative float64                `json:"narrative"`
	External  float64                `json:"external"`
	Sources   []domain.DreadSource   `json:"sources"`

	ResidentChunks []hexmath.ChunkCoord `json:"residentChunks"`
	Corruption     []TileCorruption     `json:"corruption"`

	Milestones      []MilestoneRecord             `json:"milestones"`
	BrokerOriginals map[string]map[string]float64 `json:"brokerOriginals"`

	Companions []CompanionRecord `json:"companions"`

	// raw — исходный keyed-документ, если снапшот был загружен из файла.
	// Хранит неизвестные ключи для обратной записи.
	raw []byte
}
