package domain

import (
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types/enums"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
)

// --- КОМПОНЕНТЫ ---

// EmitterComponent — сущность излучает ауру ужаса.
type EmitterComponent struct {
	Aura *DreadAura `json:"aura"`
}

// ListenerComponent — позиция слушателя для пространственного аудио.
// Обновляется коллаборатором между тиками.
type ListenerComponent struct {
	World hexmath.Point `json:"world"`
}

// EquipmentComponent — снаряжение, влияющее на проходимость.
// Override применяется ПЕРЕД стандартным множителем биома:
// водный маунт делает воду проходимой со своей ценой.
type EquipmentComponent struct {
	BiomeOverrides map[Biome]float64 `json:"biomeOverrides,omitempty"`
}

// --- СУЩНОСТЬ ---

// Entity — участник симуляции. Компоненты — указатели:
// nil означает отсутствие компонента (ECS-lite, без фреймворка).
type Entity struct {
	ID   types.EntityID   `json:"id"`
	Kind enums.EntityKind `json:"kind"`
	Name string           `json:"name"`

	Pos hexmath.Hex `json:"pos"`

	Psyche     *CompanionPsyche   `json:"psyche,omitempty"`
	Resistance *DreadResistance   `json:"resistance,omitempty"`
	Contagion  *ContagionState    `json:"contagion,omitempty"`
	Emitter    *EmitterComponent  `json:"emitter,omitempty"`
	Listener   *ListenerComponent `json:"listener,omitempty"`
	Equipment  *EquipmentComponent `json:"equipment,omitempty"`
}
