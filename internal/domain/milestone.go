package domain

import (
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types/enums"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
)

// MilestoneEffectKind — вид эффекта вехи.
type MilestoneEffectKind uint8

const (
	MilestoneEffectSystemUnlock MilestoneEffectKind = iota
	MilestoneEffectNarrativeBranch
	MilestoneEffectCompanionEvent
)

// MilestoneEffect — один эффект, применяемый при достижении вехи.
type MilestoneEffect struct {
	Kind   MilestoneEffectKind `json:"kind"`
	Target string              `json:"target"`
}

// MilestoneConditions — дополнительные условия поверх требуемого уровня.
type MilestoneConditions struct {
	NarrativeBeat string `json:"narrativeBeat,omitempty"`

	// MinCompanionTrauma требует, чтобы хотя бы один компаньон
	// дошел до указанной травмы.
	MinCompanionTrauma float64 `json:"minCompanionTrauma,omitempty"`
}

// Milestone — одноразовое событие, привязанное к уровню ужаса
// и нарративному состоянию. achieved никогда не сбрасывается,
// кроме явно обратимых вех.
type Milestone struct {
	ID            string              `json:"id"`
	RequiredLevel int                 `json:"requiredLevel"`
	Conditions    MilestoneConditions `json:"conditions"`
	Effects       []MilestoneEffect   `json:"effects"`
	Reversible    bool                `json:"reversible"`

	Achieved   bool  `json:"achieved"`
	AchievedAt int64 `json:"achievedAt,omitempty"` // unix millis
}

// Manifestation — одно проявление искажения реальности.
// Активируется на Duration секунд, затем остывает 2×Duration.
type Manifestation struct {
	ID       string  `json:"id"`
	Trigger  string  `json:"trigger"` // ключ условия ("enter", "linger", "look")
	Duration float64 `json:"duration"`

	ActiveRemaining   float64 `json:"activeRemaining"`
	CooldownRemaining float64 `json:"cooldownRemaining"`
}

// RealityDistortion — пространственный регион искажения.
// Искажения модулируют фильтры восприятия через брокер модификаций
// и никогда не меняют состояние Tile Store.
type RealityDistortion struct {
	ID            string               `json:"id"`
	Kind          enums.DistortionKind `json:"kind"`
	Center        hexmath.Hex          `json:"center"`
	Radius        int                  `json:"radius"`
	Intensity     float64              `json:"intensity"` // [0,1]; 0 = неактивен
	RequiredLevel int                  `json:"requiredLevel"`
	Stability     float64              `json:"stability"`

	Manifestations []*Manifestation `json:"manifestations"`
}

// Contains проверяет, находится ли точка внутри региона.
func (d *RealityDistortion) Contains(p hexmath.Hex) bool {
	return hexmath.Distance(d.Center, p) <= d.Radius
}
