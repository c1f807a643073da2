package systems

import (
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
)

// strainGrowth — коэффициент роста напряжения на каждый удар ужаса
// выше порога срыва.
const strainGrowth = 0.1

// ContagionEvent — сущность пересекла порог заражения.
type ContagionEvent struct {
	Entity   *domain.Entity
	Exposure float64
}

// Contagion интегрирует экспозицию заражения ужасом по восприимчивым
// сущностям. Положительная экспозиция приходит через Expose, спад и
// окна иммунитета продвигаются на границе тика.
type Contagion struct{}

func NewContagion() *Contagion {
	return &Contagion{}
}

// Expose добавляет мгновенную экспозицию. Возвращает true, если
// заражение сработало прямо сейчас (порог пересечен вне окна
// иммунитета); окно иммунитета при этом обновляется.
//
// Внутри окна иммунитета сущность невосприимчива: экспозиция не
// срабатывает И не накапливается.
func (c *Contagion) Expose(ent *domain.Entity, amount float64) bool {
	st := ent.Contagion
	if st == nil || amount <= 0 {
		return false
	}
	if st.ImmunityRemaining > 0 {
		return false
	}
	st.Exposure += amount
	return c.tryFire(st)
}

// Update продвигает спад экспозиции, окна иммунитета и напряжение
// сопротивляемости на dt секунд. Возвращает заражения, сработавшие
// от накопленной экспозиции.
func (c *Contagion) Update(dt float64, entities []*domain.Entity) []ContagionEvent {
	var events []ContagionEvent
	for _, ent := range entities {
		st := ent.Contagion
		if st == nil {
			continue
		}

		st.Exposure -= st.Recovery * dt
		if st.Exposure < 0 {
			st.Exposure = 0
		}
		st.ImmunityRemaining -= dt
		if st.ImmunityRemaining < 0 {
			st.ImmunityRemaining = 0
		}

		// Напряжение спадает, пока вход ниже порога срыва.
		if r := ent.Resistance; r != nil && st.Exposure <= st.Threshold {
			r.Strain -= r.RecoveryRate * dt
			if r.Strain < 0 {
				r.Strain = 0
			}
		}

		if c.tryFire(st) {
			events = append(events, ContagionEvent{Entity: ent, Exposure: st.Exposure})
		}
	}
	return events
}

func (c *Contagion) tryFire(st *domain.ContagionState) bool {
	if st.Exposure < st.Threshold || st.ImmunityRemaining > 0 {
		return false
	}
	st.ImmunityRemaining = st.ImmunityDuration
	return true
}

// ApplyHit пропускает удар ужаса величины m через сопротивляемость
// сущности и возвращает то, что дойдет до психики: m · (1 − total).
// Удары выше порога срыва наращивают напряжение.
func ApplyHit(ent *domain.Entity, m float64) float64 {
	if m <= 0 {
		return 0
	}
	r := ent.Resistance
	if r == nil {
		return m
	}
	reduced := r.Reduce(m)
	if m > r.BreakdownThreshold {
		r.Strain += strainGrowth * m
		if r.Strain > 1 {
			r.Strain = 1
		}
	}
	return reduced
}
