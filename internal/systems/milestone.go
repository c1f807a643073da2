package systems

import (
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
)

// MilestoneEngine оценивает предикаты вех на событиях уровня ужаса и
// нарративных переходах. Веха срабатывает один раз; achieved никогда
// не сбрасывается, кроме явно обратимых вех с событием отката.
type MilestoneEngine struct {
	milestones map[string]*domain.Milestone
	order      []string // порядок регистрации = порядок оценки
}

func NewMilestoneEngine() *MilestoneEngine {
	return &MilestoneEngine{milestones: make(map[string]*domain.Milestone)}
}

// Add регистрирует веху. Повторная регистрация того же id игнорируется:
// достигнутая веха из сейва не должна затираться дефолтом.
func (m *MilestoneEngine) Add(ms *domain.Milestone) {
	if _, exists := m.milestones[ms.ID]; exists {
		return
	}
	m.milestones[ms.ID] = ms
	m.order = append(m.order, ms.ID)
}

// Evaluate проверяет все недостигнутые вехи против текущего состояния.
// Идемпотентно: повторный вызов с теми же входами ничего не меняет.
// Возвращает вехи, достигнутые этим вызовом.
func (m *MilestoneEngine) Evaluate(level int, beat string, companions []*domain.Entity, nowMillis int64) []*domain.Milestone {
	var fired []*domain.Milestone
	for _, id := range m.order {
		ms := m.milestones[id]
		if ms.Achieved {
			continue
		}
		if !m.satisfied(ms, level, beat, companions) {
			continue
		}
		ms.Achieved = true
		ms.AchievedAt = nowMillis
		fired = append(fired, ms)
	}
	return fired
}

func (m *MilestoneEngine) satisfied(ms *domain.Milestone, level int, beat string, companions []*domain.Entity) bool {
	if level < ms.RequiredLevel {
		return false
	}
	if ms.Conditions.NarrativeBeat != "" && ms.Conditions.NarrativeBeat != beat {
		return false
	}
	if min := ms.Conditions.MinCompanionTrauma; min > 0 {
		reached := false
		for _, c := range companions {
			if c.Psyche != nil && c.Psyche.Trauma >= min {
				reached = true
				break
			}
		}
		if !reached {
			return false
		}
	}
	return true
}

// Reverse откатывает веху. Разрешено только для обратимых вех;
// для остальных achieved монотонен.
func (m *MilestoneEngine) Reverse(id string) bool {
	ms := m.milestones[id]
	if ms == nil || !ms.Achieved || !ms.Reversible {
		return false
	}
	ms.Achieved = false
	ms.AchievedAt = 0
	return true
}

// Achieved возвращает достигнутые вехи в порядке регистрации (сейв).
func (m *MilestoneEngine) Achieved() []*domain.Milestone {
	var out []*domain.Milestone
	for _, id := range m.order {
		if ms := m.milestones[id]; ms.Achieved {
			out = append(out, ms)
		}
	}
	return out
}

// Restore помечает вехи достигнутыми по данным сейва.
func (m *MilestoneEngine) Restore(id string, achievedAt int64) {
	if ms := m.milestones[id]; ms != nil {
		ms.Achieved = true
		ms.AchievedAt = achievedAt
	}
}
