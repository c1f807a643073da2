package systems

import (
	"testing"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
)

// A milestone fires exactly once and stays achieved on re-evaluation.
func TestMilestoneOneShot(t *testing.T) {
	m := NewMilestoneEngine()
	m.Add(&domain.Milestone{
		ID:            "first-terror",
		RequiredLevel: 2,
		Effects:       []domain.MilestoneEffect{{Kind: domain.MilestoneEffectSystemUnlock, Target: "nightmare-mode"}},
	})

	if fired := m.Evaluate(1, "", nil, 100); len(fired) != 0 {
		t.Fatal("milestone fired below its required level")
	}
	fired := m.Evaluate(2, "", nil, 200)
	if len(fired) != 1 || fired[0].ID != "first-terror" {
		t.Fatalf("expected first-terror to fire, got %v", fired)
	}
	if fired[0].AchievedAt != 200 {
		t.Errorf("achievedAt = %d, want 200", fired[0].AchievedAt)
	}

	// Idempotence: same inputs, no second firing.
	if again := m.Evaluate(2, "", nil, 300); len(again) != 0 {
		t.Error("achieved milestone fired twice")
	}
	if len(m.Achieved()) != 1 {
		t.Errorf("achieved list = %d entries, want 1", len(m.Achieved()))
	}
}

// Extra conditions gate the firing: narrative beat and companion trauma.
func TestMilestoneConditions(t *testing.T) {
	m := NewMilestoneEngine()
	m.Add(&domain.Milestone{
		ID:            "broken-bond",
		RequiredLevel: 1,
		Conditions: domain.MilestoneConditions{
			NarrativeBeat:      "act2_descent",
			MinCompanionTrauma: 0.6,
		},
	})
	companion := &domain.Entity{Psyche: &domain.CompanionPsyche{Trauma: 0.3}}

	if fired := m.Evaluate(3, "act2_descent", []*domain.Entity{companion}, 1); len(fired) != 0 {
		t.Fatal("fired without the trauma condition")
	}
	companion.Psyche.Trauma = 0.7
	if fired := m.Evaluate(3, "wrong_beat", []*domain.Entity{companion}, 2); len(fired) != 0 {
		t.Fatal("fired on the wrong narrative beat")
	}
	if fired := m.Evaluate(3, "act2_descent", []*domain.Entity{companion}, 3); len(fired) != 1 {
		t.Fatal("did not fire with all conditions satisfied")
	}
}

// Only reversible milestones can be reversed.
func TestMilestoneReversal(t *testing.T) {
	m := NewMilestoneEngine()
	m.Add(&domain.Milestone{ID: "permanent", RequiredLevel: 0})
	m.Add(&domain.Milestone{ID: "fleeting", RequiredLevel: 0, Reversible: true})
	m.Evaluate(0, "", nil, 1)

	if m.Reverse("permanent") {
		t.Error("irreversible milestone was reversed")
	}
	if !m.Reverse("fleeting") {
		t.Error("reversible milestone refused reversal")
	}

	// A reversed milestone may fire again later.
	if fired := m.Evaluate(0, "", nil, 2); len(fired) != 1 || fired[0].ID != "fleeting" {
		t.Errorf("reversed milestone did not re-fire: %v", fired)
	}
}
