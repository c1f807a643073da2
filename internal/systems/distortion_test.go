package systems

import (
	"testing"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types/enums"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
)

func newDistortionWorld(t *testing.T, trigger string) (*DistortionEngine, *Broker, *domain.RealityDistortion) {
	t.Helper()
	b := NewBroker()
	if err := b.RegisterSubsystem(PerceptionSubsystem, PerceptionBase()); err != nil {
		t.Fatalf("RegisterSubsystem: %v", err)
	}
	d := NewDistortionEngine(b)
	region := &domain.RealityDistortion{
		ID:            "bleeding-walls",
		Kind:          enums.DistortionKindPerceptual,
		Center:        hexmath.Hex{},
		Radius:        3,
		Intensity:     0.8,
		RequiredLevel: 2,
		Manifestations: []*domain.Manifestation{
			{ID: "whispers", Trigger: trigger, Duration: 2},
		},
	}
	if err := d.AddRegion(region); err != nil {
		t.Fatalf("AddRegion: %v", err)
	}
	return d, b, region
}

// A manifestation activates when the player is inside at sufficient
// dread, runs for its duration, then cools down for twice as long.
func TestDistortionActivationAndCooldown(t *testing.T) {
	d, b, region := newDistortionWorld(t, TriggerLinger)
	inside := hexmath.Hex{Q: 1, R: 0}
	m := region.Manifestations[0]

	// Below the required level nothing activates.
	if d.Update(0.25, 1, inside) {
		t.Fatal("manifestation activated below required dread level")
	}

	// At level 2 inside the region the linger trigger holds.
	if !d.Update(0.25, 2, inside) {
		t.Fatal("manifestation did not activate")
	}
	b.Commit(2)
	if got := b.Params(PerceptionSubsystem)["PERCEPTUAL"]; got != 0.8 {
		t.Errorf("perception filter = %g, want region intensity 0.8", got)
	}

	// Runs for its 2 s duration (8 ticks of 0.25), then switches off
	// into cooldown.
	for i := 0; i < 7; i++ {
		if d.Update(0.25, 2, inside) {
			t.Fatal("toggle during the active window")
		}
	}
	if !d.Update(0.25, 2, inside) {
		t.Fatal("manifestation did not deactivate after its duration")
	}
	b.Commit(2)
	if got := b.Params(PerceptionSubsystem)["PERCEPTUAL"]; got != 0 {
		t.Errorf("perception filter after deactivation = %g, want 0", got)
	}
	if m.CooldownRemaining != 4 {
		t.Errorf("cooldown = %g, want 2x duration = 4", m.CooldownRemaining)
	}

	// Suppressed while cooling down (16 ticks) even though the trigger
	// holds.
	for i := 0; i < 16; i++ {
		if d.Update(0.25, 2, inside) {
			t.Fatal("manifestation re-activated during cooldown")
		}
	}
	// Cooldown exhausted: the next tick re-activates.
	if !d.Update(0.25, 2, inside) {
		t.Error("manifestation did not re-activate after cooldown")
	}
}

// The enter trigger fires only on the boundary crossing, not while
// standing inside.
func TestDistortionEnterTrigger(t *testing.T) {
	d, _, region := newDistortionWorld(t, TriggerEnter)
	m := region.Manifestations[0]
	outside := hexmath.Hex{Q: 10, R: 0}
	inside := hexmath.Hex{Q: 0, R: 1}

	d.Update(0.1, 2, outside)
	if !d.Update(0.1, 2, inside) {
		t.Fatal("crossing into the region did not activate the manifestation")
	}

	// Drain the active window and cooldown entirely.
	for m.ActiveRemaining > 0 || m.CooldownRemaining > 0 {
		d.Update(0.5, 2, inside)
	}
	// Still inside: no fresh enter edge, no activation.
	if d.Update(0.1, 2, inside) {
		t.Error("enter trigger re-fired without leaving the region")
	}

	// Leave and re-enter: fires again.
	d.Update(0.1, 2, outside)
	if !d.Update(0.1, 2, inside) {
		t.Error("re-entering the region did not activate the manifestation")
	}
}

// Distortions never mutate tile state: they only toggle broker
// registrations targeting the perception subsystem.
func TestDistortionTouchesOnlyPerception(t *testing.T) {
	d, b, _ := newDistortionWorld(t, TriggerLinger)
	if err := b.RegisterSubsystem("combat", map[string]float64{"damage": 10}); err != nil {
		t.Fatalf("RegisterSubsystem: %v", err)
	}

	d.Update(0.1, 4, hexmath.Hex{})
	b.Commit(4)
	if got := b.Params("combat")["damage"]; got != 10 {
		t.Errorf("distortion leaked into combat params: %g", got)
	}
}
