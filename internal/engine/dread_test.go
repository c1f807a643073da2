package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types/enums"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
)

func testDreadConfig() DreadConfig {
	return DreadConfig{
		DMax:       180,
		Thresholds: [4]float64{0.25, 0.45, 0.65, 0.85},
		Hysteresis: 0.05,
		DwellUp:    2.0,
		DwellDown:  10.0,
	}
}

// run advances the engine in fixed steps and returns every transition.
func run(e *DreadEngine, seconds, dt float64, player hexmath.Hex) []*LevelTransition {
	var out []*LevelTransition
	steps := int(math.Round(seconds / dt))
	for i := 0; i < steps; i++ {
		if tr := e.Update(dt, player, nil); tr != nil {
			out = append(out, tr)
		}
	}
	return out
}

// Dread ramp: the player teleports 45 hexes out with D_max = 180.
// The spatial signal sits exactly on T1 = 0.25; after dwell_up = 2 s
// sustained the level transitions 0 -> 1 with exactly one event.
func TestDreadRampSpatialTransition(t *testing.T) {
	e := NewDreadEngine(testDreadConfig())
	far := hexmath.Hex{Q: 45, R: 0}

	// 1.9 s sustained: not enough dwell, still level 0.
	if trs := run(e, 1.9, 0.1, far); len(trs) != 0 {
		t.Fatalf("transition before dwell_up elapsed: %+v", trs[0])
	}
	if e.State().Level != 0 {
		t.Fatalf("level = %d before dwell_up, want 0", e.State().Level)
	}

	// Crossing 2 s produces exactly one 0 -> 1 event.
	trs := run(e, 1.0, 0.1, far)
	if len(trs) != 1 {
		t.Fatalf("got %d transitions, want exactly 1", len(trs))
	}
	if trs[0].From != 0 || trs[0].To != 1 {
		t.Errorf("transition %d -> %d, want 0 -> 1", trs[0].From, trs[0].To)
	}
	if e.State().Level != 1 {
		t.Errorf("level = %d, want 1", e.State().Level)
	}
}

// Hysteresis decay: at level 2 with the signal just above T2, all
// sources removed. The level drops to 1 only after the signal has been
// below T2 - H = 0.40 for the full dwell_down = 10 s.
func TestHysteresisDecayDwell(t *testing.T) {
	e := NewDreadEngine(testDreadConfig())
	origin := hexmath.Hex{}

	// Drive the engine to level 2 with a strong narrative signal.
	e.SetNarrative(1.0)
	aura := &domain.DreadAura{BaseIntensity: 2.5, Radius: 10, Curve: domain.FalloffLinear}
	owner := types.PackEntityID(0, 1, 0, 1)
	if err := e.AttachAura(owner, aura); err != nil {
		t.Fatalf("AttachAura: %v", err)
	}
	run(e, 10, 0.1, origin)
	if e.State().Level < 2 {
		t.Fatalf("setup failed: level = %d, want >= 2", e.State().Level)
	}
	for e.State().Level > 2 {
		// Walk back down to exactly 2 before the measured phase.
		e.SetNarrative(0.48)
		e.DetachAura(owner)
		run(e, 11, 0.1, origin)
	}
	if e.State().Level != 2 {
		t.Fatalf("setup failed: level = %d, want 2", e.State().Level)
	}

	// Drop everything: the signal falls to 0, well below 0.40.
	e.SetNarrative(0)
	e.DetachAura(owner)

	if trs := run(e, 9.9, 0.1, origin); len(trs) != 0 {
		t.Fatalf("level dropped before dwell_down elapsed")
	}
	if e.State().Level != 2 {
		t.Fatalf("level = %d at 9.9 s, want still 2", e.State().Level)
	}

	trs := run(e, 0.5, 0.1, origin)
	if len(trs) != 1 || trs[0].From != 2 || trs[0].To != 1 {
		t.Fatalf("expected a single 2 -> 1 transition, got %+v", trs)
	}
}

// The level saturates at 4 no matter how large the aggregate gets.
func TestDreadLevelSaturatesAtFour(t *testing.T) {
	e := NewDreadEngine(testDreadConfig())
	e.SetNarrative(1.0)
	e.SetExternal(1.0)
	aura := &domain.DreadAura{BaseIntensity: 100, Radius: 50, Curve: domain.FalloffExponential}
	if err := e.AttachAura(types.PackEntityID(0, 1, 0, 7), aura); err != nil {
		t.Fatalf("AttachAura: %v", err)
	}

	run(e, 60, 0.1, hexmath.Hex{Q: 500, R: 0})
	if e.State().Level != 4 {
		t.Errorf("level = %d, want saturation at 4", e.State().Level)
	}
	if math.IsNaN(e.State().Raw) {
		t.Error("aggregate produced NaN")
	}
}

// A single tick emits at most one level change even when the signal
// jumps several thresholds at once.
func TestAtMostOneTransitionPerTick(t *testing.T) {
	e := NewDreadEngine(testDreadConfig())
	e.SetNarrative(1.0) // signal > T4 immediately

	for i := 0; i < 100; i++ {
		before := e.State().Level
		tr := e.Update(0.5, hexmath.Hex{}, nil)
		after := e.State().Level
		if after-before > 1 {
			t.Fatalf("tick %d jumped %d -> %d", i, before, after)
		}
		if tr == nil && after != before {
			t.Fatalf("tick %d changed level without an event", i)
		}
	}
	if e.State().Level != 4 {
		t.Errorf("level = %d after sustained max signal, want 4", e.State().Level)
	}
}

// Registering a source with TTL = 0 leaves the level unchanged: the
// source expires before it ever contributes.
func TestZeroTTLSourceIsNoop(t *testing.T) {
	e := NewDreadEngine(testDreadConfig())

	err := e.RegisterSource(domain.DreadSource{
		ID:                "flicker",
		Kind:              enums.SourceKindSupernatural,
		Intensity:         10,
		DurationRemaining: 0,
	})
	if err != nil {
		t.Fatalf("RegisterSource: %v", err)
	}

	trs := run(e, 5, 0.1, hexmath.Hex{})
	if len(trs) != 0 {
		t.Errorf("zero-TTL source caused transitions: %+v", trs)
	}
	if got := e.State().Level; got != 0 {
		t.Errorf("level = %d, want 0", got)
	}
	if len(e.Sources()) != 0 {
		t.Error("expired source still registered")
	}
}

// Sources decay per tick and are removed atomically at zero intensity.
func TestSourceDecayRemoval(t *testing.T) {
	e := NewDreadEngine(testDreadConfig())
	err := e.RegisterSource(domain.DreadSource{
		ID:                "cold-spot",
		Kind:              enums.SourceKindEnvironmental,
		Intensity:         1.0,
		DecayRate:         0.5,
		DurationRemaining: -1, // indefinite TTL, decay only
	})
	if err != nil {
		t.Fatalf("RegisterSource: %v", err)
	}

	run(e, 1, 0.1, hexmath.Hex{})
	if len(e.Sources()) != 1 {
		t.Fatal("source removed too early")
	}
	run(e, 1.5, 0.1, hexmath.Hex{})
	if len(e.Sources()) != 0 {
		t.Error("fully decayed source not removed")
	}
}

// Malformed sources are rejected at registration so the aggregation
// loop never needs to defend against them.
func TestRegisterSourceValidation(t *testing.T) {
	e := NewDreadEngine(testDreadConfig())

	cases := []struct {
		name string
		src  domain.DreadSource
	}{
		{"NaN intensity", domain.DreadSource{ID: "a", Kind: enums.SourceKindNarrative, Intensity: math.NaN()}},
		{"negative intensity", domain.DreadSource{ID: "b", Kind: enums.SourceKindNarrative, Intensity: -1}},
		{"negative radius", domain.DreadSource{ID: "c", Kind: enums.SourceKindNarrative, Intensity: 1, Radius: -2}},
		{"empty id", domain.DreadSource{Kind: enums.SourceKindNarrative, Intensity: 1}},
		{"unknown kind", domain.DreadSource{ID: "d", Intensity: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := e.RegisterSource(tc.src); !errors.Is(err, domain.ErrInvalidDreadSource) {
				t.Errorf("expected InvalidDreadSource, got %v", err)
			}
		})
	}
	if len(e.Sources()) != 0 {
		t.Error("rejected sources must not be registered")
	}
}

// Aura contribution at exactly the radius: 0 under linear falloff,
// 0.5 under inverse-square.
func TestAuraFalloffBoundary(t *testing.T) {
	at := hexmath.Hex{Q: 10, R: 0} // distance 10 from origin aura

	linear := &domain.DreadAura{Position: hexmath.Hex{}, Current: 1, Radius: 10, Curve: domain.FalloffLinear}
	if got := linear.ContributionAt(at); got != 0 {
		t.Errorf("linear falloff at radius = %g, want 0", got)
	}

	invsq := &domain.DreadAura{Position: hexmath.Hex{}, Current: 1, Radius: 10, Curve: domain.FalloffInverseSquare}
	if got := invsq.ContributionAt(at); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("inverse-square falloff at radius = %g, want 0.5", got)
	}
}

// Pulsing auras stay within [0, base*(1+amplitude)] as the phase advances.
func TestAuraPulseBounds(t *testing.T) {
	aura := &domain.DreadAura{
		BaseIntensity: 2,
		Radius:        5,
		Curve:         domain.FalloffLinear,
		Pulse:         &domain.Pulse{Period: 1.3, Amplitude: 0.5, Shape: domain.PulseTriangle},
	}
	max := 2 * 1.5
	for i := 0; i < 1000; i++ {
		aura.Advance(0.037)
		if aura.Current < 0 || aura.Current > max+1e-12 {
			t.Fatalf("step %d: current %g outside [0, %g]", i, aura.Current, max)
		}
	}
}

// Sweeping the aura index removes entries whose owner despawned.
func TestSweepAuras(t *testing.T) {
	e := NewDreadEngine(testDreadConfig())
	alive := types.PackEntityID(0, 1, 0, 1)
	dead := types.PackEntityID(0, 1, 0, 2)
	for _, id := range []types.EntityID{alive, dead} {
		err := e.AttachAura(id, &domain.DreadAura{BaseIntensity: 1, Radius: 3, Curve: domain.FalloffLinear})
		if err != nil {
			t.Fatalf("AttachAura: %v", err)
		}
	}

	e.SweepAuras(func(id types.EntityID) bool { return id == alive })

	if _, ok := e.auras[dead]; ok {
		t.Error("dead owner's aura survived the sweep")
	}
	if _, ok := e.auras[alive]; !ok {
		t.Error("live owner's aura was swept")
	}
}
