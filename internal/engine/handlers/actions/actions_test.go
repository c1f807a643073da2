package actions

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types/enums"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/engine/handlers"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/systems"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/world"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/api"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/worldgen"
)

type fakeDread struct {
	sources   []domain.DreadSource
	narrative float64
}

func (f *fakeDread) RegisterSource(src domain.DreadSource) error {
	f.sources = append(f.sources, src)
	return nil
}

func (f *fakeDread) SetNarrative(v float64) { f.narrative = v }

type fakeBeats struct{ beat string }

func (f *fakeBeats) SetBeat(b string) { f.beat = b }

func worldWith(t *testing.T, tiles ...worldgen.TileDesc) *world.Store {
	t.Helper()
	store := world.NewStore(nil)
	for _, desc := range tiles {
		if _, err := store.LoadTile(desc); err != nil {
			t.Fatalf("load tile %v: %v", desc.Coord, err)
		}
	}
	return store
}

func TestHandleMove(t *testing.T) {
	store := worldWith(t,
		worldgen.TileDesc{Coord: hexmath.Hex{Q: 0, R: 0}, Biome: domain.BiomePlains},
		worldgen.TileDesc{Coord: hexmath.Hex{Q: 1, R: 0}, Biome: domain.BiomePlains},
		worldgen.TileDesc{Coord: hexmath.Hex{Q: 0, R: 1}, Biome: domain.BiomeWater},
	)
	actor := &domain.Entity{Name: "тест"}
	ctx := handlers.Context{Store: store, Actor: actor}

	wrapped := handlers.WithPayload(HandleMove)

	raw, _ := json.Marshal(api.MovePayload{Q: 1, R: 0})
	if _, err := wrapped(ctx, raw); err != nil {
		t.Fatalf("valid move rejected: %v", err)
	}
	if actor.Pos != (hexmath.Hex{Q: 1, R: 0}) {
		t.Errorf("actor at %v, want (1,0)", actor.Pos)
	}

	// Water without a bridge is not passable.
	actor.Pos = hexmath.Hex{Q: 0, R: 0}
	raw, _ = json.Marshal(api.MovePayload{Q: 0, R: 1})
	if _, err := wrapped(ctx, raw); !errors.Is(err, domain.ErrNotPassable) {
		t.Errorf("expected ErrNotPassable, got %v", err)
	}

	// Unknown movement type fails validation before the handler runs.
	raw, _ = json.Marshal(api.MovePayload{Q: 1, R: 0, MovementType: "teleport"})
	if _, err := wrapped(ctx, raw); err == nil {
		t.Error("invalid movement type accepted")
	}
}

func TestHandleCleanseRequiresAuthorization(t *testing.T) {
	store := worldWith(t,
		worldgen.TileDesc{Coord: hexmath.Hex{Q: 0, R: 0}, Biome: domain.BiomePlains, Corruption: 0.8},
	)
	ctx := handlers.Context{Store: store}
	wrapped := handlers.WithPayload(HandleCleanse)

	raw, _ := json.Marshal(api.CleansePayload{Q: 0, R: 0, Amount: 0.5})
	if _, err := wrapped(ctx, raw); err == nil {
		t.Fatal("cleanse without questId accepted")
	}

	raw, _ = json.Marshal(api.CleansePayload{Q: 0, R: 0, Amount: 0.5, QuestID: "purge-the-vale"})
	res, err := wrapped(ctx, raw)
	if err != nil {
		t.Fatalf("authorized cleanse rejected: %v", err)
	}
	if len(res.Events) != 1 || res.Events[0].Type != api.EventCorruption {
		t.Fatalf("expected one CORRUPTION_VISUAL event, got %+v", res.Events)
	}
	if got := res.Events[0].Corruption.NewLevel; got < 0.29 || got > 0.31 {
		t.Errorf("corruption after cleanse = %v, want 0.3", got)
	}
}

func TestHandleRegisterSource(t *testing.T) {
	dread := &fakeDread{}
	ctx := handlers.Context{Dread: dread}
	wrapped := handlers.WithPayload(HandleRegisterSource)

	raw, _ := json.Marshal(api.SourcePayload{ID: "storm", Kind: "ENVIRONMENTAL", Intensity: 0.5, TTL: -1})
	if _, err := wrapped(ctx, raw); err != nil {
		t.Fatalf("valid source rejected: %v", err)
	}
	if len(dread.sources) != 1 || dread.sources[0].Kind != enums.SourceKindEnvironmental {
		t.Fatalf("source not registered: %+v", dread.sources)
	}
	if dread.sources[0].DurationRemaining != -1 {
		t.Errorf("ttl = %v, want -1", dread.sources[0].DurationRemaining)
	}

	raw, _ = json.Marshal(api.SourcePayload{ID: "odd", Kind: "COSMIC", Intensity: 0.5})
	if _, err := wrapped(ctx, raw); err == nil {
		t.Error("unknown source kind accepted")
	}

	// NaN intensity never reaches the registry.
	if _, err := wrapped(ctx, json.RawMessage(`{"id":"bad","kind":"NARRATIVE","intensity":-1}`)); err == nil {
		t.Error("negative intensity accepted")
	}
}

func TestHandleNarrative(t *testing.T) {
	dread := &fakeDread{}
	beats := &fakeBeats{}
	ctx := handlers.Context{Dread: dread, Beats: beats}
	wrapped := handlers.WithPayload(HandleNarrative)

	raw, _ := json.Marshal(api.NarrativePayload{Beat: "descent", Intensity: 0.7})
	if _, err := wrapped(ctx, raw); err != nil {
		t.Fatalf("narrative rejected: %v", err)
	}
	if dread.narrative != 0.7 {
		t.Errorf("narrative = %v, want 0.7", dread.narrative)
	}
	if beats.beat != "descent" {
		t.Errorf("beat = %q, want descent", beats.beat)
	}

	raw, _ = json.Marshal(api.NarrativePayload{Intensity: 0.7})
	if _, err := wrapped(ctx, raw); err == nil {
		t.Error("narrative without beat accepted")
	}
}

func TestHandleListener(t *testing.T) {
	actor := &domain.Entity{}
	ctx := handlers.Context{Actor: actor}
	wrapped := handlers.WithPayload(HandleListener)

	raw, _ := json.Marshal(api.ListenerPayload{X: 3.5, Y: -2})
	if _, err := wrapped(ctx, raw); err != nil {
		t.Fatalf("listener update rejected: %v", err)
	}
	if actor.Listener == nil || actor.Listener.World.X != 3.5 {
		t.Errorf("listener not updated: %+v", actor.Listener)
	}
}

type fakeFinder map[string]*domain.Entity

func (f fakeFinder) GetEntity(id string) *domain.Entity { return f[id] }

func TestHandleCompanionState(t *testing.T) {
	mira := &domain.Entity{
		Name:   "Мира",
		Psyche: &domain.CompanionPsyche{State: enums.CompanionStateNormal, Trauma: 0.65},
	}
	ctx := handlers.Context{
		Finder: fakeFinder{"mira": mira},
		Psych:  systems.NewPsychology(),
	}
	wrapped := handlers.WithPayload(HandleCompanionState)

	// Accepted transition mirrors the state and broadcasts it with the mood.
	raw, _ := json.Marshal(api.CompanionStatePayload{CompanionID: "mira", NewState: "TRAUMATIZED"})
	res, err := wrapped(ctx, raw)
	if err != nil {
		t.Fatalf("valid transition rejected: %v", err)
	}
	if mira.Psyche.State != enums.CompanionStateTraumatized {
		t.Errorf("state = %v, want TRAUMATIZED", mira.Psyche.State)
	}
	if len(res.Events) != 1 || res.Events[0].Type != api.EventCompanionState {
		t.Fatalf("events = %+v, want one COMPANION_STATE", res.Events)
	}
	view := res.Events[0].CompanionState
	if view.NewState != "TRAUMATIZED" || view.Mood != "traumatized" {
		t.Errorf("view = %+v", view)
	}

	// Repeating the current state is an idempotent no-op.
	res, err = wrapped(ctx, raw)
	if err != nil || len(res.Events) != 0 {
		t.Errorf("repeated state: err=%v events=%d, want silent no-op", err, len(res.Events))
	}

	// Unknown state names are rejected.
	raw, _ = json.Marshal(api.CompanionStatePayload{CompanionID: "mira", NewState: "ENLIGHTENED"})
	if _, err := wrapped(ctx, raw); err == nil {
		t.Error("unknown state accepted")
	}

	// No way back out of a terminal state.
	mira.Psyche.State = enums.CompanionStateBroken
	raw, _ = json.Marshal(api.CompanionStatePayload{CompanionID: "mira", NewState: "NORMAL"})
	if _, err := wrapped(ctx, raw); err == nil {
		t.Error("transition out of BROKEN accepted")
	}

	// Missing companion id fails validation.
	raw, _ = json.Marshal(api.CompanionStatePayload{NewState: "CAUTIOUS"})
	if _, err := wrapped(ctx, raw); err == nil {
		t.Error("payload without companionId accepted")
	}
}
