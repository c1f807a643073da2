package storage

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types/enums"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		Seed:      42,
		Tick:      1200,
		Beat:      "descent",
		PlayerPos: hexmath.Hex{Q: 5, R: -3},
		Dread: domain.DreadLevelState{
			Level: 2, PreviousLevel: 1, Raw: 0.5, Stability: 0.9,
		},
		Narrative: 0.5,
		Sources: []domain.DreadSource{
			{ID: "nest", Kind: enums.SourceKindEnvironmental, Intensity: 0.4, DurationRemaining: -1},
		},
		ResidentChunks: []hexmath.ChunkCoord{{Q: 0, R: 0}, {Q: 1, R: 0}},
		Corruption:     []TileCorruption{{Q: 3, R: 3, Value: 0.7}},
		Milestones:     []MilestoneRecord{{ID: "first-sighting", AchievedAt: 1700000000000}},
		BrokerOriginals: map[string]map[string]float64{
			"combat": {"damage": 10},
		},
		Companions: []CompanionRecord{{
			ID:     "c1",
			Name:   "Мира",
			Pos:    hexmath.Hex{Q: 4, R: -3},
			Psyche: &domain.CompanionPsyche{Trauma: 0.3, Sanity: 0.8, State: enums.CompanionStateCautious},
		}},
	}
}

func TestSnapshotRoundTripStable(t *testing.T) {
	first, err := Encode(sampleSnapshot())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	snap, err := Decode(first)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	second, err := Encode(snap)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("save -> load -> save is not byte-identical:\n%s\n---\n%s", first, second)
	}

	if snap.Seed != 42 || snap.Tick != 1200 || snap.Dread.Level != 2 {
		t.Errorf("decoded fields mismatch: %+v", snap)
	}
	if len(snap.Companions) != 1 || snap.Companions[0].Psyche.Trauma != 0.3 {
		t.Errorf("companion record lost: %+v", snap.Companions)
	}
}

func TestSnapshotPreservesUnknownKeys(t *testing.T) {
	first, err := Encode(sampleSnapshot())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// A future version added a key this build does not know about.
	withExtra := bytes.Replace(first,
		[]byte(`"format":`),
		[]byte(`"futureField": {"keep": true},`+"\n  "+`"format":`), 1)

	snap, err := Decode(withExtra)
	if err != nil {
		t.Fatalf("decode with extra key: %v", err)
	}
	out, err := Encode(snap)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !strings.Contains(string(out), `"futureField"`) {
		t.Error("unknown key dropped on round trip")
	}
}

func TestDecodeRejectsCorrupt(t *testing.T) {
	cases := map[string]string{
		"not json":      `{{{`,
		"wrong format":  `{"format":"other","version":1}`,
		"wrong version": `{"format":"dread-core-save","version":99}`,
	}
	for name, data := range cases {
		if _, err := Decode([]byte(data)); !errors.Is(err, domain.ErrPersistenceCorrupt) {
			t.Errorf("%s: expected ErrPersistenceCorrupt, got %v", name, err)
		}
	}
}

func TestSaveServiceWritesAtomically(t *testing.T) {
	dir := t.TempDir()
	svc := NewSaveService(dir)

	if err := svc.Save("session.json", sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, err := svc.Load(filepath.Join(dir, "session.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Seed != 42 {
		t.Errorf("seed = %d, want 42", snap.Seed)
	}
}
