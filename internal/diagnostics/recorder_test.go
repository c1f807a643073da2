package diagnostics

import (
	"fmt"
	"testing"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/api"
)

func TestRecorderKeepsNewest(t *testing.T) {
	r := NewRecorder(3)
	for i := 1; i <= 5; i++ {
		r.Record(api.DiagnosticRecord{Kind: KindTileRejected, Detail: fmt.Sprintf("t%d", i), Tick: uint64(i)})
	}

	recs := r.Records()
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	for i, rec := range recs {
		if rec.Tick != uint64(i+3) {
			t.Errorf("record %d: tick = %d, want %d", i, rec.Tick, i+3)
		}
	}
	if r.Total() != 5 {
		t.Errorf("Total = %d, want 5", r.Total())
	}
}

func TestRecorderCountByKind(t *testing.T) {
	r := NewRecorder(8)
	r.Record(api.DiagnosticRecord{Kind: KindChunkFailed})
	r.Record(api.DiagnosticRecord{Kind: KindChunkFailed})
	r.Record(api.DiagnosticRecord{Kind: KindChunkBlacklisted})

	counts := r.CountByKind()
	if counts[KindChunkFailed] != 2 {
		t.Errorf("CHUNK_FAILED count = %d, want 2", counts[KindChunkFailed])
	}
	if counts[KindChunkBlacklisted] != 1 {
		t.Errorf("CHUNK_BLACKLISTED count = %d, want 1", counts[KindChunkBlacklisted])
	}
}
