// Package diagnostics хранит записи восстановимых сбоев сессии.
// Ядро не падает на таких сбоях — оно пишет запись и продолжает тик.
package diagnostics

import (
	"sync"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/api"
)

// Виды диагностических записей.
const (
	KindTileRejected     = "TILE_REJECTED"
	KindChunkFailed      = "CHUNK_FAILED"
	KindChunkBlacklisted = "CHUNK_BLACKLISTED"
	KindCommandRejected  = "COMMAND_REJECTED"
	KindEventsDropped    = "EVENTS_DROPPED"
)

// Recorder — ограниченный журнал диагностики. При переполнении
// старейшие записи выталкиваются, но общий счетчик сохраняется.
type Recorder struct {
	mu      sync.Mutex
	ring    []api.DiagnosticRecord
	head    int
	size    int
	total   uint64
	byKind  map[string]uint64
}

// NewRecorder создает журнал на capacity записей.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = 256
	}
	return &Recorder{
		ring:   make([]api.DiagnosticRecord, capacity),
		byKind: make(map[string]uint64),
	}
}

// Record добавляет запись.
func (r *Recorder) Record(rec api.DiagnosticRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == len(r.ring) {
		r.head = (r.head + 1) % len(r.ring)
		r.size--
	}
	r.ring[(r.head+r.size)%len(r.ring)] = rec
	r.size++
	r.total++
	r.byKind[rec.Kind]++
}

// Records возвращает записи от старейшей к новейшей.
func (r *Recorder) Records() []api.DiagnosticRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]api.DiagnosticRecord, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.ring[(r.head+i)%len(r.ring)]
	}
	return out
}

// Total возвращает число записей за всю сессию (включая вытолкнутые).
func (r *Recorder) Total() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// CountByKind возвращает счетчики по видам записей.
func (r *Recorder) CountByKind() map[string]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]uint64, len(r.byKind))
	for k, v := range r.byKind {
		out[k] = v
	}
	return out
}
