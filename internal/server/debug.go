package server

import (
	"encoding/json"
	"net/http"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/engine"
)

// DebugHandler предоставляет доступ к внутреннему состоянию ядра.
// Только чтение; формат не является частью протокола коллабораторов.
type DebugHandler struct {
	Service *engine.Service
}

func NewDebugHandler(s *engine.Service) *DebugHandler {
	return &DebugHandler{Service: s}
}

// RegisterRoutes регистрирует debug-эндпоинты.
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/dread", h.handleDread)
	mux.HandleFunc("/debug/chunks", h.handleChunks)
	mux.HandleFunc("/debug/diagnostics", h.handleDiagnostics)
}

// /debug/dread — состояние движка ужаса на последней границе тика.
// Хендлеры читают только опубликованный снимок: живое состояние
// принадлежит горутине симуляции.
func (h *DebugHandler) handleDread(w http.ResponseWriter, r *http.Request) {
	snap := h.Service.Snapshot()
	type DreadDump struct {
		Tick      uint64      `json:"tick"`
		State     interface{} `json:"state"`
		Sources   interface{} `json:"sources"`
		Narrative float64     `json:"narrative"`
		External  float64     `json:"external"`
	}
	writeJSON(w, DreadDump{
		Tick:      snap.Tick,
		State:     snap.Dread,
		Sources:   snap.Sources,
		Narrative: snap.Narrative,
		External:  snap.External,
	})
}

// /debug/chunks — резидентные чанки и счетчики стриминга.
func (h *DebugHandler) handleChunks(w http.ResponseWriter, r *http.Request) {
	snap := h.Service.Snapshot()
	type ChunkDump struct {
		Resident    interface{} `json:"resident"`
		TileCount   int         `json:"tileCount"`
		Loads       uint64      `json:"loads"`
		Evicts      uint64      `json:"evicts"`
		Pending     int         `json:"pending"`
		Blacklisted int         `json:"blacklisted"`
	}
	writeJSON(w, ChunkDump{
		Resident:    snap.Resident,
		TileCount:   snap.TileCount,
		Loads:       snap.Loads,
		Evicts:      snap.Evicts,
		Pending:     snap.Pending,
		Blacklisted: snap.Blacklisted,
	})
}

// /debug/diagnostics — журнал восстановимых сбоев сессии.
func (h *DebugHandler) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	type DiagDump struct {
		Records interface{}       `json:"records"`
		Total   uint64            `json:"total"`
		ByKind  map[string]uint64 `json:"byKind"`
		Dropped uint64            `json:"droppedEvents"`
	}
	writeJSON(w, DiagDump{
		Records: h.Service.Diag.Records(),
		Total:   h.Service.Diag.Total(),
		ByKind:  h.Service.Diag.CountByKind(),
		Dropped: h.Service.Hub.DroppedTotal(),
	})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	// Разрешаем запросы с любого источника (локальный debug-клиент).
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	if data == nil {
		w.Write([]byte("[]"))
		return
	}

	json.NewEncoder(w).Encode(data)
}
