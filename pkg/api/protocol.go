package api

import (
	"encoding/json"
)

// --- ЯДРО -> КОЛЛАБОРАТОРЫ ---

// CoreEvent это корневой объект, который ядро отправляет коллабораторам
// (рендер, аудио, психология). Одно сообщение = одно событие;
// порядок доставки внутри подписчика — FIFO издателя.
type CoreEvent struct {
	// Type тип события. Определяет, какое из опциональных полей заполнено.
	Type string `json:"type"`

	// Tick номер тика, на котором событие зафиксировано.
	Tick uint64 `json:"tick"`

	TileLoad       *TileLoadEvent       `json:"tileLoad,omitempty"`
	TileUnload     *TileUnloadEvent     `json:"tileUnload,omitempty"`
	LayerUpdate    *LayerCakeUpdate     `json:"layerUpdate,omitempty"`
	Corruption     *CorruptionVisual    `json:"corruption,omitempty"`
	DreadLevel     *DreadLevelChange    `json:"dreadLevel,omitempty"`
	SystemChanged  *SystemDreadChanged  `json:"systemChanged,omitempty"`
	Audio          *ProximityAudioEvent `json:"audio,omitempty"`
	Trauma         *CompanionTrauma     `json:"trauma,omitempty"`
	CompanionState *CompanionStateView  `json:"companionState,omitempty"`
	Milestone      *MilestoneAchieved   `json:"milestone,omitempty"`
	Diagnostic     *DiagnosticRecord    `json:"diagnostic,omitempty"`
}

// Типы событий (стабильные ключи протокола).
const (
	EventTileLoad       = "TILE_LOAD"
	EventTileUnload     = "TILE_UNLOAD"
	EventLayerUpdate    = "LAYER_UPDATE"
	EventCorruption     = "CORRUPTION_VISUAL"
	EventDreadLevel     = "DREAD_LEVEL"
	EventSystemChanged  = "SYSTEM_DREAD_CHANGED"
	EventAudio          = "PROXIMITY_AUDIO"
	EventTrauma         = "COMPANION_TRAUMA"
	EventCompanionState = "COMPANION_STATE"
	EventMilestone      = "MILESTONE"
	EventDiagnostic     = "DIAGNOSTIC"
)

// Роли подписчиков (handshake).
const (
	RoleRenderer   = "render"
	RoleAudio      = "audio"
	RolePsychology = "psychology"
	RoleObserver   = "observer"
)

// HexView — координата тайла в протоколе.
type HexView struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// TileLayers — снимок слоев тайла для рендера.
type TileLayers struct {
	Biome   string `json:"biome"`
	Path    string `json:"path,omitempty"`
	Feature string `json:"feature,omitempty"`
}

// TileLoadEvent отправляется ПОСЛЕ того, как тайл полностью собран
// (все обязательные слои выставлены).
type TileLoadEvent struct {
	Coord      HexView    `json:"coord"`
	Layers     TileLayers `json:"layers"`
	Corruption float64    `json:"corruption"`
}

// TileUnloadEvent отправляется ДО деспавна, чтобы потребитель успел
// сохранить своё состояние по тайлу.
type TileUnloadEvent struct {
	Coord HexView `json:"coord"`
}

// LayerCakeUpdate — какие слои тайла перерисовать.
type LayerCakeUpdate struct {
	Coord       HexView  `json:"coord"`
	DirtyLayers []string `json:"dirtyLayers"`
}

// CorruptionVisual — скверна тайла пересекла визуальный порог.
type CorruptionVisual struct {
	Coord    HexView `json:"coord"`
	NewLevel float64 `json:"newLevel"`
}

// DreadLevelChange — переход квантованного уровня ужаса.
// За один тик ядро испускает не больше одного такого события.
type DreadLevelChange struct {
	Level         int     `json:"level"`
	PreviousLevel int     `json:"previousLevel"`
	Raw           float64 `json:"raw"`
	Stability     float64 `json:"stability"`
}

// SystemDreadChanged — атомарный коммит параметров подсистемы.
// Подписчик получает ОДНО событие на переход уровня, не по событию
// на каждый параметр.
type SystemDreadChanged struct {
	SubsystemID string             `json:"subsystemId"`
	Params      map[string]float64 `json:"params"`
}

// --- Аудио ---

// Перечислимый набор типов пространственного аудио.
const (
	AudioDragonBreathing    = "dragon_breathing"
	AudioDragonFootsteps    = "dragon_footsteps"
	AudioDragonRoar         = "dragon_roar"
	AudioCompanionWhimper   = "companion_whimper"
	AudioCompanionScream    = "companion_scream"
	AudioEnvironmentalCreak = "environmental_creak"
	AudioHallucination      = "hallucination"
)

// ProximityAudioEvent — пространственное аудио-событие.
// CompanionName заполняется только для companion_* типов.
type ProximityAudioEvent struct {
	AudioType     string  `json:"audioType"`
	SourceX       float32 `json:"sourceX"`
	SourceY       float32 `json:"sourceY"`
	Intensity     float64 `json:"intensity"`
	Looping       bool    `json:"looping"`
	CompanionName string  `json:"companionName,omitempty"`
}

// --- Психология ---

// CompanionTrauma — удар по психике компаньона (исходящее событие).
type CompanionTrauma struct {
	CompanionID string  `json:"companionId"`
	SourceKind  string  `json:"sourceKind"`
	Magnitude   float64 `json:"magnitude"`
	DreadLevel  int     `json:"dreadLevel"`
}

// CompanionStateView — ответ коллаборатора психологии.
type CompanionStateView struct {
	CompanionID string `json:"companionId"`
	NewState    string `json:"newState"`
	Mood        string `json:"mood,omitempty"`
}

// MilestoneAchieved — веха достигнута.
type MilestoneAchieved struct {
	ID         string `json:"id"`
	AchievedAt int64  `json:"achievedAt"`
}

// DiagnosticRecord — запись диагностического канала (восстановимые сбои).
type DiagnosticRecord struct {
	Kind    string `json:"kind"`
	Detail  string `json:"detail"`
	Tick    uint64 `json:"tick"`
	ChunkQ  int    `json:"chunkQ,omitempty"`
	ChunkR  int    `json:"chunkR,omitempty"`
}

// --- КОЛЛАБОРАТОР -> ЯДРО ---

// ClientCommand это корневой объект для всех сообщений от коллаборатора к ядру.
type ClientCommand struct {
	// Token ID сущности/коллаборатора, от имени которого выполняется действие.
	Token string `json:"token,omitempty"`

	// Role роль подписчика: render, audio, psychology, observer.
	// Обязательна только для первого сообщения (handshake).
	Role string `json:"role,omitempty"`

	// Action название действия, которое нужно выполнить.
	Action string `json:"action"`

	// Payload JSON-объект с данными для действия. Его структура зависит от Action.
	Payload json.RawMessage `json:"payload"`
}

// --- Payloads ---

// MovePayload — намерение движения в соседний гекс.
type MovePayload struct {
	Q            int    `json:"q"`
	R            int    `json:"r"`
	MovementType string `json:"movementType,omitempty"` // walk, mount
}

// ListenerPayload — позиция слушателя (аудио-коллаборатор, между тиками).
type ListenerPayload struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// CleansePayload — авторизованное событие очищения тайла.
type CleansePayload struct {
	Q      int     `json:"q"`
	R      int     `json:"r"`
	Amount float64 `json:"amount"`
	// QuestID — кто авторизовал очищение. Скверна монотонна,
	// неавторизованное снижение отклоняется.
	QuestID string `json:"questId"`
}

// SourcePayload — регистрация источника ужаса внешней подсистемой.
type SourcePayload struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	Intensity   float64 `json:"intensity"`
	DecayRate   float64 `json:"decayRate"`
	Radius      float64 `json:"radius,omitempty"`
	TTL         float64 `json:"ttl"` // сек; < 0 — бессрочный
	Compounding float64 `json:"compounding,omitempty"`
}

// NarrativePayload — нарративный вклад и такт сюжета.
type NarrativePayload struct {
	Beat      string  `json:"beat"`
	Intensity float64 `json:"intensity"`
}

// CompanionStatePayload — ответ коллаборатора психологии: новое
// состояние компаньона. Ядро гейтит переход и рассылает зеркало.
type CompanionStatePayload struct {
	CompanionID string `json:"companionId"`
	NewState    string `json:"newState"`
}
