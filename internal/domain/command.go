package domain

import (
	"encoding/json"
	"strings"
)

// ActionType — внутренний числовой идентификатор команды.
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionInit
	ActionMove
	ActionListener
	ActionCleanse
	ActionRegisterSource
	ActionNarrative
	ActionCompanionState
)

// Маппинг для конвертации JSON -> Domain
var actionStringToCmd = map[string]ActionType{
	"INIT":            ActionInit,
	"MOVE":            ActionMove,
	"LISTENER":        ActionListener,
	"CLEANSE":         ActionCleanse,
	"REGISTER_SOURCE": ActionRegisterSource,
	"NARRATIVE":       ActionNarrative,
	"COMPANION_STATE": ActionCompanionState,
}

// Маппинг для логов Domain -> String
var actionCmdToString = map[ActionType]string{
	ActionInit:           "INIT",
	ActionMove:           "MOVE",
	ActionListener:       "LISTENER",
	ActionCleanse:        "CLEANSE",
	ActionRegisterSource: "REGISTER_SOURCE",
	ActionNarrative:      "NARRATIVE",
	ActionCompanionState: "COMPANION_STATE",
}

// ParseAction конвертирует строку из JSON в ActionType
func ParseAction(s string) ActionType {
	// Делаем нечувствительным к регистру для надежности
	upper := strings.ToUpper(s)
	if val, ok := actionStringToCmd[upper]; ok {
		return val
	}
	return ActionUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (a ActionType) String() string {
	if val, ok := actionCmdToString[a]; ok {
		return val
	}
	return "UNKNOWN"
}

// InternalCommand — команда, прошедшая парсинг протокола.
// Token — идентификатор сущности/коллаборатора, от имени которого
// выполняется действие.
type InternalCommand struct {
	Action  ActionType
	Token   string
	Payload json.RawMessage
}
