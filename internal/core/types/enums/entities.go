package enums

import "strings"

type EntityKind uint8

const (
	EntityKindUnknown EntityKind = iota
	EntityKindPlayer
	EntityKindCompanion
	EntityKindDragon
	EntityKindEmitter // стационарный источник ауры (алтарь, гнездо, труп)
	EntityKindFeature // объект мира (руина, святилище)
)

var entityKindToString = map[EntityKind]string{
	EntityKindPlayer:    "PLAYER",
	EntityKindCompanion: "COMPANION",
	EntityKindDragon:    "DRAGON",
	EntityKindEmitter:   "EMITTER",
	EntityKindFeature:   "FEATURE",
}

var entityKindStringToKind = map[string]EntityKind{
	"PLAYER":    EntityKindPlayer,
	"COMPANION": EntityKindCompanion,
	"DRAGON":    EntityKindDragon,
	"EMITTER":   EntityKindEmitter,
	"FEATURE":   EntityKindFeature,
}

// String возвращает строковое представление (для логов и дебага)
func (e EntityKind) String() string {
	if val, ok := entityKindToString[e]; ok {
		return val
	}
	return "UNKNOWN"
}

// ParseEntityKind конвертирует строку в EntityKind (нечувствительно к регистру)
func ParseEntityKind(s string) EntityKind {
	if val, ok := entityKindStringToKind[strings.ToUpper(s)]; ok {
		return val
	}
	return EntityKindUnknown
}
