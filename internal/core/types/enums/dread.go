package enums

import "strings"

// SourceKind — происхождение источника ужаса.
type SourceKind uint8

const (
	SourceKindUnknown SourceKind = iota
	SourceKindEnvironmental
	SourceKindNarrative
	SourceKindPsychological
	SourceKindSupernatural
)

var sourceKindToString = map[SourceKind]string{
	SourceKindEnvironmental: "ENVIRONMENTAL",
	SourceKindNarrative:     "NARRATIVE",
	SourceKindPsychological: "PSYCHOLOGICAL",
	SourceKindSupernatural:  "SUPERNATURAL",
}

var sourceKindStringToKind = map[string]SourceKind{
	"ENVIRONMENTAL": SourceKindEnvironmental,
	"NARRATIVE":     SourceKindNarrative,
	"PSYCHOLOGICAL": SourceKindPsychological,
	"SUPERNATURAL":  SourceKindSupernatural,
}

func (k SourceKind) String() string {
	if val, ok := sourceKindToString[k]; ok {
		return val
	}
	return "UNKNOWN"
}

func ParseSourceKind(s string) SourceKind {
	if val, ok := sourceKindStringToKind[strings.ToUpper(s)]; ok {
		return val
	}
	return SourceKindUnknown
}

// DistortionKind — тип региона искажения реальности.
type DistortionKind uint8

const (
	DistortionKindUnknown DistortionKind = iota
	DistortionKindGeometric
	DistortionKindTemporal
	DistortionKindCausal
	DistortionKindPerceptual
)

var distortionKindToString = map[DistortionKind]string{
	DistortionKindGeometric:  "GEOMETRIC",
	DistortionKindTemporal:   "TEMPORAL",
	DistortionKindCausal:     "CAUSAL",
	DistortionKindPerceptual: "PERCEPTUAL",
}

func (k DistortionKind) String() string {
	if val, ok := distortionKindToString[k]; ok {
		return val
	}
	return "UNKNOWN"
}

// CompanionState — состояние психики компаньона.
// Переходы монотонны после BROKEN / FLED: обратной дороги нет.
type CompanionState uint8

const (
	CompanionStateNormal CompanionState = iota
	CompanionStateCautious
	CompanionStateTraumatized
	CompanionStateBreaking
	CompanionStateBroken
	CompanionStateFled
)

var companionStateToString = map[CompanionState]string{
	CompanionStateNormal:      "NORMAL",
	CompanionStateCautious:    "CAUTIOUS",
	CompanionStateTraumatized: "TRAUMATIZED",
	CompanionStateBreaking:    "BREAKING",
	CompanionStateBroken:      "BROKEN",
	CompanionStateFled:        "FLED",
}

var companionStateStringToState = map[string]CompanionState{
	"NORMAL":      CompanionStateNormal,
	"CAUTIOUS":    CompanionStateCautious,
	"TRAUMATIZED": CompanionStateTraumatized,
	"BREAKING":    CompanionStateBreaking,
	"BROKEN":      CompanionStateBroken,
	"FLED":        CompanionStateFled,
}

func (s CompanionState) String() string {
	if val, ok := companionStateToString[s]; ok {
		return val
	}
	return "UNKNOWN"
}

// ParseCompanionState разбирает состояние из протокола коллаборатора.
func ParseCompanionState(s string) (CompanionState, bool) {
	val, ok := companionStateStringToState[strings.ToUpper(s)]
	return val, ok
}

// Terminal возвращает true для состояний, из которых нет переходов.
func (s CompanionState) Terminal() bool {
	return s == CompanionStateBroken || s == CompanionStateFled
}
