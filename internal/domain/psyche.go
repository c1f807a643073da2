package domain

import "github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types/enums"

// CompanionPsyche — зеркало состояния психики компаньона.
// Сама психология — внешний коллаборатор; ядро хранит только то, что
// нужно для гейтинга переходов и психологического вклада в ужас.
type CompanionPsyche struct {
	BreakingPoint float64 `json:"breakingPoint"`
	Loyalty       float64 `json:"loyalty"`
	Trust         float64 `json:"trust"`
	Trauma        float64 `json:"trauma"` // [0,1]

	TraumaTriggers []string `json:"traumaTriggers,omitempty"`

	State enums.CompanionState `json:"state"`

	// Sanity нужна аудио-коллаборатору для частоты галлюцинаций.
	Sanity float64 `json:"sanity"`
}

// MoodForTrauma возвращает настроение по величине травмы.
// Маппинг монотонен: < 0.2 cheerful, < 0.4 nervous, < 0.6 fearful,
// < 0.8 traumatized, иначе broken.
func MoodForTrauma(trauma float64) string {
	switch {
	case trauma < 0.2:
		return "cheerful"
	case trauma < 0.4:
		return "nervous"
	case trauma < 0.6:
		return "fearful"
	case trauma < 0.8:
		return "traumatized"
	default:
		return "broken"
	}
}
