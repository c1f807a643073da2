package systems

import (
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types/enums"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/api"
)

// Psychology связывает ядро с коллаборатором психологии: наружу уходят
// удары травмы, внутрь возвращаются смены состояний. Ядро хранит
// зеркало психики и гейтит переходы: из BROKEN и FLED дороги назад нет.
type Psychology struct{}

func NewPsychology() *Psychology {
	return &Psychology{}
}

// ApplyTrauma пропускает удар через сопротивляемость компаньона и
// наращивает травму. Возвращает исходящее событие для коллаборатора
// или nil, если удар полностью поглощен.
func (p *Psychology) ApplyTrauma(c *domain.Entity, kind enums.SourceKind, magnitude float64, level int) *api.CompanionTrauma {
	if c.Psyche == nil || magnitude <= 0 {
		return nil
	}
	if c.Psyche.State.Terminal() {
		// Сломленного не сломать второй раз.
		return nil
	}

	reduced := ApplyHit(c, magnitude)
	if reduced <= 0 {
		return nil
	}

	c.Psyche.Trauma += reduced
	if c.Psyche.Trauma > 1 {
		c.Psyche.Trauma = 1
	}

	return &api.CompanionTrauma{
		CompanionID: c.ID.String(),
		SourceKind:  kind.String(),
		Magnitude:   reduced,
		DreadLevel:  level,
	}
}

// HandleStateChanged принимает ответ коллаборатора. Переход
// отклоняется, если текущее состояние терминально. Возвращает снимок
// для подписчиков или nil, если переход отвергнут.
func (p *Psychology) HandleStateChanged(c *domain.Entity, newState enums.CompanionState) *api.CompanionStateView {
	if c.Psyche == nil {
		return nil
	}
	if c.Psyche.State.Terminal() {
		return nil
	}
	if newState == c.Psyche.State {
		return nil
	}

	c.Psyche.State = newState
	return &api.CompanionStateView{
		CompanionID: c.ID.String(),
		NewState:    newState.String(),
		Mood:        domain.MoodForTrauma(c.Psyche.Trauma),
	}
}

// Mood возвращает настроение компаньона по его травме.
func (p *Psychology) Mood(c *domain.Entity) string {
	if c.Psyche == nil {
		return ""
	}
	return domain.MoodForTrauma(c.Psyche.Trauma)
}
