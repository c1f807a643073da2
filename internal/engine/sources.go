package engine

import (
	"fmt"
	"math"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types/enums"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
)

// RegisterSource регистрирует источник ужаса. Источником владеет
// создавшая его подсистема; движок только затухает интенсивность и
// удаляет по TTL. Повторная регистрация того же id заменяет источник.
//
// Искаженные источники отклоняются здесь, чтобы агрегация никогда не
// производила NaN.
func (e *DreadEngine) RegisterSource(src domain.DreadSource) error {
	if src.ID == "" {
		return fmt.Errorf("%w: empty id", domain.ErrInvalidDreadSource)
	}
	if src.Kind == enums.SourceKindUnknown {
		return fmt.Errorf("%w: %q has unknown kind", domain.ErrInvalidDreadSource, src.ID)
	}
	if math.IsNaN(src.Intensity) || math.IsInf(src.Intensity, 0) || src.Intensity < 0 {
		return fmt.Errorf("%w: %q intensity %g", domain.ErrInvalidDreadSource, src.ID, src.Intensity)
	}
	if math.IsNaN(src.Radius) || src.Radius < 0 {
		return fmt.Errorf("%w: %q radius %g", domain.ErrInvalidDreadSource, src.ID, src.Radius)
	}
	if math.IsNaN(src.DecayRate) || src.DecayRate < 0 {
		return fmt.Errorf("%w: %q decay rate %g", domain.ErrInvalidDreadSource, src.ID, src.DecayRate)
	}
	if math.IsNaN(src.Compounding) || src.Compounding < 0 {
		return fmt.Errorf("%w: %q compounding %g", domain.ErrInvalidDreadSource, src.ID, src.Compounding)
	}
	if math.IsNaN(src.DurationRemaining) {
		return fmt.Errorf("%w: %q NaN ttl", domain.ErrInvalidDreadSource, src.ID)
	}

	e.sources[src.ID] = &src
	return nil
}

// UnregisterSource удаляет источник. Отсутствующий id — не ошибка.
func (e *DreadEngine) UnregisterSource(id string) {
	delete(e.sources, id)
}

// Sources возвращает копии активных источников (для сейва и отладки).
func (e *DreadEngine) Sources() []domain.DreadSource {
	out := make([]domain.DreadSource, 0, len(e.sources))
	for _, src := range e.sources {
		out = append(out, *src)
	}
	return out
}

// AttachAura регистрирует ауру в индексе под слабым id владельца.
// Аура живет вместе с сущностью; движок хранит только ссылку.
func (e *DreadEngine) AttachAura(origin types.EntityID, aura *domain.DreadAura) error {
	if origin == types.NilEntityID || aura == nil {
		return fmt.Errorf("%w: aura without origin", domain.ErrInvalidDreadSource)
	}
	if math.IsNaN(aura.BaseIntensity) || aura.BaseIntensity < 0 {
		return fmt.Errorf("%w: aura of %s intensity %g",
			domain.ErrInvalidDreadSource, origin, aura.BaseIntensity)
	}
	if math.IsNaN(aura.Radius) || aura.Radius < 0 {
		return fmt.Errorf("%w: aura of %s radius %g",
			domain.ErrInvalidDreadSource, origin, aura.Radius)
	}
	aura.Origin = origin
	e.auras[origin] = aura
	return nil
}

// SweepAuras убирает ауры деспавнутых сущностей. Вызывается один раз
// при деспавне: слабые ссылки не оставляют висячих записей.
func (e *DreadEngine) SweepAuras(alive func(types.EntityID) bool) {
	for origin := range e.auras {
		if !alive(origin) {
			delete(e.auras, origin)
		}
	}
}

// DetachAura убирает ауру конкретной сущности.
func (e *DreadEngine) DetachAura(origin types.EntityID) {
	delete(e.auras, origin)
}
