package actions

import (
	"fmt"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types/enums"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/engine/handlers"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/api"
)

// HandleRegisterSource регистрирует источник ужаса от внешней подсистемы.
// Повторная регистрация того же id заменяет источник.
func HandleRegisterSource(ctx handlers.Context, p api.SourcePayload) (handlers.Result, error) {
	kind := enums.ParseSourceKind(p.Kind)
	if kind == enums.SourceKindUnknown {
		return handlers.EmptyResult(), fmt.Errorf("unknown source kind: %q", p.Kind)
	}

	src := domain.DreadSource{
		ID:                p.ID,
		Kind:              kind,
		Intensity:         p.Intensity,
		DecayRate:         p.DecayRate,
		Radius:            p.Radius,
		DurationRemaining: p.TTL,
		Compounding:       p.Compounding,
	}
	if err := ctx.Dread.RegisterSource(src); err != nil {
		return handlers.EmptyResult(), err
	}

	return handlers.Result{
		Msg:     fmt.Sprintf("Источник %s (%s) зарегистрирован.", p.ID, p.Kind),
		MsgType: "INFO",
	}, nil
}
