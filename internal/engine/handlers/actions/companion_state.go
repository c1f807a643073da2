package actions

import (
	"fmt"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types/enums"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/engine/handlers"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/api"
)

// HandleCompanionState принимает ответ коллаборатора психологии:
// новое состояние компаньона. Переход гейтится зеркалом психики
// (из BROKEN и FLED дороги назад нет), принятый — рассылается всем.
func HandleCompanionState(ctx handlers.Context, p api.CompanionStatePayload) (handlers.Result, error) {
	state, ok := enums.ParseCompanionState(p.NewState)
	if !ok {
		return handlers.EmptyResult(), fmt.Errorf("unknown companion state: %q", p.NewState)
	}

	companion := ctx.Finder.GetEntity(p.CompanionID)
	if companion == nil {
		return handlers.EmptyResult(), fmt.Errorf("unknown companion: %q", p.CompanionID)
	}
	if companion.Psyche == nil {
		return handlers.EmptyResult(), fmt.Errorf("entity %q has no psyche", p.CompanionID)
	}
	if companion.Psyche.State == state {
		// Повтор того же состояния — идемпотентный no-op.
		return handlers.EmptyResult(), nil
	}

	view := ctx.Psych.HandleStateChanged(companion, state)
	if view == nil {
		return handlers.EmptyResult(), fmt.Errorf("transition %s -> %s rejected for %q",
			companion.Psyche.State, state, p.CompanionID)
	}

	return handlers.Result{
		Msg:     fmt.Sprintf("Компаньон %s: %s.", companion.Name, view.NewState),
		MsgType: "INFO",
		Events: []api.CoreEvent{{
			Type:           api.EventCompanionState,
			Tick:           ctx.Tick,
			CompanionState: view,
		}},
	}, nil
}
