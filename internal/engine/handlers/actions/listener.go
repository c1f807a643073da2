package actions

import (
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/engine/handlers"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/api"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
)

// HandleListener обновляет позицию слушателя. Аудио-коллаборатор шлет
// её между тиками, поэтому хендлер не трогает ничего, кроме компонента.
func HandleListener(ctx handlers.Context, p api.ListenerPayload) (handlers.Result, error) {
	if ctx.Actor == nil {
		return handlers.EmptyResult(), nil
	}
	if ctx.Actor.Listener == nil {
		ctx.Actor.Listener = &domain.ListenerComponent{}
	}
	ctx.Actor.Listener.World = hexmath.Point{X: p.X, Y: p.Y}
	return handlers.EmptyResult(), nil
}
