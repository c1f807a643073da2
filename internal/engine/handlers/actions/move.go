package actions

import (
	"fmt"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/engine/handlers"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/systems"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/api"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
)

// HandleMove проверяет намерение движения и двигает актора.
// Проверка идет по резидентному миру: нерезидентная цель отклоняется,
// даже если она «когда-нибудь загрузится».
func HandleMove(ctx handlers.Context, p api.MovePayload) (handlers.Result, error) {
	if ctx.Actor == nil {
		return handlers.EmptyResult(), fmt.Errorf("move: unknown actor")
	}

	target := hexmath.Hex{Q: p.Q, R: p.R}
	res, err := systems.ValidateMove(ctx.Store, ctx.Actor, target)
	if err != nil {
		return handlers.EmptyResult(), err
	}

	ctx.Actor.Pos = target
	return handlers.Result{
		Msg:     fmt.Sprintf("%s -> (%d,%d), стоимость %.2f", ctx.Actor.Name, target.Q, target.R, res.Cost),
		MsgType: "INFO",
	}, nil
}
