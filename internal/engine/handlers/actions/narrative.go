package actions

import (
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/engine/handlers"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/api"
)

// HandleNarrative принимает нарративный вклад и текущий такт сюжета.
// Вклад зажимается движком, такт уходит движку вех.
func HandleNarrative(ctx handlers.Context, p api.NarrativePayload) (handlers.Result, error) {
	ctx.Dread.SetNarrative(p.Intensity)
	if ctx.Beats != nil {
		ctx.Beats.SetBeat(p.Beat)
	}
	return handlers.Result{
		Msg:     "Такт сюжета: " + p.Beat,
		MsgType: "INFO",
	}, nil
}
