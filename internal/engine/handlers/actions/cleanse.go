package actions

import (
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/engine/handlers"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/api"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
)

// HandleCleanse снижает скверну тайла. Скверна монотонна, поэтому
// снижение требует авторизации (QuestID проверен валидатором).
func HandleCleanse(ctx handlers.Context, p api.CleansePayload) (handlers.Result, error) {
	coord := hexmath.Hex{Q: p.Q, R: p.R}
	if err := ctx.Store.Cleanse(coord, p.Amount, p.QuestID); err != nil {
		return handlers.EmptyResult(), err
	}

	tile := ctx.Store.Get(coord)
	return handlers.Result{
		Msg:     "Тайл очищен: " + p.QuestID,
		MsgType: "INFO",
		Events: []api.CoreEvent{{
			Type: api.EventCorruption,
			Tick: ctx.Tick,
			Corruption: &api.CorruptionVisual{
				Coord:    api.HexView{Q: p.Q, R: p.R},
				NewLevel: tile.Corruption,
			},
		}},
	}, nil
}
