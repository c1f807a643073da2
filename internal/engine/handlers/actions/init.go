package actions

import "github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/engine/handlers"

func HandleInit(ctx handlers.Context) (handlers.Result, error) {
	return handlers.Result{
		Msg:     "Коллаборатор подключен к ядру.",
		MsgType: "INFO",
	}, nil
}
