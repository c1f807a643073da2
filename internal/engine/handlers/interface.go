package handlers

import (
	"encoding/json"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types/enums"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/world"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/api"
)

// EntityFinder описывает любую структуру, которая может находить сущность по ID.
// Service неявно реализует этот интерфейс.
type EntityFinder interface {
	GetEntity(id string) *domain.Entity
}

// DreadRegistry — подмножество движка ужаса, нужное хендлерам.
// Интерфейс здесь, а не в engine, чтобы не замыкать импорты.
type DreadRegistry interface {
	RegisterSource(src domain.DreadSource) error
	SetNarrative(v float64)
}

// BeatSink принимает текущий такт сюжета (нужен движку вех).
type BeatSink interface {
	SetBeat(beat string)
}

// PsycheGate применяет смену состояния компаньона к зеркалу психики.
// Терминальные состояния гейт не выпускает: возвращает nil.
type PsycheGate interface {
	HandleStateChanged(c *domain.Entity, newState enums.CompanionState) *api.CompanionStateView
}

// Context передает хендлеру состояние мира.
// Мы передаем ссылки, чтобы хендлер мог менять состояние (мутировать данные).
type Context struct {
	Finder EntityFinder
	Store  *world.Store
	Dread  DreadRegistry
	Beats  BeatSink
	Psych  PsycheGate
	Actor  *domain.Entity // Тот, от чьего имени выполняется команда
	Tick   uint64
}

// Result - возвращает результат выполнения команды.
// Хендлер НЕ пишет в логи сервиса напрямую, он возвращает данные.
type Result struct {
	Msg     string          // Текст лога
	MsgType string          // Тип лога (INFO, WARN, ERROR)
	Events  []api.CoreEvent // События для рассылки коллаборатором
}

// HandlerFunc - это контракт для любой команды (MOVE, CLEANSE, etc).
type HandlerFunc func(ctx Context, payload json.RawMessage) (Result, error)

// EmptyResult - вспомогательная функция для пустого успешного ответа
func EmptyResult() Result {
	return Result{}
}
