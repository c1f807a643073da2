package systems

import (
	"math/rand"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types/enums"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/api"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
)

// AudioDirector порождает пространственные аудио-события для
// аудио-коллаборатора. Сам звук — внешняя система; ядро решает только,
// ЧТО и ГДЕ должно прозвучать.
type AudioDirector struct {
	layout hexmath.Layout
	rng    *rand.Rand

	// hallucinations — накопитель дробной частоты галлюцинаций.
	hallucinations float64
}

func NewAudioDirector(layout hexmath.Layout, rng *rand.Rand) *AudioDirector {
	return &AudioDirector{layout: layout, rng: rng}
}

// HallucinationRate возвращает частоту галлюцинаций в единицу времени:
// (2 − sanity) · (1 + 0.5 · level).
func HallucinationRate(sanity float64, level int) float64 {
	return (2 - sanity) * (1 + 0.5*float64(level))
}

// Update порождает аудио-события тика: галлюцинации по рассудку игрока
// и звуки компаньонов по их состояниям.
func (a *AudioDirector) Update(dt float64, level int, player *domain.Entity, companions []*domain.Entity) []api.ProximityAudioEvent {
	var events []api.ProximityAudioEvent

	// В покое при целом рассудке галлюцинаций нет.
	if player.Psyche != nil && (level > 0 || player.Psyche.Sanity < 1) {
		// Галлюцинации привязаны к слушателю, если аудио-коллаборатор
		// его прислал, иначе — к позиции игрока.
		ear := player.Pos
		if player.Listener != nil {
			ear = a.layout.WorldToHex(player.Listener.World)
		}
		a.hallucinations += HallucinationRate(player.Psyche.Sanity, level) * dt
		for a.hallucinations >= 1 {
			a.hallucinations--
			events = append(events, a.hallucinate(ear))
		}
	}

	for _, c := range companions {
		if c.Psyche == nil {
			continue
		}
		p := a.layout.HexToWorld(c.Pos)
		switch c.Psyche.State {
		case enums.CompanionStateTraumatized:
			events = append(events, api.ProximityAudioEvent{
				AudioType:     api.AudioCompanionWhimper,
				SourceX:       p.X,
				SourceY:       p.Y,
				Intensity:     c.Psyche.Trauma,
				Looping:       true,
				CompanionName: c.Name,
			})
		case enums.CompanionStateBreaking:
			events = append(events, api.ProximityAudioEvent{
				AudioType:     api.AudioCompanionScream,
				SourceX:       p.X,
				SourceY:       p.Y,
				Intensity:     c.Psyche.Trauma,
				CompanionName: c.Name,
			})
		}
	}
	return events
}

// hallucinate выбирает случайную точку рядом с игроком: звук, которого
// нет, всегда звучит чуть сбоку.
func (a *AudioDirector) hallucinate(at hexmath.Hex) api.ProximityAudioEvent {
	neighbors := at.Neighbors()
	near := neighbors[a.rng.Intn(len(neighbors))]
	p := a.layout.HexToWorld(near)
	return api.ProximityAudioEvent{
		AudioType: api.AudioHallucination,
		SourceX:   p.X,
		SourceY:   p.Y,
		Intensity: 0.3 + 0.7*a.rng.Float64(),
	}
}

// DragonAudio строит событие для звуков дракона по расстоянию:
// дыхание вблизи, шаги поодаль, рык — глобально на высоких уровнях.
func (a *AudioDirector) DragonAudio(dragon *domain.Entity, player hexmath.Hex, level int) *api.ProximityAudioEvent {
	d := hexmath.Distance(dragon.Pos, player)
	p := a.layout.HexToWorld(dragon.Pos)

	switch {
	case d <= 3:
		return &api.ProximityAudioEvent{
			AudioType: api.AudioDragonBreathing,
			SourceX:   p.X, SourceY: p.Y,
			Intensity: 1 - float64(d)/4,
			Looping:   true,
		}
	case d <= 12:
		return &api.ProximityAudioEvent{
			AudioType: api.AudioDragonFootsteps,
			SourceX:   p.X, SourceY: p.Y,
			Intensity: 1 - float64(d)/16,
			Looping:   true,
		}
	case level >= 3:
		return &api.ProximityAudioEvent{
			AudioType: api.AudioDragonRoar,
			SourceX:   p.X, SourceY: p.Y,
			Intensity: 0.5,
		}
	}
	return nil
}
