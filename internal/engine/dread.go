// Package engine содержит движок состояния ужаса и главный цикл
// симуляции. Движок — единственный писатель DreadLevelState; внешние
// подсистемы читают снимки между тиками.
package engine

import (
	"math"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types/enums"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
)

// Вклад компаньона в психологическую составляющую по состоянию.
const (
	psyWeightTraumatized = 0.15
	psyWeightBreaking    = 0.30
)

// auraSumCap — потолок суммарного вклада аур (до нормализации).
const auraSumCap = 5.0

// stabilityWindow — окно (сек), по которому считается стабильность
// сигнала: stability = 1 − variance за окно.
const stabilityWindow = 30.0

// LevelTransition — состоявшийся переход квантованного уровня.
// За один тик движок производит не больше одного перехода.
type LevelTransition struct {
	From      int
	To        int
	Raw       float64
	Stability float64
}

type rawSample struct {
	at  float64 // накопленное сим-время, сек
	val float64
}

// DreadEngine агрегирует источники ужаса в квантованный уровень 0..4
// с гистерезисом. Никогда не падает в рантайме: входы проверяются при
// регистрации, все редукции ограничены.
type DreadEngine struct {
	cfg DreadConfig

	sources map[string]*domain.DreadSource

	// auras — индекс аур по слабому id сущности-источника.
	// При деспавне владельца индекс подметается через SweepAuras.
	auras map[types.EntityID]*domain.DreadAura

	// narrative — текущий нарративный вклад [0,1], выставляется
	// коллаборатором через NARRATIVE.
	narrative float64

	// external — множитель внешних факторов [-1,1].
	external float64

	state domain.DreadLevelState

	clock  float64 // накопленное сим-время
	window []rawSample
}

func NewDreadEngine(cfg DreadConfig) *DreadEngine {
	return &DreadEngine{
		cfg:     cfg,
		sources: make(map[string]*domain.DreadSource),
		auras:   make(map[types.EntityID]*domain.DreadAura),
	}
}

// State возвращает копию текущего состояния уровня.
func (e *DreadEngine) State() domain.DreadLevelState {
	return e.state
}

// RestoreState восстанавливает состояние уровня из сейва.
// Окно стабильности начинается заново: старые сэмплы не сохраняются.
func (e *DreadEngine) RestoreState(st domain.DreadLevelState, narrative, external float64) {
	e.state = st
	e.SetNarrative(narrative)
	e.SetExternal(external)
	e.window = nil
}

// Narrative возвращает текущий нарративный вклад (для сейва).
func (e *DreadEngine) Narrative() float64 { return e.narrative }

// External возвращает текущий множитель внешних факторов (для сейва).
func (e *DreadEngine) External() float64 { return e.external }

// SetExternal выставляет множитель внешних факторов, ограничивая [-1,1].
func (e *DreadEngine) SetExternal(v float64) {
	if math.IsNaN(v) {
		return
	}
	e.external = clampF(v, -1, 1)
}

// SetNarrative выставляет нарративный вклад [0,1].
func (e *DreadEngine) SetNarrative(v float64) {
	if math.IsNaN(v) {
		return
	}
	e.narrative = clampF(v, 0, 1)
}

// Update продвигает движок на dt секунд.
// Порядок фиксирован: затухание и TTL -> пульсы аур -> агрегация ->
// квантование с гистерезисом. Возвращает переход уровня или nil.
func (e *DreadEngine) Update(dt float64, player hexmath.Hex, companions []*domain.Entity) *LevelTransition {
	if dt <= 0 {
		return nil
	}
	e.clock += dt

	e.decaySources(dt)
	e.advancePulses(dt)

	raw := e.aggregate(player, companions)

	prev := e.state.Raw
	e.state.Rate = (raw - prev) / dt
	e.state.Raw = raw
	e.pushSample(raw)
	e.state.Stability = e.stability()

	return e.quantize(dt, raw)
}

// decaySources затухает интенсивности и удаляет истекшие источники.
// Удаление атомарно в пределах тика: агрегация ниже уже не видит их.
func (e *DreadEngine) decaySources(dt float64) {
	for id, src := range e.sources {
		if src.DurationRemaining >= 0 {
			src.DurationRemaining -= dt
			if src.DurationRemaining <= 0 {
				delete(e.sources, id)
				continue
			}
		}
		src.Intensity -= src.DecayRate * dt
		if src.Intensity <= 0 {
			delete(e.sources, id)
		}
	}
}

func (e *DreadEngine) advancePulses(dt float64) {
	for _, aura := range e.auras {
		aura.Advance(dt)
	}
}

// aggregate собирает нормализованный сигнал [0, ~1+]:
// каждая составляющая приводится к [0,1], сумма масштабируется
// внешними факторами. Квантователь насыщается на 4, поэтому
// сигнал выше 1 безопасен.
func (e *DreadEngine) aggregate(player hexmath.Hex, companions []*domain.Entity) float64 {
	spatial := clampF(float64(hexmath.Distance(hexmath.Hex{}, player))/e.cfg.DMax, 0, 1)

	auraSum := 0.0
	for _, aura := range e.auras {
		auraSum += aura.ContributionAt(player)
	}
	// Скалярные источники без позиции — "ужас в воздухе" — входят
	// в ту же полевую составляющую по виду.
	auraSum += e.kindSum(enums.SourceKindEnvironmental) + e.kindSum(enums.SourceKindSupernatural)
	if auraSum > auraSumCap {
		auraSum = auraSumCap
	}

	narr := clampF(e.narrative+e.kindSum(enums.SourceKindNarrative), 0, 1)

	psy := e.kindSum(enums.SourceKindPsychological)
	for _, c := range companions {
		if c.Psyche == nil {
			continue
		}
		switch c.Psyche.State {
		case enums.CompanionStateTraumatized:
			psy += psyWeightTraumatized
		case enums.CompanionStateBreaking:
			psy += psyWeightBreaking
		}
	}
	psy = clampF(psy, 0, 1)

	e.state.Components = domain.DreadComponents{
		Spatial:   spatial,
		Aura:      auraSum,
		Narrative: narr,
		Companion: psy,
		External:  e.external,
	}

	raw := (spatial + auraSum/auraSumCap + narr + psy) * (1 + e.external)
	if raw < 0 || math.IsNaN(raw) {
		return 0
	}
	return raw
}

// kindSum суммирует интенсивности источников одного вида с учетом
// усиления наложения: каждый источник усиливается на свой compounding
// за каждый дополнительный источник того же вида.
func (e *DreadEngine) kindSum(kind enums.SourceKind) float64 {
	count := 0
	for _, src := range e.sources {
		if src.Kind == kind {
			count++
		}
	}
	if count == 0 {
		return 0
	}
	sum := 0.0
	for _, src := range e.sources {
		if src.Kind != kind {
			continue
		}
		sum += src.Intensity * (1 + src.Compounding*float64(count-1))
	}
	return sum
}

// quantize продвигает гистерезисные таймеры и выполняет не больше
// одного перехода уровня за вызов.
//
// Подъем с L на L+1 требует сигнал >= T[L] непрерывно dwell_up секунд;
// спуск с L на L-1 требует сигнал < T[L-1] − H непрерывно dwell_down.
func (e *DreadEngine) quantize(dt, raw float64) *LevelTransition {
	level := e.state.Level

	if level < 4 && raw >= e.cfg.Thresholds[level] {
		e.state.DwellAbove += dt
	} else {
		e.state.DwellAbove = 0
	}

	if level > 0 && raw < e.cfg.Thresholds[level-1]-e.cfg.Hysteresis {
		e.state.DwellBelow += dt
	} else {
		e.state.DwellBelow = 0
	}

	switch {
	case level < 4 && e.state.DwellAbove >= e.cfg.DwellUp:
		return e.transition(level + 1)
	case level > 0 && e.state.DwellBelow >= e.cfg.DwellDown:
		return e.transition(level - 1)
	}
	return nil
}

func (e *DreadEngine) transition(to int) *LevelTransition {
	from := e.state.Level
	e.state.PreviousLevel = from
	e.state.Level = to
	e.state.DwellAbove = 0
	e.state.DwellBelow = 0
	return &LevelTransition{
		From:      from,
		To:        to,
		Raw:       e.state.Raw,
		Stability: e.state.Stability,
	}
}

func (e *DreadEngine) pushSample(v float64) {
	e.window = append(e.window, rawSample{at: e.clock, val: v})
	cutoff := e.clock - stabilityWindow
	drop := 0
	for drop < len(e.window) && e.window[drop].at < cutoff {
		drop++
	}
	if drop > 0 {
		e.window = e.window[drop:]
	}
}

// stability возвращает 1 − дисперсию сигнала за окно, ограничено [0,1].
func (e *DreadEngine) stability() float64 {
	n := len(e.window)
	if n < 2 {
		return 1
	}
	mean := 0.0
	for _, s := range e.window {
		mean += s.val
	}
	mean /= float64(n)

	variance := 0.0
	for _, s := range e.window {
		d := s.val - mean
		variance += d * d
	}
	variance /= float64(n)

	return clampF(1-variance, 0, 1)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
