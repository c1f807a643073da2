package domain

import (
	"math"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types/enums"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
)

// DreadSource — зарегистрированный источник ужаса.
// Владеет источником та подсистема, которая его создала; движок только
// затухает интенсивность и удаляет источники по TTL.
type DreadSource struct {
	ID        string           `json:"id"`
	Kind      enums.SourceKind `json:"kind"`
	Intensity float64          `json:"intensity"` // всегда >= 0
	DecayRate float64          `json:"decayRate"` // ед/сек
	Radius    float64          `json:"radius,omitempty"`

	// DurationRemaining — оставшийся TTL в секундах.
	// Отрицательное значение = бессрочный источник.
	DurationRemaining float64 `json:"durationRemaining"`

	// Compounding — усиление при наложении с источниками того же вида.
	Compounding float64 `json:"compounding,omitempty"`
}

// FalloffCurve — кривая затухания ауры по расстоянию.
type FalloffCurve uint8

const (
	FalloffLinear FalloffCurve = iota
	FalloffInverseSquare
	FalloffExponential
)

// ln16 — коэффициент экспоненциального затухания: на границе радиуса
// остается 1/16 интенсивности.
var ln16 = math.Log(16)

// Falloff возвращает множитель [0,1] для расстояния d при радиусе r.
//   - linear:         max(0, 1 - d/r)
//   - inverse-square: r² / (d² + r²)  (на границе радиуса ровно 0.5)
//   - exponential:    exp(-d·ln16/r)
func (c FalloffCurve) Falloff(d, r float64) float64 {
	if r <= 0 {
		return 0
	}
	switch c {
	case FalloffLinear:
		v := 1 - d/r
		if v < 0 {
			return 0
		}
		return v
	case FalloffInverseSquare:
		return r * r / (d*d + r*r)
	case FalloffExponential:
		return math.Exp(-d * ln16 / r)
	default:
		return 0
	}
}

// PulseShape — форма пульсации ауры.
type PulseShape uint8

const (
	PulseSine PulseShape = iota
	PulseSquare
	PulseTriangle
)

// Sample возвращает значение формы в фазе phase ∈ [0,1), диапазон [-1,1].
func (s PulseShape) Sample(phase float64) float64 {
	phase = phase - math.Floor(phase)
	switch s {
	case PulseSine:
		return math.Sin(2 * math.Pi * phase)
	case PulseSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case PulseTriangle:
		// 0 -> 1 -> 0 -> -1 -> 0
		if phase < 0.25 {
			return 4 * phase
		}
		if phase < 0.75 {
			return 2 - 4*phase
		}
		return 4*phase - 4
	default:
		return 0
	}
}

// Pulse — периодическая модуляция интенсивности ауры.
type Pulse struct {
	Period    float64    `json:"period"` // сек
	Amplitude float64    `json:"amplitude"`
	Shape     PulseShape `json:"shape"`
	Phase     float64    `json:"phase"` // [0,1)
}

// DreadAura — пространственное поле ужаса вокруг сущности.
// Origin — слабая ссылка (EntityID): при деспавне владельца индекс аур
// подметается один раз, сама аура живет вместе с сущностью.
type DreadAura struct {
	Origin        types.EntityID `json:"origin"`
	Position      hexmath.Hex    `json:"position"`
	BaseIntensity float64        `json:"baseIntensity"`
	Current       float64        `json:"current"` // 0 <= current <= base*(1+amplitude)
	Radius        float64        `json:"radius"`
	Curve         FalloffCurve   `json:"curve"`
	Pulse         *Pulse         `json:"pulse,omitempty"`
}

// Advance продвигает фазу пульса на dt секунд и пересчитывает Current.
// Аура без пульса держит Current == BaseIntensity.
func (a *DreadAura) Advance(dt float64) {
	if a.Pulse == nil || a.Pulse.Period <= 0 {
		a.Current = a.BaseIntensity
		return
	}
	a.Pulse.Phase += dt / a.Pulse.Period
	a.Pulse.Phase -= math.Floor(a.Pulse.Phase)

	mod := 1 + a.Pulse.Amplitude*a.Pulse.Shape.Sample(a.Pulse.Phase)
	v := a.BaseIntensity * mod
	if v < 0 {
		v = 0
	}
	max := a.BaseIntensity * (1 + a.Pulse.Amplitude)
	if v > max {
		v = max
	}
	a.Current = v
}

// ContributionAt возвращает вклад ауры в точке p.
func (a *DreadAura) ContributionAt(p hexmath.Hex) float64 {
	d := float64(hexmath.Distance(a.Position, p))
	return a.Current * a.Curve.Falloff(d, a.Radius)
}

// DreadLevelState — квантованный уровень ужаса и его гистерезисное состояние.
// Единственный на контекст игрока.
type DreadLevelState struct {
	Level         int     `json:"level"` // 0..4
	PreviousLevel int     `json:"previousLevel"`
	Rate          float64 `json:"rate"`      // скорость изменения сырого сигнала, ед/сек
	Stability     float64 `json:"stability"` // 1 - variance за окно 30с

	// Разбивка сырого сигнала по компонентам (для отладки и сейва).
	Components DreadComponents `json:"components"`

	// Гистерезис: сколько секунд сигнал держится выше/ниже порога.
	DwellAbove float64 `json:"dwellAbove"`
	DwellBelow float64 `json:"dwellBelow"`

	// Raw — последний агрегированный сигнал на нормализованной шкале
	// (каждая составляющая приведена к [0,1] до суммирования).
	Raw float64 `json:"raw"`
}

// DreadComponents — составляющие сырого сигнала.
type DreadComponents struct {
	Spatial   float64 `json:"spatial"`
	Aura      float64 `json:"aura"`
	Narrative float64 `json:"narrative"`
	Companion float64 `json:"companion"`
	External  float64 `json:"external"` // множитель [-1,1]
}
