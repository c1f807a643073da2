package domain

// DreadResistance — сопротивляемость сущности ужасу.
// Инвариант: total <= 1; strain затухает к нулю, пока вход ниже порога.
type DreadResistance struct {
	Base      float64 `json:"base"`
	Acquired  float64 `json:"acquired"`
	Temporary float64 `json:"temporary"`

	Strain             float64 `json:"strain"` // [0,1]
	BreakdownThreshold float64 `json:"breakdownThreshold"`
	RecoveryRate       float64 `json:"recoveryRate"` // ед/сек

	// Sources — откуда взялась приобретенная сопротивляемость
	// (талисманы, пройденные вехи). Нужна для сейва.
	Sources []string `json:"sources,omitempty"`
}

// Total возвращает итоговую сопротивляемость: clamp(base+acquired+temporary-strain, 0, 1).
func (r *DreadResistance) Total() float64 {
	t := r.Base + r.Acquired + r.Temporary - r.Strain
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Reduce возвращает величину удара ужаса после сопротивления: m · (1 − total).
func (r *DreadResistance) Reduce(m float64) float64 {
	return m * (1 - r.Total())
}

// ContagionState — накопленная экспозиция заражения ужасом.
type ContagionState struct {
	Exposure  float64 `json:"exposure"`
	Threshold float64 `json:"threshold"`
	Recovery  float64 `json:"recovery"` // ед/сек

	// ImmunityRemaining — сколько секунд события заражения подавлены
	// после последнего срабатывания.
	ImmunityRemaining float64 `json:"immunityRemaining"`

	// ImmunityDuration — окно иммунитета, выставляемое при срабатывании.
	ImmunityDuration float64 `json:"immunityDuration"`
}
