package engine

import "github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/config"

// DreadConfig — параметры агрегации и квантования ужаса.
// Все значения приходят из конфигурации процесса; тесты собирают
// свой экземпляр напрямую.
type DreadConfig struct {
	// DMax — расстояние (в гексах) от начала координат, на котором
	// пространственный вклад достигает максимума.
	DMax float64

	// Thresholds — пороги T1..T4 на нормализованной шкале сигнала.
	Thresholds [4]float64

	// Hysteresis — ширина гистерезисной полосы H.
	Hysteresis float64

	// DwellUp / DwellDown — сколько секунд сигнал должен держаться
	// выше/ниже порога до перехода уровня.
	DwellUp   float64
	DwellDown float64
}

// DreadConfigFrom выделяет параметры движка из общего конфига.
func DreadConfigFrom(c config.Config) DreadConfig {
	return DreadConfig{
		DMax:       float64(c.WorldSize),
		Thresholds: c.Thresholds,
		Hysteresis: c.Hysteresis,
		DwellUp:    c.DwellUp,
		DwellDown:  c.DwellDown,
	}
}
