package systems

import (
	"fmt"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
)

// PerceptionSubsystem — цель брокера для фильтров восприятия.
// Искажения модулируют восприятие игрока ТОЛЬКО через брокер и никогда
// не трогают Tile Store.
const PerceptionSubsystem = "perception"

// TriggerEnter / TriggerLinger / TriggerLook — условия проявлений.
const (
	TriggerEnter  = "enter"  // срабатывает при входе в регион
	TriggerLinger = "linger" // держится, пока игрок внутри
	TriggerLook   = "look"   // сигналится коллаборатором рендера
)

// DistortionEngine управляет регионами искажения реальности.
// Проявление активируется на свою длительность и остывает 2×длительность.
type DistortionEngine struct {
	regions []*domain.RealityDistortion
	broker  *Broker

	// inside — был ли игрок внутри региона на прошлом тике (для enter).
	inside map[string]bool

	// signals — внешние триггеры (look), потребляются на ближайшем тике.
	signals map[string]bool
}

// PerceptionBase — базовые (нулевые) фильтры восприятия по видам
// искажений. Подсистема восприятия регистрируется в брокере с этой
// картой до добавления регионов.
func PerceptionBase() map[string]float64 {
	return map[string]float64{
		"GEOMETRIC":  0,
		"TEMPORAL":   0,
		"CAUSAL":     0,
		"PERCEPTUAL": 0,
	}
}

func NewDistortionEngine(broker *Broker) *DistortionEngine {
	return &DistortionEngine{
		broker:  broker,
		inside:  make(map[string]bool),
		signals: make(map[string]bool),
	}
}

// AddRegion регистрирует регион и его фильтры восприятия в брокере.
// Каждое проявление получает выключенную регистрацию; активация только
// включает ее, сами параметры уровне-зависимы через вектор модификаторов.
func (d *DistortionEngine) AddRegion(region *domain.RealityDistortion) error {
	if region.Intensity < 0 || region.Intensity > 1 {
		return fmt.Errorf("distortion %q intensity %g outside [0,1]", region.ID, region.Intensity)
	}
	for _, m := range region.Manifestations {
		reg := Registration{
			SourceID:   manifestSource(region, m),
			Target:     PerceptionSubsystem,
			Priority:   region.RequiredLevel,
			Reversible: true,
			Modifiers: []ParamModifier{{
				Param:    region.Kind.String(),
				Stacking: StackAdd,
				Levels:   perceptionLevels(region),
			}},
		}
		if err := d.broker.Register(reg); err != nil {
			return err
		}
		d.broker.SetEnabled(PerceptionSubsystem, reg.SourceID, false)
	}
	d.regions = append(d.regions, region)
	return nil
}

// perceptionLevels масштабирует вклад фильтра интенсивностью региона;
// ниже требуемого уровня вклад нулевой.
func perceptionLevels(region *domain.RealityDistortion) [5]float64 {
	var levels [5]float64
	for lvl := region.RequiredLevel; lvl <= 4; lvl++ {
		levels[lvl] = region.Intensity
	}
	return levels
}

func manifestSource(region *domain.RealityDistortion, m *domain.Manifestation) string {
	return region.ID + "/" + m.ID
}

// Signal доставляет внешний триггер (look) проявлениям региона.
func (d *DistortionEngine) Signal(regionID, trigger string) {
	d.signals[regionID+"#"+trigger] = true
}

// Update продвигает таймеры проявлений и активирует те, чей триггер
// выполнен. Возвращает true, если включенность каких-то фильтров
// изменилась и брокеру нужен повторный коммит текущего уровня.
func (d *DistortionEngine) Update(dt float64, level int, player hexmath.Hex) bool {
	toggled := false

	for _, region := range d.regions {
		in := region.Contains(player)
		entered := in && !d.inside[region.ID]
		d.inside[region.ID] = in

		eligible := region.Intensity > 0 && level >= region.RequiredLevel && in

		for _, m := range region.Manifestations {
			if m.ActiveRemaining > 0 {
				m.ActiveRemaining -= dt
				if m.ActiveRemaining <= 0 {
					m.ActiveRemaining = 0
					// Остывание вдвое длиннее проявления.
					m.CooldownRemaining = 2 * m.Duration
					d.broker.SetEnabled(PerceptionSubsystem, manifestSource(region, m), false)
					toggled = true
				}
				continue
			}
			if m.CooldownRemaining > 0 {
				m.CooldownRemaining -= dt
				if m.CooldownRemaining < 0 {
					m.CooldownRemaining = 0
				}
				continue
			}

			if !eligible || !d.triggerHolds(region, m, entered) {
				continue
			}
			m.ActiveRemaining = m.Duration
			d.broker.SetEnabled(PerceptionSubsystem, manifestSource(region, m), true)
			toggled = true
		}
	}

	// Сигналы одноразовые: не потребленные в этом тике сгорают.
	for k := range d.signals {
		delete(d.signals, k)
	}
	return toggled
}

func (d *DistortionEngine) triggerHolds(region *domain.RealityDistortion, m *domain.Manifestation, entered bool) bool {
	switch m.Trigger {
	case TriggerEnter:
		return entered
	case TriggerLinger:
		return true // eligible уже требует "внутри"
	case TriggerLook:
		return d.signals[region.ID+"#"+TriggerLook]
	default:
		return false
	}
}

// Regions возвращает регионы (read-only доступ для отладки).
func (d *DistortionEngine) Regions() []*domain.RealityDistortion {
	return d.regions
}
