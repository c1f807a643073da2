package systems

import (
	"fmt"
	"sort"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
)

// Stacking — правило наложения модификатора на параметр.
type Stacking uint8

const (
	StackReplace Stacking = iota
	StackAdd
	StackMultiply
)

func (s Stacking) String() string {
	switch s {
	case StackReplace:
		return "replace"
	case StackAdd:
		return "add"
	case StackMultiply:
		return "multiply"
	default:
		return "unknown"
	}
}

// ParamModifier — вектор значений параметра по уровням ужаса 0..4.
// Смысл значений зависит от правила: replace — абсолютное значение,
// add — смещение, multiply — множитель.
type ParamModifier struct {
	Param    string     `json:"param"`
	Stacking Stacking   `json:"stacking"`
	Levels   [5]float64 `json:"levels"`
}

// Registration — один источник модификаций для целевой подсистемы.
// Несколько регистраций могут целиться в одну подсистему; конфликты
// решаются приоритетом и детерминированным тай-брейком.
type Registration struct {
	SourceID string `json:"sourceId"`
	Target   string `json:"target"`
	Priority int    `json:"priority"`

	// Reversible — брокер помнит исходное значение и восстанавливает
	// его при спуске уровня. Необратимые модификации забывают исходник.
	Reversible bool `json:"reversible"`

	// After — id источников того же target, которые должны примениться
	// раньше. Цикл в этом графе отклоняется при регистрации.
	After []string `json:"after,omitempty"`

	Modifiers []ParamModifier `json:"modifiers"`

	// disabled выключает регистрацию, не снимая ее (искажения реальности
	// включают свои фильтры восприятия на время проявления).
	disabled bool

	// spent — необратимая регистрация уже применилась. Ее эффект
	// вплавлен в базу, повторного применения не будет.
	spent bool
}

// SubsystemChange — атомарный коммит параметров одной подсистемы.
type SubsystemChange struct {
	SubsystemID string
	Params      map[string]float64
}

type subsystemState struct {
	// base — базовые значения. Необратимые модификации вплавляются
	// сюда, и исходник теряется.
	base map[string]float64

	// originals — исходные значения параметров, тронутых обратимыми
	// модификациями (нужны сейву).
	originals map[string]float64

	current map[string]float64
}

// Broker — реестр подсистем, чьи параметры зависят от уровня ужаса.
// Брокер НЕ владеет состоянием подсистем: он вычисляет карты параметров
// и рассылает их атомарными коммитами.
type Broker struct {
	subsystems    map[string]*subsystemState
	registrations map[string][]*Registration // по target
	level         int
}

func NewBroker() *Broker {
	return &Broker{
		subsystems:    make(map[string]*subsystemState),
		registrations: make(map[string][]*Registration),
	}
}

// RegisterSubsystem объявляет подсистему и ее базовые параметры.
func (b *Broker) RegisterSubsystem(id string, base map[string]float64) error {
	if id == "" {
		return fmt.Errorf("subsystem id must not be empty")
	}
	if _, exists := b.subsystems[id]; exists {
		return fmt.Errorf("subsystem %q already registered", id)
	}
	st := &subsystemState{
		base:      make(map[string]float64, len(base)),
		originals: make(map[string]float64),
		current:   make(map[string]float64, len(base)),
	}
	for k, v := range base {
		st.base[k] = v
		st.current[k] = v
	}
	b.subsystems[id] = st
	return nil
}

// Register добавляет источник модификаций. Регистрация, образующая
// цикл в графе порядка применения, отклоняется с ModificationCycle.
func (b *Broker) Register(reg Registration) error {
	if _, ok := b.subsystems[reg.Target]; !ok {
		return fmt.Errorf("unknown target subsystem %q", reg.Target)
	}
	if reg.SourceID == "" {
		return fmt.Errorf("modification source id must not be empty")
	}
	for _, existing := range b.registrations[reg.Target] {
		if existing.SourceID == reg.SourceID {
			return fmt.Errorf("source %q already registered for %q", reg.SourceID, reg.Target)
		}
	}

	candidate := append(b.registrations[reg.Target], &reg)
	if hasOrderCycle(candidate) {
		return fmt.Errorf("%w: source %q on %q", domain.ErrModificationCycle, reg.SourceID, reg.Target)
	}
	b.registrations[reg.Target] = candidate
	return nil
}

// SetEnabled включает/выключает регистрацию. Возвращает false, если
// такой регистрации нет. Изменение вступает в силу на следующем коммите.
func (b *Broker) SetEnabled(target, sourceID string, enabled bool) bool {
	for _, reg := range b.registrations[target] {
		if reg.SourceID == sourceID {
			reg.disabled = !enabled
			return true
		}
	}
	return false
}

// hasOrderCycle ищет цикл в графе After среди регистраций одной цели.
func hasOrderCycle(regs []*Registration) bool {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	index := make(map[string]*Registration, len(regs))
	for _, r := range regs {
		index[r.SourceID] = r
	}
	color := make(map[string]int, len(regs))

	var visit func(id string) bool
	visit = func(id string) bool {
		switch color[id] {
		case grey:
			return true
		case black:
			return false
		}
		color[id] = grey
		if r := index[id]; r != nil {
			for _, dep := range r.After {
				if visit(dep) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, r := range regs {
		if visit(r.SourceID) {
			return true
		}
	}
	return false
}

// Commit пересчитывает параметры всех подсистем для уровня level и
// возвращает изменения. Все обновления одного перехода стейджатся и
// коммитятся вместе: подсистема получает ОДНО событие на переход,
// частичные состояния не наблюдаемы.
func (b *Broker) Commit(level int) []SubsystemChange {
	if level < 0 {
		level = 0
	}
	if level > 4 {
		level = 4
	}
	b.level = level

	// Стадия 1: вычислить новые карты, ничего не трогая.
	staged := make(map[string]map[string]float64, len(b.subsystems))
	for id := range b.subsystems {
		staged[id] = b.compute(id, level)
	}

	// Стадия 2: применить и собрать изменения в стабильном порядке.
	ids := make([]string, 0, len(staged))
	for id := range staged {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var changes []SubsystemChange
	for _, id := range ids {
		st := b.subsystems[id]
		next := staged[id]
		if paramsEqual(st.current, next) {
			continue
		}
		st.current = next
		changes = append(changes, SubsystemChange{
			SubsystemID: id,
			Params:      copyParams(next),
		})
	}
	return changes
}

// compute возвращает карту параметров подсистемы id на уровне level.
//
// Порядок наложения для каждого параметра документирован: побеждает
// replace с наибольшим приоритетом (при равенстве — меньший source id);
// поверх него суммируются все add и перемножаются все multiply.
func (b *Broker) compute(id string, level int) map[string]float64 {
	st := b.subsystems[id]
	next := copyParams(st.base)

	regs := b.activeRegs(id)
	params := b.touchedParams(regs)

	for _, param := range params {
		baseVal, known := st.base[param]
		if !known {
			continue
		}
		value := baseVal

		// replace: победитель по (priority desc, source id asc).
		var winner *Registration
		var winnerVal float64
		addSum := 0.0
		mulProd := 1.0
		var irrevRegs []*Registration

		for _, reg := range regs {
			for i := range reg.Modifiers {
				mod := &reg.Modifiers[i]
				if mod.Param != param {
					continue
				}
				switch mod.Stacking {
				case StackReplace:
					if winner == nil ||
						reg.Priority > winner.Priority ||
						(reg.Priority == winner.Priority && reg.SourceID < winner.SourceID) {
						winner = reg
						winnerVal = mod.Levels[level]
					}
				case StackAdd:
					addSum += mod.Levels[level]
				case StackMultiply:
					mulProd *= mod.Levels[level]
				}
				if !reg.Reversible {
					irrevRegs = append(irrevRegs, reg)
				}
			}
		}

		if winner != nil {
			value = winnerVal
		}
		value += addSum
		value *= mulProd

		if value != baseVal {
			if len(irrevRegs) > 0 {
				// Необратимая модификация применяется один раз:
				// исходник забыт, эффект вплавлен в базу.
				st.base[param] = value
				delete(st.originals, param)
				for _, reg := range irrevRegs {
					reg.spent = true
				}
			} else if _, recorded := st.originals[param]; !recorded {
				st.originals[param] = baseVal
			}
		}
		next[param] = value
	}

	// Исходник нужен, только пока параметр реально отклонен от базы.
	// Вернувшийся к базе (спуск уровня, выключенная регистрация)
	// параметр не тащит устаревшую запись в сейв.
	for param := range st.originals {
		if next[param] == st.base[param] {
			delete(st.originals, param)
		}
	}
	return next
}

// activeRegs возвращает включенные регистрации цели в порядке
// применения: сперва топологический порядок After, внутри —
// (priority desc, source id asc).
func (b *Broker) activeRegs(target string) []*Registration {
	var regs []*Registration
	for _, reg := range b.registrations[target] {
		if !reg.disabled && !reg.spent {
			regs = append(regs, reg)
		}
	}
	sort.Slice(regs, func(i, j int) bool {
		if regs[i].Priority != regs[j].Priority {
			return regs[i].Priority > regs[j].Priority
		}
		return regs[i].SourceID < regs[j].SourceID
	})
	return regs
}

func (b *Broker) touchedParams(regs []*Registration) []string {
	seen := make(map[string]bool)
	var params []string
	for _, reg := range regs {
		for _, mod := range reg.Modifiers {
			if !seen[mod.Param] {
				seen[mod.Param] = true
				params = append(params, mod.Param)
			}
		}
	}
	sort.Strings(params)
	return params
}

// Params возвращает копию текущих параметров подсистемы (read-only
// доступ между тиками).
func (b *Broker) Params(id string) map[string]float64 {
	st := b.subsystems[id]
	if st == nil {
		return nil
	}
	return copyParams(st.current)
}

// Originals возвращает записанные исходники обратимых модификаций
// (содержимое сейва).
func (b *Broker) Originals() map[string]map[string]float64 {
	out := make(map[string]map[string]float64)
	for id, st := range b.subsystems {
		if len(st.originals) == 0 {
			continue
		}
		out[id] = copyParams(st.originals)
	}
	return out
}

// RestoreOriginals подкладывает исходники из сейва.
func (b *Broker) RestoreOriginals(saved map[string]map[string]float64) {
	for id, params := range saved {
		st := b.subsystems[id]
		if st == nil {
			continue
		}
		for k, v := range params {
			st.originals[k] = v
		}
	}
}

func copyParams(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func paramsEqual(a, b map[string]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
