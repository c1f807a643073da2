// Package hexmath реализует арифметику аксиальных гексагональных координат.
// Третья кубическая координата s выводится по требованию: s = -q - r.
// Пакет чистый и не хранит состояния.
package hexmath

// Hex — позиция на гексагональной сетке в аксиальных координатах.
// Инвариант кубических координат: q + r + s = 0.
type Hex struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S возвращает производную третью кубическую координату.
func (h Hex) S() int {
	return -h.Q - h.R
}

// Add возвращает сумму координат (Hex — value-type, исходный не меняется).
func (h Hex) Add(other Hex) Hex {
	return Hex{Q: h.Q + other.Q, R: h.R + other.R}
}

// directions — шесть фиксированных смещений соседей в каноническом порядке:
// восток, северо-восток, северо-запад, запад, юго-запад, юго-восток.
var directions = [6]Hex{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors возвращает шесть соседних гексов в каноническом порядке.
func (h Hex) Neighbors() [6]Hex {
	var result [6]Hex
	for i, d := range directions {
		result[i] = h.Add(d)
	}
	return result
}

// Distance возвращает гексагональное расстояние между двумя координатами.
// Формула: (|dq| + |dq+dr| + |dr|) / 2. Вся арифметика целочисленная.
func Distance(a, b Hex) int {
	dq := abs(a.Q - b.Q)
	ds := abs(a.Q + a.R - b.Q - b.R)
	dr := abs(a.R - b.R)
	return (dq + ds + dr) / 2
}

// Range перечисляет все гексы на расстоянии не больше k включительно.
// Порядок обхода детерминирован: по возрастанию dq, внутри — по dr.
// Количество элементов всегда 3k(k+1) + 1.
func Range(center Hex, k int) []Hex {
	if k < 0 {
		return nil
	}
	result := make([]Hex, 0, 3*k*(k+1)+1)
	for dq := -k; dq <= k; dq++ {
		lo := max(-k, -dq-k)
		hi := min(k, -dq+k)
		for dr := lo; dr <= hi; dr++ {
			result = append(result, Hex{Q: center.Q + dq, R: center.R + dr})
		}
	}
	return result
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
