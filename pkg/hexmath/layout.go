package hexmath

import "math"

// Orientation задает ориентацию гексов на плоскости.
type Orientation uint8

const (
	// OrientationPointy — вершиной вверх.
	OrientationPointy Orientation = iota
	// OrientationFlat — гранью вверх.
	OrientationFlat
)

// Point — точка мирового пространства. Проекции считаются в float32:
// каждая конвертация независима от предыдущих, накопления ошибки нет.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Layout описывает проекцию гексагональной сетки на мировые координаты.
type Layout struct {
	Orientation Orientation
	Origin      Point
	Size        float32 // радиус гекса в мировых единицах
}

const (
	sqrt3 = 1.7320508075688772
)

// HexToWorld возвращает центр гекса в мировых координатах.
func (l Layout) HexToWorld(h Hex) Point {
	q := float64(h.Q)
	r := float64(h.R)
	size := float64(l.Size)

	var x, y float64
	if l.Orientation == OrientationPointy {
		x = size * (sqrt3*q + sqrt3/2*r)
		y = size * (3.0 / 2 * r)
	} else {
		x = size * (3.0 / 2 * q)
		y = size * (sqrt3/2*q + sqrt3*r)
	}

	return Point{
		X: float32(x) + l.Origin.X,
		Y: float32(y) + l.Origin.Y,
	}
}

// WorldToHex возвращает гекс, содержащий точку p.
// Дробные кубические координаты округляются до ближайшего валидного гекса
// (координата с наибольшей ошибкой восстанавливается из инварианта q+r+s=0).
func (l Layout) WorldToHex(p Point) Hex {
	size := float64(l.Size)
	x := float64(p.X-l.Origin.X) / size
	y := float64(p.Y-l.Origin.Y) / size

	var q, r float64
	if l.Orientation == OrientationPointy {
		q = sqrt3/3*x - 1.0/3*y
		r = 2.0 / 3 * y
	} else {
		q = 2.0 / 3 * x
		r = -1.0/3*x + sqrt3/3*y
	}

	return roundHex(q, r)
}

// roundHex округляет дробные аксиальные координаты до целого гекса.
func roundHex(q, r float64) Hex {
	s := -q - r

	rq := math.Round(q)
	rr := math.Round(r)
	rs := math.Round(s)

	dq := math.Abs(rq - q)
	dr := math.Abs(rr - r)
	ds := math.Abs(rs - s)

	if dq > dr && dq > ds {
		rq = -rr - rs
	} else if dr > ds {
		rr = -rq - rs
	}

	return Hex{Q: int(rq), R: int(rr)}
}
