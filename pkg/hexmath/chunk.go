package hexmath

// ChunkCoord — координата чанка. Мир нарезается на квадратные чанки
// стороной C (в аксиальных гексагональных единицах).
type ChunkCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// ChunkOf возвращает чанк, которому принадлежит гекс, при стороне чанка size.
// Используется floor-деление, чтобы отрицательные координаты
// не схлопывались в чанк (0,0).
func ChunkOf(h Hex, size int) ChunkCoord {
	return ChunkCoord{
		Q: floorDiv(h.Q, size),
		R: floorDiv(h.R, size),
	}
}

// Chebyshev возвращает расстояние Чебышёва между чанками.
// Именно эта метрика определяет радиус загрузки и выгрузки.
func Chebyshev(a, b ChunkCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	if dq > dr {
		return dq
	}
	return dr
}

// Tiles перечисляет все гексы чанка в детерминированном порядке (по строкам).
func (c ChunkCoord) Tiles(size int) []Hex {
	result := make([]Hex, 0, size*size)
	baseQ := c.Q * size
	baseR := c.R * size
	for r := 0; r < size; r++ {
		for q := 0; q < size; q++ {
			result = append(result, Hex{Q: baseQ + q, R: baseR + r})
		}
	}
	return result
}

// Hash возвращает стабильный 64-битный хеш координаты чанка.
// Применяется как детерминированный tiebreak при выборе жертвы выгрузки:
// порядок эвикции воспроизводим от тика к тику и от запуска к запуску.
func (c ChunkCoord) Hash() uint64 {
	// FNV-1a поверх двух координат, развернутых в байты.
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211

	h := uint64(offset64)
	for _, v := range [2]uint64{uint64(int64(c.Q)), uint64(int64(c.R))} {
		for i := 0; i < 8; i++ {
			h ^= uint64(byte(v >> (8 * i)))
			h *= prime64
		}
	}
	return h
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
