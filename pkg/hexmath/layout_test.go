package hexmath

import "testing"

func TestHexWorldRoundTrip(t *testing.T) {
	layouts := []Layout{
		{Orientation: OrientationPointy, Size: 1},
		{Orientation: OrientationFlat, Size: 1},
		{Orientation: OrientationPointy, Origin: Point{X: 100, Y: -50}, Size: 2.5},
	}

	coords := []Hex{{0, 0}, {1, 0}, {-3, 7}, {42, -17}, {-100, -100}}

	for _, l := range layouts {
		for _, h := range coords {
			p := l.HexToWorld(h)
			back := l.WorldToHex(p)
			if back != h {
				t.Errorf("round trip failed: %+v -> %+v -> %+v (layout %+v)", h, p, back, l)
			}
		}
	}
}

func TestWorldToHexNoAccumulation(t *testing.T) {
	// Each call is independent of previous results: converting the same
	// point many times always yields the same hex.
	l := Layout{Orientation: OrientationPointy, Size: 1.5}
	p := Point{X: 13.37, Y: -4.2}
	first := l.WorldToHex(p)
	for i := 0; i < 1000; i++ {
		if got := l.WorldToHex(p); got != first {
			t.Fatalf("iteration %d: got %+v, want %+v", i, got, first)
		}
	}
}

func TestOriginMapsToZero(t *testing.T) {
	l := Layout{Orientation: OrientationFlat, Origin: Point{X: 10, Y: 20}, Size: 3}
	if got := l.WorldToHex(Point{X: 10, Y: 20}); got != (Hex{0, 0}) {
		t.Errorf("origin maps to %+v, want (0,0)", got)
	}
}
