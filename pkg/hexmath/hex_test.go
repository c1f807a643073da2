package hexmath

import "testing"

func TestCubeInvariant(t *testing.T) {
	coords := []Hex{{0, 0}, {3, -7}, {-5, 2}, {180, 0}, {-1, -1}}
	for _, h := range coords {
		if h.Q+h.R+h.S() != 0 {
			t.Errorf("q+r+s != 0 for %+v (s=%d)", h, h.S())
		}
	}
}

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b Hex
		want int
	}{
		{Hex{0, 0}, Hex{0, 0}, 0},
		{Hex{0, 0}, Hex{1, 0}, 1},
		{Hex{0, 0}, Hex{1, -1}, 1},
		{Hex{0, 0}, Hex{45, 0}, 45},
		{Hex{0, 0}, Hex{2, -1}, 2},
		{Hex{-3, 2}, Hex{1, -2}, 4},
	}
	for _, c := range cases {
		if got := Distance(c.a, c.b); got != c.want {
			t.Errorf("Distance(%+v, %+v) = %d, want %d", c.a, c.b, got, c.want)
		}
		// Distance is symmetric
		if got := Distance(c.b, c.a); got != c.want {
			t.Errorf("Distance(%+v, %+v) = %d, want %d (symmetry)", c.b, c.a, got, c.want)
		}
	}
}

func TestNeighborsCanonicalOrder(t *testing.T) {
	// E, NE, NW, W, SW, SE
	want := [6]Hex{{1, 0}, {1, -1}, {0, -1}, {-1, 0}, {-1, 1}, {0, 1}}
	got := (Hex{0, 0}).Neighbors()
	if got != want {
		t.Errorf("Neighbors order = %v, want %v", got, want)
	}

	// Every neighbor is at distance 1
	center := Hex{7, -3}
	for _, n := range center.Neighbors() {
		if Distance(center, n) != 1 {
			t.Errorf("neighbor %+v of %+v is not at distance 1", n, center)
		}
	}
}

func TestRangeSize(t *testing.T) {
	center := Hex{2, -5}

	// range(h, 0) = {h}
	r0 := Range(center, 0)
	if len(r0) != 1 || r0[0] != center {
		t.Errorf("Range(h, 0) = %v, want [%+v]", r0, center)
	}

	// |range(h, k)| = 3k(k+1) + 1
	for k := 1; k <= 5; k++ {
		got := Range(center, k)
		want := 3*k*(k+1) + 1
		if len(got) != want {
			t.Errorf("len(Range(h, %d)) = %d, want %d", k, len(got), want)
		}
		for _, h := range got {
			if Distance(center, h) > k {
				t.Errorf("Range(h, %d) contains %+v at distance %d", k, h, Distance(center, h))
			}
		}
	}
}

func TestRangeDeterministic(t *testing.T) {
	a := Range(Hex{0, 0}, 3)
	b := Range(Hex{0, 0}, 3)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("iteration order is not deterministic at index %d", i)
		}
	}
}

func TestChunkOf(t *testing.T) {
	cases := []struct {
		h    Hex
		size int
		want ChunkCoord
	}{
		{Hex{0, 0}, 16, ChunkCoord{0, 0}},
		{Hex{15, 15}, 16, ChunkCoord{0, 0}},
		{Hex{16, 0}, 16, ChunkCoord{1, 0}},
		{Hex{-1, 0}, 16, ChunkCoord{-1, 0}},  // floor division, not truncation
		{Hex{-16, -16}, 16, ChunkCoord{-1, -1}},
		{Hex{-17, 31}, 16, ChunkCoord{-2, 1}},
	}
	for _, c := range cases {
		if got := ChunkOf(c.h, c.size); got != c.want {
			t.Errorf("ChunkOf(%+v, %d) = %+v, want %+v", c.h, c.size, got, c.want)
		}
	}
}

func TestChebyshev(t *testing.T) {
	if d := Chebyshev(ChunkCoord{0, 0}, ChunkCoord{3, -2}); d != 3 {
		t.Errorf("Chebyshev = %d, want 3", d)
	}
	if d := Chebyshev(ChunkCoord{1, 1}, ChunkCoord{1, 1}); d != 0 {
		t.Errorf("Chebyshev = %d, want 0", d)
	}
}

func TestChunkHashStable(t *testing.T) {
	c := ChunkCoord{-3, 7}
	if c.Hash() != c.Hash() {
		t.Error("Hash must be stable for the same coordinate")
	}
	if (ChunkCoord{0, 1}).Hash() == (ChunkCoord{1, 0}).Hash() {
		t.Error("Hash must distinguish transposed coordinates")
	}
}

func TestChunkTiles(t *testing.T) {
	tiles := (ChunkCoord{0, 0}).Tiles(4)
	if len(tiles) != 16 {
		t.Fatalf("expected 16 tiles, got %d", len(tiles))
	}
	// Each tile maps back to the owning chunk: no tile belongs to two chunks
	for _, h := range tiles {
		if ChunkOf(h, 4) != (ChunkCoord{0, 0}) {
			t.Errorf("tile %+v does not map back to chunk (0,0)", h)
		}
	}

	negative := (ChunkCoord{-1, -1}).Tiles(4)
	for _, h := range negative {
		if ChunkOf(h, 4) != (ChunkCoord{-1, -1}) {
			t.Errorf("tile %+v does not map back to chunk (-1,-1)", h)
		}
	}
}
