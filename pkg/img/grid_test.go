package img

import (
	"testing"
)

func TestGridSetGet(t *testing.T) {
	g := NewGrid(4, 3)
	if g.Dx() != 4 || g.Dy() != 3 {
		t.Fatalf("dims: got %dx%d, want 4x3", g.Dx(), g.Dy())
	}

	g.Set(2, 1, 7.5)
	if got := g.Get(2, 1); got != 7.5 {
		t.Errorf("Get(2,1): got %v, want 7.5", got)
	}
	if got := g.Get(1, 2); got != 0.0 {
		t.Errorf("Get(1,2): got %v, want 0", got)
	}
}

func TestGridOrigin(t *testing.T) {
	g := NewGridAt(5, 5, 100, 200)
	if g.X0() != 100 || g.Y0() != 200 {
		t.Errorf("origin: got (%d,%d), want (100,200)", g.X0(), g.Y0())
	}

	g2 := g.Copy()
	if g2.X0() != 100 || g2.Y0() != 200 {
		t.Errorf("copy lost the origin: got (%d,%d)", g2.X0(), g2.Y0())
	}
}

func TestGridWindow(t *testing.T) {
	g := NewGrid(3, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			g.Set(x, y, float64(10*y+x))
		}
	}

	w := g.Window(1, 1)
	tests := []struct {
		dx, dy int
		want   float64
	}{
		{0, 0, 11},
		{-1, -1, 0},
		{1, -1, 2},
		{-1, 1, 20},
		{1, 1, 22},
	}
	for _, tt := range tests {
		if got := w.Get(tt.dx, tt.dy); got != tt.want {
			t.Errorf("window.Get(%d,%d): got %v, want %v", tt.dx, tt.dy, got, tt.want)
		}
	}
}

func TestGridCopyIsIndependent(t *testing.T) {
	g := NewGrid(2, 2)
	g.Set(0, 0, 1.0)
	g2 := g.Copy()
	g2.Set(0, 0, 9.0)
	if g.Get(0, 0) != 1.0 {
		t.Errorf("copy aliases the original")
	}
}

func TestGridMask(t *testing.T) {
	g := NewGrid(3, 3)
	if g.Mask(1, 1) != 0 {
		t.Errorf("unset mask should read 0")
	}
	g.OrMask(1, 1, 0x4)
	g.OrMask(1, 1, 0x1)
	if got := g.Mask(1, 1); got != 0x5 {
		t.Errorf("mask: got %#x, want 0x5", got)
	}
	if g.Mask(0, 0) != 0 {
		t.Errorf("mask bled to other pixels")
	}
}

func TestGridMinMaxSum(t *testing.T) {
	g := NewGrid(2, 2)
	g.Set(0, 0, -2.0)
	g.Set(1, 1, 5.0)
	min, max := g.MinMax()
	if min != -2.0 || max != 5.0 {
		t.Errorf("minmax: got (%v,%v), want (-2,5)", min, max)
	}
	if got := g.Sum(); got != 3.0 {
		t.Errorf("sum: got %v, want 3", got)
	}
}

func TestPixelToPosition(t *testing.T) {
	if got := PixelToPosition(7); got != 7.0 {
		t.Errorf("PixelToPosition(7): got %v, want 7.0", got)
	}
	if got := PositionToPixel(7.4); got != 7 {
		t.Errorf("PositionToPixel(7.4): got %d, want 7", got)
	}
	if got := PositionToPixel(7.6); got != 8 {
		t.Errorf("PositionToPixel(7.6): got %d, want 8", got)
	}
	if got := PositionToPixel(-0.4); got != 0 {
		t.Errorf("PositionToPixel(-0.4): got %d, want 0", got)
	}
	// Round-trip for all the positions measurements actually produce
	for i := -3; i <= 3; i++ {
		if got := PositionToPixel(PixelToPosition(i)); got != i {
			t.Errorf("round trip %d: got %d", i, got)
		}
	}
}
