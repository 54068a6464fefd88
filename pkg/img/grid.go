package img

import(
	"fmt"
	"math"
)

// A Grid is a single-channel raster of float64 pixel values, plus an
// origin offset. The offset lets a Grid be a cutout of some larger
// frame while still being addressed in the parent frame's coordinates
// - e.g. a postage stamp cut from a full CCD exposure.
//
// Pixel (x,y) in parent coords lives at local index (x-x0, y-y0).
type Grid struct {
	stride int
	x0, y0 int
	values []float64
	mask   []int // allocated lazily, only if someone sets a mask bit
}

func NewGrid(w, h int) *Grid {
	return &Grid{
		stride: w,
		values: make([]float64, w*h),
	}
}

// NewGridAt makes a grid whose pixel (x0,y0) is the local origin.
func NewGridAt(w, h, x0, y0 int) *Grid {
	g := NewGrid(w, h)
	g.x0, g.y0 = x0, y0
	return g
}

func (g *Grid)Dx() int { return g.stride }

func (g *Grid)Dy() int {
	if g.stride == 0 { return 0 }
	return len(g.values) / g.stride
}
func (g *Grid)X0() int                  { return g.x0 }
func (g *Grid)Y0() int                  { return g.y0 }
func (g *Grid)Set(x, y int, v float64)  { g.values[g.stride*y + x] = v }
func (g *Grid)Get(x, y int) float64     { return g.values[g.stride*y + x] }

// Contains reports whether local index (x,y) is on the grid.
func (g *Grid)Contains(x, y int) bool {
	return x >= 0 && x < g.Dx() && y >= 0 && y < g.Dy()
}

func (g1 *Grid)NewFromThis() *Grid {
	g2 := NewGrid(g1.Dx(), g1.Dy())
	g2.x0, g2.y0 = g1.x0, g1.y0
	return g2
}

func (g1 *Grid)Copy() *Grid {
	g2 := g1.NewFromThis()
	copy(g2.values, g1.values)
	if g1.mask != nil {
		g2.mask = make([]int, len(g1.mask))
		copy(g2.mask, g1.mask)
	}
	return g2
}

// OrMask sets bits in the (lazily allocated) mask plane at local (x,y).
func (g *Grid)OrMask(x, y, bits int) {
	if g.mask == nil {
		g.mask = make([]int, len(g.values))
	}
	g.mask[g.stride*y + x] |= bits
}

func (g *Grid)Mask(x, y int) int {
	if g.mask == nil { return 0 }
	return g.mask[g.stride*y + x]
}

// A Window is a view onto the grid centered at some local pixel, for
// reading neighborhoods by signed relative offset. Window(x,y).Get(-1,1)
// is the pixel up and to the left. No bounds checking; the caller is
// expected to know its window fits, just as with Get/Set.
type Window struct {
	g    *Grid
	x, y int
}

func (g *Grid)Window(x, y int) Window          { return Window{g, x, y} }
func (w Window)Get(dx, dy int) float64         { return w.g.Get(w.x+dx, w.y+dy) }

func (g *Grid)Sum() float64 {
	sum := 0.0
	for _, v := range g.values {
		sum += v
	}
	return sum
}

func (g *Grid)Scale(f float64) {
	for i := range g.values {
		g.values[i] *= f
	}
}

func (g *Grid)MinMax() (float64, float64) {
	min := math.MaxFloat64
	max := -1.0 * min
	for _, v := range g.values {
		if v > max { max = v }
		if v < min { min = v }
	}
	return min, max
}

func (g *Grid)Stats() string {
	min, max := g.MinMax()
	return fmt.Sprintf("grid[%dx%d @(%d,%d), vals{%f,%f}]", g.Dx(), g.Dy(), g.x0, g.y0, min, max)
}
