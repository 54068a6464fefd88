package phot

import(
	"starphot/pkg/img"
)

// A Psf describes an image's point spread function - what a point
// source looks like by the time the optics and atmosphere are done
// with it. Measurement algorithms consult it to weight their moments.
//
// A Psf is constructed once (via the registry, see registry.go) and
// then treated as shared read-only by every measurement that consults
// it. The one exception is the width/height realisation hint, which is
// just a cached preference for how big Image's output should be -
// single writer, no promises if you race it against Image.
type Psf interface {
	// Value evaluates the PSF's normalized amplitude at an offset
	// (dx,dy) from its center. The image position args let spatially
	// varying PSFs know where in the field they are; fixed PSFs ignore
	// them.
	Value(dx, dy float64, xPositionInImage, yPositionInImage int) float64

	// Image renders the PSF centered near position (x,y), sized by the
	// realisation hint, or by a variant-specific default if the hint
	// was never set.
	Image(x, y float64) *img.Grid

	// Convolve runs src through the PSF's kernel into dst. Fails with
	// ErrInvalidState if there is no usable kernel.
	Convolve(dst, src *img.Grid, doNormalize bool, edgeBit int) error

	Kernel() *img.Kernel
	SetKernel(k *img.Kernel)

	Width() int
	Height() int
	SetWidth(w int)
	SetHeight(h int)
	Dimensions() (int, int)
}

// PsfBase carries the state every PSF variant shares: the (optional)
// backing kernel, and the realisation size hint. Variants embed it and
// add their own Value/Image.
type PsfBase struct {
	kernel        *img.Kernel
	width, height int
}

func (p *PsfBase)Kernel() *img.Kernel      { return p.kernel }
func (p *PsfBase)SetKernel(k *img.Kernel)  { p.kernel = k }
func (p *PsfBase)Width() int               { return p.width }
func (p *PsfBase)Height() int              { return p.height }
func (p *PsfBase)SetWidth(w int)           { p.width = w }
func (p *PsfBase)SetHeight(h int)          { p.height = h }
func (p *PsfBase)Dimensions() (int, int)   { return p.width, p.height }

func (p *PsfBase)Convolve(dst, src *img.Grid, doNormalize bool, edgeBit int) error {
	k := p.kernel
	if k == nil || k.Width() <= 0 || k.Height() <= 0 {
		return ErrInvalidState
	}
	return k.Convolve(dst, src, doNormalize, edgeBit)
}

// renderPsf is the shared Image implementation: evaluate the variant's
// Value over a (w x h) grid whose origin is placed so the PSF center
// lands on the pixel nearest (x,y).
func renderPsf(p Psf, x, y float64, w, h int) *img.Grid {
	cx := img.PositionToPixel(x)
	cy := img.PositionToPixel(y)
	g := img.NewGridAt(w, h, cx-(w-1)/2, cy-(h-1)/2)

	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			dx := float64(g.X0()+i) - x
			dy := float64(g.Y0()+j) - y
			g.Set(i, j, p.Value(dx, dy, cx, cy))
		}
	}
	return g
}
