package phot

import(
	"math"

	"starphot/pkg/img"
)

// A DoubleGaussianPsf models a star profile as a narrow core Gaussian
// plus a wide, faint wing Gaussian - a decent stand-in for real seeing
// without going full Moffat. Constructed positionally:
//
//	CreatePsf("DoubleGaussian", w, h, sigma1, sigma2, b)
//
// where sigma1 is the core width, sigma2 the wing width, and b the
// wing amplitude relative to the core. It is spatially constant, so it
// ignores the image-position args to Value.
type DoubleGaussianPsf struct {
	PsfBase
	sigma1, sigma2, b float64
}

func NewDoubleGaussianPsf(width, height int, sigma1, sigma2, b float64) *DoubleGaussianPsf {
	p := &DoubleGaussianPsf{
		sigma1: sigma1,
		sigma2: sigma2,
		b:      b,
	}
	p.SetWidth(width)
	p.SetHeight(height)
	p.SetKernel(img.NewDoubleGaussianKernel(p.defaultDim(), p.defaultDim(), sigma1, sigma2, b))
	return p
}

// Value is normalized so the two Gaussians integrate (roughly, on the
// pixel lattice: exactly, in the continuum) to 1.
func (p *DoubleGaussianPsf)Value(dx, dy float64, _, _ int) float64 {
	r2 := dx*dx + dy*dy
	core := math.Exp(-r2 / (2.0 * p.sigma1 * p.sigma1))
	wing := math.Exp(-r2 / (2.0 * p.sigma2 * p.sigma2))

	norm := 2.0 * math.Pi * (p.sigma1*p.sigma1 + p.b*p.sigma2*p.sigma2)
	return (core + p.b*wing) / norm
}

func (p *DoubleGaussianPsf)Image(x, y float64) *img.Grid {
	w, h := p.Dimensions()
	if w <= 0 { w = p.defaultDim() }
	if h <= 0 { h = p.defaultDim() }
	return renderPsf(p, x, y, w, h)
}

// defaultDim spans +/- 4 wing sigma, which catches essentially all the
// flux; and keeps the span odd, so the center is a pixel center.
func (p *DoubleGaussianPsf)defaultDim() int {
	sigma := p.sigma2
	if p.sigma1 > sigma { sigma = p.sigma1 }
	d := 2*int(math.Ceil(4.0*sigma)) + 1
	if d < 3 { d = 3 }
	return d
}
