package phot

import(
	"starphot/pkg/img"
)

// A KernelPsf wraps a caller-supplied kernel: the PSF *is* the pixel
// stencil, with no analytic form behind it. Constructed via
// CreatePsfFromKernel("Kernel", k). Value reads the kernel weight
// nearest the requested offset, zero outside the stencil.
type KernelPsf struct {
	PsfBase
}

func NewKernelPsf(k *img.Kernel) *KernelPsf {
	p := &KernelPsf{}
	p.SetKernel(k)
	return p
}

func (p *KernelPsf)Value(dx, dy float64, _, _ int) float64 {
	k := p.Kernel()
	if k == nil {
		return 0.0
	}
	x := img.PositionToPixel(dx) + (k.Width()-1)/2
	y := img.PositionToPixel(dy) + (k.Height()-1)/2
	if x < 0 || x >= k.Width() || y < 0 || y >= k.Height() {
		return 0.0
	}
	return k.At(x, y)
}

func (p *KernelPsf)Image(x, y float64) *img.Grid {
	w, h := p.Dimensions()
	if k := p.Kernel(); k != nil && (w <= 0 || h <= 0) {
		w, h = k.Width(), k.Height()
	}
	if w <= 0 { w = 3 }
	if h <= 0 { h = 3 }
	return renderPsf(p, x, y, w, h)
}
