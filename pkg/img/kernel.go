package img

import(
	"errors"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// A Kernel is a small stencil of weights, used to convolve an image -
// e.g. as the pixel realisation of a PSF. The center of an even-sized
// kernel is biased low, at ((w-1)/2, (h-1)/2).
type Kernel struct {
	weights *Grid
}

// Once a kernel covers this many pixels, the direct convolution loop
// loses to a pair of FFTs.
const fftKernelAreaMin = 225

func NewKernel(w, h int) *Kernel {
	return &Kernel{weights: NewGrid(w, h)}
}

// NewDeltaKernel is the identity kernel - all weight on the center pixel.
func NewDeltaKernel(w, h int) *Kernel {
	k := NewKernel(w, h)
	k.Set((w-1)/2, (h-1)/2, 1.0)
	return k
}

// NewGaussianKernel evaluates a circular Gaussian at each pixel center.
// It is not normalized; pass doNormalize to Convolve, or call Normalized.
func NewGaussianKernel(w, h int, sigma float64) *Kernel {
	return NewDoubleGaussianKernel(w, h, sigma, sigma, 0.0)
}

// NewDoubleGaussianKernel is a core Gaussian plus a wider wing
// Gaussian at relative amplitude b - the classic star profile.
func NewDoubleGaussianKernel(w, h int, sigma1, sigma2, b float64) *Kernel {
	k := NewKernel(w, h)
	cx, cy := (w-1)/2, (h-1)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r2 := float64((x-cx)*(x-cx) + (y-cy)*(y-cy))
			v := math.Exp(-r2 / (2.0 * sigma1 * sigma1))
			if b != 0.0 {
				v += b * math.Exp(-r2/(2.0*sigma2*sigma2))
			}
			k.Set(x, y, v)
		}
	}
	return k
}

func (k *Kernel)Width() int              { return k.weights.Dx() }
func (k *Kernel)Height() int             { return k.weights.Dy() }
func (k *Kernel)At(x, y int) float64     { return k.weights.Get(x, y) }
func (k *Kernel)Set(x, y int, v float64) { k.weights.Set(x, y, v) }
func (k *Kernel)Sum() float64            { return k.weights.Sum() }

// Image renders the kernel weights as a standalone grid.
func (k *Kernel)Image() *Grid {
	return k.weights.Copy()
}

func (k *Kernel)Normalized() (*Kernel, error) {
	sum := k.Sum()
	if sum == 0.0 {
		return nil, errors.New("kernel sums to zero, can't normalize")
	}
	k2 := &Kernel{weights: k.weights.Copy()}
	k2.weights.Scale(1.0 / sum)
	return k2, nil
}

// Convolve writes into dst the convolution of src with the kernel. dst
// and src must be the same size (dst keeps its own origin offset).
// Pixels near the border, where the kernel had to read edge-extended
// (clamped) source values, are marked in dst's mask plane with edgeBit
// when edgeBit is non-negative.
//
// Small kernels run a direct spatial loop; big ones go through FFTs.
// Both produce the same values, to floating point noise.
func (k *Kernel)Convolve(dst, src *Grid, doNormalize bool, edgeBit int) error {
	if dst.Dx() != src.Dx() || dst.Dy() != src.Dy() {
		return errors.New("convolve: dst and src dimensions differ")
	}

	kuse := k
	if doNormalize {
		k2, err := k.Normalized()
		if err != nil {
			return err
		}
		kuse = k2
	}

	if k.Width()*k.Height() >= fftKernelAreaMin {
		kuse.convolveFFT(dst, src)
	} else {
		kuse.convolveDirect(dst, src)
	}

	if edgeBit >= 0 {
		k.markEdges(dst, edgeBit)
	}
	return nil
}

// out(x,y) = sum_ij k(i,j) * src(x - (i-cx), y - (j-cy)), with source
// reads clamped to the grid.
func (k *Kernel)convolveDirect(dst, src *Grid) {
	w, h := src.Dx(), src.Dy()
	kw, kh := k.Width(), k.Height()
	cx, cy := (kw-1)/2, (kh-1)/2

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0.0
			for j := 0; j < kh; j++ {
				for i := 0; i < kw; i++ {
					sx := clampInt(x-(i-cx), 0, w-1)
					sy := clampInt(y-(j-cy), 0, h-1)
					sum += k.At(i, j) * src.Get(sx, sy)
				}
			}
			dst.Set(x, y, sum)
		}
	}
}

// Same semantics as convolveDirect: we build an explicitly
// edge-replicated copy of src, zero-pad it onto a power-of-two grid,
// multiply spectra, and take the "valid" crop of the full linear
// convolution. gonum's transforms are unnormalized, so the inverse pass
// picks up a factor of FH*FW.
func (k *Kernel)convolveFFT(dst, src *Grid) {
	w, h := src.Dx(), src.Dy()
	kw, kh := k.Width(), k.Height()
	cx, cy := (kw-1)/2, (kh-1)/2

	// E[yy][xx] = src(xx - L, yy - T) clamped, where L/T are how far
	// the kernel reaches left/up.
	lpad, tpad := kw-1-cx, kh-1-cy
	ew, eh := w+kw-1, h+kh-1

	fw := nextPow2(ew + kw - 1)
	fh := nextPow2(eh + kh - 1)

	a := make([]complex128, fw*fh)
	b := make([]complex128, fw*fh)
	for yy := 0; yy < eh; yy++ {
		for xx := 0; xx < ew; xx++ {
			sx := clampInt(xx-lpad, 0, w-1)
			sy := clampInt(yy-tpad, 0, h-1)
			a[yy*fw+xx] = complex(src.Get(sx, sy), 0)
		}
	}
	for j := 0; j < kh; j++ {
		for i := 0; i < kw; i++ {
			b[j*fw+i] = complex(k.At(i, j), 0)
		}
	}

	fft2(a, fw, fh, true)
	fft2(b, fw, fh, true)
	for i := range a {
		a[i] *= b[i]
	}
	fft2(a, fw, fh, false)

	scale := float64(fw * fh)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(x, y, real(a[(y+kh-1)*fw+(x+kw-1)])/scale)
		}
	}
}

// fft2 runs an in-place 2d transform, rows then columns.
func fft2(a []complex128, w, h int, forward bool) {
	rowFFT := fourier.NewCmplxFFT(w)
	colFFT := fourier.NewCmplxFFT(h)

	for y := 0; y < h; y++ {
		row := a[y*w : (y+1)*w]
		if forward {
			rowFFT.Coefficients(row, row)
		} else {
			rowFFT.Sequence(row, row)
		}
	}

	col := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = a[y*w+x]
		}
		if forward {
			colFFT.Coefficients(col, col)
		} else {
			colFFT.Sequence(col, col)
		}
		for y := 0; y < h; y++ {
			a[y*w+x] = col[y]
		}
	}
}

func (k *Kernel)markEdges(dst *Grid, edgeBit int) {
	w, h := dst.Dx(), dst.Dy()
	kw, kh := k.Width(), k.Height()
	cx, cy := (kw-1)/2, (kh-1)/2

	// A pixel is edge-extended if the kernel read off-grid there.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < kw-1-cx || x > w-1-cx || y < kh-1-cy || y > h-1-cy {
				dst.OrMask(x, y, 1<<uint(edgeBit))
			}
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo { return lo }
	if v > hi { return hi }
	return v
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
