package phot

import (
	"errors"
	"math"
	"testing"

	"starphot/pkg/img"
)

func TestPsfConvolveWithoutKernel(t *testing.T) {
	psf := &KernelPsf{} // no kernel installed

	dst, src := img.NewGrid(5, 5), img.NewGrid(5, 5)
	err := psf.Convolve(dst, src, true, -1)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("convolve without a kernel: want ErrInvalidState, got %v", err)
	}
}

func TestPsfConvolveZeroSizedKernel(t *testing.T) {
	psf := NewKernelPsf(img.NewKernel(0, 0))

	dst, src := img.NewGrid(5, 5), img.NewGrid(5, 5)
	if err := psf.Convolve(dst, src, true, -1); !errors.Is(err, ErrInvalidState) {
		t.Errorf("convolve with zero-sized kernel: want ErrInvalidState, got %v", err)
	}
}

func TestPsfConvolveRuns(t *testing.T) {
	psf := NewDoubleGaussianPsf(0, 0, 1.0, 2.0, 0.1)

	src := img.NewGrid(21, 21)
	src.Set(10, 10, 100.0)
	dst := src.NewFromThis()

	if err := psf.Convolve(dst, src, true, -1); err != nil {
		t.Fatalf("convolve: %v", err)
	}
	// Normalized convolution conserves the flux
	if math.Abs(dst.Sum()-100.0) > 1e-6 {
		t.Errorf("flux not conserved: got %v", dst.Sum())
	}
	if dst.Get(10, 10) <= dst.Get(10, 14) {
		t.Errorf("convolved point source should peak at the source")
	}
}

func TestDoubleGaussianValue(t *testing.T) {
	psf := NewDoubleGaussianPsf(0, 0, 1.5, 3.0, 0.1)

	peak := psf.Value(0, 0, 0, 0)
	if peak <= 0.0 {
		t.Fatalf("peak value should be positive, got %v", peak)
	}

	// Radially symmetric, monotonically falling
	if psf.Value(1, 0, 0, 0) != psf.Value(0, 1, 0, 0) {
		t.Errorf("value should be radially symmetric")
	}
	if psf.Value(1, 0, 0, 0) >= peak || psf.Value(2, 0, 0, 0) >= psf.Value(1, 0, 0, 0) {
		t.Errorf("value should fall off with radius")
	}

	// Field position should be ignored by this spatially constant PSF
	if psf.Value(1, 1, 0, 0) != psf.Value(1, 1, 1000, 1000) {
		t.Errorf("image position changed a constant PSF's value")
	}
}

func TestDoubleGaussianValueIntegratesToOne(t *testing.T) {
	psf := NewDoubleGaussianPsf(0, 0, 1.5, 3.0, 0.1)

	// Sum over a lattice comfortably bigger than the wings; pixel sum
	// approximates the continuum integral very well at these sigmas.
	sum := 0.0
	for y := -20; y <= 20; y++ {
		for x := -20; x <= 20; x++ {
			sum += psf.Value(float64(x), float64(y), 0, 0)
		}
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Errorf("PSF should be normalized: lattice sum %v", sum)
	}
}

func TestPsfImageUsesRealisationHint(t *testing.T) {
	psf := NewDoubleGaussianPsf(0, 0, 1.5, 3.0, 0.1)

	// Unset hint: variant default (odd, spans the wings)
	im := psf.Image(100.0, 100.0)
	if im.Dx() < 3 || im.Dx()%2 != 1 {
		t.Errorf("default realisation should be odd and at least 3, got %dx%d", im.Dx(), im.Dy())
	}

	psf.SetWidth(9)
	psf.SetHeight(7)
	im = psf.Image(100.0, 100.0)
	if im.Dx() != 9 || im.Dy() != 7 {
		t.Errorf("realisation hint ignored: got %dx%d, want 9x7", im.Dx(), im.Dy())
	}
	if w, h := psf.Dimensions(); w != 9 || h != 7 {
		t.Errorf("Dimensions: got (%d,%d), want (9,7)", w, h)
	}

	// The render should be centered on the requested position
	cx, cy := 0, 0
	best := -1.0
	for j := 0; j < im.Dy(); j++ {
		for i := 0; i < im.Dx(); i++ {
			if im.Get(i, j) > best {
				best, cx, cy = im.Get(i, j), im.X0()+i, im.Y0()+j
			}
		}
	}
	if cx != 100 || cy != 100 {
		t.Errorf("peak of rendered PSF at (%d,%d), want (100,100)", cx, cy)
	}
}

func TestKernelPsfValueReadsKernel(t *testing.T) {
	k := img.NewDeltaKernel(3, 3)
	psf := NewKernelPsf(k)

	if got := psf.Value(0, 0, 0, 0); got != 1.0 {
		t.Errorf("center of delta kernel: got %v, want 1", got)
	}
	if got := psf.Value(1, 0, 0, 0); got != 0.0 {
		t.Errorf("off-center of delta kernel: got %v, want 0", got)
	}
	if got := psf.Value(5, 5, 0, 0); got != 0.0 {
		t.Errorf("outside the stencil: got %v, want 0", got)
	}
}

func TestPsfSetKernelSharesOwnership(t *testing.T) {
	psf := NewKernelPsf(nil)
	k := img.NewGaussianKernel(5, 5, 1.0)
	psf.SetKernel(k)

	if psf.Kernel() != k {
		t.Errorf("Kernel should return the caller's kernel, not a copy")
	}

	// Mutations through either handle are visible in both
	k.Set(0, 0, 99.0)
	if psf.Kernel().At(0, 0) != 99.0 {
		t.Errorf("kernel is supposed to be shared, not copied")
	}
}
