package img

import (
	"math"
	"testing"
)

func TestDeltaKernelIsIdentity(t *testing.T) {
	src := NewGrid(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.Set(x, y, float64(x*y)+1.0)
		}
	}

	dst := src.NewFromThis()
	k := NewDeltaKernel(3, 3)
	if err := k.Convolve(dst, src, false, -1); err != nil {
		t.Fatalf("convolve: %v", err)
	}

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got, want := dst.Get(x, y), src.Get(x, y); got != want {
				t.Fatalf("delta kernel changed pixel (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestConvolveNormalizePreservesFlatField(t *testing.T) {
	src := NewGrid(10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			src.Set(x, y, 42.0)
		}
	}

	dst := src.NewFromThis()
	k := NewGaussianKernel(5, 5, 1.2)
	if err := k.Convolve(dst, src, true, -1); err != nil {
		t.Fatalf("convolve: %v", err)
	}

	// Normalized kernel on a flat field gives the flat field back,
	// including at the (edge-replicated) borders.
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if math.Abs(dst.Get(x, y)-42.0) > 1e-9 {
				t.Fatalf("flat field not preserved at (%d,%d): got %v", x, y, dst.Get(x, y))
			}
		}
	}
}

func TestConvolveDimensionMismatch(t *testing.T) {
	k := NewDeltaKernel(3, 3)
	if err := k.Convolve(NewGrid(4, 4), NewGrid(5, 5), false, -1); err == nil {
		t.Errorf("expected an error for mismatched dst/src sizes")
	}
}

func TestConvolveZeroSumNormalize(t *testing.T) {
	k := NewKernel(3, 3) // all zeros
	if err := k.Convolve(NewGrid(4, 4), NewGrid(4, 4), true, -1); err == nil {
		t.Errorf("expected an error normalizing a zero-sum kernel")
	}
}

func TestConvolveEdgeBit(t *testing.T) {
	src := NewGrid(7, 7)
	dst := src.NewFromThis()
	k := NewGaussianKernel(3, 3, 1.0)
	if err := k.Convolve(dst, src, true, 2); err != nil {
		t.Fatalf("convolve: %v", err)
	}

	// 3x3 kernel reaches 1 pixel out, so the outer ring is edge data
	if dst.Mask(0, 0)&(1<<2) == 0 {
		t.Errorf("corner pixel should carry the edge bit")
	}
	if dst.Mask(3, 0)&(1<<2) == 0 {
		t.Errorf("top-edge pixel should carry the edge bit")
	}
	if dst.Mask(3, 3)&(1<<2) != 0 {
		t.Errorf("interior pixel should not carry the edge bit")
	}
}

func TestConvolveFFTMatchesDirect(t *testing.T) {
	// Big enough kernel to trip the FFT path; compare against the
	// direct loop run explicitly.
	src := NewGrid(24, 20)
	for y := 0; y < 20; y++ {
		for x := 0; x < 24; x++ {
			src.Set(x, y, math.Sin(float64(x)*0.7)+math.Cos(float64(y)*0.3)+2.0)
		}
	}

	k := NewGaussianKernel(15, 15, 2.5)
	kn, err := k.Normalized()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	direct := src.NewFromThis()
	kn.convolveDirect(direct, src)

	viaFFT := src.NewFromThis()
	if err := k.Convolve(viaFFT, src, true, -1); err != nil {
		t.Fatalf("convolve: %v", err)
	}

	for y := 0; y < 20; y++ {
		for x := 0; x < 24; x++ {
			if diff := math.Abs(direct.Get(x, y) - viaFFT.Get(x, y)); diff > 1e-9 {
				t.Fatalf("FFT and direct disagree at (%d,%d) by %v", x, y, diff)
			}
		}
	}
}

func TestGaussianKernelShape(t *testing.T) {
	k := NewGaussianKernel(5, 5, 1.0)
	if k.At(2, 2) != 1.0 {
		t.Errorf("center weight: got %v, want 1.0", k.At(2, 2))
	}
	if k.At(0, 0) >= k.At(1, 1) || k.At(1, 1) >= k.At(2, 2) {
		t.Errorf("weights should fall off from the center")
	}
	// Symmetry
	if k.At(1, 2) != k.At(3, 2) || k.At(2, 1) != k.At(2, 3) {
		t.Errorf("gaussian kernel should be symmetric")
	}
}
