package phot

import(
	"starphot/pkg/img"
)

// NaiveCentroid computes a centroid as the unweighted first moment of
// the 3x3 block around the nominal pixel. Quick, crude, and exactly
// reproducible - it's the reference everything else gets checked
// against. Registered as "NAIVE". It never consults the PSF.
type NaiveCentroid struct{}

func NewNaiveCentroid() MeasureCentroid { return NaiveCentroid{} }

func (nc NaiveCentroid)Apply(image *img.Grid, x, y int, _ Psf, background float64) (Centroid, error) {
	// Work in the grid's local pixel indices
	x -= image.X0()
	y -= image.Y0()

	im := image.Window(x, y)

	sum :=
		(im.Get(-1,  1) + im.Get( 0,  1) + im.Get( 1,  1) +
		 im.Get(-1,  0) + im.Get( 0,  0) + im.Get( 1,  0) +
		 im.Get(-1, -1) + im.Get( 0, -1) + im.Get( 1, -1)) - 9*background

	if sum == 0.0 {
		return Centroid{}, NoCountsError{X: x, Y: y}
	}

	// The background cancels in the left/right and top/bottom
	// differences, so it isn't subtracted again here.
	sumX :=
		-im.Get(-1,  1) + im.Get( 1,  1) +
		-im.Get(-1,  0) + im.Get( 1,  0) +
		-im.Get(-1, -1) + im.Get( 1, -1)
	sumY :=
		(im.Get(-1,  1) + im.Get( 0,  1) + im.Get( 1,  1)) -
		(im.Get(-1, -1) + im.Get( 0, -1) + im.Get( 1, -1))

	return Centroid{
		X: img.PixelToPosition(x+image.X0()) + sumX/sum,
		Y: img.PixelToPosition(y+image.Y0()) + sumY/sum,
	}, nil
}
