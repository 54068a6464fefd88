package phot

import(
	"math"

	"gonum.org/v1/gonum/mat"

	"starphot/pkg/img"
)

// Type codes in the shape-type registry.
const(
	SdssShapeType = 1
)

// SdssShape measures adaptive second moments: it iterates an
// elliptical Gaussian weight until the weight matches the moments it
// measures, which for a Gaussian source recovers the source's own
// covariance. The trick in the update step is that a Gaussian source C
// measured under a Gaussian weight W gives moments M with
// M^-1 = C^-1 + W^-1, so each iteration solves that for C and adopts
// it as the next weight.
type SdssShape struct {
	MaxIter int
	Tol     float64
}

func NewSdssShape() MeasureShape {
	return &SdssShape{
		MaxIter: 100,
		Tol:     1e-6,
	}
}

func (ss *SdssShape)Apply(image *img.Grid, xcen, ycen float64, psf Psf, background float64) (*Shape, error) {
	// Starting weight: circular, seeing-ish. If we have a PSF image we
	// could do better, but the iteration converges from here anyway.
	wxx, wxy, wyy := 1.5, 0.0, 1.5
	flags := 0
	x0, y0 := xcen, ycen

	var m weightedMoments
	for iter := 0; iter < ss.MaxIter; iter++ {
		var err error
		m, err = measureWeighted(image, xcen, ycen, wxx, wxy, wyy, background)
		if err != nil {
			return nil, err
		}
		xcen, ycen = m.xcen, m.ycen

		// Solve M^-1 = C^-1 + W^-1 for the source moments C.
		cxx, cxy, cyy, ok := deconvolveWeight(m.mxx, m.mxy, m.myy, wxx, wxy, wyy)
		if !ok {
			// Weight can't shrink any further; keep the measured
			// moments as-is, unweighted-style.
			flags |= ShapeFlagUnweighted
			wxx, wxy, wyy = m.mxx, m.mxy, m.myy
			break
		}

		if math.Abs(cxx-wxx) < ss.Tol && math.Abs(cxy-wxy) < ss.Tol && math.Abs(cyy-wyy) < ss.Tol {
			wxx, wxy, wyy = cxx, cxy, cyy
			break
		}
		wxx, wxy, wyy = cxx, cxy, cyy

		if iter == ss.MaxIter-1 {
			flags |= ShapeFlagMaxIter
		}
	}

	// A centroid that wandered far from where we were pointed usually
	// means the weight latched onto a neighbour.
	const maxShift = 2.0
	if math.Hypot(xcen-x0, ycen-y0) > maxShift {
		flags |= ShapeFlagShift
	}

	shape := NewShape(m.m0, wxx, wxy, wyy, Centroid{X: xcen, Y: ycen})
	shape.Mxy4 = m.mxy4
	shape.Flags = flags
	shape.SetCovar(m.covar())
	return shape, nil
}

// weightedMoments holds one pass of Gaussian-weighted sums.
type weightedMoments struct {
	m0             float64 // sum of w*v
	xcen, ycen     float64 // weighted centroid, image coords
	mxx, mxy, myy  float64 // weighted second central moments
	mxy4           float64 // weighted <x^2 y^2>
	sumW, sumW2    float64
	varXX, varXY, varYY float64
}

// measureWeighted computes Gaussian-weighted moments about (xcen,ycen)
// with weight covariance (wxx,wxy,wyy), over a window out to 4 sigma
// (clipped to the grid).
func measureWeighted(image *img.Grid, xcen, ycen, wxx, wxy, wyy, background float64) (weightedMoments, error) {
	m := weightedMoments{}

	det := wxx*wyy - wxy*wxy
	if det <= 0.0 {
		return m, ErrInvalidState
	}
	ixx, ixy, iyy := wyy/det, -wxy/det, wxx/det

	sigma := math.Sqrt(math.Max(wxx, wyy))
	half := int(math.Ceil(4.0 * sigma))
	if half < 2 { half = 2 }

	cx := img.PositionToPixel(xcen) - image.X0()
	cy := img.PositionToPixel(ycen) - image.Y0()

	var sum, sumX, sumY, sumXX, sumXY, sumYY, sumX2Y2, sumW, sumW2 float64
	for y := cy - half; y <= cy+half; y++ {
		for x := cx - half; x <= cx+half; x++ {
			if !image.Contains(x, y) {
				continue
			}
			dx := img.PixelToPosition(x+image.X0()) - xcen
			dy := img.PixelToPosition(y+image.Y0()) - ycen

			w := math.Exp(-0.5 * (ixx*dx*dx + 2.0*ixy*dx*dy + iyy*dy*dy))
			v := image.Get(x, y) - background

			sum += w * v
			sumX += w * v * dx
			sumY += w * v * dy
			sumXX += w * v * dx * dx
			sumXY += w * v * dx * dy
			sumYY += w * v * dy * dy
			sumX2Y2 += w * v * dx * dx * dy * dy
			sumW += w
			sumW2 += w * w
		}
	}

	if sum == 0.0 {
		return m, NoCountsError{X: cx, Y: cy}
	}

	m.m0 = sum
	m.xcen = xcen + sumX/sum
	m.ycen = ycen + sumY/sum
	m.mxx = sumXX / sum
	m.mxy = sumXY / sum
	m.myy = sumYY / sum
	m.mxy4 = sumX2Y2 / sum
	m.sumW = sumW
	m.sumW2 = sumW2

	// First-order variance estimates assuming unit, uncorrelated pixel
	// noise: var(m0) = sum w^2, and the moments scale by 1/m0.
	m.varXX = sumW2 * m.mxx * m.mxx / (sum * sum)
	m.varXY = sumW2 * m.mxy * m.mxy / (sum * sum)
	m.varYY = sumW2 * m.myy * m.myy / (sum * sum)

	return m, nil
}

func (m weightedMoments)covar() *mat.SymDense {
	c := mat.NewSymDense(4, nil)
	c.SetSym(0, 0, m.sumW2)
	c.SetSym(1, 1, m.varXX)
	c.SetSym(2, 2, m.varXY)
	c.SetSym(3, 3, m.varYY)
	return c
}

// deconvolveWeight solves M^-1 = C^-1 + W^-1 for C. Fails (ok=false)
// when the measured moments aren't tighter than pure weight, i.e. the
// subtraction goes non-positive-definite.
func deconvolveWeight(mxx, mxy, myy, wxx, wxy, wyy float64) (float64, float64, float64, bool) {
	mdet := mxx*myy - mxy*mxy
	wdet := wxx*wyy - wxy*wxy
	if mdet <= 0.0 || wdet <= 0.0 {
		return 0, 0, 0, false
	}

	// M^-1 - W^-1, in place
	ixx := myy/mdet - wyy/wdet
	ixy := -mxy/mdet + wxy/wdet
	iyy := mxx/mdet - wxx/wdet

	idet := ixx*iyy - ixy*ixy
	if idet <= 0.0 || ixx <= 0.0 || iyy <= 0.0 {
		return 0, 0, 0, false
	}

	return iyy / idet, -ixy / idet, ixx / idet, true
}
