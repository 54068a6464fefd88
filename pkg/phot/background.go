package phot

import(
	"log"
	"math"

	"github.com/skypies/util/histogram"

	"starphot/pkg/img"
)

// EstimateBackground guesses the sky level of a grid as a
// sigma-clipped mean: take the mean and spread of everything, throw
// out pixels more than nSigma out (the stars), repeat a few times.
// Callers feed the result into MeasureCentroid/MeasureShape Apply as
// the background argument.
func EstimateBackground(g *img.Grid, verbosity int) float64 {
	const nSigma = 3.0
	const rounds = 4

	mean, sd := meanStddev(g, math.Inf(-1), math.Inf(1))
	for i := 0; i < rounds; i++ {
		lo, hi := mean-nSigma*sd, mean+nSigma*sd
		mean, sd = meanStddev(g, lo, hi)
		if sd == 0.0 {
			break
		}
	}

	if verbosity > 1 {
		logPixelHistogram(g)
	}

	return mean
}

func meanStddev(g *img.Grid, lo, hi float64) (float64, float64) {
	sum, sum2, n := 0.0, 0.0, 0
	for y := 0; y < g.Dy(); y++ {
		for x := 0; x < g.Dx(); x++ {
			v := g.Get(x, y)
			if v < lo || v > hi {
				continue
			}
			sum += v
			sum2 += v * v
			n++
		}
	}
	if n == 0 {
		return 0.0, 0.0
	}

	mean := sum / float64(n)
	variance := sum2/float64(n) - mean*mean
	if variance < 0.0 { variance = 0.0 }
	return mean, math.Sqrt(variance)
}

// logPixelHistogram dumps the pixel distribution, bucketed across the
// grid's value range, for eyeballing whether the clip converged on the
// sky or got dragged around by a bright object.
func logPixelHistogram(g *img.Grid) {
	min, max := g.MinMax()
	if max <= min {
		return
	}

	hist := histogram.Histogram{NumBuckets: 64, ValMin: 0, ValMax: 64}
	scale := 64.0 / (max - min)
	for y := 0; y < g.Dy(); y++ {
		for x := 0; x < g.Dx(); x++ {
			hist.Add(histogram.ScalarVal(int((g.Get(x, y) - min) * scale)))
		}
	}

	log.Printf("background: pixel distribution %s: %v\n", g.Stats(), hist)
}
