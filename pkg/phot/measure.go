package phot

import(
	"fmt"
	"log"
	"sync"

	"starphot/pkg/img"
)

// CreateMeasureShape is the algorithm-family factory for shape
// measurers: resolve the name to its type code, then build the matching
// implementation. Unknown names fail ErrNotFound out of the type
// registry; a registered code with no implementation here is a
// registration bug and also comes back ErrNotFound.
func CreateMeasureShape(name string) (MeasureShape, error) {
	code, err := LookupShapeType(name)
	if err != nil {
		return nil, err
	}

	switch code {
	case SdssShapeType:
		return NewSdssShape(), nil
	}
	return nil, fmt.Errorf("shape type '%s' (code %d) has no implementation: %w", name, code, ErrNotFound)
}

// A Source is a nominal detection position to be measured, in image
// coordinates.
type Source struct {
	X, Y int
}

// A SourceRecord is everything one measurement pass produced for one
// source. Each algorithm either filled in its value or left its error;
// there are no partial results within one algorithm.
type SourceRecord struct {
	Source      Source

	Centroid    Centroid
	CentroidErr error

	Shape       *Shape
	ShapeErr    error
}

func (r SourceRecord)String() string {
	str := fmt.Sprintf("src(%d,%d): ", r.Source.X, r.Source.Y)
	if r.CentroidErr != nil {
		str += fmt.Sprintf("centroid FAILED (%v)", r.CentroidErr)
	} else {
		str += fmt.Sprintf("centroid %s", r.Centroid)
	}
	if r.ShapeErr != nil {
		str += fmt.Sprintf("; shape FAILED (%v)", r.ShapeErr)
	} else if r.Shape != nil {
		str += fmt.Sprintf("; e1=%.4f e2=%.4f rms=%.3f", r.Shape.E1(), r.Shape.E2(), r.Shape.Rms())
	}
	return str
}

// A MeasurePass holds the resolved algorithms for measuring a batch of
// sources on one image. Build it once per Config; it is safe to Run
// from multiple goroutines since everything in it is read-only.
type MeasurePass struct {
	Cfg        Config
	Psf        Psf
	Centroider MeasureCentroid
	Shaper     MeasureShape  // nil means centroids only
}

func NewMeasurePass(cfg Config) (*MeasurePass, error) {
	psf, err := cfg.NewPsf()
	if err != nil {
		return nil, err
	}
	centroider, err := cfg.NewCentroider()
	if err != nil {
		return nil, err
	}
	shaper, err := cfg.NewShaper()
	if err != nil {
		return nil, err
	}

	return &MeasurePass{Cfg: cfg, Psf: psf, Centroider: centroider, Shaper: shaper}, nil
}

// Run measures every source. Sources are independent, so they fan out
// over a little worker pool; the image is only ever read.
func (mp *MeasurePass)Run(g *img.Grid, sources []Source) []SourceRecord {
	background := mp.Cfg.SkyLevel(g)
	if mp.Cfg.Verbosity > 0 {
		log.Printf("measure: %d sources on %s, sky %.3f\n", len(sources), g.Stats(), background)
	}

	nWorkers := mp.Cfg.Workers
	if nWorkers < 1 { nWorkers = 1 }
	if nWorkers > len(sources) { nWorkers = len(sources) }
	if nWorkers <= 1 {
		records := make([]SourceRecord, len(sources))
		for i, src := range sources {
			records[i] = mp.measureOne(g, src, background)
		}
		return records
	}

	type job struct {
		idx int
		src Source
	}

	var wg sync.WaitGroup
	jobsChan := make(chan job, len(sources))
	records := make([]SourceRecord, len(sources))

	for i := 0; i < nWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobsChan {
				// Each worker writes only its own slots, so no lock
				records[j.idx] = mp.measureOne(g, j.src, background)
			}
		}()
	}

	for i, src := range sources {
		jobsChan <- job{i, src}
	}
	close(jobsChan)
	wg.Wait()

	return records
}

func (mp *MeasurePass)measureOne(g *img.Grid, src Source, background float64) SourceRecord {
	rec := SourceRecord{Source: src}

	rec.Centroid, rec.CentroidErr = mp.Centroider.Apply(g, src.X, src.Y, mp.Psf, background)

	if mp.Shaper != nil {
		// Shape measurement starts from the measured centroid when we
		// got one, else from the nominal position.
		xcen := img.PixelToPosition(src.X)
		ycen := img.PixelToPosition(src.Y)
		if rec.CentroidErr == nil {
			xcen, ycen = rec.Centroid.X, rec.Centroid.Y
		}
		rec.Shape, rec.ShapeErr = mp.Shaper.Apply(g, xcen, ycen, mp.Psf, background)
	}

	return rec
}
