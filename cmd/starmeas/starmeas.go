package main

import(
	"flag"
	"log"
	"math/rand"

	"starphot/pkg/img"
	"starphot/pkg/phot"
)

var(
	fVerbosity  int
	fConfig     string
	fCentroider string
	fShaper     string
	fPsfType    string
	fNumStars   int
	fSeed       int64
	fDebugPng   bool
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fConfig, "config", "", "yaml config file to start from")
	flag.StringVar(&fCentroider, "centroider", "", "override the centroid algorithm name")
	flag.StringVar(&fShaper, "shaper", "", "override the shape algorithm name ('none' to skip)")
	flag.StringVar(&fPsfType, "psf", "", "override the PSF type name")
	flag.IntVar(&fNumStars, "stars", 20, "how many synthetic stars to drop on the test frame")
	flag.Int64Var(&fSeed, "seed", 1, "RNG seed for the synthetic frame")
	flag.BoolVar(&fDebugPng, "png", false, "dump the synthetic frame as a PNG")
	flag.Parse()

	log.Printf("starmeas starting\n")
}

func main() {
	cfg := phot.NewConfig()
	if fConfig != "" {
		var err error
		if cfg, err = phot.NewConfigFromYamlFile(fConfig); err != nil {
			log.Fatal(err)
		}
	}

	cfg.Verbosity = fVerbosity
	if fCentroider != "" { cfg.Centroider = fCentroider }
	if fShaper != "" {
		cfg.Shaper = fShaper
		if fShaper == "none" { cfg.Shaper = "" }
	}
	if fPsfType != "" { cfg.Psf.Type = fPsfType }

	if cfg.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", cfg.AsYaml())
		log.Printf("PSF types: %v\n", phot.DefaultPsfRegistry().Names())
		log.Printf("centroiders: %v\n", phot.DefaultCentroidRegistry().Names())
		log.Printf("shapers: %v\n", phot.DefaultShapeTypeRegistry().Names())
	}

	pass, err := phot.NewMeasurePass(cfg)
	if err != nil {
		log.Fatal(err)
	}

	// We need some PSF to paint stars with, even if the measurement
	// pass itself runs without one.
	psf := pass.Psf
	if psf == nil {
		psf = phot.NewDoubleGaussianPsf(0, 0, 1.5, 3.0, 0.1)
	}

	frame, sources := synthesizeFrame(psf, fNumStars, fSeed)
	if fDebugPng {
		if err := frame.ToImg("starmeas synthetic frame", "starmeas-frame.png"); err != nil {
			log.Printf("png dump failed: %v\n", err)
		}
	}

	for _, rec := range pass.Run(frame, sources) {
		log.Printf("%s\n", rec)
	}
}

// synthesizeFrame builds a flat-sky frame with some stars scattered on
// it, each star being the PSF rendered at a random subpixel position
// and scaled by a random flux. Returns the frame and the integer
// nominal positions a detector would have handed us.
func synthesizeFrame(psf phot.Psf, nStars int, seed int64) (*img.Grid, []phot.Source) {
	const w, h = 512, 512
	const sky = 100.0

	rng := rand.New(rand.NewSource(seed))

	frame := img.NewGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			frame.Set(x, y, sky)
		}
	}

	sources := make([]phot.Source, 0, nStars)
	for i := 0; i < nStars; i++ {
		sx := 20.0 + rng.Float64()*float64(w-40)
		sy := 20.0 + rng.Float64()*float64(h-40)
		flux := 500.0 + rng.Float64()*5000.0

		stamp := psf.Image(sx, sy)
		for j := 0; j < stamp.Dy(); j++ {
			for i2 := 0; i2 < stamp.Dx(); i2++ {
				x, y := stamp.X0()+i2, stamp.Y0()+j
				if x >= 0 && x < w && y >= 0 && y < h {
					frame.Set(x, y, frame.Get(x, y)+flux*stamp.Get(i2, j))
				}
			}
		}

		sources = append(sources, phot.Source{X: img.PositionToPixel(sx), Y: img.PositionToPixel(sy)})
	}

	return frame, sources
}
