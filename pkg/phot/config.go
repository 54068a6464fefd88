package phot

import(
	"fmt"
	"io/ioutil"
	"log"

	"gopkg.in/yaml.v2"

	"starphot/pkg/img"
)

// Config names which algorithms a measurement pass runs, and how to
// build the PSF they consult. Everything is resolved through the
// registries at pass construction time, so an unknown name surfaces as
// ErrNotFound rather than a mystery later.
type Config struct {
	Verbosity   int

	Centroider  string  // name in the centroid registry, e.g. "NAIVE"
	Shaper      string  // name in the shape-type registry, e.g. "SDSS"; empty to skip shapes

	Psf         PsfConfig

	// When true, ignore the Background field and estimate the sky from
	// the image itself.
	EstimateSky bool
	Background  float64

	Workers     int  // goroutines for the measurement pass; <=1 means serial
}

type PsfConfig struct {
	Type           string      // name in the PSF registry; empty to run without a PSF
	Width, Height  int         // realisation hint; 0,0 accepts the variant default
	Params         [3]float64  // positional params (p0, p1, p2)
}

func NewConfig() Config {
	return Config{
		Centroider: "NAIVE",
		Shaper:     "SDSS",
		Psf: PsfConfig{
			Type:   "DoubleGaussian",
			Params: [3]float64{1.5, 3.0, 0.1},
		},
		EstimateSky: true,
		Workers:     8,
	}
}

func NewConfigFromYamlFile(filename string) (Config, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config read %s: %v", filename, err)
	}
	return NewConfigFromYaml(contents)
}

func NewConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Fatalf("can't marshal config yaml: %v\n", err)
	}
	return string(b)
}

// NewPsf builds the configured PSF, or (nil, nil) if none configured -
// simple algorithms like NAIVE don't need one.
func (c Config)NewPsf() (Psf, error) {
	if c.Psf.Type == "" {
		return nil, nil
	}
	return CreatePsf(c.Psf.Type, c.Psf.Width, c.Psf.Height,
		c.Psf.Params[0], c.Psf.Params[1], c.Psf.Params[2])
}

func (c Config)NewCentroider() (MeasureCentroid, error) {
	return CreateMeasureCentroid(c.Centroider)
}

func (c Config)NewShaper() (MeasureShape, error) {
	if c.Shaper == "" {
		return nil, nil
	}
	return CreateMeasureShape(c.Shaper)
}

func (c Config)SkyLevel(g *img.Grid) float64 {
	if c.EstimateSky {
		return EstimateBackground(g, c.Verbosity)
	}
	return c.Background
}
