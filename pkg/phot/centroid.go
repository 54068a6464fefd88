package phot

import(
	"fmt"
	"sort"
	"sync"

	"starphot/pkg/img"
)

// A Centroid is a measured source position, in image coordinates (not
// necessarily on a pixel center). Pure value; produce it and pass it
// around by copy.
type Centroid struct {
	X, Y float64
}

func (c Centroid)String() string {
	return fmt.Sprintf("(%.3f, %.3f)", c.X, c.Y)
}

// A MeasureCentroid estimates where a source actually is, given a
// nominal pixel position. (x,y) is in the image's own coordinate frame
// (i.e. already includes the grid's origin offset). psf may be nil for
// algorithms that don't consult one; background is the local sky level
// to subtract before computing moments.
//
// Apply either returns a fully populated Centroid or an error - there
// is no degraded partial result.
type MeasureCentroid interface {
	Apply(image *img.Grid, x, y int, psf Psf, background float64) (Centroid, error)
}

// Concrete centroiders register a constructor under a case-sensitive
// name; callers instantiate by name with CreateMeasureCentroid. Same
// rules as the PSF registry: first registration of a name wins,
// unknown names fail ErrNotFound.
type CentroidRegistry struct {
	mu        sync.RWMutex
	factories map[string]func() MeasureCentroid
}

func NewCentroidRegistry() *CentroidRegistry {
	return &CentroidRegistry{factories: map[string]func() MeasureCentroid{}}
}

func (r *CentroidRegistry)Declare(name string, factory func() MeasureCentroid) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return
	}
	r.factories[name] = factory
}

func (r *CentroidRegistry)Lookup(name string) (func() MeasureCentroid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("no centroid algorithm named '%s': %w", name, ErrNotFound)
	}
	return f, nil
}

func (r *CentroidRegistry)Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset empties the registry. For tests.
func (r *CentroidRegistry)Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = map[string]func() MeasureCentroid{}
}

var centroidRegistry = NewCentroidRegistry()

func DefaultCentroidRegistry() *CentroidRegistry { return centroidRegistry }

func RegisterCentroider(name string, factory func() MeasureCentroid) {
	centroidRegistry.Declare(name, factory)
}

// CreateMeasureCentroid instantiates a registered centroid algorithm
// by name.
func CreateMeasureCentroid(name string) (MeasureCentroid, error) {
	f, err := centroidRegistry.Lookup(name)
	if err != nil {
		return nil, err
	}
	return f(), nil
}
