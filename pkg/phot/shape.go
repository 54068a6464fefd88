package phot

import(
	"fmt"
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"

	"starphot/pkg/img"
)

// Processing flags a shape measurer can set on its result.
const(
	ShapeFlagShift      = 1 << iota // centroid moved a suspicious distance during iteration
	ShapeFlagMaxIter                // adaptive moments hit the iteration cap without converging
	ShapeFlagUnweighted             // fell back to unweighted moments
)

// A Shape is the weighted-moment description of a source: zeroth
// moment (a flux-ish normalization), second central moments, the
// fourth moment used for shear calibration, and a 4x4 covariance over
// (m0, mxx, mxy, myy).
//
// Ellipticity, rms size and their errors are derived on demand, never
// stored. When mxx+myy == 0 they come out NaN - undefined, but not an
// error.
type Shape struct {
	Centroid Centroid // position co-measured with the moments
	M0       float64
	Mxx      float64
	Mxy      float64
	Myy      float64
	Mxy4     float64
	Flags    int

	covar *mat.SymDense // 4x4, lazily nil == all zeros
}

func NewShape(m0, mxx, mxy, myy float64, centroid Centroid) *Shape {
	return &Shape{
		Centroid: centroid,
		M0:       m0,
		Mxx:      mxx,
		Mxy:      mxy,
		Myy:      myy,
		Mxy4:     math.NaN(),
	}
}

// SetCovar installs the (m0, mxx, mxy, myy) covariance. Symmetric by
// type; the diagonal entries are the individual variances and must be
// non-negative.
func (s *Shape)SetCovar(covar *mat.SymDense) { s.covar = covar }

func (s *Shape)Covar() *mat.SymDense {
	if s.covar == nil {
		return mat.NewSymDense(4, nil)
	}
	return s.covar
}

func (s *Shape)covarAt(i, j int) float64 {
	if s.covar == nil { return 0.0 }
	return s.covar.At(i, j)
}

// Variance getters, straight off the covariance diagonal.
func (s *Shape)M0Err() float64  { return s.covarAt(0, 0) }
func (s *Shape)MxxErr() float64 { return s.covarAt(1, 1) }
func (s *Shape)MxyErr() float64 { return s.covarAt(2, 2) }
func (s *Shape)MyyErr() float64 { return s.covarAt(3, 3) }

// E1 is the plus-component ellipticity, (mxx-myy)/(mxx+myy).
func (s *Shape)E1() float64 {
	return (s.Mxx - s.Myy) / (s.Mxx + s.Myy)
}

// E2 is the cross-component ellipticity, 2*mxy/(mxx+myy).
func (s *Shape)E2() float64 {
	return 2.0 * s.Mxy / (s.Mxx + s.Myy)
}

// Rms is the root-mean-square size, sqrt(mxx+myy).
func (s *Shape)Rms() float64 {
	return math.Sqrt(s.Mxx + s.Myy)
}

// The errors on the derived quantities come from first-order
// propagation: err^2 = grad . covar . grad, where grad holds the
// partials with respect to (m0, mxx, mxy, myy). m0 never appears in
// the formulas, so its partial is always zero.

func (s *Shape)E1Err() float64 {
	return s.propagate(s.e1Grad())
}

func (s *Shape)E2Err() float64 {
	return s.propagate(s.e2Grad())
}

// E1E2Err is the correlation term between the two ellipticity
// components, signed - so it is grad1 . covar . grad2, with the sign
// preserved through the final sqrt.
func (s *Shape)E1E2Err() float64 {
	g1 := s.e1Grad()
	g2 := s.e2Grad()
	v := 0.0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			v += g1.AtVec(i) * s.covarAt(i, j) * g2.AtVec(j)
		}
	}
	return math.Copysign(math.Sqrt(math.Abs(v)), v)
}

func (s *Shape)RmsErr() float64 {
	t := s.Mxx + s.Myy
	d := 0.5 / math.Sqrt(t)
	return s.propagate(mat.NewVecDense(4, []float64{0, d, 0, d}))
}

func (s *Shape)e1Grad() *mat.VecDense {
	t := s.Mxx + s.Myy
	t2 := t * t
	return mat.NewVecDense(4, []float64{
		0,
		2.0 * s.Myy / t2,
		0,
		-2.0 * s.Mxx / t2,
	})
}

func (s *Shape)e2Grad() *mat.VecDense {
	t := s.Mxx + s.Myy
	t2 := t * t
	return mat.NewVecDense(4, []float64{
		0,
		-2.0 * s.Mxy / t2,
		2.0 / t,
		-2.0 * s.Mxy / t2,
	})
}

func (s *Shape)propagate(grad *mat.VecDense) float64 {
	if s.covar == nil {
		// Zero covariance means exactly zero error, even when mxx+myy
		// is zero and the partials have gone NaN.
		return 0.0
	}
	return math.Sqrt(mat.Inner(grad, s.covar, grad))
}

func (s *Shape)String() string {
	return fmt.Sprintf("Shape[%s m0=%g mxx=%g mxy=%g myy=%g e1=%g e2=%g rms=%g flags=%#x]",
		s.Centroid, s.M0, s.Mxx, s.Mxy, s.Myy, s.E1(), s.E2(), s.Rms(), s.Flags)
}

// A MeasureShape computes a Shape at a nominal center. Same argument
// semantics as MeasureCentroid, same all-or-nothing result policy.
type MeasureShape interface {
	Apply(image *img.Grid, xcen, ycen float64, psf Psf, background float64) (*Shape, error)
}

// Shape algorithms get a name -> opaque integer type code registry,
// rather than name -> factory: variants may share a type-code space
// even when they are built through different paths (an algorithm
// family factory elsewhere owns instantiation). Same first-wins,
// ErrNotFound discipline as everything else.
type ShapeTypeRegistry struct {
	mu    sync.RWMutex
	types map[string]int
}

func NewShapeTypeRegistry() *ShapeTypeRegistry {
	return &ShapeTypeRegistry{types: map[string]int{}}
}

func (r *ShapeTypeRegistry)Register(name string, code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[name]; exists {
		return
	}
	r.types[name] = code
}

func (r *ShapeTypeRegistry)Lookup(name string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, exists := r.types[name]
	if !exists {
		return 0, fmt.Errorf("no shape algorithm named '%s': %w", name, ErrNotFound)
	}
	return code, nil
}

func (r *ShapeTypeRegistry)Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset empties the registry. For tests.
func (r *ShapeTypeRegistry)Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = map[string]int{}
}

var shapeTypeRegistry = NewShapeTypeRegistry()

func DefaultShapeTypeRegistry() *ShapeTypeRegistry { return shapeTypeRegistry }

func RegisterShapeType(name string, code int)  { shapeTypeRegistry.Register(name, code) }
func LookupShapeType(name string) (int, error) { return shapeTypeRegistry.Lookup(name) }
