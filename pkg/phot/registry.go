package phot

import(
	"fmt"
	"sort"
	"sync"

	"starphot/pkg/img"
)

// PSF variants are built by name through a registry, so independently
// written variants can be selected at runtime without the caller
// linking against their concrete types.
//
// A PsfFactory supports exactly one of the two constructor signatures:
// positional (width, height, three shape params) or kernel-backed.
// Whichever field is nil is a deliberate mismatch detector - invoking
// it fails with ErrUnsupported rather than quietly building the wrong
// thing.
type PsfFactory struct {
	Positional func(width, height int, p0, p1, p2 float64) Psf
	FromKernel func(k *img.Kernel) Psf
}

func (f PsfFactory)Create(width, height int, p0, p1, p2 float64) (Psf, error) {
	if f.Positional == nil {
		return nil, fmt.Errorf("this PSF type doesn't have a (width, height, p0, p1, p2) constructor: %w", ErrUnsupported)
	}
	return f.Positional(width, height, p0, p1, p2), nil
}

func (f PsfFactory)CreateFromKernel(k *img.Kernel) (Psf, error) {
	if f.FromKernel == nil {
		return nil, fmt.Errorf("this PSF type doesn't have a kernel constructor: %w", ErrUnsupported)
	}
	return f.FromKernel(k), nil
}

// A PsfRegistry maps case-sensitive names to factories. Registries are
// populated during init and read-only afterwards; the lock is there so
// a racing first-time Declare still honors first-registration-wins.
type PsfRegistry struct {
	mu        sync.RWMutex
	factories map[string]PsfFactory
}

func NewPsfRegistry() *PsfRegistry {
	return &PsfRegistry{factories: map[string]PsfFactory{}}
}

// Declare binds a name to a factory. The first registration wins;
// re-declaring a bound name is a no-op, so registration code can run
// any number of times without clobbering anything.
func (r *PsfRegistry)Declare(name string, factory PsfFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return
	}
	r.factories[name] = factory
}

// Lookup returns the factory bound to name, or ErrNotFound.
func (r *PsfRegistry)Lookup(name string) (PsfFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, exists := r.factories[name]
	if !exists {
		return PsfFactory{}, fmt.Errorf("no PSF type named '%s': %w", name, ErrNotFound)
	}
	return f, nil
}

func (r *PsfRegistry)Names() []string {
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
func (r *PsfRegistry)Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = map[string]PsfFactory{}
}

// The process-wide default registry, populated by RegisterDefaults.
var psfRegistry = NewPsfRegistry()

func DefaultPsfRegistry() *PsfRegistry { return psfRegistry }

// CreatePsf builds a named PSF via the positional signature.
func CreatePsf(name string, width, height int, p0, p1, p2 float64) (Psf, error) {
	f, err := psfRegistry.Lookup(name)
	if err != nil {
		return nil, err
	}
	return f.Create(width, height, p0, p1, p2)
}

// CreatePsfFromKernel builds a named PSF around an existing kernel.
// The kernel stays owned by the caller; the PSF just holds a reference.
func CreatePsfFromKernel(name string, k *img.Kernel) (Psf, error) {
	f, err := psfRegistry.Lookup(name)
	if err != nil {
		return nil, err
	}
	return f.CreateFromKernel(k)
}
