package phot

import(
	"errors"
	"fmt"
)

// The failure modes measurement code reports. These are real
// inabilities to produce a result, never control flow; callers decide
// whether to retry with different inputs.
var(
	// ErrNotFound - a registry lookup by a name nobody registered.
	ErrNotFound = errors.New("phot: not found")

	// ErrUnsupported - a factory or PSF invoked through a construction
	// signature it doesn't implement. It wraps ErrNotFound, mirroring
	// the view that asking a kernel-style factory for a positional
	// build is asking for something that doesn't exist.
	ErrUnsupported = fmt.Errorf("phot: unsupported operation: %w", ErrNotFound)

	// ErrInvalidState - the object can't do that in its current state,
	// e.g. convolving with a PSF that has no kernel.
	ErrInvalidState = errors.New("phot: invalid state")

	// ErrNoCounts - a measurement window summed to exactly zero, so the
	// moment ratios are undefined. Returned wrapped in a NoCountsError
	// that names the offending pixel.
	ErrNoCounts = errors.New("phot: no counts")
)

// A NoCountsError reports which pixel had a zero-sum measurement
// window. Coordinates are local pixel indices.
type NoCountsError struct {
	X, Y int
}

func (e NoCountsError)Error() string {
	return fmt.Sprintf("object at (%d, %d) has no counts", e.X, e.Y)
}

func (e NoCountsError)Unwrap() error { return ErrNoCounts }
