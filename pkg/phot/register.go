package phot

import(
	"starphot/pkg/img"
)

// All the stock algorithms get registered here, in one place, so
// there's a single deterministic point of initialization rather than
// registration side effects scattered across files. Every Declare is
// first-wins, so calling RegisterDefaults again (tests do, after a
// registry Reset) is harmless.

func init() {
	RegisterDefaults()
}

func RegisterDefaults() {
	psfRegistry.Declare("DoubleGaussian", PsfFactory{
		Positional: func(width, height int, p0, p1, p2 float64) Psf {
			return NewDoubleGaussianPsf(width, height, p0, p1, p2)
		},
	})
	psfRegistry.Declare("Kernel", PsfFactory{
		FromKernel: func(k *img.Kernel) Psf {
			return NewKernelPsf(k)
		},
	})

	centroidRegistry.Declare("NAIVE", NewNaiveCentroid)

	shapeTypeRegistry.Register("SDSS", SdssShapeType)
}
