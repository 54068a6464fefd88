package img

import(
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

// Debug helpers - dump a grid out as a grayscale PNG so you can
// eyeball what the measurement code is looking at.

// ToImage maps the grid onto a grayscale image, stretching the value
// range to fill [0,0xFFFF] and gamma scaling so dim structure is
// visible to human eyes.
func (g *Grid)ToImage() *image.RGBA64 {
	min, max := g.MinMax()
	rng := max - min
	if rng == 0.0 { rng = 1.0 }

	im := image.NewRGBA64(image.Rectangle{Max: image.Point{g.Dx(), g.Dy()}})
	for x := 0; x < g.Dx(); x++ {
		for y := 0; y < g.Dy(); y++ {
			gray := gammaExpand((g.Get(x, y) - min) / rng)
			v := uint16(gray * 65535.0)
			im.Set(x, y, color.RGBA64{v, v, v, 0xFFFF})
		}
	}
	return im
}

// ToImg saves the grid as a titled PNG. Small grids (PSF postage
// stamps are often just a dozen pixels across) get upscaled first so
// there is something to look at.
func (g *Grid)ToImg(title, filename string) error {
	im := g.ToImage()

	upscale := 1
	for (g.Dx()*upscale) < 256 && (g.Dy()*upscale) < 256 {
		upscale *= 2
	}
	var big *image.RGBA64
	if upscale > 1 {
		big = image.NewRGBA64(image.Rectangle{Max: image.Point{g.Dx() * upscale, g.Dy() * upscale}})
		draw.NearestNeighbor.Scale(big, big.Bounds(), im, im.Bounds(), draw.Src, nil)
	} else {
		big = im
	}

	dc := gg.NewContextForImage(big)
	dc.SetRGB(1, 1, 1)
	dc.DrawString(title, 10, 20)
	return dc.SavePNG(filename)
}

// sRGB-ish gamma, so mid values don't all look black
func gammaExpand(f float64) float64 {
	if f <= 0.0031308 {
		return 12.92 * f
	}
	return 1.055*math.Pow(f, 1.0/2.4) - 0.055
}
