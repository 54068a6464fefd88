package img

import "math"

// The mapping between integer pixel indices and coordinate-space
// positions. We use the identity convention: pixel centers sit on
// integer coordinates, so index 3 is position 3.0, and position 3.4 is
// 0.4 of the way from the center of pixel 3 to the center of pixel 4.
//
// Measurement code should always go through these two functions rather
// than casting, so that a half-pixel-origin convention would be a
// change here and nowhere else.

func PixelToPosition(i int) float64 {
	return float64(i)
}

func PositionToPixel(p float64) int {
	return int(math.Floor(p + 0.5))
}
