package renderer

import (
	"image"
	"math"

	"github.com/arjpeg/raytracer/types"
)

// Convert a linear radiance value in [0, 1] to the sRGB transfer curve.
func linearToSRGB(c float32) float32 {
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return float32(1.055*math.Pow(float64(c), 1/2.4) - 0.055)
}

func clamp01(c float32) float32 {
	if !(c > 0) {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// Encode a frame of radiance values into an sRGB image. Values are scaled by
// exposure and clamped; alpha is kept linear.
func toneMap(radiance []types.Vec4, width, height uint32, exposure float32) *image.RGBA {
	im := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	for idx, v := range radiance {
		pix := im.Pix[idx*4 : idx*4+4 : idx*4+4]
		for c := 0; c < 3; c++ {
			pix[c] = uint8(linearToSRGB(clamp01(v[c]*exposure))*255 + 0.5)
		}
		pix[3] = uint8(clamp01(v[3])*255 + 0.5)
	}
	return im
}
