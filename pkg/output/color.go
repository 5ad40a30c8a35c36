package output

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// intensity keeps channels below 1 so that 256*x truncates into [0, 255]
var intensity = core.NewInterval(0.000, 0.999)

// LinearToGamma encodes a linear channel for a gamma-2 display
func LinearToGamma(linear float64) float64 {
	if linear > 0 {
		return math.Sqrt(linear)
	}
	return 0
}

// ColorToRGB8 averages an accumulated color over samples, gamma encodes it and
// quantizes each channel to [0, 255]
func ColorToRGB8(accum core.Vec3, samples int) [3]uint8 {
	scale := 1.0 / float64(samples)
	r := LinearToGamma(accum.X * scale)
	g := LinearToGamma(accum.Y * scale)
	b := LinearToGamma(accum.Z * scale)

	return [3]uint8{
		uint8(256 * intensity.Clamp(r)),
		uint8(256 * intensity.Clamp(g)),
		uint8(256 * intensity.Clamp(b)),
	}
}

// ColorToRGBA is ColorToRGB8 as an opaque image color
func ColorToRGBA(accum core.Vec3, samples int) color.RGBA {
	rgb := ColorToRGB8(accum, samples)
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
}

// WriteColor writes one pixel as a "r g b" line
func WriteColor(w io.Writer, accum core.Vec3, samples int) error {
	rgb := ColorToRGB8(accum, samples)
	_, err := fmt.Fprintf(w, "%d %d %d\n", rgb[0], rgb[1], rgb[2])
	return err
}
