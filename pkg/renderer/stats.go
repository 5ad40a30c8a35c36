package renderer

import (
	"image"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Width           int           // Image width in pixels
	Height          int           // Image height in pixels
	TotalPixels     int           // Total number of pixels rendered
	TotalSamples    int           // Total number of samples taken
	SamplesPerPixel int           // Samples taken for every pixel
	NumWorkers      int           // Goroutines used for rendering
	Duration        time.Duration // Wall time spent rendering
}

// SamplesPerSecond returns the sampling throughput of the render
func (s RenderStats) SamplesPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.TotalSamples) / s.Duration.Seconds()
}

// PixelStats tracks sampling statistics for a single pixel
type PixelStats struct {
	ColorAccum  core.Vec3 // RGB accumulator for final result
	SampleCount int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of img,
// with channels normalized to [0, 1]. An empty image has luminance 0.
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	count := bounds.Dx() * bounds.Dy()
	if count == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			total += core.NewVec3(float64(r), float64(g), float64(b)).Multiply(1.0 / 0xffff).Luminance()
		}
	}
	return total / float64(count)
}
