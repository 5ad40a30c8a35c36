package output

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// ImageSink collects scanlines into an in-memory RGBA image
type ImageSink struct {
	img *image.RGBA
	y   int
}

// NewImageSink creates a sink for a width x height image
func NewImageSink(width, height int) *ImageSink {
	return &ImageSink{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// WriteRow stores the next scanline
func (s *ImageSink) WriteRow(accums []core.Vec3, samples int) error {
	bounds := s.img.Bounds()
	if len(accums) != bounds.Dx() {
		return fmt.Errorf("image row has %d pixels, expected %d", len(accums), bounds.Dx())
	}
	if s.y >= bounds.Dy() {
		return fmt.Errorf("image already has all %d rows", bounds.Dy())
	}

	for x, accum := range accums {
		s.img.SetRGBA(x, s.y, ColorToRGBA(accum, samples))
	}
	s.y++
	return nil
}

// Image returns the collected image
func (s *ImageSink) Image() *image.RGBA {
	return s.img
}

// EncodePNG writes img as a PNG
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// EncodePPM writes img as a plain-text pixel map. Channels are already
// gamma encoded, so they are copied as-is.
func EncodePPM(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	bw := NewPPMWriter(w, bounds.Dx(), bounds.Dy())
	if err := bw.WriteHeader(); err != nil {
		return err
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if _, err := fmt.Fprintf(bw.w, "%d %d %d\n", c.R, c.G, c.B); err != nil {
				return fmt.Errorf("write ppm: %w", err)
			}
		}
		bw.rowsWritten++
	}
	return bw.Close()
}
