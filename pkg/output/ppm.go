package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// PPMWriter streams a plain-text (P3) pixel map row by row.
// Rows must arrive top to bottom; the stream cannot be rewound.
type PPMWriter struct {
	w             *bufio.Writer
	width, height int
	rowsWritten   int
	headerWritten bool
}

// NewPPMWriter creates a writer for a width x height image
func NewPPMWriter(w io.Writer, width, height int) *PPMWriter {
	return &PPMWriter{
		w:      bufio.NewWriter(w),
		width:  width,
		height: height,
	}
}

// WriteHeader writes "P3\n{width} {height}\n255\n". WriteRow calls it if needed.
func (p *PPMWriter) WriteHeader() error {
	if p.headerWritten {
		return nil
	}
	if _, err := fmt.Fprintf(p.w, "P3\n%d %d\n255\n", p.width, p.height); err != nil {
		return fmt.Errorf("write ppm header: %w", err)
	}
	p.headerWritten = true
	return nil
}

// WriteRow writes the next scanline from accumulated colors taken over samples
func (p *PPMWriter) WriteRow(accums []core.Vec3, samples int) error {
	if len(accums) != p.width {
		return fmt.Errorf("ppm row has %d pixels, expected %d", len(accums), p.width)
	}
	if p.rowsWritten >= p.height {
		return fmt.Errorf("ppm already has all %d rows", p.height)
	}
	if err := p.WriteHeader(); err != nil {
		return err
	}

	for _, accum := range accums {
		if err := WriteColor(p.w, accum, samples); err != nil {
			return fmt.Errorf("write ppm row %d: %w", p.rowsWritten, err)
		}
	}
	p.rowsWritten++
	return nil
}

// Close flushes buffered output and reports an incomplete image
func (p *PPMWriter) Close() error {
	if err := p.w.Flush(); err != nil {
		return fmt.Errorf("flush ppm: %w", err)
	}
	if p.rowsWritten != p.height {
		return fmt.Errorf("ppm incomplete: wrote %d of %d rows", p.rowsWritten, p.height)
	}
	return nil
}
