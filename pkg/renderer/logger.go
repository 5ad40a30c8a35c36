package renderer

import (
	"fmt"
	"io"
	"os"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to a stream
type DefaultLogger struct {
	out io.Writer
}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(dl.out, format, args...)
}

// NewDefaultLogger creates a logger on stderr, keeping stdout free for image data
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{out: os.Stderr}
}

// NewWriterLogger creates a logger that writes to w
func NewWriterLogger(w io.Writer) core.Logger {
	return &DefaultLogger{out: w}
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Printf(format string, args ...interface{}) {}
