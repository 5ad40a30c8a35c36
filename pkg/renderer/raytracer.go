package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
	"github.com/df07/go-weekend-raytracer/pkg/output"
)

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	SamplesPerPixel int   `json:"samplesPerPixel"` // Number of rays per pixel
	MaxDepth        int   `json:"maxDepth"`        // Maximum ray bounce depth
	Seed            int64 `json:"seed"`            // Base seed for the per-row random streams
	NumWorkers      int   `json:"numWorkers"`      // Number of parallel workers (0 = use CPU count)
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        50,
		Seed:            42,
		NumWorkers:      0,
	}
}

// Validate reports configuration values the renderer cannot work with
func (c SamplingConfig) Validate() error {
	if c.SamplesPerPixel <= 0 {
		return fmt.Errorf("samples per pixel must be positive, got %d", c.SamplesPerPixel)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max depth must not be negative, got %d", c.MaxDepth)
	}
	if c.NumWorkers < 0 {
		return fmt.Errorf("worker count must not be negative, got %d", c.NumWorkers)
	}
	return nil
}

// RowSink receives finished scanlines top to bottom. Each pixel is the sum of
// samples radiance estimates.
type RowSink interface {
	WriteRow(accums []core.Vec3, samples int) error
}

// Raytracer renders a world through a camera. The world, camera and materials
// are only read during a render, so all workers share them without locking.
type Raytracer struct {
	world      geometry.Shape
	camera     *Camera
	integrator integrator.Integrator
	config     SamplingConfig
	logger     core.Logger
}

// NewRaytracer creates a new raytracer using path tracing with config.MaxDepth bounces
func NewRaytracer(world geometry.Shape, camera *Camera, config SamplingConfig, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = NopLogger{}
	}
	return &Raytracer{
		world:      world,
		camera:     camera,
		integrator: integrator.NewPathTracingIntegrator(config.MaxDepth),
		config:     config,
		logger:     logger,
	}
}

// SetIntegrator replaces the light transport algorithm
func (rt *Raytracer) SetIntegrator(integratorInst integrator.Integrator) {
	rt.integrator = integratorInst
}

// Camera returns the camera used for primary rays
func (rt *Raytracer) Camera() *Camera {
	return rt.camera
}

// rowSeed derives an independent, reproducible seed for scanline y
func rowSeed(base int64, y int) int64 {
	return base + int64(y)*0x9E3779B9
}

// RenderRow computes the accumulated color of every pixel in scanline y.
// The row owns its random stream, so the result does not depend on which
// worker renders it or in what order.
func (rt *Raytracer) RenderRow(y int) []core.Vec3 {
	sampler := core.NewSeededSampler(rowSeed(rt.config.Seed, y))
	width := rt.camera.Width()
	row := make([]core.Vec3, width)

	for x := 0; x < width; x++ {
		var ps PixelStats
		for s := 0; s < rt.config.SamplesPerPixel; s++ {
			ray := rt.camera.GetRay(x, y, sampler)
			ps.AddSample(rt.integrator.RayColor(ray, rt.world, sampler))
		}
		row[x] = ps.ColorAccum
	}

	return row
}

// Render traces every scanline in parallel and delivers them to sink in raster
// order. A sink error or cancelled context aborts the render; the rows already
// delivered do not form a valid image.
func (rt *Raytracer) Render(ctx context.Context, sink RowSink) (RenderStats, error) {
	width, height := rt.camera.Width(), rt.camera.Height()
	startTime := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	pool := NewWorkerPool(ctx, rt, rt.config.NumWorkers, height)
	pool.Start()
	defer func() {
		cancel()
		pool.Stop()
	}()

	rt.logger.Printf("Rendering %dx%d, %d samples per pixel, max depth %d (using %d workers)...\n",
		width, height, rt.config.SamplesPerPixel, rt.config.MaxDepth, pool.GetNumWorkers())

	for y := 0; y < height; y++ {
		pool.SubmitTask(RowTask{Y: y})
	}

	// Rows finish out of order; hold them until every earlier row is written
	pending := make(map[int][]core.Vec3)
	next := 0
	for next < height {
		select {
		case <-ctx.Done():
			return RenderStats{}, fmt.Errorf("render aborted at row %d: %w", next, ctx.Err())
		case result := <-pool.Results():
			pending[result.Y] = result.Pixels
		}

		for row, ok := pending[next]; ok; row, ok = pending[next] {
			if err := sink.WriteRow(row, rt.config.SamplesPerPixel); err != nil {
				return RenderStats{}, fmt.Errorf("write row %d: %w", next, err)
			}
			delete(pending, next)
			next++
			rt.logger.Printf("Scanlines remaining: %d\n", height-next)
		}
	}

	rt.logger.Printf("Done.\n")

	return RenderStats{
		Width:           width,
		Height:          height,
		TotalPixels:     width * height,
		TotalSamples:    width * height * rt.config.SamplesPerPixel,
		SamplesPerPixel: rt.config.SamplesPerPixel,
		NumWorkers:      pool.GetNumWorkers(),
		Duration:        time.Since(startTime),
	}, nil
}

// RenderImage renders the full frame into an RGBA image
func (rt *Raytracer) RenderImage(ctx context.Context) (*image.RGBA, RenderStats, error) {
	sink := output.NewImageSink(rt.camera.Width(), rt.camera.Height())
	stats, err := rt.Render(ctx, sink)
	if err != nil {
		return nil, stats, err
	}
	return sink.Image(), stats, nil
}
