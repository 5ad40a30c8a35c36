package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
	"github.com/df07/go-weekend-raytracer/pkg/loaders"
	"github.com/df07/go-weekend-raytracer/pkg/output"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// options holds the parsed command line
type options struct {
	sceneName  string
	sceneFile  string
	width      int
	samples    int
	depth      int
	seed       int64
	workers    int
	format     string
	outPath    string
	integrator string
	quiet      bool
	help       bool
	set        map[string]bool // Flags given explicitly
}

var errHelp = errors.New("help requested")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags parses args into options
func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.sceneName, "scene", "default", "Built-in scene: "+strings.Join(scene.Names(), ", "))
	fs.StringVar(&opts.sceneFile, "scene-file", "", "Load the scene from a JSON file instead")
	fs.IntVar(&opts.width, "width", 0, "Image width in pixels (default: scene setting)")
	fs.IntVar(&opts.samples, "samples", 0, "Samples per pixel (default: scene setting)")
	fs.IntVar(&opts.depth, "depth", 0, "Maximum ray bounces (default: scene setting)")
	fs.Int64Var(&opts.seed, "seed", 0, "Random seed (default: scene setting)")
	fs.IntVar(&opts.workers, "workers", 0, "Number of parallel workers (0 = CPU count)")
	fs.StringVar(&opts.format, "format", "ppm", "Output format: ppm or png")
	fs.StringVar(&opts.outPath, "out", "", "Output file (default: stdout)")
	fs.StringVar(&opts.integrator, "integrator", "path", "Integrator: path or normals")
	fs.BoolVar(&opts.quiet, "quiet", false, "Suppress progress output")
	fs.BoolVar(&opts.help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	if opts.help {
		fmt.Fprintln(stderr, "Weekend Raytracer")
		fmt.Fprintln(stderr, "Usage: raytracer [options] > image.ppm")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
		return opts, errHelp
	}

	if opts.format != "ppm" && opts.format != "png" {
		return nil, fmt.Errorf("unknown format %q (use ppm or png)", opts.format)
	}
	if opts.integrator != "path" && opts.integrator != "normals" {
		return nil, fmt.Errorf("unknown integrator %q (use path or normals)", opts.integrator)
	}
	return opts, nil
}

// createScene builds the selected scene and applies command line overrides
func createScene(opts *options) (*scene.Scene, error) {
	var sc *scene.Scene
	if opts.sceneFile != "" {
		loaded, err := loaders.LoadSceneFile(opts.sceneFile)
		if err != nil {
			return nil, err
		}
		sc = loaded
	} else {
		factory, err := scene.Lookup(opts.sceneName)
		if err != nil {
			return nil, err
		}
		seed := renderer.DefaultSamplingConfig().Seed
		if opts.set["seed"] {
			seed = opts.seed
		}
		sc = factory(seed)
	}

	if opts.set["width"] {
		sc.CameraConfig.Width = opts.width
	}
	if opts.set["samples"] {
		sc.SamplingConfig.SamplesPerPixel = opts.samples
	}
	if opts.set["depth"] {
		sc.SamplingConfig.MaxDepth = opts.depth
	}
	if opts.set["seed"] {
		sc.SamplingConfig.Seed = opts.seed
	}
	if opts.set["workers"] {
		sc.SamplingConfig.NumWorkers = opts.workers
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// closeOutput closes c and reports its error through err unless an earlier
// error is already set. A failed close can mean the image never reached disk.
func closeOutput(c io.Closer, err *error) {
	if closeErr := c.Close(); closeErr != nil && *err == nil {
		*err = fmt.Errorf("close output: %w", closeErr)
	}
}

// run renders according to args and writes the image to stdout or -out
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	sc, err := createScene(opts)
	if err != nil {
		return err
	}

	var logger core.Logger = renderer.NewWriterLogger(stderr)
	if opts.quiet {
		logger = renderer.NopLogger{}
	}

	camera := sc.Camera()
	raytracer := renderer.NewRaytracer(sc.World, camera, sc.SamplingConfig, logger)
	if opts.integrator == "normals" {
		raytracer.SetIntegrator(integrator.NewNormalIntegrator())
	}

	out := stdout
	if opts.outPath != "" {
		file, createErr := os.Create(opts.outPath)
		if createErr != nil {
			return fmt.Errorf("create output: %w", createErr)
		}
		defer closeOutput(file, &err)
		out = file
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	logger.Printf("Scene %s: %d spheres\n", sc.Name, sc.GetPrimitiveCount())

	var stats renderer.RenderStats
	switch opts.format {
	case "png":
		img, renderStats, err := raytracer.RenderImage(ctx)
		if err != nil {
			return err
		}
		if err := output.EncodePNG(out, img); err != nil {
			return err
		}
		stats = renderStats
	default:
		// Rows stream straight to the output as they complete
		ppm := output.NewPPMWriter(out, camera.Width(), camera.Height())
		if err := ppm.WriteHeader(); err != nil {
			return err
		}
		if stats, err = raytracer.Render(ctx, ppm); err != nil {
			return err
		}
		if err := ppm.Close(); err != nil {
			return err
		}
	}

	logger.Printf("Render completed in %v (%.0f samples/s)\n", stats.Duration, stats.SamplesPerSecond())
	return nil
}
