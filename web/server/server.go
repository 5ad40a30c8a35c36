package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-weekend-raytracer/pkg/output"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// Request limits
const (
	maxWidth   = 2000
	maxSamples = 10000
	maxDepth   = 1000
)

// Server handles web requests for the raytracer
type Server struct {
	port int
	mux  *http.ServeMux
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	s := &Server{port: port, mux: http.NewServeMux()}

	// API endpoints
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/render-stream", s.handleRenderStream)

	return s
}

// Handler returns the request router
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene   string `json:"scene"`   // Built-in scene name
	Width   int    `json:"width"`   // Image width
	Samples int    `json:"samples"` // Samples per pixel
	Depth   int    `json:"depth"`   // Maximum bounces
	Seed    int64  `json:"seed"`    // Base seed
	Format  string `json:"format"`  // "png" or "ppm"
}

// SceneInfo describes a built-in scene and its recommended settings
type SceneInfo struct {
	Name            string  `json:"name"`
	Width           int     `json:"width"`
	AspectRatio     float64 `json:"aspectRatio"`
	SamplesPerPixel int     `json:"samplesPerPixel"`
	MaxDepth        int     `json:"maxDepth"`
	Spheres         int     `json:"spheres"`
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes with their defaults
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	var scenes []SceneInfo
	for _, name := range scene.Names() {
		factory, err := scene.Lookup(name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		sc := factory(renderer.DefaultSamplingConfig().Seed)
		scenes = append(scenes, SceneInfo{
			Name:            name,
			Width:           sc.CameraConfig.Width,
			AspectRatio:     sc.CameraConfig.AspectRatio,
			SamplesPerPixel: sc.SamplingConfig.SamplesPerPixel,
			MaxDepth:        sc.SamplingConfig.MaxDepth,
			Spheres:         sc.GetPrimitiveCount(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"scenes": scenes})
}

// handleRender renders a full frame and returns it as an image
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, sc, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	raytracer := renderer.NewRaytracer(sc.World, sc.Camera(), sc.SamplingConfig, nil)
	img, stats, err := raytracer.RenderImage(r.Context())
	if err != nil {
		log.Printf("Render of %s failed: %v", req.Scene, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Render error: %v", err))
		return
	}

	// Encode fully before writing so a failure can still report an error status
	var buf bytes.Buffer
	contentType := "image/png"
	if req.Format == "ppm" {
		contentType = "image/x-portable-pixmap"
		err = output.EncodePPM(&buf, img)
	} else {
		err = output.EncodePNG(&buf, img)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("Rendered %s %dx%d in %v (%.0f samples/s)",
		req.Scene, stats.Width, stats.Height, stats.Duration, stats.SamplesPerSecond())

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Render-Time-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	w.Header().Set("X-Average-Luminance", strconv.FormatFloat(renderer.CalculateAverageLuminance(img), 'f', 4, 64))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// parseRenderRequest parses request parameters and builds the requested scene
// with the overrides applied
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, *scene.Scene, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene"), Format: query.Get("format")}
	if req.Scene == "" {
		req.Scene = "default"
	}
	if req.Format == "" {
		req.Format = "png"
	}
	if req.Format != "png" && req.Format != "ppm" {
		return nil, nil, fmt.Errorf("format must be png or ppm, got: %s", req.Format)
	}

	var err error
	if req.Seed, err = parseInt64Param(query, "seed", renderer.DefaultSamplingConfig().Seed); err != nil {
		return nil, nil, err
	}

	factory, err := scene.Lookup(req.Scene)
	if err != nil {
		return nil, nil, err
	}
	sc := factory(req.Seed)

	if req.Width, err = parseIntParam(query, "width", sc.CameraConfig.Width, 1, maxWidth); err != nil {
		return nil, nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", sc.SamplingConfig.SamplesPerPixel, 1, maxSamples); err != nil {
		return nil, nil, err
	}
	if req.Depth, err = parseIntParam(query, "depth", sc.SamplingConfig.MaxDepth, 0, maxDepth); err != nil {
		return nil, nil, err
	}

	sc.CameraConfig.Width = req.Width
	sc.SamplingConfig.SamplesPerPixel = req.Samples
	sc.SamplingConfig.MaxDepth = req.Depth
	sc.SamplingConfig.Seed = req.Seed

	if err := sc.Validate(); err != nil {
		return nil, nil, err
	}

	// Performance warning
	pixels := req.Width * int(float64(req.Width)/sc.CameraConfig.AspectRatio)
	if pixels > 800*600 && req.Samples > 100 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, sc, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseInt64Param parses an unbounded 64-bit integer parameter from URL query
func parseInt64Param(values url.Values, key string, defaultValue int64) (int64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
