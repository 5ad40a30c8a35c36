package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/output"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

var renderCounter atomic.Int64

// CompleteUpdate is the final event of a streamed render
type CompleteUpdate struct {
	ImageData        string  `json:"imageData"` // Base64 encoded PNG
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	TotalSamples     int     `json:"totalSamples"`
	ElapsedMs        int64   `json:"elapsedMs"`
	AverageLuminance float64 `json:"averageLuminance"`
}

type renderOutcome struct {
	img   *image.RGBA
	stats renderer.RenderStats
	err   error
}

// handleRenderStream renders a frame while streaming progress lines via SSE,
// then sends the finished image
func (s *Server) handleRenderStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	req, sc, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	renderID := fmt.Sprintf("%s-%d", req.Scene, renderCounter.Add(1))
	consoleChan := make(chan ConsoleMessage, 100)
	logger := NewWebLogger(renderID, consoleChan)
	raytracer := renderer.NewRaytracer(sc.World, sc.Camera(), sc.SamplingConfig, logger)

	// The render runs in its own goroutine so this one is the only SSE writer
	done := make(chan renderOutcome, 1)
	go func() {
		img, stats, err := raytracer.RenderImage(ctx)
		done <- renderOutcome{img: img, stats: stats, err: err}
	}()

	for {
		select {
		case msg := <-consoleChan:
			s.sendConsole(w, flusher, msg)
		case outcome := <-done:
			// Flush progress lines logged before the render returned
			for drained := false; !drained; {
				select {
				case msg := <-consoleChan:
					s.sendConsole(w, flusher, msg)
				default:
					drained = true
				}
			}

			if outcome.err != nil {
				sendSSEEvent(w, flusher, "error", fmt.Sprintf("Render error: %v", outcome.err))
				return
			}
			if err := s.sendComplete(w, flusher, outcome); err != nil {
				sendSSEEvent(w, flusher, "error", err.Error())
			}
			return
		}
	}
}

func (s *Server) sendConsole(w http.ResponseWriter, flusher http.Flusher, msg ConsoleMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	sendSSEEvent(w, flusher, "console", string(data))
}

func (s *Server) sendComplete(w http.ResponseWriter, flusher http.Flusher, outcome renderOutcome) error {
	var buf bytes.Buffer
	if err := output.EncodePNG(&buf, outcome.img); err != nil {
		return err
	}

	data, err := json.Marshal(CompleteUpdate{
		ImageData:        base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:            outcome.stats.Width,
		Height:           outcome.stats.Height,
		TotalSamples:     outcome.stats.TotalSamples,
		ElapsedMs:        outcome.stats.Duration.Round(time.Millisecond).Milliseconds(),
		AverageLuminance: renderer.CalculateAverageLuminance(outcome.img),
	})
	if err != nil {
		return err
	}
	sendSSEEvent(w, flusher, "complete", string(data))
	return nil
}

// sendSSEEvent sends a generic SSE event
func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
