package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serve(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	NewServer(0).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := serve(t, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", body["status"])
	}
}

func TestHandleScenes(t *testing.T) {
	rec := serve(t, "/api/scenes")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body struct {
		Scenes []SceneInfo `json:"scenes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(body.Scenes) != 3 {
		t.Fatalf("Expected 3 scenes, got %d", len(body.Scenes))
	}
	for _, info := range body.Scenes {
		if info.Width <= 0 || info.SamplesPerPixel <= 0 || info.Spheres <= 0 {
			t.Errorf("Scene %q has incomplete info: %+v", info.Name, info)
		}
	}
}

func TestHandleRender_PNG(t *testing.T) {
	rec := serve(t, "/api/render?scene=single-sphere&width=16&samples=2&depth=3&seed=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %q", ct)
	}
	if rec.Header().Get("X-Average-Luminance") == "" {
		t.Error("Expected average luminance header")
	}

	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("Response is not a PNG: %v", err)
	}
	// 16 wide at 16:9 is 9 rows
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 9 {
		t.Errorf("Expected 16x9 image, got %v", img.Bounds())
	}
}

func TestHandleRender_PPM(t *testing.T) {
	rec := serve(t, "/api/render?scene=single-sphere&width=4&samples=1&depth=2&format=ppm")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Body.String(), "P3\n4 2\n255\n") {
		t.Errorf("Unexpected PPM header: %q", rec.Body.String()[:12])
	}
}

func TestHandleRender_Deterministic(t *testing.T) {
	target := "/api/render?scene=random-spheres&width=12&samples=1&depth=4&seed=9"
	first := serve(t, target).Body.Bytes()
	second := serve(t, target).Body.Bytes()
	if !bytes.Equal(first, second) {
		t.Error("Identical requests should produce identical images")
	}
}

func TestHandleRender_InvalidRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"unknown scene", "/api/render?scene=cornell"},
		{"width too large", "/api/render?width=5000"},
		{"zero width", "/api/render?width=0"},
		{"zero samples", "/api/render?samples=0"},
		{"negative depth", "/api/render?depth=-1"},
		{"non-numeric width", "/api/render?width=wide"},
		{"bad seed", "/api/render?seed=abc"},
		{"unknown format", "/api/render?format=jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.target)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rec.Code)
			}

			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("Invalid JSON: %v", err)
			}
			if body["error"] == "" {
				t.Error("Expected an error message")
			}
		})
	}
}

func TestHandleRenderStream(t *testing.T) {
	rec := serve(t, "/api/render-stream?scene=single-sphere&width=8&samples=1&depth=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got %q", ct)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "event: console") {
		t.Error("Expected console progress events")
	}

	idx := strings.Index(body, "event: complete\ndata: ")
	if idx < 0 {
		t.Fatalf("Expected complete event, got:\n%s", body)
	}
	payload := body[idx+len("event: complete\ndata: "):]
	payload = payload[:strings.Index(payload, "\n")]

	var update CompleteUpdate
	if err := json.Unmarshal([]byte(payload), &update); err != nil {
		t.Fatalf("Invalid complete payload: %v", err)
	}
	if update.Width != 8 || update.Height != 4 {
		t.Errorf("Expected 8x4, got %dx%d", update.Width, update.Height)
	}

	data, err := base64.StdEncoding.DecodeString(update.ImageData)
	if err != nil {
		t.Fatalf("Image data is not base64: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("Image data is not a PNG: %v", err)
	}
}

func TestHandleRenderStream_InvalidRequest(t *testing.T) {
	rec := serve(t, "/api/render-stream?scene=nope")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}
