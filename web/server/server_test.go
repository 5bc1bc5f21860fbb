package server

import (
	"bufio"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/df07/go-particle-renderer/pkg/renderer"
	"github.com/df07/go-particle-renderer/pkg/scene"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

type fakeSource struct {
	mu    sync.Mutex
	img   *image.RGBA
	stats renderer.FrameStats
}

func (f *fakeSource) Image() *image.RGBA {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.img
}

func (f *fakeSource) Stats() renderer.FrameStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

func (f *fakeSource) publish(frame int64) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	f.mu.Lock()
	f.img = img
	f.stats = renderer.FrameStats{Frame: frame, Samples: 3, SamplesAccumulated: 3 * int(frame)}
	f.mu.Unlock()
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := NewServer(&fakeSource{}, "HelloWorld", nil, zaptest.NewLogger(t))
	rec := get(t, s, "/api/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("Unexpected body %s", rec.Body.String())
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS header")
	}
}

func TestHandleStats(t *testing.T) {
	source := &fakeSource{}
	source.publish(4)
	s := NewServer(source, "SphereGrid", nil, zaptest.NewLogger(t))

	rec := get(t, s, "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if resp.Scene != "SphereGrid" || resp.Frame != 4 || resp.SamplesAccumulated != 12 {
		t.Errorf("Unexpected stats %+v", resp)
	}
	if resp.Luminance < 0.999 {
		t.Errorf("Expected white frame luminance 1, got %f", resp.Luminance)
	}
}

func TestHandleFrame(t *testing.T) {
	source := &fakeSource{}
	s := NewServer(source, "HelloWorld", nil, zaptest.NewLogger(t))

	if rec := get(t, s, "/api/frame"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 before the first frame, got %d", rec.Code)
	}

	source.publish(1)
	rec := get(t, s, "/api/frame")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %s", ct)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("Invalid PNG: %v", err)
	}
	if got := color.RGBAModel.Convert(img.At(1, 1)).(color.RGBA); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("Unexpected pixel %v", got)
	}
}

func TestHandleScenes(t *testing.T) {
	s := NewServer(&fakeSource{}, "HelloWorld", nil, zaptest.NewLogger(t))
	rec := get(t, s, "/api/scenes")

	var scenes []scene.SceneInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &scenes); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(scenes) != len(scene.List()) {
		t.Errorf("Expected %d scenes, got %d", len(scene.List()), len(scenes))
	}
}

func TestHandleUnknownRoute(t *testing.T) {
	s := NewServer(&fakeSource{}, "HelloWorld", nil, zaptest.NewLogger(t))
	if rec := get(t, s, "/api/render"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

// readEvent reads one SSE event (event name and data line)
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("Stream ended: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && event != "":
			return event, data
		}
	}
}

func TestHandleStream(t *testing.T) {
	source := &fakeSource{}
	source.publish(1)
	console := NewConsole()

	s := NewServer(source, "HelloWorld", console, zaptest.NewLogger(t))
	s.interval = 5 * time.Millisecond
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Expected text/event-stream, got %s", ct)
	}
	reader := bufio.NewReader(resp.Body)

	event, data := readEvent(t, reader)
	if event != "frame" {
		t.Fatalf("Expected frame event, got %s", event)
	}
	var update FrameUpdate
	if err := json.Unmarshal([]byte(data), &update); err != nil {
		t.Fatalf("Invalid frame JSON: %v", err)
	}
	if update.Stats.Frame != 1 || update.ImageData == "" {
		t.Errorf("Unexpected update %+v", update.Stats)
	}

	// Log entries arrive as console events
	logger := zap.New(console.Core(zapcore.InfoLevel))
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		logger.Info("hello stream")
		event, data = readEvent(t, reader)
		if event == "console" {
			break
		}
	}
	if event != "console" || !strings.Contains(data, "hello stream") {
		t.Errorf("Expected console event, got %s %s", event, data)
	}

	// A new frame produces another frame event
	source.publish(2)
	for time.Now().Before(deadline) {
		event, data = readEvent(t, reader)
		if event == "frame" {
			break
		}
	}
	if err := json.Unmarshal([]byte(data), &update); err != nil || update.Stats.Frame != 2 {
		t.Errorf("Expected frame 2 event, got %s (%v)", data, err)
	}
}
