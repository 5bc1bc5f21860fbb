// Package server exposes a live preview of the renderer over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/df07/go-particle-renderer/pkg/renderer"
	"github.com/df07/go-particle-renderer/pkg/scene"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// FrameSource is the read side of the renderer, safe to call from handlers
type FrameSource interface {
	Image() *image.RGBA
	Stats() renderer.FrameStats
}

// Server handles web requests for the live preview
type Server struct {
	echo     *echo.Echo
	source   FrameSource
	scene    string
	console  *Console
	logger   *zap.Logger
	interval time.Duration // SSE poll interval
}

// StatsResponse is the body of /api/stats
type StatsResponse struct {
	Scene string `json:"scene"`
	renderer.FrameStats
	Luminance float64 `json:"luminance"`
}

// FrameUpdate is sent as a "frame" SSE event
type FrameUpdate struct {
	Stats     renderer.FrameStats `json:"stats"`
	ImageData string              `json:"imageData"` // Base64 encoded PNG
}

// NewServer creates a server for source. console may be nil.
func NewServer(source FrameSource, sceneName string, console *Console, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		echo:     echo.New(),
		source:   source,
		scene:    sceneName,
		console:  console,
		logger:   logger,
		interval: 100 * time.Millisecond,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(corsMiddleware)

	e.GET("/api/health", s.handleHealth)
	e.GET("/api/stats", s.handleStats)
	e.GET("/api/frame", s.handleFrame)
	e.GET("/api/scenes", s.handleScenes)
	e.GET("/api/stream", s.handleStream)
	return s
}

func corsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", "*")
		c.Response().Header().Set("Access-Control-Allow-Methods", "GET")
		return next(c)
	}
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting preview server", zap.String("url", "http://"+addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, ending open streams
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(c echo.Context) error {
	resp := StatsResponse{Scene: s.scene, FrameStats: s.source.Stats()}
	if img := s.source.Image(); img != nil {
		resp.Luminance = renderer.AverageLuminance(img)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleFrame(c echo.Context) error {
	img := s.source.Image()
	if img == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "no frame rendered yet"})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleScenes(c echo.Context) error {
	return c.JSON(http.StatusOK, scene.List())
}

// handleStream sends a "frame" event whenever a new frame is rendered and a
// "console" event for every log entry, until the client disconnects
func (s *Server) handleStream(c echo.Context) error {
	w := c.Response()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	var logs <-chan ConsoleMessage
	if s.console != nil {
		ch, cancel := s.console.Subscribe(64)
		defer cancel()
		logs = ch
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	var lastFrame int64 = -1
	for {
		select {
		case <-ctx.Done():
			return nil

		case msg, ok := <-logs:
			if !ok {
				logs = nil
				continue
			}
			if err := s.sendJSON(w, "console", msg); err != nil {
				return nil
			}

		case <-ticker.C:
			stats := s.source.Stats()
			img := s.source.Image()
			if img == nil || stats.Frame == lastFrame {
				continue
			}
			lastFrame = stats.Frame

			imageData, err := imageToBase64PNG(img)
			if err != nil {
				s.sendSSEEvent(w, "error", err.Error())
				return nil
			}
			if err := s.sendJSON(w, "frame", FrameUpdate{Stats: stats, ImageData: imageData}); err != nil {
				return nil
			}
		}
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (s *Server) sendJSON(w *echo.Response, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.sendSSEEvent(w, event, string(data))
}

// sendSSEEvent sends a generic SSE event
func (s *Server) sendSSEEvent(w *echo.Response, event, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	w.Flush()
	return nil
}
