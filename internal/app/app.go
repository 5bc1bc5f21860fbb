// Package app runs the interactive render loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/df07/go-particle-renderer/internal/capture"
	"github.com/df07/go-particle-renderer/internal/display"
	"github.com/df07/go-particle-renderer/pkg/renderer"
	"go.uber.org/zap"
)

const bootMessage = `
====================================================
Welcome to the Particle Renderer!
====================================================
Controls:
* Drag with your left mouse button to rotate
* Press W/A/S/D/Q/E to move
* Press P to save a screenshot of the current view
* Press C to get the current camera position and look-at direction
* Press R to restart the scene
* Press Esc to quit
====================================================
`

// PrintBanner writes the start-up message with the control list
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, bootMessage)
}

// Options configures the loop's outputs
type Options struct {
	ScreenshotDir string
	CaptureDir    string // Empty disables frame capture
	KeepFrames    bool
	StatsInterval time.Duration // 0 means one second
}

// App owns the render loop. Run must be called from the main goroutine when
// the display needs it.
type App struct {
	renderer    *renderer.Renderer
	display     display.Display
	camera      *CameraController
	screenshots *capture.Screenshotter
	recorder    *capture.FrameRecorder
	keepFrames  bool
	logger      *zap.Logger

	statsInterval time.Duration
	window        statsWindow
}

// New wires a renderer to a display
func New(r *renderer.Renderer, d display.Display, opts Options, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		renderer:      r,
		display:       d,
		camera:        NewCameraController(),
		screenshots:   capture.NewScreenshotter(opts.ScreenshotDir),
		keepFrames:    opts.KeepFrames,
		logger:        logger,
		statsInterval: opts.StatsInterval,
	}
	if a.statsInterval <= 0 {
		a.statsInterval = time.Second
	}
	if opts.CaptureDir != "" {
		recorder, err := capture.NewFrameRecorder(opts.CaptureDir, logger.Named("capture"))
		if err != nil {
			return nil, err
		}
		a.recorder = recorder
		logger.Info("capturing frames", zap.String("dir", opts.CaptureDir))
	}
	return a, nil
}

// Run renders until the display asks to quit or ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	a.window.start = time.Now()
	for {
		if ctx.Err() != nil {
			return nil
		}

		in := a.display.Poll()
		if in.Quit {
			a.logger.Info("quit requested")
			return nil
		}
		screenshot := a.handleKeys(in)

		state := a.renderer.Scene()
		if pose, changed := a.camera.Update(state.Camera(), in); changed {
			state.SetCamera(pose)
		}

		stats, err := a.renderer.Frame(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("render frame: %w", err)
		}

		img := a.renderer.Image()
		if err := a.display.Present(img); err != nil {
			return fmt.Errorf("present frame: %w", err)
		}
		if a.recorder != nil {
			if err := a.recorder.Record(img); err != nil {
				return err
			}
		}
		if screenshot {
			a.saveScreenshot()
		}
		a.observe(stats)
	}
}

// handleKeys runs one-shot key actions and reports whether a screenshot is due
func (a *App) handleKeys(in display.Input) bool {
	screenshot := false
	for _, k := range in.Pressed {
		switch k {
		case display.KeyC:
			pose := a.renderer.Scene().Camera()
			a.logger.Info("camera",
				zap.String("position", formatVec(pose.Position.X, pose.Position.Y, pose.Position.Z)),
				zap.String("lookAt", formatVec(pose.LookAt.X, pose.LookAt.Y, pose.LookAt.Z)))
		case display.KeyP:
			screenshot = true
		case display.KeyR:
			if err := a.renderer.Restart(); err != nil {
				a.logger.Error("restart failed", zap.Error(err))
			}
		}
	}
	return screenshot
}

func (a *App) saveScreenshot() {
	name := a.renderer.Strategy().Name()
	path, err := a.screenshots.Save(a.renderer.Image(), name)
	if err != nil {
		a.logger.Error("screenshot failed", zap.Error(err))
		return
	}
	a.logger.Info("screenshot saved", zap.String("path", path))
}

// Close flushes captured frames and releases the display
func (a *App) Close() error {
	var errs []error
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			errs = append(errs, err)
		}
		if !a.keepFrames {
			if err := a.recorder.Cleanup(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := a.display.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func formatVec(x, y, z float64) string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", x, y, z)
}
