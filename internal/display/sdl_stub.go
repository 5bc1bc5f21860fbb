//go:build nosdl

package display

import (
	"image"

	"go.uber.org/zap"
)

// Window is a placeholder in builds without SDL2; NewWindow always fails.
type Window struct{}

// NewWindow reports ErrSDLUnavailable
func NewWindow(opts Options, logger *zap.Logger) (*Window, error) {
	if logger != nil {
		logger.Debug("sdl window requested in a nosdl build", zap.String("title", opts.Title))
	}
	return nil, ErrSDLUnavailable
}

func (w *Window) Present(img *image.RGBA) error { return ErrSDLUnavailable }

func (w *Window) Poll() Input { return Input{Quit: true} }

func (w *Window) Close() error { return nil }
