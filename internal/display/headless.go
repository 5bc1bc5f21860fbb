package display

import (
	"image"
	"sync/atomic"
)

// Headless discards frames. It asks to quit after MaxFrames frames, or when
// Stop is called.
type Headless struct {
	maxFrames int
	frames    int
	last      *image.RGBA
	stop      atomic.Bool
}

// NewHeadless creates a headless display; maxFrames 0 runs until Stop.
func NewHeadless(maxFrames int) *Headless {
	return &Headless{maxFrames: maxFrames}
}

func (h *Headless) Present(img *image.RGBA) error {
	h.frames++
	h.last = img
	return nil
}

func (h *Headless) Poll() Input {
	quit := h.stop.Load() || (h.maxFrames > 0 && h.frames >= h.maxFrames)
	return Input{Quit: quit}
}

// Stop requests quit on the next Poll. Safe from any goroutine.
func (h *Headless) Stop() { h.stop.Store(true) }

// Frames returns how many frames were presented.
func (h *Headless) Frames() int { return h.frames }

// Last returns the most recently presented frame.
func (h *Headless) Last() *image.RGBA { return h.last }

func (h *Headless) Close() error { return nil }
