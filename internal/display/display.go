// Package display presents rendered frames and collects camera input.
package display

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"
)

var (
	// ErrUnknownMode is returned by New for an unrecognized backend name.
	ErrUnknownMode = errors.New("unknown display mode")
	// ErrSDLUnavailable is returned for the sdl backend in builds tagged nosdl.
	ErrSDLUnavailable = errors.New("sdl display not compiled in (built with -tags nosdl)")
)

// Key identifies the keys the app reacts to.
type Key uint8

const (
	KeyNone Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyQ
	KeyE
	KeyC
	KeyP
	KeyR
)

var keyNames = map[Key]string{
	KeyW: "W", KeyA: "A", KeyS: "S", KeyD: "D", KeyQ: "Q",
	KeyE: "E", KeyC: "C", KeyP: "P", KeyR: "R",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "None"
}

// keyFromRune maps letters in either case.
func keyFromRune(r rune) Key {
	switch r {
	case 'w', 'W':
		return KeyW
	case 'a', 'A':
		return KeyA
	case 's', 'S':
		return KeyS
	case 'd', 'D':
		return KeyD
	case 'q', 'Q':
		return KeyQ
	case 'e', 'E':
		return KeyE
	case 'c', 'C':
		return KeyC
	case 'p', 'P':
		return KeyP
	case 'r', 'R':
		return KeyR
	}
	return KeyNone
}

// Input is the state collected by one Poll.
type Input struct {
	Quit    bool
	Held    map[Key]bool // Keys down at poll time
	Pressed []Key        // Key-down events since the previous poll, in order

	// Left button state and cursor in [0,1]², Y pointing up
	MouseDown      bool
	MouseX, MouseY float64
}

// IsHeld reports whether k is down.
func (in Input) IsHeld(k Key) bool {
	return in.Held[k]
}

// WasPressed reports whether k went down since the previous poll.
func (in Input) WasPressed(k Key) bool {
	for _, p := range in.Pressed {
		if p == k {
			return true
		}
	}
	return false
}

// Display shows frames. All methods are called from one goroutine.
type Display interface {
	Present(img *image.RGBA) error
	Poll() Input
	Close() error
}

// Options configures a backend.
type Options struct {
	Title     string
	Width     int
	Height    int
	MaxFrames int // Headless only: request quit after this many frames
}

// New creates the backend named mode: "sdl", "terminal" or "headless".
func New(mode string, opts Options, logger *zap.Logger) (Display, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch mode {
	case "sdl":
		w, err := NewWindow(opts, logger)
		if err != nil {
			return nil, err
		}
		return w, nil
	case "terminal":
		t, err := NewTerminal(nil, logger)
		if err != nil {
			return nil, err
		}
		return t, nil
	case "headless":
		return NewHeadless(opts.MaxFrames), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

// flipRows copies img into buf bottom row first, the order OpenGL expects.
func flipRows(buf []byte, img *image.RGBA) []byte {
	width, height := img.Rect.Dx(), img.Rect.Dy()
	rowSize := width * 4
	if cap(buf) < rowSize*height {
		buf = make([]byte, rowSize*height)
	}
	buf = buf[:rowSize*height]

	for y := 0; y < height; y++ {
		src := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+height-1-y)
		copy(buf[y*rowSize:(y+1)*rowSize], img.Pix[src:src+rowSize])
	}
	return buf
}

// normalizeCursor maps window pixels to [0,1]² with Y up.
func normalizeCursor(x, y, width, height int) (float64, float64) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return float64(x) / float64(width), 1 - float64(y)/float64(height)
}
