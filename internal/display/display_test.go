package display

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap/zaptest"
)

func TestNew_UnknownMode(t *testing.T) {
	if _, err := New("vr", Options{}, zaptest.NewLogger(t)); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}

func TestHeadless(t *testing.T) {
	d, err := New("headless", Options{MaxFrames: 2}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h := d.(*Headless)

	if h.Poll().Quit {
		t.Error("should not quit before any frame")
	}
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	h.Present(img)
	if h.Poll().Quit {
		t.Error("should not quit after one of two frames")
	}
	h.Present(img)
	if !h.Poll().Quit {
		t.Error("should quit after max frames")
	}
	if h.Frames() != 2 || h.Last() != img {
		t.Errorf("unexpected frames %d / last %p", h.Frames(), h.Last())
	}

	unbounded := NewHeadless(0)
	unbounded.Present(img)
	if unbounded.Poll().Quit {
		t.Error("unbounded headless should run until stopped")
	}
	unbounded.Stop()
	if !unbounded.Poll().Quit {
		t.Error("expected quit after Stop")
	}
}

func TestInputHelpers(t *testing.T) {
	in := Input{Held: map[Key]bool{KeyW: true}, Pressed: []Key{KeyP, KeyC}}

	if !in.IsHeld(KeyW) || in.IsHeld(KeyS) {
		t.Error("unexpected held state")
	}
	if !in.WasPressed(KeyC) || in.WasPressed(KeyW) {
		t.Error("unexpected pressed state")
	}
	if (Input{}).IsHeld(KeyW) {
		t.Error("nil held map should report nothing held")
	}
}

func TestKeyFromRune(t *testing.T) {
	tests := []struct {
		r    rune
		want Key
	}{
		{'w', KeyW}, {'W', KeyW}, {'a', KeyA}, {'s', KeyS}, {'d', KeyD},
		{'q', KeyQ}, {'E', KeyE}, {'c', KeyC}, {'p', KeyP}, {'r', KeyR},
		{'x', KeyNone}, {'1', KeyNone},
	}
	for _, tt := range tests {
		if got := keyFromRune(tt.r); got != tt.want {
			t.Errorf("keyFromRune(%q) = %v, want %v", tt.r, got, tt.want)
		}
	}
}

func TestFlipRows(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(y), uint8(x), 0, 255})
		}
	}

	buf := flipRows(nil, img)
	if len(buf) != 2*3*4 {
		t.Fatalf("expected %d bytes, got %d", 2*3*4, len(buf))
	}
	// First row of the buffer is the last image row
	for row := 0; row < 3; row++ {
		if got := buf[row*8]; got != uint8(2-row) {
			t.Errorf("buffer row %d holds image row %d, want %d", row, got, 2-row)
		}
	}
	if len(flipRows(buf, img)) != len(buf) {
		t.Error("reused buffer changed size")
	}
}

func TestNormalizeCursor(t *testing.T) {
	x, y := normalizeCursor(200, 150, 800, 600)
	if x != 0.25 || y != 0.75 {
		t.Errorf("expected (0.25, 0.75), got (%f, %f)", x, y)
	}
	if x, y := normalizeCursor(5, 5, 0, 0); x != 0 || y != 0 {
		t.Errorf("expected zero for empty window, got (%f, %f)", x, y)
	}
}

func newSimTerminal(t *testing.T) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	term, err := NewTerminal(screen, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewTerminal failed: %v", err)
	}
	screen.SetSize(4, 2)
	t.Cleanup(func() { term.Close() })
	return term, screen
}

func TestTerminal_PresentHalfBlocks(t *testing.T) {
	term, screen := newSimTerminal(t)

	// 4x4 image: top half red, bottom half blue
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := color.RGBA{255, 0, 0, 255}
			if y >= 2 {
				c = color.RGBA{0, 0, 255, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	if err := term.Present(img); err != nil {
		t.Fatalf("Present failed: %v", err)
	}

	r, _, style, _ := screen.GetContent(1, 0)
	if r != '▀' {
		t.Errorf("expected half block, got %q", r)
	}
	fg, bg, _ := style.Decompose()
	if fg != tcell.NewRGBColor(255, 0, 0) || bg != tcell.NewRGBColor(255, 0, 0) {
		t.Errorf("top row should be red on red, got fg=%v bg=%v", fg, bg)
	}
	_, _, style, _ = screen.GetContent(1, 1)
	if fg, bg, _ := style.Decompose(); fg != tcell.NewRGBColor(0, 0, 255) || bg != tcell.NewRGBColor(0, 0, 255) {
		t.Errorf("bottom row should be blue on blue, got fg=%v bg=%v", fg, bg)
	}
}

func TestTerminal_PollKeys(t *testing.T) {
	term, screen := newSimTerminal(t)

	screen.InjectKey(tcell.KeyRune, 'w', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'p', tcell.ModNone)

	var pressed []Key
	deadline := time.Now().Add(time.Second)
	for len(pressed) < 2 && time.Now().Before(deadline) {
		in := term.Poll()
		pressed = append(pressed, in.Pressed...)
		time.Sleep(5 * time.Millisecond)
	}
	if len(pressed) != 2 || pressed[0] != KeyW || pressed[1] != KeyP {
		t.Fatalf("expected [W P], got %v", pressed)
	}

	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	deadline = time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if term.Poll().Quit {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("expected Escape to request quit")
}
