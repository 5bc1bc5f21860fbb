package display

import (
	"image"
	"image/color"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

// Terminal draws frames with half-block characters in true color, two
// image rows per terminal cell. Terminals report no key releases, so a key
// counts as held only in the poll that saw it.
type Terminal struct {
	screen tcell.Screen
	logger *zap.Logger
	events chan tcell.Event
	quit   chan struct{}

	mouseDown      bool
	mouseX, mouseY float64
}

// NewTerminal takes over screen, or the controlling terminal when screen is nil.
func NewTerminal(screen tcell.Screen, logger *zap.Logger) (*Terminal, error) {
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return nil, err
		}
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.HideCursor()
	screen.Clear()

	t := &Terminal{
		screen: screen,
		logger: logger,
		events: make(chan tcell.Event, 100),
		quit:   make(chan struct{}),
	}
	go t.pump()

	w, h := screen.Size()
	logger.Info("terminal display ready", zap.Int("cols", w), zap.Int("rows", h))
	return t, nil
}

func (t *Terminal) pump() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case t.events <- ev:
		case <-t.quit:
			return
		}
	}
}

// Present scales img to the terminal with nearest sampling.
func (t *Terminal) Present(img *image.RGBA) error {
	cols, rows := t.screen.Size()
	drawHalfBlocks(t.screen, img, cols, rows)
	t.screen.Show()
	return nil
}

func drawHalfBlocks(screen tcell.Screen, img *image.RGBA, cols, rows int) {
	b := img.Rect
	if cols <= 0 || rows <= 0 || b.Empty() {
		return
	}
	sample := func(cx, py int) color.RGBA {
		x := b.Min.X + cx*b.Dx()/cols
		y := b.Min.Y + py*b.Dy()/(rows*2)
		return img.RGBAAt(x, y)
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := sample(col, row*2)
			bottom := sample(col, row*2+1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			screen.SetContent(col, row, '▀', nil, style)
		}
	}
}

// Poll drains pending terminal events without blocking.
func (t *Terminal) Poll() Input {
	in := Input{Held: make(map[Key]bool)}

	for {
		select {
		case ev := <-t.events:
			t.handle(ev, &in)
		default:
			in.MouseDown = t.mouseDown
			in.MouseX, in.MouseY = t.mouseX, t.mouseY
			return in
		}
	}
}

func (t *Terminal) handle(ev tcell.Event, in *Input) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			in.Quit = true
			return
		}
		if ev.Key() != tcell.KeyRune {
			return
		}
		if k := keyFromRune(ev.Rune()); k != KeyNone {
			in.Pressed = append(in.Pressed, k)
			in.Held[k] = true
		}

	case *tcell.EventMouse:
		cols, rows := t.screen.Size()
		x, y := ev.Position()
		t.mouseDown = ev.Buttons()&tcell.Button1 != 0
		t.mouseX, t.mouseY = normalizeCursor(x, y, cols, rows)

	case *tcell.EventResize:
		t.screen.Sync()
	}
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	close(t.quit)
	t.screen.Fini()
	return nil
}
