//go:build !nosdl

package display

import (
	"fmt"
	"image"
	"runtime"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"
)

func init() {
	// SDL and OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

var sdlKeys = map[sdl.Keycode]Key{
	sdl.K_w: KeyW,
	sdl.K_a: KeyA,
	sdl.K_s: KeyS,
	sdl.K_d: KeyD,
	sdl.K_q: KeyQ,
	sdl.K_e: KeyE,
	sdl.K_c: KeyC,
	sdl.K_p: KeyP,
	sdl.K_r: KeyR,
}

// Window is an SDL2 window with a legacy OpenGL context. Frames are
// uploaded with glDrawPixels, scaled to the window size.
type Window struct {
	logger    *zap.Logger
	sdlWindow *sdl.Window
	glContext sdl.GLContext

	flipped   []byte // Bottom-up copy of the last frame
	held      map[Key]bool
	mouseDown bool
	mouseX    float64
	mouseY    float64
}

// NewWindow opens a window of opts.Width x opts.Height.
func NewWindow(opts Options, logger *zap.Logger) (*Window, error) {
	w := &Window{logger: logger, held: make(map[Key]bool)}

	logger.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// DrawPixels needs a compatibility context
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 2)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		opts.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(opts.Width),
		int32(opts.Height),
		sdl.WINDOW_OPENGL|sdl.WINDOW_RESIZABLE,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	if err := gl.Init(); err != nil {
		w.Close()
		return nil, fmt.Errorf("OpenGL init failed: %w", err)
	}
	// The render loop paces itself
	sdl.GLSetSwapInterval(0)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	logger.Info("window created",
		zap.String("title", opts.Title),
		zap.Int("width", opts.Width),
		zap.Int("height", opts.Height),
		zap.String("gl", gl.GoStr(gl.GetString(gl.VERSION))))

	return w, nil
}

// Present draws img stretched over the whole window.
func (w *Window) Present(img *image.RGBA) error {
	width, height := img.Rect.Dx(), img.Rect.Dy()
	if width == 0 || height == 0 {
		return nil
	}
	w.flipped = flipRows(w.flipped, img)

	winW, winH := w.sdlWindow.GetSize()
	gl.Viewport(0, 0, winW, winH)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.RasterPos2f(-1, -1)
	gl.PixelZoom(float32(winW)/float32(width), float32(winH)/float32(height))
	gl.DrawPixels(int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(w.flipped))

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("glDrawPixels failed: 0x%x", code)
	}
	w.sdlWindow.GLSwap()
	return nil
}

// Poll drains pending SDL events.
func (w *Window) Poll() Input {
	in := Input{}

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			in.Quit = true

		case *sdl.KeyboardEvent:
			pressed := e.State == sdl.PRESSED
			if e.Keysym.Sym == sdl.K_ESCAPE {
				in.Quit = in.Quit || pressed
				continue
			}
			k, ok := sdlKeys[e.Keysym.Sym]
			if !ok {
				continue
			}
			if !pressed {
				delete(w.held, k)
				continue
			}
			if e.Repeat == 0 {
				in.Pressed = append(in.Pressed, k)
			}
			w.held[k] = true

		case *sdl.MouseMotionEvent:
			w.setCursor(e.X, e.Y)

		case *sdl.MouseButtonEvent:
			if e.Button != sdl.BUTTON_LEFT {
				continue
			}
			w.mouseDown = e.State == sdl.PRESSED
			w.setCursor(e.X, e.Y)
		}
	}

	in.Held = make(map[Key]bool, len(w.held))
	for k := range w.held {
		in.Held[k] = true
	}
	in.MouseDown = w.mouseDown
	in.MouseX, in.MouseY = w.mouseX, w.mouseY
	return in
}

func (w *Window) setCursor(x, y int32) {
	winW, winH := w.sdlWindow.GetSize()
	w.mouseX, w.mouseY = normalizeCursor(int(x), int(y), int(winW), int(winH))
}

// Close destroys the window and cleans up SDL2.
func (w *Window) Close() error {
	w.logger.Info("closing window")

	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}

	sdl.Quit()
	return nil
}
