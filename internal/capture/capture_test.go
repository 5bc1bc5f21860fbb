package capture

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func testImage(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("failed to decode %s: %v", path, err)
	}
	return img
}

func TestScreenshotter_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "screenshot")
	s := NewScreenshotter(dir)
	s.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	path, err := s.Save(testImage(color.RGBA{255, 0, 0, 255}), "HelloWorld")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	want := filepath.Join(dir, "HelloWorld-2024-05-06-070809.png")
	if path != want {
		t.Errorf("expected %s, got %s", want, path)
	}
	img := readPNG(t, path)
	if r, _, _, _ := img.At(1, 1).RGBA(); r != 0xffff {
		t.Errorf("expected red pixel, got %v", img.At(1, 1))
	}
}

func TestFrameRecorder_RecordsSequentialFrames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	r, err := NewFrameRecorder(dir, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewFrameRecorder failed: %v", err)
	}

	colors := []color.RGBA{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}}
	for _, c := range colors {
		if err := r.Record(testImage(c)); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	for i, c := range colors {
		path := r.FramePath(i)
		if !strings.HasSuffix(path, "frame_00000"+string(rune('0'+i))+".png") {
			t.Errorf("unexpected frame name %s", path)
		}
		got := color.RGBAModel.Convert(readPNG(t, path).At(0, 0)).(color.RGBA)
		if got != c {
			t.Errorf("frame %d: expected %v, got %v", i, c, got)
		}
	}
}

func TestFrameRecorder_CopiesSource(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	r, err := NewFrameRecorder(dir, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewFrameRecorder failed: %v", err)
	}

	img := testImage(color.RGBA{10, 20, 30, 255})
	if err := r.Record(img); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	// Overwrite the caller's image before the writer runs
	img.SetRGBA(0, 0, color.RGBA{200, 200, 200, 255})
	r.Close()

	got := color.RGBAModel.Convert(readPNG(t, r.FramePath(0)).At(0, 0)).(color.RGBA)
	if got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("recorded frame changed with the source image: %v", got)
	}
	if img.RGBAAt(1, 1) != (color.RGBA{10, 20, 30, 255}) {
		t.Error("recording must not modify the source image")
	}
}

func TestFrameRecorder_CloseAndCleanup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	r, err := NewFrameRecorder(dir, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewFrameRecorder failed: %v", err)
	}
	r.Record(testImage(color.RGBA{A: 255}))

	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	if err := r.Record(testImage(color.RGBA{A: 255})); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if r.Frames() != 1 {
		t.Errorf("expected 1 frame, got %d", r.Frames())
	}

	if err := r.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("expected frames dir removed, stat err = %v", err)
	}
}
