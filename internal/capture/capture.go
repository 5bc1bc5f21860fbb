// Package capture writes screenshots and numbered video frames as PNG files.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrClosed is returned by Record after Close.
var ErrClosed = errors.New("capture: recorder closed")

// TimestampLayout names screenshot files.
const TimestampLayout = "2006-01-02-150405"

// Screenshotter saves single frames on demand.
type Screenshotter struct {
	outputDir string
	now       func() time.Time
}

// NewScreenshotter creates a screenshot handler writing into outputDir.
func NewScreenshotter(outputDir string) *Screenshotter {
	return &Screenshotter{outputDir: outputDir, now: time.Now}
}

// Filename generates a screenshot filename without saving.
func (s *Screenshotter) Filename(prefix string) string {
	name := fmt.Sprintf("%s-%s.png", prefix, s.now().Format(TimestampLayout))
	if s.outputDir != "" {
		name = filepath.Join(s.outputDir, name)
	}
	return name
}

// Save writes img as <prefix>-<timestamp>.png and returns the path.
func (s *Screenshotter) Save(img image.Image, prefix string) (string, error) {
	if s.outputDir != "" {
		if err := os.MkdirAll(s.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	path := s.Filename(prefix)
	if err := writePNG(path, img); err != nil {
		return "", err
	}
	return path, nil
}

// FrameRecorder writes every recorded frame to <dir>/frame_%06d.png on a
// background goroutine. Frames are copied before queuing so the caller may
// keep using its image.
type FrameRecorder struct {
	dir    string
	logger *zap.Logger

	queue chan frame
	wg    sync.WaitGroup

	mu     sync.Mutex // Guards next and closed; held while queuing
	next   int
	closed bool

	errMu sync.Mutex
	err   error
}

type frame struct {
	index int
	img   *image.RGBA
}

// NewFrameRecorder creates dir and starts the writer goroutine.
func NewFrameRecorder(dir string, logger *zap.Logger) (*FrameRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating frames dir: %w", err)
	}

	r := &FrameRecorder{
		dir:    dir,
		logger: logger,
		queue:  make(chan frame, 32),
	}
	r.wg.Add(1)
	go r.run()
	return r, nil
}

// FramePath returns the file name used for frame index i.
func (r *FrameRecorder) FramePath(i int) string {
	return filepath.Join(r.dir, fmt.Sprintf("frame_%06d.png", i))
}

// Record queues a copy of img. It blocks only when the writer falls behind.
func (r *FrameRecorder) Record(img image.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.queue <- frame{index: r.next, img: clone(img)}
	r.next++
	return nil
}

// Frames returns how many frames have been queued.
func (r *FrameRecorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.next
}

func (r *FrameRecorder) run() {
	defer r.wg.Done()
	for f := range r.queue {
		if err := writePNG(r.FramePath(f.index), f.img); err != nil {
			r.logger.Error("frame capture failed", zap.Int("frame", f.index), zap.Error(err))
			r.errMu.Lock()
			if r.err == nil {
				r.err = err
			}
			r.errMu.Unlock()
		}
	}
}

// Close flushes queued frames and returns the first write error.
func (r *FrameRecorder) Close() error {
	r.mu.Lock()
	wasClosed := r.closed
	if !wasClosed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	r.wg.Wait()
	if !wasClosed {
		r.logger.Info("frame capture finished", zap.Int("frames", r.Frames()), zap.String("dir", r.dir))
	}

	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.err
}

// Cleanup removes the frames directory. Call after Close.
func (r *FrameRecorder) Cleanup() error {
	return os.RemoveAll(r.dir)
}

func clone(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return file.Close()
}
