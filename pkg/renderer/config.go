package renderer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/df07/go-particle-renderer/pkg/core"
	"github.com/df07/go-particle-renderer/pkg/scene"
)

// ErrInvalidConfiguration is returned by New for unusable settings
var ErrInvalidConfiguration = errors.New("invalid renderer configuration")

// DeviceCPU is the only supported render backend
const DeviceCPU = "cpu"

// Vignette darkens pixels by distance from Center (in [0,1]² image coordinates)
type Vignette struct {
	Strength float64
	Radius   float64
	Center   core.Vec2
}

// DefaultVignette returns strength 0.9 centered on the image
func DefaultVignette() Vignette {
	return Vignette{Strength: 0.9, Radius: 0, Center: core.NewVec2(0.5, 0.5)}
}

// Config contains everything the renderer needs at construction
type Config struct {
	Width              int              // Image width in pixels
	Height             int              // Image height in pixels
	Exposure           float64          // Linear scale applied before the square-root tone map
	TargetFPS          int              // Frame rate the sample scheduler aims for
	MaxParticles       int              // Particle store capacity
	Device             string           // Render backend, "cpu"
	NumWorkers         int              // Number of parallel workers (0 = use CPU count)
	TileSize           int              // Size of each tile in pixels
	MaxSamplesPerFrame int              // Upper bound for samples per frame (0 = unbounded)
	Camera             scene.CameraPose // Initial camera pose
	Vignette           Vignette
}

// DefaultConfig returns an 800x600 CPU renderer at 30 fps
func DefaultConfig() Config {
	return Config{
		Width:        800,
		Height:       600,
		Exposure:     10,
		TargetFPS:    30,
		MaxParticles: 500,
		Device:       DeviceCPU,
		NumWorkers:   0,
		TileSize:     32,
		Camera:       scene.NewCameraPose(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 0)),
		Vignette:     DefaultVignette(),
	}
}

// Validate reports the first unusable field
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: resolution must be positive, got %dx%d", ErrInvalidConfiguration, c.Width, c.Height)
	case c.MaxParticles <= 0:
		return fmt.Errorf("%w: max particles must be positive, got %d", ErrInvalidConfiguration, c.MaxParticles)
	case c.TargetFPS <= 0:
		return fmt.Errorf("%w: target fps must be positive, got %d", ErrInvalidConfiguration, c.TargetFPS)
	case c.Exposure < 0:
		return fmt.Errorf("%w: exposure must not be negative, got %g", ErrInvalidConfiguration, c.Exposure)
	case c.TileSize <= 0:
		return fmt.Errorf("%w: tile size must be positive, got %d", ErrInvalidConfiguration, c.TileSize)
	case c.NumWorkers < 0 || c.MaxSamplesPerFrame < 0:
		return fmt.Errorf("%w: workers and sample cap must not be negative", ErrInvalidConfiguration)
	case c.Camera.Degenerate():
		return fmt.Errorf("%w: camera position and look-at must differ and not be parallel to up", ErrInvalidConfiguration)
	}

	switch strings.ToLower(c.Device) {
	case DeviceCPU:
	case "gpu":
		return fmt.Errorf("%w: device %q is not supported by this build, use %q", ErrInvalidConfiguration, c.Device, DeviceCPU)
	default:
		return fmt.Errorf("%w: unknown device %q", ErrInvalidConfiguration, c.Device)
	}
	return nil
}
