// Package config handles renderer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/df07/go-particle-renderer/pkg/core"
	"github.com/df07/go-particle-renderer/pkg/renderer"
	"github.com/df07/go-particle-renderer/pkg/scene"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Display modes.
const (
	DisplaySDL      = "sdl"
	DisplayTerminal = "terminal"
	DisplayHeadless = "headless"
)

// Config holds all settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Scene   SceneConfig   `yaml:"scene"`
	Camera  CameraConfig  `yaml:"camera"`
	Display DisplayConfig `yaml:"display"`
	Capture CaptureConfig `yaml:"capture"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig holds image and sampling settings.
type RenderConfig struct {
	Width              int     `yaml:"width"`
	Height             int     `yaml:"height"`
	Exposure           float64 `yaml:"exposure"`
	Device             string  `yaml:"device"`
	TargetFPS          int     `yaml:"target_fps"`
	MaxParticles       int     `yaml:"max_particles"`
	Workers            int     `yaml:"workers"` // 0 = CPU count
	TileSize           int     `yaml:"tile_size"`
	MaxSamplesPerFrame int     `yaml:"max_samples_per_frame"`
	Vignette           float64 `yaml:"vignette"` // Strength in [0,1]
}

// SceneConfig selects the scene variant.
type SceneConfig struct {
	Name string `yaml:"name"`
}

// CameraConfig holds the initial camera pose.
type CameraConfig struct {
	Position [3]float64 `yaml:"position"`
	LookAt   [3]float64 `yaml:"look_at"`
}

// DisplayConfig selects the presentation backend.
type DisplayConfig struct {
	Mode      string `yaml:"mode"` // sdl, terminal or headless
	Title     string `yaml:"title"`
	MaxFrames int    `yaml:"max_frames"` // Stop after this many frames, 0 = run until quit
}

// CaptureConfig holds screenshot and frame capture settings.
type CaptureConfig struct {
	Enabled       bool   `yaml:"enabled"`
	FramesDir     string `yaml:"frames_dir"`
	KeepFrames    bool   `yaml:"keep_frames"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// ServerConfig holds the live preview server settings.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:        800,
			Height:       600,
			Exposure:     10,
			Device:       renderer.DeviceCPU,
			TargetFPS:    30,
			MaxParticles: 500,
			TileSize:     32,
			Vignette:     0.9,
		},
		Scene: SceneConfig{
			Name: "HelloWorld",
		},
		Camera: CameraConfig{
			Position: [3]float64{0, 0, 1},
			LookAt:   [3]float64{0, 0, 0},
		},
		Display: DisplayConfig{
			Mode:  DisplaySDL,
			Title: "Particle Renderer",
		},
		Capture: CaptureConfig{
			FramesDir:     "video/frames",
			ScreenshotDir: "screenshot",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks settings that the renderer does not own.
func (c *Config) Validate() error {
	switch c.Display.Mode {
	case DisplaySDL, DisplayTerminal, DisplayHeadless:
	default:
		return fmt.Errorf("%w: unknown display mode %q", ErrInvalid, c.Display.Mode)
	}
	if strings.TrimSpace(c.Scene.Name) == "" {
		return fmt.Errorf("%w: scene name is required", ErrInvalid)
	}
	if c.Render.Vignette < 0 || c.Render.Vignette > 1 {
		return fmt.Errorf("%w: vignette must be in [0,1], got %g", ErrInvalid, c.Render.Vignette)
	}
	if c.Capture.Enabled && c.Capture.FramesDir == "" {
		return fmt.Errorf("%w: capture needs a frames directory", ErrInvalid)
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		return fmt.Errorf("%w: server needs an address", ErrInvalid)
	}
	if err := c.RendererConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// RendererConfig converts the render and camera sections.
func (c *Config) RendererConfig() renderer.Config {
	rc := renderer.DefaultConfig()
	rc.Width = c.Render.Width
	rc.Height = c.Render.Height
	rc.Exposure = c.Render.Exposure
	rc.Device = c.Render.Device
	rc.TargetFPS = c.Render.TargetFPS
	rc.MaxParticles = c.Render.MaxParticles
	rc.NumWorkers = c.Render.Workers
	rc.TileSize = c.Render.TileSize
	rc.MaxSamplesPerFrame = c.Render.MaxSamplesPerFrame
	rc.Vignette.Strength = c.Render.Vignette
	rc.Camera = scene.NewCameraPose(vec(c.Camera.Position), vec(c.Camera.LookAt))
	return rc
}

func vec(v [3]float64) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}
