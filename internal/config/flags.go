package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Flags holds command-line overrides. A field overrides the config when its
// flag was given on the command line, or when code set it to a non-zero value.
type Flags struct {
	ConfigPath   string
	SaveConfig   string
	Scene        string
	Exposure     float64
	Width        int
	Height       int
	Device       string
	TargetFPS    int
	CameraPos    vecFlag
	CameraLookAt vecFlag
	MaxParticles int
	Capture      bool
	Display      string
	Serve        string
	Debug        bool
	LogFile      string
	ListScenes   bool
	MaxFrames    int

	given map[string]bool
}

// vecFlag parses "x,y,z"
type vecFlag struct {
	set bool
	v   [3]float64
}

func (f *vecFlag) String() string {
	if !f.set {
		return ""
	}
	return fmt.Sprintf("%g,%g,%g", f.v[0], f.v[1], f.v[2])
}

func (f *vecFlag) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fmt.Errorf("expected x,y,z, got %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("component %d of %q: %w", i, s, err)
		}
		f.v[i] = v
	}
	f.set = true
	return nil
}

// ParseFlags parses command-line arguments (without the program name).
func ParseFlags(name string, args []string, output io.Writer) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.StringVar(&f.SaveConfig, "save-config", "", "Write the resolved config to this path and exit")
	fs.StringVar(&f.Scene, "scene", "", "Scene to render (see --list-scenes)")
	fs.Float64Var(&f.Exposure, "exposure", 0, "Exposure applied before tone mapping (default 10)")
	fs.IntVar(&f.Width, "width", 0, "Image width (default 800)")
	fs.IntVar(&f.Height, "height", 0, "Image height (default 600)")
	fs.StringVar(&f.Device, "device", "", "Render device: cpu")
	fs.IntVar(&f.TargetFPS, "target-fps", 0, "Target frames per second (default 30)")
	fs.Var(&f.CameraPos, "camera-pos", "Initial camera position x,y,z")
	fs.Var(&f.CameraLookAt, "camera-lookat", "Initial camera look-at point x,y,z")
	fs.IntVar(&f.MaxParticles, "max-particles", 0, "Particle store capacity (default 500)")
	fs.BoolVar(&f.Capture, "capture", false, "Save every displayed frame to the frames directory")
	fs.StringVar(&f.Display, "display", "", "Display backend: sdl, terminal or headless")
	fs.StringVar(&f.Serve, "serve", "", "Serve a live preview on this address (e.g. 127.0.0.1:8080)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log-file", "", "Also write logs to this rotating file")
	fs.BoolVar(&f.ListScenes, "list-scenes", false, "List available scenes and exit")
	fs.IntVar(&f.MaxFrames, "frames", 0, "Stop after this many frames (headless display)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	f.given = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.given[fl.Name] = true })
	return f, nil
}

// Given reports whether the named flag appeared on the command line.
func (f *Flags) Given(name string) bool {
	return f.given[name]
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Given("scene") || f.Scene != "" {
		cfg.Scene.Name = f.Scene
	}
	if f.Given("exposure") || f.Exposure > 0 {
		cfg.Render.Exposure = f.Exposure
	}
	if f.Given("width") || f.Width > 0 {
		cfg.Render.Width = f.Width
	}
	if f.Given("height") || f.Height > 0 {
		cfg.Render.Height = f.Height
	}
	if f.Given("device") || f.Device != "" {
		cfg.Render.Device = f.Device
	}
	if f.Given("target-fps") || f.TargetFPS > 0 {
		cfg.Render.TargetFPS = f.TargetFPS
	}
	if f.CameraPos.set {
		cfg.Camera.Position = f.CameraPos.v
	}
	if f.CameraLookAt.set {
		cfg.Camera.LookAt = f.CameraLookAt.v
	}
	if f.Given("max-particles") || f.MaxParticles > 0 {
		cfg.Render.MaxParticles = f.MaxParticles
	}
	if f.Given("capture") || f.Capture {
		cfg.Capture.Enabled = f.Capture
	}
	if f.Given("display") || f.Display != "" {
		cfg.Display.Mode = f.Display
	}
	if f.Given("serve") || f.Serve != "" {
		cfg.Server.Enabled = f.Serve != ""
		if f.Serve != "" {
			cfg.Server.Addr = f.Serve
		}
	}
	switch {
	case f.Debug:
		cfg.Logging.Level = "debug"
	case f.Given("debug") && cfg.Logging.Level == "debug":
		cfg.Logging.Level = "info"
	}
	if f.Given("log-file") || f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.Given("frames") || f.MaxFrames > 0 {
		cfg.Display.MaxFrames = f.MaxFrames
	}
}
