package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/df07/go-particle-renderer/internal/config"
	"github.com/df07/go-particle-renderer/internal/display"
	"github.com/df07/go-particle-renderer/internal/logger"
	"github.com/df07/go-particle-renderer/pkg/renderer"
	"github.com/df07/go-particle-renderer/pkg/scene"
	"github.com/df07/go-particle-renderer/web/server"
	"go.uber.org/zap"
)

// ErrUsage marks command-line errors; the flag package has already printed them.
var ErrUsage = errors.New("usage error")

// Execute parses args, builds the renderer and runs the loop until quit.
// preset may adjust flags before the config is loaded.
func Execute(name string, args []string, stdout, stderr io.Writer, preset func(*config.Flags)) error {
	flags, err := config.ParseFlags(name, args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if preset != nil {
		preset(flags)
	}

	if flags.ListScenes {
		ListScenes(stdout)
		return nil
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}
	if flags.SaveConfig != "" {
		if err := cfg.SaveTo(flags.SaveConfig); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintf(stdout, "Config written to %s\n", flags.SaveConfig)
		return nil
	}

	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	// The terminal display owns stdout
	console := cfg.Display.Mode != config.DisplayTerminal
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, console); err != nil {
		return err
	}
	defer logger.Sync()

	var webConsole *server.Console
	if cfg.Server.Enabled {
		webConsole = server.NewConsole()
		logger.Attach(webConsole.Core(logger.Level()))
	}

	if console {
		PrintBanner(stdout)
	}

	strategy, err := scene.Lookup(cfg.Scene.Name)
	if err != nil {
		return err
	}

	r, err := renderer.New(cfg.RendererConfig(), strategy, logger.Named("renderer"))
	if err != nil {
		return err
	}
	defer r.Close()

	if cfg.Server.Enabled {
		srv := server.NewServer(r, strategy.Name(), webConsole, logger.Named("server"))
		go func() {
			if err := srv.Start(cfg.Server.Addr); err != nil {
				logger.Error("preview server stopped", zap.Error(err))
			}
		}()
		defer shutdownServer(srv, 2*time.Second, logger.Named("server"))
	}

	d, err := display.New(cfg.Display.Mode, display.Options{
		Title:     fmt.Sprintf("%s - %s", cfg.Display.Title, strategy.Name()),
		Width:     cfg.Render.Width,
		Height:    cfg.Render.Height,
		MaxFrames: cfg.Display.MaxFrames,
	}, logger.Named("display"))
	if err != nil {
		return err
	}

	opts := Options{
		ScreenshotDir: cfg.Capture.ScreenshotDir,
		KeepFrames:    cfg.Capture.KeepFrames,
	}
	if cfg.Capture.Enabled {
		opts.CaptureDir = cfg.Capture.FramesDir
	}
	a, err := New(r, d, opts, logger.Named("app"))
	if err != nil {
		d.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := a.Run(ctx)
	if err := a.Close(); err != nil && runErr == nil {
		runErr = err
	}
	logger.Info("shutdown complete", zap.Int64("frames", r.Stats().Frame))
	return runErr
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdownServer stops srv within timeout and logs a failed shutdown
func shutdownServer(srv shutdowner, timeout time.Duration, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("preview server shutdown failed", zap.Error(err))
	}
}

// ListScenes prints the scene registry
func ListScenes(w io.Writer) {
	fmt.Fprintln(w, "Available scenes:")
	for _, info := range scene.List() {
		kind := "static"
		if info.Dynamic {
			kind = "dynamic"
		}
		fmt.Fprintf(w, "  %-12s %-8s %s\n", info.Name, kind, info.Description)
	}
}
