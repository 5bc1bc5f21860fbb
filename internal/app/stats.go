package app

import (
	"time"

	"github.com/df07/go-particle-renderer/pkg/renderer"
	"go.uber.org/zap"
)

// statsWindow aggregates frames between periodic log lines
type statsWindow struct {
	start   time.Time
	frames  int
	samples int
	resets  int
}

func (a *App) observe(stats renderer.FrameStats) {
	w := &a.window
	w.frames++
	w.samples += stats.Samples
	if stats.Reset {
		w.resets++
	}

	elapsed := time.Since(w.start)
	if elapsed < a.statsInterval {
		return
	}
	a.logger.Info("frame stats",
		zap.Float64("fps", float64(w.frames)/elapsed.Seconds()),
		zap.Float64("spp", float64(w.samples)/float64(w.frames)),
		zap.Int("accumulated", stats.SamplesAccumulated),
		zap.Int("resets", w.resets),
		zap.Int("particles", stats.Particles),
		zap.Int("dropped", stats.Dropped))
	*w = statsWindow{start: time.Now()}
}
