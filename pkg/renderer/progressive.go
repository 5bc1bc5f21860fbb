package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand"
	"sync"
	"time"

	"github.com/df07/go-particle-renderer/pkg/core"
	"github.com/df07/go-particle-renderer/pkg/integrator"
	"github.com/df07/go-particle-renderer/pkg/particles"
	"github.com/df07/go-particle-renderer/pkg/scene"
	"go.uber.org/zap"
)

// Renderer runs the per-frame pipeline: update particles, recompute bounds,
// reset accumulation on change, trace a batch of samples and tone-map.
// Frame, Restart and Close are called from one goroutine; Image and Stats
// may be read from any goroutine.
type Renderer struct {
	config   Config
	logger   *zap.Logger
	strategy scene.Strategy

	state   *scene.State
	store   *particles.Store
	physics *particles.Integrator
	env     *scene.Env
	bounds  core.AABB

	tracer    *integrator.PathTracer
	buffer    *AccumulationBuffer
	scheduler *FrameScheduler
	tiles     []*Tile
	pool      *WorkerPool

	renderedVersion uint64
	needsReset      bool
	frameCount      int64

	mu    sync.RWMutex
	image *image.RGBA
	stats FrameStats

	closeOnce sync.Once
}

// New validates config, configures the scene and fills the particle store
func New(config Config, strategy scene.Strategy, logger *zap.Logger) (*Renderer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if strategy == nil {
		return nil, fmt.Errorf("%w: no scene", ErrInvalidConfiguration)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	state := scene.NewState()
	if err := strategy.Configure(state); err != nil {
		if !errors.Is(err, scene.ErrDegenerateGeometry) {
			return nil, fmt.Errorf("configure scene %s: %w", strategy.Name(), err)
		}
		logger.Warn("directional light disabled", zap.String("scene", strategy.Name()), zap.Error(err))
	}
	state.SetCamera(config.Camera)

	store, err := particles.NewStore(config.MaxParticles, logger.Named("particles"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	physics := particles.NewIntegrator()
	physics.Workers = config.NumWorkers

	tracer := integrator.NewPathTracer()
	tiles := NewTileGrid(config.Width, config.Height, config.TileSize)

	r := &Renderer{
		config:   config,
		logger:   logger,
		strategy: strategy,
		state:    state,
		store:    store,
		physics:  physics,
		env: &scene.Env{
			State:   state,
			Store:   store,
			Physics: physics,
			Rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
			Logger:  logger.Named("scene"),
		},
		tracer:    tracer,
		buffer:    NewAccumulationBuffer(config.Width, config.Height, config.Vignette),
		scheduler: NewFrameScheduler(float64(config.TargetFPS), config.MaxSamplesPerFrame),
		tiles:     tiles,
		pool:      NewWorkerPool(tracer, len(tiles), config.NumWorkers),
	}

	if err := r.initialize(); err != nil {
		return nil, err
	}
	r.pool.Start()

	logger.Info("renderer ready",
		zap.String("scene", strategy.Name()),
		zap.Int("width", config.Width),
		zap.Int("height", config.Height),
		zap.Int("tiles", len(tiles)),
		zap.Int("workers", r.pool.GetNumWorkers()),
		zap.Int("particles", store.Count()),
		zap.Int("capacity", store.Capacity()))
	return r, nil
}

func (r *Renderer) initialize() error {
	if err := r.strategy.InitializeParticles(r.env); err != nil {
		return fmt.Errorf("initialize particles for %s: %w", r.strategy.Name(), err)
	}
	r.RecomputeBounds()
	r.needsReset = true
	return nil
}

// Restart clears the store and runs the scene's particle setup again
func (r *Renderer) Restart() error {
	r.store.Reset()
	r.logger.Info("scene restarted", zap.String("scene", r.strategy.Name()))
	return r.initialize()
}

// RecomputeBounds refreshes the whole-scene bounding box from the store
func (r *Renderer) RecomputeBounds() core.AABB {
	r.bounds = particles.Bounds(r.store.Active())
	return r.bounds
}

// Bounds returns the last computed bounding box
func (r *Renderer) Bounds() core.AABB { return r.bounds }

// Scene returns the mutable scene state
func (r *Renderer) Scene() *scene.State { return r.state }

// Particles returns the particle store
func (r *Renderer) Particles() *particles.Store { return r.store }

// Strategy returns the scene variant being rendered
func (r *Renderer) Strategy() scene.Strategy { return r.strategy }

// Config returns the construction settings
func (r *Renderer) Config() Config { return r.config }

// Frame renders one frame. The context is checked before any work starts.
func (r *Renderer) Frame(ctx context.Context) (FrameStats, error) {
	if err := ctx.Err(); err != nil {
		return FrameStats{}, err
	}

	// Integrate and recompute bounds before deciding on a reset
	moved := false
	if r.store.Count() > 0 {
		dt := 1.0 / float64(r.config.TargetFPS)
		moved = r.strategy.UpdateParticles(r.env, dt)
	}
	if moved {
		r.RecomputeBounds()
	}

	reset := moved || r.needsReset || r.state.Version() != r.renderedVersion
	if reset {
		r.buffer.Reset()
		r.renderedVersion = r.state.Version()
		r.needsReset = false
	}

	samples := r.scheduler.Samples()
	start := time.Now()

	rays, err := r.accumulate(samples)
	if err != nil {
		// Partially written pixels cannot be trusted
		r.needsReset = true
		return FrameStats{}, err
	}
	img := r.buffer.Image(r.config.Exposure)

	elapsed := time.Since(start)
	next := r.scheduler.Observe(elapsed)
	r.frameCount++

	stats := FrameStats{
		Frame:              r.frameCount,
		Samples:            samples,
		SamplesAccumulated: r.buffer.Samples(),
		NextSamples:        next,
		Reset:              reset,
		ParticlesMoved:     moved,
		Particles:          r.store.Count(),
		Dropped:            r.store.Dropped(),
		RayCount:           rays,
		Elapsed:            elapsed,
	}

	r.mu.Lock()
	r.image = img
	r.stats = stats
	r.mu.Unlock()

	return stats, nil
}

// accumulate traces samples passes over every tile and commits them to the buffer
func (r *Renderer) accumulate(samples int) (int, error) {
	frame := integrator.NewFrame(r.state, r.store.Active(), r.bounds, r.config.Width, r.config.Height)

	for i, tile := range r.tiles {
		r.pool.SubmitTask(TileTask{
			Tile:    tile,
			Frame:   frame,
			Samples: samples,
			TaskID:  i,
			Buffer:  r.buffer,
		})
	}

	// Wait for every tile even after a failure so no worker still writes the buffer
	var firstErr error
	rays := 0
	for range r.tiles {
		result, ok := r.pool.GetResult()
		if !ok {
			return rays, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil && firstErr == nil {
			firstErr = result.Error
		}
		rays += result.Samples
	}
	if firstErr != nil {
		return rays, firstErr
	}

	r.buffer.CompletePasses(samples)
	return rays, nil
}

// Image returns the most recent tone-mapped frame, nil before the first frame.
// The image is never modified after it is returned.
func (r *Renderer) Image() *image.RGBA {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.image
}

// Stats returns the statistics of the most recent frame
func (r *Renderer) Stats() FrameStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

// Close stops the worker pool
func (r *Renderer) Close() {
	r.closeOnce.Do(func() {
		r.pool.Stop()
		r.logger.Debug("renderer closed", zap.Int64("frames", r.frameCount))
	})
}
