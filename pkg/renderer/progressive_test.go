package renderer

import (
	"context"
	"errors"
	"testing"

	"github.com/df07/go-particle-renderer/pkg/core"
	"github.com/df07/go-particle-renderer/pkg/scene"
	"go.uber.org/zap/zaptest"
)

func smallConfig() Config {
	config := DefaultConfig()
	config.Width = 16
	config.Height = 12
	config.TileSize = 8
	config.NumWorkers = 2
	config.MaxParticles = 100
	config.MaxSamplesPerFrame = 2
	return config
}

func newTestRenderer(t *testing.T, config Config, strategy scene.Strategy) *Renderer {
	t.Helper()
	r, err := New(config, strategy, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

func TestNew_InvalidConfig(t *testing.T) {
	config := smallConfig()
	config.MaxParticles = 0

	_, err := New(config, &scene.SphereGrid{}, zaptest.NewLogger(t))
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
	}

	_, err = New(smallConfig(), nil, zaptest.NewLogger(t))
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration for missing scene, got %v", err)
	}
}

func TestRenderer_StaticSceneAccumulates(t *testing.T) {
	r := newTestRenderer(t, smallConfig(), &scene.SphereGrid{})

	if r.Particles().Count() != 49 {
		t.Fatalf("Expected 49 particles, got %d", r.Particles().Count())
	}
	if b := r.Bounds(); b.Max.X <= b.Min.X || b.Max.Y <= b.Min.Y {
		t.Fatalf("Expected non-empty bounds after initialization, got %v", b)
	}
	if r.Image() != nil {
		t.Error("Expected no image before the first frame")
	}

	ctx := context.Background()
	first, err := r.Frame(ctx)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if !first.Reset {
		t.Error("First frame should reset accumulation")
	}
	if first.SamplesAccumulated != first.Samples {
		t.Errorf("Expected %d accumulated samples, got %d", first.Samples, first.SamplesAccumulated)
	}
	if first.RayCount != 16*12*first.Samples {
		t.Errorf("Expected %d primary samples, got %d", 16*12*first.Samples, first.RayCount)
	}

	second, err := r.Frame(ctx)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if second.Reset || second.ParticlesMoved {
		t.Errorf("Static scene should keep accumulating: %+v", second)
	}
	if second.SamplesAccumulated != first.SamplesAccumulated+second.Samples {
		t.Errorf("Expected %d accumulated samples, got %d",
			first.SamplesAccumulated+second.Samples, second.SamplesAccumulated)
	}

	img := r.Image()
	if img == nil || img.Bounds().Dx() != 16 || img.Bounds().Dy() != 12 {
		t.Fatalf("Unexpected image %v", img)
	}
	if r.Stats().Frame != 2 {
		t.Errorf("Expected frame 2 in stats, got %d", r.Stats().Frame)
	}
}

func TestRenderer_CameraChangeResets(t *testing.T) {
	r := newTestRenderer(t, smallConfig(), &scene.SphereGrid{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := r.Frame(ctx); err != nil {
			t.Fatalf("Frame failed: %v", err)
		}
	}

	pose := r.Scene().Camera()
	pose.Position = pose.Position.Add(core.NewVec3(0.05, 0, 0))
	if !r.Scene().SetCamera(pose) {
		t.Fatal("Expected camera change to be accepted")
	}

	stats, err := r.Frame(ctx)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if !stats.Reset {
		t.Error("Camera change should reset accumulation")
	}
	if stats.SamplesAccumulated != stats.Samples {
		t.Errorf("Expected accumulation to restart at %d, got %d", stats.Samples, stats.SamplesAccumulated)
	}
}

func TestRenderer_DynamicSceneResetsEveryFrame(t *testing.T) {
	r := newTestRenderer(t, smallConfig(), &scene.Fountain{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		stats, err := r.Frame(ctx)
		if err != nil {
			t.Fatalf("Frame %d failed: %v", i, err)
		}
		if !stats.ParticlesMoved || !stats.Reset {
			t.Errorf("Frame %d: moving particles should reset accumulation: %+v", i, stats)
		}
	}
}

func TestRenderer_Restart(t *testing.T) {
	r := newTestRenderer(t, smallConfig(), &scene.SphereGrid{})
	ctx := context.Background()
	if _, err := r.Frame(ctx); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	if err := r.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if r.Particles().Count() != 49 {
		t.Errorf("Expected 49 particles after restart, got %d", r.Particles().Count())
	}
	stats, err := r.Frame(ctx)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if !stats.Reset {
		t.Error("Restart should reset accumulation")
	}
}

func TestRenderer_CancelledContext(t *testing.T) {
	r := newTestRenderer(t, smallConfig(), &scene.SphereGrid{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Frame(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if r.Stats().Frame != 0 {
		t.Error("Cancelled frame must not be counted")
	}
}

func TestRenderer_CloseIsIdempotent(t *testing.T) {
	r, err := New(smallConfig(), &scene.HelloWorld{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	r.Close()
	r.Close()
}
