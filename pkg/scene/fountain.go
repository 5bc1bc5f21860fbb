package scene

import (
	"math"

	"github.com/df07/go-particle-renderer/pkg/core"
	"github.com/df07/go-particle-renderer/pkg/particles"
)

// Fountain sprays particles upward until the store is full. Each particle's
// red channel fades over time.
type Fountain struct {
	Rate     float64 // Particles emitted per second; 0 means 120
	FadeRate float64 // Red channel loss per second; 0 means 0.1

	pending float64
}

func (f *Fountain) Name() string { return "Fountain" }

func (f *Fountain) Description() string {
	return "Particles sprayed from an emitter, bouncing and fading until capacity is reached"
}

var fountainOrigin = core.NewVec3(0, -0.45, -0.4)

const (
	fountainFloor  = -0.5
	fountainRadius = 0.015
)

// Configure sets a neutral floor and an overhead light
func (f *Fountain) Configure(s *State) error {
	s.SetFloor(fountainFloor, core.NewVec3(0.7, 0.7, 0.7))
	s.SetBackground(core.NewVec3(0.05, 0.05, 0.07))
	return s.SetDirectionalLight(core.NewVec3(0.2, 1, 0.4), 0.1, core.NewVec3(1, 1, 1))
}

// InitializeParticles emits the first burst
func (f *Fountain) InitializeParticles(env *Env) error {
	f.pending = 0
	f.emit(env, 8)
	return nil
}

// UpdateParticles emits new particles, fades red and integrates physics.
// A fading color counts as a change.
func (f *Fountain) UpdateParticles(env *Env, dt float64) bool {
	rate := f.Rate
	if rate <= 0 {
		rate = 120
	}
	fade := f.FadeRate
	if fade <= 0 {
		fade = redFadeRate
	}

	if !env.Store.Full() {
		f.pending += rate * dt
		n := int(f.pending)
		f.pending -= float64(n)
		f.emit(env, n)
	}

	faded := fadeRed(env.Store.Active(), fade, dt)
	moved := env.Physics.Step(env.Store, env.State.Floor().Height, dt)
	return moved || faded
}

func (f *Fountain) emit(env *Env, n int) {
	for i := 0; i < n && !env.Store.Full(); i++ {
		// Random direction in a narrow upward cone
		angle := env.Rand.Float64() * 2 * math.Pi
		spread := 0.15 + 0.25*env.Rand.Float64()
		speed := 2.2 + 0.6*env.Rand.Float64()
		velocity := core.NewVec3(math.Cos(angle)*spread, 1, math.Sin(angle)*spread).Normalize().Multiply(speed)

		color := core.NewVec3(1, 0.3+0.5*env.Rand.Float64(), 0.2)
		p := particles.NewParticle(fountainOrigin, particles.Lambertian, color, fountainRadius).WithVelocity(velocity)
		env.Store.Add(p)
	}
}

// fadeRed lowers every particle's red channel by rate per second, stopping at
// zero, and reports whether any color changed.
func fadeRed(ps []particles.Particle, rate, dt float64) bool {
	faded := false
	for i := range ps {
		if red := ps[i].Color.X; red > 0 {
			ps[i].Color.X = math.Max(0, red-rate*dt)
			faded = true
		}
	}
	return faded
}
