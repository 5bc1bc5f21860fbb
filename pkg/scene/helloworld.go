package scene

import (
	"github.com/df07/go-particle-renderer/pkg/core"
	"github.com/df07/go-particle-renderer/pkg/particles"
)

// redFadeRate is how much red a fading particle loses per second
const redFadeRate = 0.1

// HelloWorld is a single red particle above a light gray floor
type HelloWorld struct{}

func (h *HelloWorld) Name() string { return "HelloWorld" }

func (h *HelloWorld) Description() string {
	return "One red particle dropping onto a gray floor, fading to black"
}

// Configure sets a light gray floor and a white light
func (h *HelloWorld) Configure(s *State) error {
	s.SetFloor(-0.5, core.NewVec3(0.8, 0.8, 0.8))
	return s.SetDirectionalLight(core.NewVec3(0, 0, 1), 0.1, core.NewVec3(1, 1, 1))
}

// InitializeParticles creates a single particle at the origin with a radius of 0.2
func (h *HelloWorld) InitializeParticles(env *Env) error {
	env.Store.Add(particles.NewParticle(core.NewVec3(0, 0, 0), particles.Lambertian, core.NewVec3(1, 0, 0), 0.2))
	return nil
}

// UpdateParticles fades the red channel and integrates physics
func (h *HelloWorld) UpdateParticles(env *Env, dt float64) bool {
	faded := fadeRed(env.Store.Active(), redFadeRate, dt)
	moved := env.Physics.Step(env.Store, env.State.Floor().Height, dt)
	return moved || faded
}
