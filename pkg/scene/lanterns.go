package scene

import (
	"math"

	"github.com/df07/go-particle-renderer/pkg/core"
	"github.com/df07/go-particle-renderer/pkg/particles"
)

// Lanterns lights a dark scene with light-tagged particles only
type Lanterns struct {
	Count int // Lanterns in the ring; 0 means 6
}

func (l *Lanterns) Name() string { return "Lanterns" }

func (l *Lanterns) Description() string {
	return "A ring of glowing particles around a white sphere, no directional light"
}

const lanternFloor = -0.2

var lanternPalette = []core.Vec3{
	core.NewVec3(1.0, 0.55, 0.2),
	core.NewVec3(1.0, 0.85, 0.4),
	core.NewVec3(0.4, 0.7, 1.0),
	core.NewVec3(1.0, 0.35, 0.5),
}

// Configure disables the directional light; all light comes from the lanterns
func (l *Lanterns) Configure(s *State) error {
	s.SetFloor(lanternFloor, core.NewVec3(0.6, 0.6, 0.6))
	s.SetBackground(core.NewVec3(0.01, 0.01, 0.02))
	s.DisableLight()
	return nil
}

// InitializeParticles places the lanterns slightly above the floor so they drop into place
func (l *Lanterns) InitializeParticles(env *Env) error {
	n := l.Count
	if n <= 0 {
		n = 6
	}
	center := core.NewVec3(0, lanternFloor+0.12, -0.4)
	env.Store.Add(particles.NewParticle(center, particles.Lambertian, core.NewVec3(0.9, 0.9, 0.9), 0.12))

	const ringRadius = 0.25
	const lanternRadius = 0.04
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		position := core.NewVec3(
			center.X+ringRadius*math.Cos(angle),
			lanternFloor+lanternRadius+0.1+0.05*float64(i%2),
			center.Z+ringRadius*math.Sin(angle),
		)
		color := lanternPalette[i%len(lanternPalette)]
		env.Store.Add(particles.NewParticle(position, particles.Light, color, lanternRadius))
	}
	return nil
}

func (l *Lanterns) UpdateParticles(env *Env, dt float64) bool {
	return env.Physics.Step(env.Store, env.State.Floor().Height, dt)
}
