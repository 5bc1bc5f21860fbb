package particles

import (
	"fmt"

	"github.com/df07/go-particle-renderer/pkg/core"
)

// Material tags how a particle interacts with light
type Material int8

const (
	// Lambertian particles scatter light diffusely
	Lambertian Material = 1
	// Light particles terminate paths and emit their color
	Light Material = 2
)

// String returns the material name
func (m Material) String() string {
	switch m {
	case Lambertian:
		return "lambertian"
	case Light:
		return "light"
	default:
		return fmt.Sprintf("material(%d)", int8(m))
	}
}

// Particle is a sphere with a velocity, rendered as either a diffuse surface or an emitter
type Particle struct {
	Position core.Vec3
	Velocity core.Vec3
	Radius   float64
	Color    core.Vec3 // RGB in [0,1]
	Material Material
}

// NewParticle creates a stationary particle
func NewParticle(position core.Vec3, material Material, color core.Vec3, radius float64) Particle {
	return Particle{
		Position: position,
		Radius:   radius,
		Color:    color,
		Material: material,
	}
}

// WithVelocity returns a copy of the particle with the given velocity
func (p Particle) WithVelocity(velocity core.Vec3) Particle {
	p.Velocity = velocity
	return p
}

// IsLight reports whether the particle is light-tagged
func (p Particle) IsLight() bool {
	return p.Material == Light
}

// BoundingBox returns the particle's extent
func (p Particle) BoundingBox() core.AABB {
	return core.NewAABBFromSphere(p.Position, p.Radius)
}
