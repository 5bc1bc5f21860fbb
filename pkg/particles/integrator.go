package particles

import (
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/df07/go-particle-renderer/pkg/core"
)

// Integrator advances particles with an explicit Euler step and a floor bounce
type Integrator struct {
	Gravity        float64 // Downward acceleration magnitude
	Restitution    float64 // Fraction of vertical speed kept on a bounce, < 1
	MinBounceSpeed float64 // Impacts slower than this come to rest
	Damping        float64 // Fraction of horizontal speed lost on floor contact
	Workers        int     // Parallel chunks; 0 means runtime.NumCPU()
}

// NewIntegrator returns an integrator with earth gravity and a half-energy bounce
func NewIntegrator() *Integrator {
	return &Integrator{
		Gravity:        9.81,
		Restitution:    0.5,
		MinBounceSpeed: 0.2,
		Damping:        0,
	}
}

// minChunk keeps tiny particle counts on a single goroutine
const minChunk = 64

// Step advances every stored particle by dt and reports whether any position changed
func (in *Integrator) Step(store *Store, floorHeight, dt float64) bool {
	particles := store.Active()
	if len(particles) == 0 || dt <= 0 {
		return false
	}

	workers := in.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	chunk := max(minChunk, (len(particles)+workers-1)/workers)

	var wg sync.WaitGroup
	var moved atomic.Bool
	for start := 0; start < len(particles); start += chunk {
		end := min(start+chunk, len(particles))
		wg.Add(1)
		go func(part []Particle) {
			defer wg.Done()
			for i := range part {
				if in.stepParticle(&part[i], floorHeight, dt) {
					moved.Store(true)
				}
			}
		}(particles[start:end])
	}
	wg.Wait()

	return moved.Load()
}

// stepParticle integrates one particle in place
func (in *Integrator) stepParticle(p *Particle, floorHeight, dt float64) bool {
	before := p.Position

	p.Velocity.Y -= in.Gravity * dt
	p.Position = p.Position.Add(p.Velocity.Multiply(dt))

	rest := floorHeight + p.Radius
	if p.Position.Y < rest && p.Velocity.Y < 0 {
		p.Position.Y = rest
		if math.Abs(p.Velocity.Y) < in.MinBounceSpeed {
			p.Velocity.Y = 0
		} else {
			p.Velocity.Y = -p.Velocity.Y * in.Restitution
		}
		if in.Damping > 0 {
			keep := 1 - in.Damping
			p.Velocity.X *= keep
			p.Velocity.Z *= keep
		}
	}

	return p.Position != before
}

// Bounds returns the box enclosing every particle, or a zero box when there are none
func Bounds(particles []Particle) core.AABB {
	if len(particles) == 0 {
		return core.AABB{}
	}
	box := particles[0].BoundingBox()
	for _, p := range particles[1:] {
		box = box.Union(p.BoundingBox())
	}
	return box
}
