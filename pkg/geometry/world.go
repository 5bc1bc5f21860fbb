package geometry

import (
	"github.com/df07/go-particle-renderer/pkg/core"
	"github.com/df07/go-particle-renderer/pkg/particles"
)

// World is the read-only geometry seen by one render pass
type World struct {
	Particles []particles.Particle
	Bounds    *core.AABB // Optional whole-scene reject box
	Floor     Floor
}

// NewWorld snapshots the geometry for a pass with bounds as the reject box.
// The particle slice is shared, not copied.
func NewWorld(ps []particles.Particle, bounds core.AABB, floor Floor) *World {
	w := &World{Particles: ps, Floor: floor}
	if len(ps) > 0 {
		w.Bounds = &bounds
	}
	return w
}

// NearestHit returns the closest particle or floor hit. Floor hits at or beyond
// DisLimit are treated as background.
func (w *World) NearestHit(ray core.Ray) Hit {
	hit, _ := IntersectParticles(ray, w.Particles, w.Bounds)

	if floorHit, ok := w.Floor.Intersect(ray); ok && floorHit.T < DisLimit && floorHit.T < hit.T {
		hit = floorHit
	}
	return hit
}

// Unobstructed reports whether a ray escapes the scene, i.e. its nearest
// surface is at least DisLimit away
func (w *World) Unobstructed(ray core.Ray) bool {
	return w.NearestHit(ray).T >= DisLimit
}
