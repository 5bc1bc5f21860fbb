package geometry

import (
	"math"

	"github.com/df07/go-particle-renderer/pkg/core"
	"github.com/df07/go-particle-renderer/pkg/particles"
)

// IntersectSphere returns the distance to the near intersection of a ray with a sphere.
// The direction must be unit length. Only the near root is considered, so a ray that
// starts inside the sphere reports no hit.
func IntersectSphere(center core.Vec3, radius float64, ray core.Ray) (float64, bool) {
	// Vector from ray origin to sphere center
	op := center.Subtract(ray.Origin)
	b := op.Dot(ray.Direction)
	discriminant := b*b - op.Dot(op) + radius*radius
	if discriminant < 0 {
		return math.Inf(1), false
	}

	t := b - math.Sqrt(discriminant)
	if t <= Epsilon {
		return math.Inf(1), false
	}
	return t, true
}

// IntersectParticles finds the closest particle hit by the ray with a linear scan.
// A non-nil bounds box rejects rays that miss every particle before the scan.
func IntersectParticles(ray core.Ray, ps []particles.Particle, bounds *core.AABB) (Hit, bool) {
	if len(ps) == 0 {
		return Miss, false
	}
	if bounds != nil && !bounds.Hit(ray, 0, math.Inf(1)) {
		return Miss, false
	}

	closest := math.Inf(1)
	index := -1
	for i := range ps {
		t, ok := IntersectSphere(ps[i].Position, ps[i].Radius, ray)
		if ok && t < closest {
			closest = t
			index = i
		}
	}
	if index < 0 {
		return Miss, false
	}

	p := &ps[index]
	return Hit{
		T:       closest,
		Normal:  ray.At(closest).Subtract(p.Position).Normalize(),
		Color:   p.Color,
		IsLight: p.IsLight(),
	}, true
}
