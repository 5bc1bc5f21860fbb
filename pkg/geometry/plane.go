package geometry

import (
	"math"

	"github.com/df07/go-particle-renderer/pkg/core"
)

// Floor is the horizontal ground plane y = Height
type Floor struct {
	Height float64
	Color  core.Vec3
}

// NewFloor creates a floor at the given height
func NewFloor(height float64, color core.Vec3) Floor {
	return Floor{Height: height, Color: color}
}

// Normal returns the floor's upward normal
func (f Floor) Normal() core.Vec3 {
	return core.NewVec3(0, 1, 0)
}

// Intersect tests a ray against the floor. Only rays heading downward
// (direction.y below -Epsilon) can hit it.
func (f Floor) Intersect(ray core.Ray) (Hit, bool) {
	if ray.Direction.Y >= -Epsilon {
		return Miss, false
	}

	t := (f.Height - ray.Origin.Y) / ray.Direction.Y
	if t <= 0 || math.IsNaN(t) {
		return Miss, false
	}

	return Hit{
		T:      t,
		Normal: f.Normal(),
		Color:  f.Color,
	}, true
}
