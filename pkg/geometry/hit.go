package geometry

import (
	"math"

	"github.com/df07/go-particle-renderer/pkg/core"
)

const (
	// Epsilon is the minimum accepted hit distance and the floor-facing threshold
	Epsilon = 1e-4
	// DisLimit is the trace distance beyond which the floor counts as background
	DisLimit = 100.0
)

// Hit describes the nearest surface along a ray
type Hit struct {
	T       float64   // Distance along the ray, +Inf when nothing was hit
	Normal  core.Vec3 // Unit surface normal, zero when nothing was hit
	Color   core.Vec3 // Surface color
	IsLight bool      // Surface is light-tagged
}

// Miss is the result for a ray that hits no surface
var Miss = Hit{T: math.Inf(1)}

// Valid reports whether the hit refers to a surface
func (h Hit) Valid() bool {
	return !math.IsInf(h.T, 1) && !h.Normal.IsZero()
}
