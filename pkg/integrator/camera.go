package integrator

import (
	"github.com/df07/go-particle-renderer/pkg/core"
	"github.com/df07/go-particle-renderer/pkg/scene"
)

// Camera generates jittered pinhole rays for pixel coordinates
type Camera struct {
	origin  core.Vec3
	forward core.Vec3
	right   core.Vec3
	up      core.Vec3
	fov     float64
	aspect  float64
	height  float64
}

// NewCamera builds the camera basis for an image of width x height pixels
func NewCamera(pose scene.CameraPose, fov float64, width, height int) *Camera {
	forward := pose.Forward()
	right := forward.Cross(pose.Up).Normalize()
	up := right.Cross(forward).Normalize()

	return &Camera{
		origin:  pose.Position,
		forward: forward,
		right:   right,
		up:      up,
		fov:     fov,
		aspect:  float64(width) / float64(height),
		height:  float64(height),
	}
}

// Ray returns the primary ray through pixel (u, v), with v counted from the
// bottom row and jitter in [0,1)² selecting a point inside the pixel
func (c *Camera) Ray(u, v int, jitter core.Vec2) core.Ray {
	fu := 2*c.fov*(float64(u)+jitter.X)/c.height - c.fov*c.aspect - 1e-5
	fv := 2*c.fov*(float64(v)+jitter.Y)/c.height - c.fov - 1e-5

	direction := c.forward.
		Add(c.right.Multiply(fu)).
		Add(c.up.Multiply(fv)).
		Normalize()

	return core.NewRay(c.origin, direction)
}
