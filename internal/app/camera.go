package app

import (
	"math"

	"github.com/df07/go-particle-renderer/internal/display"
	"github.com/df07/go-particle-renderer/pkg/core"
	"github.com/df07/go-particle-renderer/pkg/scene"
)

const (
	moveStep  = 0.05
	dragScale = 3.0
)

var worldUp = core.NewVec3(0, 1, 0)

// CameraController turns held keys and left-button drags into camera moves.
// W/S move along the view direction, A/D sideways, Q/E up and down. Dragging
// turns the view about world up (horizontal) and the left axis (vertical).
type CameraController struct {
	lastMouse *core.Vec2
}

// NewCameraController creates a controller with no drag in progress
func NewCameraController() *CameraController {
	return &CameraController{}
}

// Update returns the new pose and whether it changed
func (c *CameraController) Update(pose scene.CameraPose, in display.Input) (scene.CameraPose, bool) {
	moved := false
	if next, ok := c.move(pose, in); ok {
		pose, moved = next, true
	}
	if next, ok := c.drag(pose, in); ok {
		pose, moved = next, true
	}
	return pose, moved
}

func (c *CameraController) move(pose scene.CameraPose, in display.Input) (scene.CameraPose, bool) {
	forward := pose.Forward()
	left := leftDir(pose.Up, forward)
	bindings := []struct {
		key display.Key
		dir core.Vec3
	}{
		{display.KeyW, forward},
		{display.KeyA, left},
		{display.KeyS, forward.Negate()},
		{display.KeyD, left.Negate()},
		{display.KeyE, worldUp.Negate()},
		{display.KeyQ, worldUp},
	}

	var dir core.Vec3
	pressed := false
	for _, b := range bindings {
		if in.IsHeld(b.key) {
			pressed = true
			dir = dir.Add(b.dir)
		}
	}
	if !pressed {
		return pose, false
	}

	dir = dir.Multiply(moveStep)
	pose.Position = pose.Position.Add(dir)
	pose.LookAt = pose.LookAt.Add(dir)
	return pose, true
}

func (c *CameraController) drag(pose scene.CameraPose, in display.Input) (scene.CameraPose, bool) {
	if !in.MouseDown {
		c.lastMouse = nil
		return pose, false
	}
	mouse := core.NewVec2(in.MouseX, in.MouseY)
	if c.lastMouse == nil {
		c.lastMouse = &mouse
		return pose, false
	}
	dx, dy := c.lastMouse.X-mouse.X, c.lastMouse.Y-mouse.Y
	c.lastMouse = &mouse
	if dx == 0 && dy == 0 {
		return pose, false
	}

	out := pose.LookAt.Subtract(pose.Position)
	left := leftDir(pose.Up, out.Normalize())
	out = out.RotateAround(pose.Up, dx*dragScale).RotateAround(left, dy*dragScale)

	next := pose
	next.LookAt = pose.Position.Add(out)
	if next.Degenerate() {
		return pose, false
	}
	return next, true
}

// leftDir is up × forward, or -X when forward is nearly parallel to up
func leftDir(up, forward core.Vec3) core.Vec3 {
	if math.Abs(up.Dot(forward)) > 0.999 {
		return core.NewVec3(-1, 0, 0)
	}
	return up.Cross(forward)
}
