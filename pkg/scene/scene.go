package scene

import (
	"errors"

	"github.com/df07/go-particle-renderer/pkg/core"
	"github.com/df07/go-particle-renderer/pkg/geometry"
)

// DefaultFOV is the half-height of the image plane at unit distance
const DefaultFOV = 0.23

// ErrDegenerateGeometry is returned when a direction vector has zero length
var ErrDegenerateGeometry = errors.New("degenerate geometry")

// CameraPose places the pinhole camera
type CameraPose struct {
	Position core.Vec3
	LookAt   core.Vec3
	Up       core.Vec3
}

// NewCameraPose creates a pose with world up (0,1,0)
func NewCameraPose(position, lookAt core.Vec3) CameraPose {
	return CameraPose{Position: position, LookAt: lookAt, Up: core.NewVec3(0, 1, 0)}
}

// Forward returns the unit viewing direction
func (p CameraPose) Forward() core.Vec3 {
	return p.LookAt.Subtract(p.Position).Normalize()
}

// Degenerate reports whether the pose cannot define a camera basis
func (p CameraPose) Degenerate() bool {
	forward := p.LookAt.Subtract(p.Position)
	return forward.IsZero() || p.Up.IsZero() || forward.Cross(p.Up).IsZero()
}

// DirectionalLight is a distant light with a jittered direction
type DirectionalLight struct {
	Direction core.Vec3 // Unit vector toward the light
	Noise     float64   // Per-axis jitter magnitude
	Color     core.Vec3 // May exceed 1 to express intensity
	Enabled   bool
}

// State holds everything a render pass reads besides the particles.
// It is mutated between frames only; every setter bumps Version.
type State struct {
	floor      geometry.Floor
	light      DirectionalLight
	background core.Vec3
	camera     CameraPose
	fov        float64
	version    uint64
}

// NewState returns a white floor at y=0, no light, black background and the default fov
func NewState() *State {
	return &State{
		floor:  geometry.NewFloor(0, core.NewVec3(1, 1, 1)),
		camera: NewCameraPose(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 0)),
		fov:    DefaultFOV,
	}
}

// Floor returns the ground plane
func (s *State) Floor() geometry.Floor { return s.floor }

// Light returns the directional light
func (s *State) Light() DirectionalLight { return s.light }

// Background returns the color seen by primary rays that escape
func (s *State) Background() core.Vec3 { return s.background }

// Camera returns the current camera pose
func (s *State) Camera() CameraPose { return s.camera }

// FOV returns the vertical field of view
func (s *State) FOV() float64 { return s.fov }

// Version increases on every mutation
func (s *State) Version() uint64 { return s.version }

// SetFloor sets the ground plane height and color
func (s *State) SetFloor(height float64, color core.Vec3) {
	s.floor = geometry.NewFloor(height, color)
	s.version++
}

// SetDirectionalLight normalizes and stores the light. A zero direction
// disables the light and returns ErrDegenerateGeometry.
func (s *State) SetDirectionalLight(direction core.Vec3, noise float64, color core.Vec3) error {
	s.version++
	if direction.IsZero() {
		s.light = DirectionalLight{Noise: noise, Color: color}
		return ErrDegenerateGeometry
	}
	s.light = DirectionalLight{
		Direction: direction.Normalize(),
		Noise:     noise,
		Color:     color,
		Enabled:   true,
	}
	return nil
}

// DisableLight turns off shadow-ray lighting
func (s *State) DisableLight() {
	s.light.Enabled = false
	s.version++
}

// SetBackground sets the background color
func (s *State) SetBackground(color core.Vec3) {
	s.background = color
	s.version++
}

// SetCamera moves the camera and reports whether the pose changed.
// Degenerate poses are ignored.
func (s *State) SetCamera(pose CameraPose) bool {
	if pose.Up.IsZero() {
		pose.Up = s.camera.Up
	}
	pose.Up = pose.Up.Normalize()
	if pose.Degenerate() || pose == s.camera {
		return false
	}
	s.camera = pose
	s.version++
	return true
}

// SetFOV sets the vertical field of view; non-positive values are ignored
func (s *State) SetFOV(fov float64) {
	if fov <= 0 || fov == s.fov {
		return
	}
	s.fov = fov
	s.version++
}
