package integrator

import (
	"github.com/df07/go-particle-renderer/pkg/core"
	"github.com/df07/go-particle-renderer/pkg/geometry"
	"github.com/df07/go-particle-renderer/pkg/particles"
	"github.com/df07/go-particle-renderer/pkg/scene"
)

// MaxDepth is the default bounce limit
const MaxDepth = 4

// rayOffset moves bounce origins off the surface along the new direction
const rayOffset = 1e-4

// Frame is the immutable input of one batch of samples
type Frame struct {
	World      *geometry.World
	Camera     *Camera
	Light      scene.DirectionalLight
	Background core.Vec3
}

// NewFrame snapshots the scene state and particles for a batch
func NewFrame(state *scene.State, ps []particles.Particle, bounds core.AABB, width, height int) *Frame {
	return &Frame{
		World:      geometry.NewWorld(ps, bounds, state.Floor()),
		Camera:     NewCamera(state.Camera(), state.FOV(), width, height),
		Light:      state.Light(),
		Background: state.Background(),
	}
}

// PathTracer evaluates diffuse light transport with one shadow ray per bounce
type PathTracer struct {
	MaxDepth int
}

// NewPathTracer creates a path tracer with the default bounce limit
func NewPathTracer() *PathTracer {
	return &PathTracer{MaxDepth: MaxDepth}
}

// Sample traces one jittered camera ray through pixel (u, v), v counted from the bottom
func (pt *PathTracer) Sample(f *Frame, u, v int, sampler core.Sampler) core.Vec3 {
	ray := f.Camera.Ray(u, v, sampler.Get2D())
	return pt.Trace(f, ray, sampler)
}

// Trace returns the radiance contribution carried back along ray
func (pt *PathTracer) Trace(f *Frame, ray core.Ray, sampler core.Sampler) core.Vec3 {
	contrib := core.Vec3{}
	throughput := core.NewVec3(1, 1, 1)

	for depth := 0; depth < pt.MaxDepth; depth++ {
		hit := f.World.NearestHit(ray)
		if !hit.Valid() {
			// Only primary rays see the background
			if depth == 0 {
				return f.Background
			}
			return contrib
		}
		if hit.IsLight {
			return contrib.Add(throughput.MultiplyVec(hit.Color))
		}

		// Diffuse bounce
		direction := core.SampleCosineHemisphere(hit.Normal, sampler.Get2D())
		origin := ray.At(hit.T).Add(direction.Multiply(rayOffset))
		ray = core.NewRay(origin, direction)
		throughput = throughput.MultiplyVec(hit.Color)

		if f.Light.Enabled {
			contrib = contrib.Add(pt.directLight(f, origin, hit.Normal, throughput, sampler))
		}

		// Russian roulette
		maxC := throughput.MaxComponent()
		if maxC <= 0 || sampler.Get1D() > maxC {
			return contrib
		}
		throughput = throughput.Multiply(1 / maxC)
	}

	return contrib
}

// directLight casts one shadow ray toward the jittered light direction
func (pt *PathTracer) directLight(f *Frame, origin, normal, throughput core.Vec3, sampler core.Sampler) core.Vec3 {
	lightDir, ok := core.JitterDirection(f.Light.Direction, f.Light.Noise, sampler.Get3D())
	if !ok {
		return core.Vec3{}
	}

	dot := lightDir.Dot(normal)
	if dot <= 0 {
		return core.Vec3{}
	}
	if !f.World.Unobstructed(core.NewRay(origin, lightDir)) {
		return core.Vec3{}
	}
	return throughput.MultiplyVec(f.Light.Color).Multiply(dot)
}
