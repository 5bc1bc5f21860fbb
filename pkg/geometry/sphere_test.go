package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-particle-renderer/pkg/core"
	"github.com/df07/go-particle-renderer/pkg/particles"
)

func TestIntersectSphere_Miss(t *testing.T) {
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	dist, isHit := IntersectSphere(core.NewVec3(0, 0, 0), 1.0, ray)
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", dist)
	}
}

func TestIntersectSphere_Distance(t *testing.T) {
	tests := []struct {
		name      string
		radius    float64
		distance  float64
		direction core.Vec3
	}{
		{"along +Z", 1.0, 3.0, core.NewVec3(0, 0, 1)},
		{"along -Y", 0.2, 1.0, core.NewVec3(0, -1, 0)},
		{"diagonal", 0.5, 10.0, core.NewVec3(1, 1, 1).Normalize()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origin := tt.direction.Multiply(tt.distance)
			ray := core.NewRay(origin, tt.direction.Negate())

			dist, isHit := IntersectSphere(core.NewVec3(0, 0, 0), tt.radius, ray)
			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if expected := tt.distance - tt.radius; math.Abs(dist-expected) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", expected, dist)
			}
		})
	}
}

func TestIntersectSphere_OutsideSilhouette(t *testing.T) {
	// From distance 2, the silhouette half-angle of a unit sphere is 30 degrees
	origin := core.NewVec3(0, 0, 2)
	inside := core.NewVec3(math.Sin(0.5), 0, -math.Cos(0.5))
	outside := core.NewVec3(math.Sin(0.55), 0, -math.Cos(0.55))

	if _, ok := IntersectSphere(core.Vec3{}, 1, core.NewRay(origin, inside)); !ok {
		t.Error("Expected ray inside the silhouette cone to hit")
	}
	if _, ok := IntersectSphere(core.Vec3{}, 1, core.NewRay(origin, outside)); ok {
		t.Error("Expected ray outside the silhouette cone to miss")
	}
}

func TestIntersectSphere_OriginInside(t *testing.T) {
	// Only the near root is tested, so rays starting inside report no hit
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	if _, ok := IntersectSphere(core.Vec3{}, 1, ray); ok {
		t.Error("Expected no hit for ray starting inside the sphere")
	}
}

func TestIntersectSphere_BehindOrigin(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, 1))
	if _, ok := IntersectSphere(core.Vec3{}, 1, ray); ok {
		t.Error("Expected no hit for sphere behind the ray")
	}
}

func TestIntersectParticles_Nearest(t *testing.T) {
	ps := []particles.Particle{
		particles.NewParticle(core.NewVec3(0, 0, -5), particles.Lambertian, core.NewVec3(0, 0, 1), 0.5),
		particles.NewParticle(core.NewVec3(0, 0, -2), particles.Light, core.NewVec3(1, 1, 0), 0.5),
		particles.NewParticle(core.NewVec3(3, 0, -1), particles.Lambertian, core.NewVec3(0, 1, 0), 0.5),
	}
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	for _, withBounds := range []bool{false, true} {
		var bounds *core.AABB
		if withBounds {
			box := particles.Bounds(ps)
			bounds = &box
		}

		hit, ok := IntersectParticles(ray, ps, bounds)
		if !ok {
			t.Fatal("Expected hit, but got miss")
		}
		if math.Abs(hit.T-1.5) > 1e-9 {
			t.Errorf("Expected t=1.5, got %f", hit.T)
		}
		if !hit.IsLight || hit.Color != core.NewVec3(1, 1, 0) {
			t.Errorf("Expected the light particle, got %+v", hit)
		}
		if hit.Normal.Subtract(core.NewVec3(0, 0, 1)).Length() > 1e-9 {
			t.Errorf("Expected normal +Z, got %v", hit.Normal)
		}
	}
}

func TestIntersectParticles_BoundsReject(t *testing.T) {
	ps := []particles.Particle{
		particles.NewParticle(core.NewVec3(0, 0, -2), particles.Lambertian, core.NewVec3(1, 0, 0), 0.5),
	}
	box := particles.Bounds(ps)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))

	if _, ok := IntersectParticles(ray, ps, &box); ok {
		t.Error("Expected bounds to reject ray")
	}
	if _, ok := IntersectParticles(ray, nil, nil); ok {
		t.Error("Expected no hit without particles")
	}
}
