package scene

import (
	"math"
	"sync"

	"github.com/df07/go-particle-renderer/pkg/core"
	"github.com/df07/go-particle-renderer/pkg/particles"
)

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0

	// OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS
	lc := l + 0.3963377774*a + 0.2158037573*b
	mc := l - 0.1055613458*a - 0.0638541728*b
	sc := l - 0.0894841775*a - 1.2914855480*b
	lc, mc, sc = lc*lc*lc, mc*mc*mc, sc*sc*sc

	// LMS to linear RGB
	return core.NewVec3(
		+4.0767416621*lc-3.3077115913*mc+0.2309699292*sc,
		-1.2684380046*lc+2.6097574011*mc-0.3413193965*sc,
		-0.0041960863*lc-0.7034186147*mc+1.7076147010*sc,
	).Clamp(0, 1)
}

// SphereGrid is a static grid of rainbow particles resting on the floor
type SphereGrid struct {
	GridSize int // Particles per side; 0 means 7
}

func (g *SphereGrid) Name() string { return "SphereGrid" }

func (g *SphereGrid) Description() string {
	return "Static grid of rainbow-colored particles on a dark floor"
}

const (
	gridFloor  = -0.2
	gridExtent = 0.6  // Side length of the grid in world units
	gridCenter = -0.3 // Grid center along Z, in front of the default camera
)

func (g *SphereGrid) size() int {
	if g.GridSize <= 0 {
		return 7
	}
	return g.GridSize
}

// Configure sets a dark floor and a raking white light
func (g *SphereGrid) Configure(s *State) error {
	s.SetFloor(gridFloor, core.NewVec3(0.35, 0.35, 0.4))
	s.SetBackground(core.NewVec3(0.02, 0.02, 0.03))
	return s.SetDirectionalLight(core.NewVec3(0.5, 1, 0.3), 0.05, core.NewVec3(1, 1, 1))
}

// InitializeParticles lays out the grid with one goroutine per row
func (g *SphereGrid) InitializeParticles(env *Env) error {
	n := g.size()
	spacing := gridExtent / float64(max(1, n-1))
	radius := math.Min(0.05, spacing*0.35)

	// OKLCH parameters for color variation
	baseLightness := 0.7
	minChroma := 0.05
	maxChroma := 0.2

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < n; j++ {
				x := float64(i)*spacing - gridExtent/2
				z := float64(j)*spacing - gridExtent/2 + gridCenter
				position := core.NewVec3(x, gridFloor+radius, z)

				// Hue across X, chroma across Z
				hue := float64(i) / float64(max(1, n-1)) * 360.0
				chroma := minChroma + float64(j)/float64(max(1, n-1))*(maxChroma-minChroma)
				lightness := baseLightness + 0.1*math.Sin(float64(i+j)*0.5)

				env.Store.Add(particles.NewParticle(position, particles.Lambertian, oklchToRGB(lightness, chroma, hue), radius))
			}
		}(i)
	}
	wg.Wait()
	return nil
}

// UpdateParticles leaves the grid in place
func (g *SphereGrid) UpdateParticles(env *Env, dt float64) bool {
	return false
}
