package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/df07/go-particle-renderer/pkg/core"
)

// AccumulationBuffer sums per-pixel radiance over passes. All pixels share one
// sample counter. Pixels are stored row-major with row 0 at the top of the image.
type AccumulationBuffer struct {
	width, height int
	sums          []core.Vec3
	samples       int
	vignette      Vignette
}

// NewAccumulationBuffer creates an empty buffer
func NewAccumulationBuffer(width, height int, vignette Vignette) *AccumulationBuffer {
	return &AccumulationBuffer{
		width:    width,
		height:   height,
		sums:     make([]core.Vec3, width*height),
		vignette: vignette,
	}
}

// Width returns the buffer width in pixels
func (b *AccumulationBuffer) Width() int { return b.width }

// Height returns the buffer height in pixels
func (b *AccumulationBuffer) Height() int { return b.height }

// Samples returns the number of complete passes accumulated since the last reset
func (b *AccumulationBuffer) Samples() int { return b.samples }

// Add adds a contribution to one pixel without touching the sample counter.
// Concurrent callers must write disjoint pixels.
func (b *AccumulationBuffer) Add(x, y int, c core.Vec3) {
	i := y*b.width + x
	b.sums[i] = b.sums[i].Add(c)
}

// CompletePasses commits n passes after every pixel received its n contributions
func (b *AccumulationBuffer) CompletePasses(n int) {
	b.samples += n
}

// Accumulate adds one full-frame pass and increments the sample counter
func (b *AccumulationBuffer) Accumulate(contribs []core.Vec3) error {
	if len(contribs) != len(b.sums) {
		return fmt.Errorf("accumulate: got %d contributions for %d pixels", len(contribs), len(b.sums))
	}
	for i, c := range contribs {
		b.sums[i] = b.sums[i].Add(c)
	}
	b.samples++
	return nil
}

// Reset zeroes every sum and the sample counter
func (b *AccumulationBuffer) Reset() {
	clear(b.sums)
	b.samples = 0
}

// Sum returns the raw accumulated radiance of a pixel
func (b *AccumulationBuffer) Sum(x, y int) core.Vec3 {
	return b.sums[y*b.width+x]
}

// darken returns the vignette factor for pixel (x, y)
func (b *AccumulationBuffer) darken(x, y int) float64 {
	u := float64(x) / float64(b.width)
	v := float64(b.height-1-y) / float64(b.height)
	du := u - b.vignette.Center.X
	dv := v - b.vignette.Center.Y
	return 1 - b.vignette.Strength*math.Max(0, math.Sqrt(du*du+dv*dv)-b.vignette.Radius)
}

// Readout tone-maps the buffer: sqrt(sum/samples * exposure * vignette),
// clamped to non-negative before the root. Zero samples read out black.
func (b *AccumulationBuffer) Readout(exposure float64) []core.Vec3 {
	out := make([]core.Vec3, len(b.sums))
	if b.samples == 0 {
		return out
	}
	scale := exposure / float64(b.samples)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			i := y*b.width + x
			out[i] = b.sums[i].Multiply(scale * b.darken(x, y)).Sqrt()
		}
	}
	return out
}

// Image quantizes the readout into an RGBA image
func (b *AccumulationBuffer) Image(exposure float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	for i, c := range b.Readout(exposure) {
		img.SetRGBA(i%b.width, i/b.width, vec3ToColor(c))
	}
	return img
}

// vec3ToColor clamps a tone-mapped color into 8-bit RGBA
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	colorVec = colorVec.Clamp(0.0, 1.0)

	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}
