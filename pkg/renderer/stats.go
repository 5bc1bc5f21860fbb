package renderer

import (
	"image"
	"time"

	"github.com/df07/go-particle-renderer/pkg/core"
)

// FrameStats describes one rendered frame
type FrameStats struct {
	Frame              int64         `json:"frame"`              // Frame number since start
	Samples            int           `json:"samples"`            // Samples per pixel traced this frame
	SamplesAccumulated int           `json:"samplesAccumulated"` // Samples per pixel since the last reset
	NextSamples        int           `json:"nextSamples"`        // Batch size chosen for the next frame
	Reset              bool          `json:"reset"`              // Accumulation restarted this frame
	ParticlesMoved     bool          `json:"particlesMoved"`
	Particles          int           `json:"particles"`
	Dropped            int           `json:"dropped"` // Particles rejected by a full store
	RayCount           int           `json:"rayCount"`
	Elapsed            time.Duration `json:"elapsed"` // Trace and readout time
}

// AverageLuminance returns the mean Rec. 709 luminance of an image in [0,1]
func AverageLuminance(img *image.RGBA) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			total += core.NewVec3(float64(c.R), float64(c.G), float64(c.B)).Multiply(1.0 / 255).Luminance()
		}
	}
	return total / float64(pixels)
}
