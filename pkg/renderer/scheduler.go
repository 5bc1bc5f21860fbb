package renderer

import "time"

// FrameScheduler picks how many samples to accumulate per frame so that a
// frame fits the target frame rate. Slow frames shrink the batch
// multiplicatively, fast frames grow it by one.
type FrameScheduler struct {
	targetFPS  float64
	samples    int
	maxSamples int // 0 = unbounded
}

// NewFrameScheduler starts at one sample per frame
func NewFrameScheduler(targetFPS float64, maxSamples int) *FrameScheduler {
	return &FrameScheduler{targetFPS: targetFPS, samples: 1, maxSamples: maxSamples}
}

// Samples returns the batch size for the next frame, always at least 1
func (s *FrameScheduler) Samples() int {
	return s.samples
}

// Observe records how long the last batch took and returns the next batch size
func (s *FrameScheduler) Observe(elapsed time.Duration) int {
	load := elapsed.Seconds() * s.targetFPS
	if load > 1 {
		s.samples = max(1, int(float64(s.samples)/load-1))
	} else {
		s.samples++
	}
	if s.maxSamples > 0 {
		s.samples = min(s.samples, s.maxSamples)
	}
	return s.samples
}
