package renderer

import "time"

// RenderStats contains statistics about the last render
type RenderStats struct {
	Rows          int           // Scanlines completed
	PrimaryRays   int           // Camera rays traced, including supersamples
	RefinedPixels int           // Pixels that received supersamples
	Elapsed       time.Duration // Wall time of the render
}

// Collect adds the per-worker counters of a finished pool
func (s *RenderStats) Collect(wp *WorkerPool) {
	for _, w := range wp.workers {
		s.PrimaryRays += w.primaryRays
		s.RefinedPixels += w.refinedPixels
	}
}

// RaysPerSecond returns the primary ray throughput
func (s RenderStats) RaysPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.PrimaryRays) / s.Elapsed.Seconds()
}
