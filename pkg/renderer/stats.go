package renderer

import "time"

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Width           int           `json:"width"`
	Height          int           `json:"height"`
	Workers         int           `json:"workers"`
	SamplesPerPixel int           `json:"samplesPerPixel"`
	TotalSamples    int           `json:"totalSamples"`
	Duration        time.Duration `json:"-"`
	Seconds         float64       `json:"seconds"`
}

// SamplesPerSecond returns the sampling throughput of the render
func (s RenderStats) SamplesPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.TotalSamples) / s.Duration.Seconds()
}
