package renderer

import (
	"sync/atomic"
	"time"
)

// RenderStats contains statistics about a finished render
type RenderStats struct {
	Width           int           // Image width in pixels
	Height          int           // Image height in pixels
	SamplesPerPixel int           // Size of the sample pattern
	Tiles           int           // Number of bands rendered
	PrimaryRays     int64         // Rays cast from the eye
	ShadowRays      int64         // Multi-hit queries towards lights
	ReflectedRays   int64         // Mirror bounces
	RefractedRays   int64         // Transmitted rays, total internal reflection excluded
	Elapsed         time.Duration // Wall-clock render time
}

// TotalPixels returns the number of pixels in the image
func (s RenderStats) TotalPixels() int {
	return s.Width * s.Height
}

// TotalRays returns the number of rays of every kind
func (s RenderStats) TotalRays() int64 {
	return s.PrimaryRays + s.ShadowRays + s.ReflectedRays + s.RefractedRays
}

// RaysPerSecond returns the ray throughput, or 0 for an instant render
func (s RenderStats) RaysPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.TotalRays()) / s.Elapsed.Seconds()
}

// RayCounters tallies rays across concurrently rendering bands.
// A nil *RayCounters counts nothing.
type RayCounters struct {
	Primary   atomic.Int64
	Shadow    atomic.Int64
	Reflected atomic.Int64
	Refracted atomic.Int64
}

func (c *RayCounters) addPrimary() {
	if c != nil {
		c.Primary.Add(1)
	}
}

func (c *RayCounters) addShadow() {
	if c != nil {
		c.Shadow.Add(1)
	}
}

func (c *RayCounters) addReflected() {
	if c != nil {
		c.Reflected.Add(1)
	}
}

func (c *RayCounters) addRefracted() {
	if c != nil {
		c.Refracted.Add(1)
	}
}

// fill copies the counts into stats
func (c *RayCounters) fill(stats *RenderStats) {
	stats.PrimaryRays = c.Primary.Load()
	stats.ShadowRays = c.Shadow.Load()
	stats.ReflectedRays = c.Reflected.Load()
	stats.RefractedRays = c.Refracted.Load()
}
