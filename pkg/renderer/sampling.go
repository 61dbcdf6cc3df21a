package renderer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// SamplePattern is a set of sub-pixel offsets in [0,1]² averaged into one pixel
type SamplePattern []core.Vec2

var samplePatterns = map[string]SamplePattern{
	"center": {{X: 0.5, Y: 0.5}},
	"quincunx": {
		{X: 0.5, Y: 0.5},
		{X: 0, Y: 0}, {X: 1, Y: 0},
		{X: 0, Y: 1}, {X: 1, Y: 1},
	},
	"grid": {
		{X: 1.0 / 6, Y: 1.0 / 6}, {X: 0.5, Y: 1.0 / 6}, {X: 5.0 / 6, Y: 1.0 / 6},
		{X: 1.0 / 6, Y: 0.5}, {X: 0.5, Y: 0.5}, {X: 5.0 / 6, Y: 0.5},
		{X: 1.0 / 6, Y: 5.0 / 6}, {X: 0.5, Y: 5.0 / 6}, {X: 5.0 / 6, Y: 5.0 / 6},
	},
	// Corners, edge midpoints and quarter points; the centre appears twice
	"legacy": {
		{X: 0, Y: 0}, {X: 0.5, Y: 0}, {X: 1, Y: 0},
		{X: 0.5, Y: 0.5},
		{X: 0, Y: 1}, {X: 0.5, Y: 0.5}, {X: 1, Y: 1},
		{X: 0, Y: 0.5}, {X: 1, Y: 0.5},
		{X: 0.25, Y: 0.25}, {X: 0.75, Y: 0.25},
		{X: 0.25, Y: 0.75}, {X: 0.75, Y: 0.75},
	},
}

// CenterSample is the single centred sample, the minimum valid pattern
func CenterSample() SamplePattern {
	return samplePatterns["center"]
}

// ParsePattern returns the named sample pattern
func ParsePattern(name string) (SamplePattern, error) {
	p, ok := samplePatterns[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown sample pattern %q (available: %s)", name, strings.Join(PatternNames(), ", "))
	}
	return p, nil
}

// PatternNames lists the available sample patterns
func PatternNames() []string {
	names := make([]string, 0, len(samplePatterns))
	for name := range samplePatterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
