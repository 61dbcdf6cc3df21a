package scene

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

// DefaultBackground is the color of rays that leave the scene
var DefaultBackground = core.NewColor(0.05, 0.05, 0.05)

// Window is the projection rectangle on the z = 0 plane that primary rays pass through.
// Image row 0 maps to Min.Y, so scenes are authored with -Y pointing up.
type Window struct {
	Min core.Vec2
	Max core.Vec2
}

// DefaultWindow returns the 12x8 window centered on the origin
func DefaultWindow() Window {
	return Window{Min: core.NewVec2(-6, -4), Max: core.NewVec2(6, 4)}
}

// Scene contains all the elements needed for rendering.
// It is read-only once built.
type Scene struct {
	Objects    []geometry.Object // Linear-scan visibility, no acceleration structure
	Lights     []*PointLight
	Viewpoint  core.Vec3 // Camera eye
	Window     Window
	Background core.Color
	Stats      BuildStats
}

// NewScene creates an empty scene with the default window and background
func NewScene() *Scene {
	return &Scene{
		Objects:    make([]geometry.Object, 0),
		Lights:     make([]*PointLight, 0),
		Viewpoint:  core.NewVec3(0, 0, -10),
		Window:     DefaultWindow(),
		Background: DefaultBackground,
	}
}

// AddObject appends an object to the visibility scan
func (s *Scene) AddObject(obj geometry.Object) {
	s.Objects = append(s.Objects, obj)
}

// AddLight appends a point light
func (s *Scene) AddLight(light *PointLight) {
	s.Lights = append(s.Lights, light)
}

// GetPrimitiveCount returns the number of objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Objects)
}

// PointLight is an omnidirectional light with quadratic distance falloff
type PointLight struct {
	Intensity float64
	Location  core.Vec3
	Color     core.Color
	C1        float64 // constant attenuation
	C2        float64 // linear attenuation
	C3        float64 // quadratic attenuation
}

// NewPointLight creates a light with no distance attenuation
func NewPointLight(intensity float64, location core.Vec3, color core.Color) *PointLight {
	return &PointLight{
		Intensity: intensity,
		Location:  location,
		Color:     color,
		C1:        1,
	}
}

// SetAttenuation sets the constants of 1/(c1 + c2·d + c3·d²)
func (l *PointLight) SetAttenuation(c1, c2, c3 float64) *PointLight {
	l.C1, l.C2, l.C3 = c1, c2, c3
	return l
}

// AttenuationFactor returns the falloff at distance d, clamped to at most 1
func (l *PointLight) AttenuationFactor(d float64) float64 {
	denom := l.C1 + l.C2*d + l.C3*d*d
	if denom <= 0 {
		return 1
	}
	return min(1, 1/denom)
}
