package renderer

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// Camera generates primary rays from the eye through the projection window.
// The window lies in the z = 0 plane; image row 0 maps to Window.Min.Y.
type Camera struct {
	eye    core.Vec3
	window scene.Window
	width  int
	height int
	du     float64 // window units per pixel along x
	dv     float64 // window units per pixel along y
}

// NewCamera creates a camera for a width×height image
func NewCamera(eye core.Vec3, window scene.Window, width, height int) *Camera {
	return &Camera{
		eye:    eye,
		window: window,
		width:  width,
		height: height,
		du:     (window.Max.X - window.Min.X) / float64(width),
		dv:     (window.Max.Y - window.Min.Y) / float64(height),
	}
}

// ProjectionPoint returns the point on the window for pixel (i, j) at sub-pixel offset
func (c *Camera) ProjectionPoint(i, j int, offset core.Vec2) core.Vec3 {
	return core.NewVec3(
		c.window.Min.X+(float64(i)+offset.X)*c.du,
		c.window.Min.Y+(float64(j)+offset.Y)*c.dv,
		0,
	)
}

// GetRay returns the normalized ray from the eye through pixel (i, j) at sub-pixel offset
func (c *Camera) GetRay(i, j int, offset core.Vec2) core.Ray {
	target := c.ProjectionPoint(i, j, offset)
	return core.NewRay(c.eye, target.Subtract(c.eye).Normalize())
}
