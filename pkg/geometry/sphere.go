package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Surface
	Center core.Vec3
	Radius float64
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64) *Sphere {
	return &Sphere{
		Surface: NewSurface(),
		Center:  center,
		Radius:  radius,
	}
}

// Intersect tests both roots of |S + tV - C|² = r²
func (s *Sphere) Intersect(ray core.Ray, nearest *Nearest, hits *IntersectionList) bool {
	oc := ray.Origin.Subtract(s.Center)
	a := ray.Direction.Dot(ray.Direction)
	b := 2 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius
	return recordRoots(s, ray, a, b, c, nearest, hits)
}

// NormalAt returns the outward normal at p
func (s *Sphere) NormalAt(p core.Vec3) core.Vec3 {
	return p.Subtract(s.Center).Divide(s.Radius)
}

// UV maps p to longitude/latitude measured from the greenwich meridian and the north pole
func (s *Sphere) UV(p, n core.Vec3) core.Vec2 {
	north, greenwich := s.North, s.Greenwich

	// Project onto the equatorial plane to measure longitude
	d := north.Dot(p.Subtract(s.Center))
	m := p.Subtract(north.Multiply(d)).Subtract(s.Center).Normalize()
	u := safeAcos(m.Dot(greenwich)) / (2 * math.Pi)
	v := safeAcos(north.Dot(n)) / math.Pi

	// acos only covers half a turn; the greenwich plane tells the hemispheres apart
	planeNormal := greenwich.Cross(north)
	if p.Subtract(s.Center).Dot(planeNormal) < 0 {
		u = 1 - u
	}
	return core.NewVec2(u, v)
}

// PerturbNormal tilts n along the east and north tangents
func (s *Sphere) PerturbNormal(n core.Vec3, i, j int) core.Vec3 {
	u := n.Cross(s.North)
	v := n.Cross(u)
	return bumpNormal(s.BumpMap, n, u, v, i, j)
}

// Transform moves the center and scales the radius by the uniform part of m
func (s *Sphere) Transform(m core.Matrix4) {
	s.Center = m.TransformPoint(s.Center)
	s.Radius *= m.UniformScaleFactor()
	s.transformClipPlanes(m)
}

// safeAcos clamps rounding drift outside [-1, 1] before taking acos
func safeAcos(x float64) float64 {
	return math.Acos(max(-1, min(1, x)))
}
