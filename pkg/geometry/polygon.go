package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// ErrDegeneratePolygon is returned for polygons without three non-collinear vertices
var ErrDegeneratePolygon = errors.New("polygon needs at least three non-collinear vertices")

// polygonBumpScale amplifies bump gradients on flat polygons
const polygonBumpScale = 8

// Polygon is a planar polygon with any number of vertices. Hits are resolved
// with a crossing-number test in the 2D projection that drops the dominant
// axis of the normal.
type Polygon struct {
	Surface
	Vertices []core.Vec3

	normal    core.Vec3
	dropAxis  int // 0, 1 or 2 for x, y, z
	projected []core.Vec2

	// Texture frame: the bounding rectangle of the vertices in the plane
	origin core.Vec3
	u, v   core.Vec3
	width  float64
	height float64
}

// NewPolygon creates a polygon from vertices listed in boundary order
func NewPolygon(vertices []core.Vec3) (*Polygon, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("%w: got %d vertices", ErrDegeneratePolygon, len(vertices))
	}

	p := &Polygon{
		Surface:  NewSurface(),
		Vertices: append([]core.Vec3(nil), vertices...),
	}
	if !p.calculatePlane() {
		return nil, fmt.Errorf("%w: all vertices are collinear", ErrDegeneratePolygon)
	}
	p.project()
	p.calculateFrame()
	return p, nil
}

// calculatePlane takes the normal of the first non-collinear vertex triple
func (p *Polygon) calculatePlane() bool {
	first := p.Vertices[0]
	for i := 1; i < len(p.Vertices)-1; i++ {
		n := p.Vertices[i].Subtract(first).Cross(p.Vertices[i+1].Subtract(first))
		if n.Length() > core.Epsilon {
			p.normal = n.Normalize()
			return true
		}
	}
	return false
}

// project drops the coordinate along which the normal is largest
func (p *Polygon) project() {
	ax, ay, az := math.Abs(p.normal.X), math.Abs(p.normal.Y), math.Abs(p.normal.Z)
	switch {
	case ax >= ay && ax >= az:
		p.dropAxis = 0
	case ay >= az:
		p.dropAxis = 1
	default:
		p.dropAxis = 2
	}

	p.projected = p.projected[:0]
	for _, vertex := range p.Vertices {
		p.projected = append(p.projected, p.projectPoint(vertex))
	}
}

func (p *Polygon) projectPoint(point core.Vec3) core.Vec2 {
	switch p.dropAxis {
	case 0:
		return core.NewVec2(point.Y, point.Z)
	case 1:
		return core.NewVec2(point.X, point.Z)
	default:
		return core.NewVec2(point.X, point.Y)
	}
}

func (p *Polygon) calculateFrame() {
	first := p.Vertices[0]
	p.u = p.Vertices[1].Subtract(first).Normalize()
	if p.u.LengthSquared() == 0 {
		p.u = orthogonal(p.normal)
	}
	p.v = p.normal.Cross(p.u)

	minU, maxU := math.MaxFloat64, -math.MaxFloat64
	minV, maxV := math.MaxFloat64, -math.MaxFloat64
	for _, vertex := range p.Vertices {
		d := vertex.Subtract(first)
		du, dv := d.Dot(p.u), d.Dot(p.v)
		minU, maxU = min(minU, du), max(maxU, du)
		minV, maxV = min(minV, dv), max(maxV, dv)
	}
	p.origin = first.Add(p.u.Multiply(minU)).Add(p.v.Multiply(minV))
	p.width = maxU - minU
	p.height = maxV - minV
}

// crossesPositiveAxis reports whether the edge a-b crosses the positive u axis.
// Both points are relative to the tested point.
func crossesPositiveAxis(a, b core.Vec2) bool {
	if (a.Y >= 0 && b.Y >= 0) || (a.Y < 0 && b.Y < 0) || (a.X < 0 && b.X < 0) {
		return false
	}

	// Vertical edge through the origin
	if a.X == b.X && a.X == 0 {
		return (a.Y < 0) != (b.Y < 0)
	}
	// Horizontal edge on the axis
	if a.Y == b.Y && a.Y == 0 {
		return (a.X < 0) != (b.X < 0)
	}

	if a.X >= 0 && b.X >= 0 {
		return true
	}

	slope := (b.Y - a.Y) / (b.X - a.X)
	return b.X-b.Y/slope >= 0
}

// Intersect hits the supporting plane and keeps points with an odd crossing count
func (p *Polygon) Intersect(ray core.Ray, nearest *Nearest, hits *IntersectionList) bool {
	t, ok := planeDistance(p.Vertices[0], p.normal, ray)
	if !ok || !p.contains(ray.At(t)) {
		return false
	}
	return p.record(p, ray, t, nearest, hits)
}

func (p *Polygon) contains(point core.Vec3) bool {
	ip := p.projectPoint(point)
	crossings := 0
	n := len(p.projected)
	for i := 0; i < n; i++ {
		a := p.projected[i].Subtract(ip)
		b := p.projected[(i+1)%n].Subtract(ip)
		if crossesPositiveAxis(a, b) {
			crossings++
		}
	}
	return crossings%2 == 1
}

// NormalAt returns the polygon normal
func (p *Polygon) NormalAt(core.Vec3) core.Vec3 {
	return p.normal
}

// UV returns coordinates within the bounding rectangle of the vertices
func (p *Polygon) UV(point, n core.Vec3) core.Vec2 {
	d := point.Subtract(p.origin)
	var u, v float64
	if p.width > 0 {
		u = d.Dot(p.u) / p.width
	}
	if p.height > 0 {
		v = d.Dot(p.v) / p.height
	}
	return core.NewVec2(u, v)
}

// PerturbNormal tilts n within the polygon's texture frame
func (p *Polygon) PerturbNormal(n core.Vec3, i, j int) core.Vec3 {
	return p.perturbWith(p.BumpMap, n, i, j)
}

func (p *Polygon) perturbWith(bump *material.BumpMap, n core.Vec3, i, j int) core.Vec3 {
	return bumpNormal(bump, n, p.u.Multiply(polygonBumpScale), p.v.Multiply(polygonBumpScale), i, j)
}

// Transform maps the vertices and the texture frame through m
func (p *Polygon) Transform(m core.Matrix4) {
	for i, vertex := range p.Vertices {
		p.Vertices[i] = m.TransformPoint(vertex)
	}

	p.origin = m.TransformPoint(p.origin)
	u := m.TransformVector(p.u.Multiply(p.width))
	v := m.TransformVector(p.v.Multiply(p.height))
	p.width, p.height = u.Length(), v.Length()
	if p.width > 0 {
		p.u = u.Normalize()
	} else {
		p.u = m.TransformVector(p.u).Normalize()
	}
	if p.height > 0 {
		p.v = v.Normalize()
	} else {
		p.v = m.TransformVector(p.v).Normalize()
	}

	p.calculatePlane()
	p.project()
	p.transformClipPlanes(m)
}
