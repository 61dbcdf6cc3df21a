package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// infiniteConeReferenceHeight fixes the opening angle of a cone given only a bottom radius
const infiniteConeReferenceHeight = 5.0

// Cone is an infinite double cone with its apex at Apex, opening along
// Direction by the half-angle whose cosine is CosAngle. A finite cone keeps
// one nappe between two clip planes.
type Cone struct {
	Surface
	Apex      core.Vec3
	Direction core.Vec3 // Unit axis
	CosAngle  float64
	Height    float64 // 0 for an infinite cone
}

// NewCone creates an infinite cone from the cosine of its half-angle
func NewCone(apex, direction core.Vec3, cosAngle float64) *Cone {
	return &Cone{
		Surface:   NewSurface(),
		Apex:      apex,
		Direction: direction.Normalize(),
		CosAngle:  cosAngle,
	}
}

// NewConeFromRadius creates an infinite cone whose opening matches bottomRadius
// at a fixed reference height
func NewConeFromRadius(apex, direction core.Vec3, bottomRadius float64) *Cone {
	return NewCone(apex, direction, coneCosAngle(bottomRadius, infiniteConeReferenceHeight))
}

// NewFiniteCone creates a cone from the apex down to a base of the given radius
func NewFiniteCone(apex, direction core.Vec3, bottomRadius, height float64) *Cone {
	c := NewCone(apex, direction, coneCosAngle(bottomRadius, height))
	c.Height = height
	c.AddClipPlanes(
		NewClipPlane(c.Apex, c.Direction.Negate()),
		NewClipPlane(c.Apex.Add(c.Direction.Multiply(height)), c.Direction),
	)
	return c
}

func coneCosAngle(radius, height float64) float64 {
	return height / math.Sqrt(height*height+radius*radius)
}

// Finite reports whether the cone is clipped to a height
func (c *Cone) Finite() bool {
	return c.Height >= core.Epsilon
}

// Intersect solves ((Δ + tV)·Q)² = |Δ + tV|² cos²θ with Δ = S - apex
func (c *Cone) Intersect(ray core.Ray, nearest *Nearest, hits *IntersectionList) bool {
	q := c.Direction
	v := ray.Direction
	delta := ray.Origin.Subtract(c.Apex)
	cos2 := c.CosAngle * c.CosAngle

	dQV := q.Dot(v)
	dQD := q.Dot(delta)
	a := dQV*dQV - v.Dot(v)*cos2
	b := 2 * (dQD*dQV - delta.Dot(v)*cos2)
	cc := dQD*dQD - delta.Dot(delta)*cos2
	return recordRoots(c, ray, a, b, cc, nearest, hits)
}

// NormalAt points from the axis point whose slant distance equals |p - apex| towards p.
// The apex has no surface normal; it reports -Direction.
func (c *Cone) NormalAt(p core.Vec3) core.Vec3 {
	h := p.Subtract(c.Apex)
	d := h.Length() / c.CosAngle
	if h.Dot(c.Direction) < -core.Epsilon {
		d = -d
	}
	m := c.Apex.Add(c.Direction.Multiply(d))
	n := p.Subtract(m)
	if n.LengthSquared() <= core.Epsilon*core.Epsilon {
		return c.Direction.Negate()
	}
	return n.Normalize()
}

// UV measures longitude like a sphere and runs v from the apex along the axis
func (c *Cone) UV(p, n core.Vec3) core.Vec2 {
	north, g := c.North, c.Greenwich
	offset := p.Subtract(c.Apex)

	v := offset.Dot(c.Direction)
	if c.Finite() {
		v /= c.Height
	}

	d := north.Dot(offset)
	m := p.Subtract(north.Multiply(d)).Subtract(c.Apex).Normalize()
	u := safeAcos(m.Dot(g)) / (2 * math.Pi)

	planeNormal := g.Cross(c.Direction)
	if offset.Dot(planeNormal) < 0 {
		u = 1 - u
	}
	return core.NewVec2(u, v)
}

// PerturbNormal tilts n around and along the axis
func (c *Cone) PerturbNormal(n core.Vec3, i, j int) core.Vec3 {
	return bumpNormal(c.BumpMap, n, n.Cross(c.North), c.Direction, i, j)
}

// Transform maps the apex and axis through m; the opening angle is kept
func (c *Cone) Transform(m core.Matrix4) {
	c.Apex = m.TransformPoint(c.Apex)
	axis := m.TransformVector(c.Direction.Multiply(max(c.Height, 1)))
	if c.Finite() {
		c.Height = axis.Length()
	}
	c.Direction = axis.Normalize()
	c.transformClipPlanes(m)
}
