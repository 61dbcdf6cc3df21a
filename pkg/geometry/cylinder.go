package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Cylinder is an infinite circular cylinder around the axis through Anchor
// along Direction. A finite cylinder keeps the infinite surface and adds two
// clip planes at Anchor and Anchor + Direction·Height.
type Cylinder struct {
	Surface
	Anchor    core.Vec3
	Direction core.Vec3 // Unit axis
	Radius    float64
	Height    float64 // 0 for an infinite cylinder
}

// NewCylinder creates an infinite cylinder
func NewCylinder(anchor, direction core.Vec3, radius float64) *Cylinder {
	return &Cylinder{
		Surface:   NewSurface(),
		Anchor:    anchor,
		Direction: direction.Normalize(),
		Radius:    radius,
	}
}

// NewFiniteCylinder creates a cylinder clipped to [0, height] along its axis
func NewFiniteCylinder(anchor, direction core.Vec3, radius, height float64) *Cylinder {
	c := NewCylinder(anchor, direction, radius)
	c.Height = height
	c.AddClipPlanes(
		NewClipPlane(c.Anchor, c.Direction.Negate()),
		NewClipPlane(c.Anchor.Add(c.Direction.Multiply(height)), c.Direction),
	)
	return c
}

// Finite reports whether the cylinder is clipped to a height
func (c *Cylinder) Finite() bool {
	return c.Height >= core.Epsilon
}

// EndCaps returns disks closing both ends of a finite cylinder, sharing its surface attributes.
// The start cap sits at Anchor, the end cap at Anchor + Direction·Height.
func (c *Cylinder) EndCaps() (start, end *Disk) {
	if !c.Finite() {
		return nil, nil
	}
	start = NewDisk(c.Anchor, c.Direction.Negate(), c.Radius, false)
	end = NewDisk(c.Anchor.Add(c.Direction.Multiply(c.Height)), c.Direction, c.Radius, false)
	for _, disk := range []*Disk{start, end} {
		disk.Material = c.Material
		disk.Texture = c.Texture
		disk.BumpMap = c.BumpMap
		disk.NormalMap = c.NormalMap
		disk.OpacityMap = c.OpacityMap
		disk.North = c.North
		disk.Greenwich = c.Greenwich
	}
	return start, end
}

// Intersect solves |Δ + tV|² - ((Δ + tV)·Q)² = r² with Δ = S - anchor
func (c *Cylinder) Intersect(ray core.Ray, nearest *Nearest, hits *IntersectionList) bool {
	q := c.Direction
	v := ray.Direction
	delta := ray.Origin.Subtract(c.Anchor)

	dVQ := v.Dot(q)
	dDQ := delta.Dot(q)
	a := v.Dot(v) - dVQ*dVQ
	b := 2 * (delta.Dot(v) - dDQ*dVQ)
	cc := delta.Dot(delta) - dDQ*dDQ - c.Radius*c.Radius
	return recordRoots(c, ray, a, b, cc, nearest, hits)
}

// NormalAt returns the direction from the axis to p
func (c *Cylinder) NormalAt(p core.Vec3) core.Vec3 {
	d := p.Subtract(c.Anchor).Dot(c.Direction)
	onAxis := c.Anchor.Add(c.Direction.Multiply(d))
	return p.Subtract(onAxis).Normalize()
}

// UV wraps u around the axis from the greenwich direction; v runs along the axis
func (c *Cylinder) UV(p, n core.Vec3) core.Vec2 {
	g := c.Greenwich
	d := p.Subtract(c.Anchor).Dot(c.Direction)
	u := safeAcos(n.Dot(g)) / (2 * math.Pi)
	v := d
	if c.Finite() {
		v = 1 - d/c.Height
	}

	planeNormal := g.Cross(c.Direction)
	if p.Subtract(c.Anchor).Dot(planeNormal) < 0 {
		u = 1 - u
	}
	return core.NewVec2(u, v)
}

// PerturbNormal tilts n around and along the axis
func (c *Cylinder) PerturbNormal(n core.Vec3, i, j int) core.Vec3 {
	u := c.Direction.Cross(n)
	return bumpNormal(c.BumpMap, n, u, c.Direction, i, j)
}

// Transform maps the axis through m and scales the radius by its uniform part
func (c *Cylinder) Transform(m core.Matrix4) {
	c.Anchor = m.TransformPoint(c.Anchor)
	axis := m.TransformVector(c.Direction.Multiply(max(c.Height, 1)))
	if c.Finite() {
		c.Height = axis.Length()
	}
	c.Direction = axis.Normalize()
	c.Radius *= m.UniformScaleFactor()
	c.transformClipPlanes(m)
}
