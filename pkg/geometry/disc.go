package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Disk is a circle on a plane. With Anti set the circle is cut out of the
// plane instead: points outside the radius form the surface.
type Disk struct {
	Surface
	Anchor core.Vec3 // Center
	Normal core.Vec3
	Radius float64
	Anti   bool

	Right core.Vec3 // In-plane basis
	Up    core.Vec3

	bounds *Polygon // Texture rectangle set by SetBounds
}

// NewDisk creates a disk centered at anchor
func NewDisk(anchor, normal core.Vec3, radius float64, anti bool) *Disk {
	n := normal.Normalize()
	up := core.NewVec3(0, 1, 0)
	if math.Abs(n.Y) > 0.9 {
		up = core.NewVec3(0, 0, 1)
	}
	up = up.Subtract(n.Multiply(up.Dot(n))).Normalize()

	return &Disk{
		Surface: NewSurface(),
		Anchor:  anchor,
		Normal:  n,
		Radius:  radius,
		Anti:    anti,
		Right:   n.Cross(up),
		Up:      up,
	}
}

// SetBounds wraps the disk in a rectangle measured from the center along
// Right and Up. The rectangle becomes the texture frame and four clip planes.
func (d *Disk) SetBounds(left, right, bottom, top float64) {
	d.bounds = boundsRectangle(d.Anchor, d.Right, d.Up, left, right, bottom, top)
	d.AddClipPlanes(BoxClipPlanes(d.Anchor, d.Right, d.Up, left, right, bottom, top)...)
}

// boundsRectangle builds the texture polygon for SetBounds
func boundsRectangle(center, right, up core.Vec3, left, rightWidth, bottom, top float64) *Polygon {
	corner := func(x, y float64) core.Vec3 {
		return center.Add(right.Multiply(x)).Add(up.Multiply(y))
	}
	poly, err := NewPolygon([]core.Vec3{
		corner(-left, -bottom),
		corner(rightWidth, -bottom),
		corner(rightWidth, top),
		corner(-left, top),
	})
	if err != nil {
		return nil
	}
	return poly
}

// Intersect hits the plane and tests the squared distance from the center
func (d *Disk) Intersect(ray core.Ray, nearest *Nearest, hits *IntersectionList) bool {
	t, ok := planeDistance(d.Anchor, d.Normal, ray)
	if !ok {
		return false
	}
	f := ray.At(t).Subtract(d.Anchor).LengthSquared() - d.Radius*d.Radius
	inside := f <= core.Epsilon
	if d.Anti {
		inside = f >= core.Epsilon
	}
	if !inside {
		return false
	}
	return d.record(d, ray, t, nearest, hits)
}

// NormalAt returns the disk normal
func (d *Disk) NormalAt(core.Vec3) core.Vec3 {
	return d.Normal
}

// UV uses the bounds rectangle when set, polar coordinates otherwise
func (d *Disk) UV(p, n core.Vec3) core.Vec2 {
	if d.bounds != nil {
		return d.bounds.UV(p, n)
	}
	offset := p.Subtract(d.Anchor)
	u := math.Atan2(offset.Dot(d.Up), offset.Dot(d.Right)) / (2 * math.Pi)
	if u < 0 {
		u++
	}
	return core.NewVec2(u, offset.Length()/d.Radius)
}

// PerturbNormal tilts n within the disk plane
func (d *Disk) PerturbNormal(n core.Vec3, i, j int) core.Vec3 {
	if d.bounds != nil {
		return d.bounds.perturbWith(d.BumpMap, n, i, j)
	}
	return bumpNormal(d.BumpMap, n, d.Right, d.Up, i, j)
}

// Transform maps the disk plane, its basis and bounds through m
func (d *Disk) Transform(m core.Matrix4) {
	d.Anchor = m.TransformPoint(d.Anchor)
	d.Normal = m.TransformNormal(d.Normal)
	d.Radius *= m.UniformScaleFactor()
	d.Right = m.TransformVector(d.Right).Normalize()
	d.Up = d.Right.Cross(d.Normal).Normalize()
	if d.bounds != nil {
		d.bounds.Transform(m)
	}
	d.transformClipPlanes(m)
}
