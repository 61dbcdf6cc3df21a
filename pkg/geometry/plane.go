package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Surface
	Anchor core.Vec3 // A point on the plane
	Normal core.Vec3 // Unit normal
}

// NewPlane creates a new plane
func NewPlane(anchor, normal core.Vec3) *Plane {
	return &Plane{
		Surface: NewSurface(),
		Anchor:  anchor,
		Normal:  normal.Normalize(),
	}
}

// Distance returns the ray parameter where the ray meets the plane.
// ok is false when the ray runs parallel to the plane.
func (p *Plane) Distance(ray core.Ray) (float64, bool) {
	return planeDistance(p.Anchor, p.Normal, ray)
}

func planeDistance(anchor, normal core.Vec3, ray core.Ray) (float64, bool) {
	dNV := normal.Dot(ray.Direction)
	if math.Abs(dNV) <= core.Epsilon {
		return 0, false
	}
	d := -normal.Dot(anchor)
	return -(normal.Dot(ray.Origin) + d) / dNV, true
}

// Intersect solves N·(S + tV) + D = 0
func (p *Plane) Intersect(ray core.Ray, nearest *Nearest, hits *IntersectionList) bool {
	t, ok := p.Distance(ray)
	if !ok {
		return false
	}
	return p.record(p, ray, t, nearest, hits)
}

// NormalAt returns the plane normal
func (p *Plane) NormalAt(core.Vec3) core.Vec3 {
	return p.Normal
}

// tangents returns an orthonormal basis of the plane oriented by the north vector
func (p *Plane) tangents() (right, up core.Vec3) {
	right = p.North.Cross(p.Normal).Normalize()
	if right.LengthSquared() == 0 {
		right = orthogonal(p.Normal)
	}
	return right, p.Normal.Cross(right)
}

// UV returns planar coordinates; the texture repeats once per world unit
func (p *Plane) UV(point, n core.Vec3) core.Vec2 {
	right, up := p.tangents()
	d := point.Subtract(p.Anchor)
	return core.NewVec2(d.Dot(right), d.Dot(up))
}

// PerturbNormal tilts n within the plane's tangent basis
func (p *Plane) PerturbNormal(n core.Vec3, i, j int) core.Vec3 {
	right, up := p.tangents()
	return bumpNormal(p.BumpMap, n, right, up, i, j)
}

// Transform moves the anchor and maps the normal through the inverse-transpose
func (p *Plane) Transform(m core.Matrix4) {
	p.Anchor = m.TransformPoint(p.Anchor)
	p.Normal = m.TransformNormal(p.Normal)
	p.transformClipPlanes(m)
}

// orthogonal returns some unit vector perpendicular to n
func orthogonal(n core.Vec3) core.Vec3 {
	helper := core.NewVec3(0, 1, 0)
	if math.Abs(n.Y) > 0.9 {
		helper = core.NewVec3(0, 0, 1)
	}
	return n.Cross(helper).Normalize()
}
