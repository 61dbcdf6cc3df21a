package geometry

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Quadric is the implicit surface
//
//	Ax² + By² + Cz² + Dxy + Eyz + Fxz + Gx + Hy + Jz + K = 0
//
// stored as the symmetric matrix M with xᵀMx = 0 for homogeneous points x.
type Quadric struct {
	Surface
	M core.Matrix4

	bounds *Polygon // Texture rectangle set by SetBounds
}

// NewQuadric creates a quadric from its ten coefficients
func NewQuadric(a, b, c, d, e, f, g, h, j, k float64) *Quadric {
	return &Quadric{
		Surface: NewSurface(),
		M: core.NewMatrix4FromRows(
			core.NewVec4(a, d/2, f/2, g/2),
			core.NewVec4(d/2, b, e/2, h/2),
			core.NewVec4(f/2, e/2, c, j/2),
			core.NewVec4(g/2, h/2, j/2, k),
		),
	}
}

// SetBounds restricts the surface to x in [-left, right] and
// y within [-bottom, top]; the rectangle in the z = 0 plane becomes the texture frame.
func (q *Quadric) SetBounds(left, right, bottom, top float64) {
	origin := core.NewVec3(0, 0, 0)
	xAxis, yAxis := core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)
	q.bounds = boundsRectangle(origin, xAxis, yAxis, left, right, bottom, top)
	q.AddClipPlanes(BoxClipPlanes(origin, xAxis, yAxis, left, right, bottom, top)...)
}

// Intersect substitutes the ray into xᵀMx = 0: a = VᵀMV, b = 2SᵀMV, c = SᵀMS
func (q *Quadric) Intersect(ray core.Ray, nearest *Nearest, hits *IntersectionList) bool {
	s := core.Point(ray.Origin)
	v := core.NewVec4(ray.Direction.X, ray.Direction.Y, ray.Direction.Z, 0)
	mv := q.M.MulVec4(v)

	a := v.Dot(mv)
	b := 2 * s.Dot(mv)
	c := s.Dot(q.M.MulVec4(s))
	return recordRoots(q, ray, a, b, c, nearest, hits)
}

// NormalAt returns the normalized gradient of the implicit function at p
func (q *Quadric) NormalAt(p core.Vec3) core.Vec3 {
	g := q.M.MulVec4(core.Point(p))
	return core.NewVec3(g.X, g.Y, g.Z).Normalize()
}

// UV returns coordinates in the bounds rectangle, or the origin without bounds
func (q *Quadric) UV(p, n core.Vec3) core.Vec2 {
	if q.bounds == nil {
		return core.Vec2{}
	}
	return q.bounds.UV(p, n)
}

// PerturbNormal tilts n within the bounds rectangle; unbounded quadrics are left unchanged
func (q *Quadric) PerturbNormal(n core.Vec3, i, j int) core.Vec3 {
	if q.bounds == nil {
		return n
	}
	return q.bounds.perturbWith(q.BumpMap, n, i, j)
}

// Transform applies M' = (W⁻¹)ᵀ M W⁻¹. A singular W leaves the surface unchanged.
func (q *Quadric) Transform(m core.Matrix4) {
	inv, ok := m.Inverse()
	if !ok {
		return
	}
	q.M = inv.Transpose().Mul(q.M).Mul(inv)
	if q.bounds != nil {
		q.bounds.Transform(m)
	}
	q.transformClipPlanes(m)
}
