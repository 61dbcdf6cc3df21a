package geometry

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Triangle is a polygon specialisation resolved with barycentric weights
// from the Gram matrix of its two edges
type Triangle struct {
	Surface
	V0, V1, V2 core.Vec3

	normal     core.Vec3
	q1, q2     core.Vec3 // edges from V0
	q1q1, q2q2 float64
	q1q2       float64
	det        float64
}

// NewTriangle creates a triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3) *Triangle {
	t := &Triangle{
		Surface: NewSurface(),
		V0:      v0,
		V1:      v1,
		V2:      v2,
	}
	t.init()
	return t
}

func (t *Triangle) init() {
	t.q1 = t.V1.Subtract(t.V0)
	t.q2 = t.V2.Subtract(t.V0)
	t.q1q1 = t.q1.Dot(t.q1)
	t.q2q2 = t.q2.Dot(t.q2)
	t.q1q2 = t.q1.Dot(t.q2)
	t.det = t.q1q1*t.q2q2 - t.q1q2*t.q1q2
	t.normal = t.q1.Cross(t.q2).Normalize()
}

// Barycentric returns the weights (w1, w2) of V1 and V2 for a point on the
// triangle's plane; V0 carries 1 - w1 - w2. ok is false for degenerate triangles.
func (t *Triangle) Barycentric(p core.Vec3) (w1, w2 float64, ok bool) {
	if core.IsZero(t.det) {
		return 0, 0, false
	}
	r := p.Subtract(t.V0)
	rq1 := r.Dot(t.q1)
	rq2 := r.Dot(t.q2)
	w1 = (t.q2q2*rq1 - t.q1q2*rq2) / t.det
	w2 = (t.q1q1*rq2 - t.q1q2*rq1) / t.det
	return w1, w2, true
}

// Intersect hits the supporting plane and accepts points with non-negative weights
func (t *Triangle) Intersect(ray core.Ray, nearest *Nearest, hits *IntersectionList) bool {
	dist, ok := planeDistance(t.V0, t.normal, ray)
	if !ok {
		return false
	}
	w1, w2, ok := t.Barycentric(ray.At(dist))
	if !ok || w1 < 0 || w2 < 0 || 1-w1-w2 < 0 {
		return false
	}
	return t.record(t, ray, dist, nearest, hits)
}

// NormalAt returns the triangle normal
func (t *Triangle) NormalAt(core.Vec3) core.Vec3 {
	return t.normal
}

// UV returns the barycentric weights of V1 and V2
func (t *Triangle) UV(p, n core.Vec3) core.Vec2 {
	w1, w2, _ := t.Barycentric(p)
	return core.NewVec2(w1, w2)
}

// PerturbNormal tilts n along the first edge and its in-plane perpendicular
func (t *Triangle) PerturbNormal(n core.Vec3, i, j int) core.Vec3 {
	u := t.q1.Normalize()
	return bumpNormal(t.BumpMap, n, u, t.normal.Cross(u), i, j)
}

// Transform maps the vertices through m
func (t *Triangle) Transform(m core.Matrix4) {
	t.V0 = m.TransformPoint(t.V0)
	t.V1 = m.TransformPoint(t.V1)
	t.V2 = m.TransformPoint(t.V2)
	t.init()
	t.transformClipPlanes(m)
}
