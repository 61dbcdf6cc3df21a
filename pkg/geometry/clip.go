package geometry

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// ClipPlane is a half-space bounding a primitive. Normal points outward:
// the visible region lies on the side opposite to it.
type ClipPlane struct {
	Anchor core.Vec3
	Normal core.Vec3
}

// NewClipPlane creates a clip plane with a normalized outward normal
func NewClipPlane(anchor, normal core.Vec3) ClipPlane {
	return ClipPlane{Anchor: anchor, Normal: normal.Normalize()}
}

// Contains reports whether p is strictly inside the half-space
func (c ClipPlane) Contains(p core.Vec3) bool {
	v := p.Subtract(c.Anchor).Normalize()
	return c.Normal.Dot(v) <= -core.Epsilon
}

// Transform maps the plane through m; the normal goes through the inverse-transpose
func (c ClipPlane) Transform(m core.Matrix4) ClipPlane {
	return ClipPlane{
		Anchor: m.TransformPoint(c.Anchor),
		Normal: m.TransformNormal(c.Normal),
	}
}

// BoxClipPlanes bounds a rectangle around center spanned by the unit tangents
// right and up: it extends left/right along right and bottom/top along up.
func BoxClipPlanes(center, right, up core.Vec3, left, rightWidth, bottom, top float64) []ClipPlane {
	return []ClipPlane{
		NewClipPlane(center.Add(up.Multiply(top)), up),
		NewClipPlane(center.Subtract(right.Multiply(left)), right.Negate()),
		NewClipPlane(center.Add(right.Multiply(rightWidth)), right),
		NewClipPlane(center.Subtract(up.Multiply(bottom)), up.Negate()),
	}
}
