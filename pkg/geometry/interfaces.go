package geometry

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Object is a primitive that can take part in a visibility scan.
//
// Intersect follows the nearest-distance protocol: a root t counts only when
// t > core.Epsilon and the hit point lies inside every clip plane of the
// object. Qualifying roots are appended to hits (when non-nil) whether or not
// they are nearer than nearest.Distance; Intersect reports true only when it
// lowered nearest.Distance.
type Object interface {
	Intersect(ray core.Ray, nearest *Nearest, hits *IntersectionList) bool
	NormalAt(p core.Vec3) core.Vec3
	UV(p, n core.Vec3) core.Vec2
	// PerturbNormal blends the bump-map gradient at texel (i, j) into n
	PerturbNormal(n core.Vec3, i, j int) core.Vec3
	Transform(m core.Matrix4)
	TransformUV(m core.Matrix4)
	Base() *Surface
}

// Kind names the primitive variant of obj, for diagnostics and statistics
func Kind(obj Object) string {
	switch obj.(type) {
	case *Sphere:
		return "sphere"
	case *Plane:
		return "plane"
	case *Disk:
		return "disk"
	case *Cylinder:
		return "cylinder"
	case *Cone:
		return "cone"
	case *Quadric:
		return "quadric"
	case *Polygon:
		return "polygon"
	case *Triangle:
		return "triangle"
	default:
		return "unknown"
	}
}
