package scene

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

// Intersection describes the accepted nearest hit of a closest-hit query
type Intersection struct {
	Object   geometry.Object
	Point    core.Vec3
	Normal   core.Vec3 // Faces the incoming ray
	UV       core.Vec2 // Zero unless the object carries surface maps
	Distance float64
}

// FindClosestIntersection scans every object for the nearest hit closer than nearest.Distance.
//
// A hit rejected by its object's opacity map restores the previously accepted
// hit and bound, and the scan carries on with the next object. Results therefore
// depend on object order.
func (s *Scene) FindClosestIntersection(ray core.Ray, nearest *geometry.Nearest) (Intersection, bool) {
	var best Intersection
	found := false
	prevDistance := nearest.Distance

	for _, obj := range s.Objects {
		if !obj.Intersect(ray, nearest, nil) {
			continue
		}

		hit := describeHit(obj, ray, nearest.Distance)
		if solidAt(obj, hit.UV) {
			best = hit
			found = true
			prevDistance = nearest.Distance
		} else {
			nearest.Distance = prevDistance
		}
	}
	return best, found
}

// FindIntersections returns every hit along the ray, nearest or not, minus the
// hits that fall on a transparent texel of an opacity map
func (s *Scene) FindIntersections(ray core.Ray) *geometry.IntersectionList {
	hits := &geometry.IntersectionList{}
	s.CollectIntersections(ray, hits)
	return hits
}

// CollectIntersections appends the hits of FindIntersections to hits
func (s *Scene) CollectIntersections(ray core.Ray, hits *geometry.IntersectionList) {
	for _, obj := range s.Objects {
		from := hits.Len()
		obj.Intersect(ray, geometry.NewNearest(), hits)
		if obj.Base().OpacityMap == nil || hits.Len() == from {
			continue
		}
		hits.Filter(from, func(h geometry.Hit) bool {
			return solidAt(h.Object, describeHit(h.Object, ray, h.Distance).UV)
		})
	}
}

// describeHit computes the point, the viewer-facing normal and, when needed, the UV of a hit
func describeHit(obj geometry.Object, ray core.Ray, distance float64) Intersection {
	p := ray.At(distance)
	n := obj.NormalAt(p)
	if n.Dot(ray.Direction) > core.Epsilon {
		n = n.Negate()
	}

	hit := Intersection{Object: obj, Point: p, Normal: n, Distance: distance}
	if obj.Base().HasMaps() {
		hit.UV = obj.UV(p, n)
	}
	return hit
}

func solidAt(obj geometry.Object, uv core.Vec2) bool {
	opacity := obj.Base().OpacityMap
	return opacity == nil || opacity.Solid(uv)
}
