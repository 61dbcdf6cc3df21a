package geometry

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// Surface holds the attributes every primitive carries: its material, the
// optional surface maps, the north/greenwich pair that orients its UV frame
// and the clip planes restricting its visible region.
type Surface struct {
	Material   material.Material
	Texture    *material.Texture
	BumpMap    *material.BumpMap
	NormalMap  *material.NormalMap
	OpacityMap *material.OpacityMap
	North      core.Vec3
	Greenwich  core.Vec3
	ClipPlanes []ClipPlane
}

// NewSurface returns a surface with the default material and orientation
func NewSurface() Surface {
	return Surface{
		Material:  material.DefaultMaterial(),
		North:     core.NewVec3(0, -1, 0),
		Greenwich: core.NewVec3(0, 0, -1),
	}
}

// Base returns the shared surface attributes
func (s *Surface) Base() *Surface {
	return s
}

// HasMaps reports whether any surface map needs UV coordinates at a hit
func (s *Surface) HasMaps() bool {
	return s.Texture != nil || s.BumpMap != nil || s.NormalMap != nil || s.OpacityMap != nil
}

// AddClipPlanes restricts the surface to the inside of the given planes
func (s *Surface) AddClipPlanes(planes ...ClipPlane) {
	s.ClipPlanes = append(s.ClipPlanes, planes...)
}

// InsideClipPlanes reports whether p lies inside every clip plane
func (s *Surface) InsideClipPlanes(p core.Vec3) bool {
	for _, plane := range s.ClipPlanes {
		if !plane.Contains(p) {
			return false
		}
	}
	return true
}

// TransformUV rotates the UV orientation frame
func (s *Surface) TransformUV(m core.Matrix4) {
	s.North = m.TransformVector(s.North).Normalize()
	s.Greenwich = m.TransformVector(s.Greenwich).Normalize()
}

func (s *Surface) transformClipPlanes(m core.Matrix4) {
	for i, plane := range s.ClipPlanes {
		s.ClipPlanes[i] = plane.Transform(m)
	}
}

// record applies the nearest-distance protocol to a single root t of obj
func (s *Surface) record(obj Object, ray core.Ray, t float64, nearest *Nearest, hits *IntersectionList) bool {
	if t <= core.Epsilon || !s.InsideClipPlanes(ray.At(t)) {
		return false
	}
	if hits != nil {
		hits.Add(obj, t)
	}
	return nearest.Offer(t)
}

// bumpNormal offsets n along the tangents u and v by the bump-map gradient at (i, j)
func bumpNormal(bump *material.BumpMap, n, u, v core.Vec3, i, j int) core.Vec3 {
	if bump == nil {
		return n
	}
	k1, k2 := bump.Gradient(i, j)
	return n.Add(u.Multiply(k2)).Add(v.Multiply(k1)).Normalize()
}
