package renderer

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// Tracer shades rays against a scene with Phong local illumination plus
// recursive mirror reflection and refraction.
//
// Depth counts from 1 for primary rays. Local illumination applies at every
// depth; reflection and refraction recurse only while depth ≤ MaxDepth.
type Tracer struct {
	Scene    *scene.Scene
	MaxDepth int
	Counters *RayCounters
}

// NewTracer creates a tracer. counters may be nil.
func NewTracer(s *scene.Scene, maxDepth int, counters *RayCounters) *Tracer {
	return &Tracer{Scene: s, MaxDepth: maxDepth, Counters: counters}
}

// Trace returns the clamped color seen along ray, or the background when nothing is hit.
// nearest bounds the hit distance and holds the accepted distance afterwards.
func (t *Tracer) Trace(ray core.Ray, nearest *geometry.Nearest, refractionIndex float64, depth int) core.Color {
	hit, ok := t.Scene.FindClosestIntersection(ray, nearest)
	if !ok {
		return t.Scene.Background
	}
	return t.Shade(ray, hit, refractionIndex, depth)
}

// Shade computes the color at an accepted hit
func (t *Tracer) Shade(ray core.Ray, hit scene.Intersection, refractionIndex float64, depth int) core.Color {
	surface := hit.Object.Base()
	m := surface.Material

	diffuse, specular := m.DiffuseColor, m.SpecularColor
	kLocal, kReflect, kTransmit := m.Diffusiveness, m.Reflectiveness, m.Transparency
	p, n := hit.Point, hit.Normal
	v := ray.Direction.Negate()

	if surface.Texture != nil {
		diffuse = surface.Texture.Lookup(hit.UV)
		if diffuse.A < 1 {
			kLocal = diffuse.A
			kTransmit = 1 - diffuse.A
		}
	}
	if surface.BumpMap != nil {
		i, j := surface.BumpMap.Index(hit.UV)
		p = p.Add(n.Multiply(surface.BumpMap.Height(i, j)))
		n = hit.Object.PerturbNormal(n, i, j)
	}
	if surface.NormalMap != nil {
		if mapped := surface.NormalMap.Lookup(hit.UV); mapped.LengthSquared() > core.Epsilon {
			n = mapped.Normalize()
		}
	}

	local := core.Color{}
	var occluders geometry.IntersectionList
	for _, light := range t.Scene.Lights {
		toLight := light.Location.Subtract(p)
		distance := toLight.Length()
		if core.IsZero(distance) {
			continue
		}
		l := toLight.Divide(distance)

		occluders.Reset()
		t.Counters.addShadow()
		t.Scene.CollectIntersections(core.NewRay(p, l), &occluders)
		s := ShadowAttenuation(occluders.Hits(), distance)
		if s <= core.Epsilon {
			continue
		}

		dotNL := n.Dot(l)
		r := n.Multiply(2 * dotNL).Subtract(l)
		dotRV := max(r.Dot(v), 0)

		term := diffuse.Scale(m.DiffuseCoefficient * max(dotNL, 0)).
			Add(specular.Scale(m.Shininess * math.Pow(dotRV, m.SpecularExponent)))
		local = local.Add(term.Scale(s * light.AttenuationFactor(distance) * light.Intensity).Modulate(light.Color))
	}
	local = local.Add(diffuse.Scale(m.AmbientIntensity))
	result := local.Scale(kLocal)

	if depth <= t.MaxDepth {
		if kReflect > core.Epsilon {
			t.Counters.addReflected()
			reflected := t.Trace(core.NewRay(p, Reflect(n, v)), geometry.NewNearest(), refractionIndex, depth+1)
			result = result.Add(reflected.Scale(kReflect))
		}
		if kTransmit > core.Epsilon {
			if dir, ok := Refract(n, v, refractionIndex, m.RefractionIndex); ok {
				t.Counters.addRefracted()
				refracted := t.Trace(core.NewRay(p, dir), geometry.NewNearest(), m.RefractionIndex, depth+1)
				result = result.Add(refracted.Scale(kTransmit))
			}
		}
	}

	result.A = 1
	return result.Clamp()
}

// ShadowAttenuation multiplies the translucency of every occluder strictly
// between the surface and a light lightDistance away. A fully occluded light
// yields 0.
func ShadowAttenuation(hits []geometry.Hit, lightDistance float64) float64 {
	s := 1.0
	for _, h := range hits {
		if core.IsZero(h.Distance) || h.Distance >= lightDistance {
			continue
		}
		s *= h.Object.Base().Material.Translucency
		if s <= core.Epsilon {
			return 0
		}
	}
	return s
}

// Reflect mirrors v, the direction towards the viewer, about n: 2(N·V)N − V
func Reflect(n, v core.Vec3) core.Vec3 {
	return n.Multiply(2 * n.Dot(v)).Subtract(v)
}

// Refract bends v, the direction towards the viewer, through a boundary from a
// medium of index n1 into one of index n2. It reports false on total internal reflection.
func Refract(n, v core.Vec3, n1, n2 float64) (core.Vec3, bool) {
	u := n1 / n2
	dotNV := n.Dot(v)
	radical := 1 - u*u*(1-dotNV*dotNV)
	if radical <= core.Epsilon {
		return core.Vec3{}, false
	}
	return n.Multiply(u*dotNV - math.Sqrt(radical)).Subtract(v.Multiply(u)).Normalize(), true
}
