package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

func approxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func approxEqualVec(a, b core.Vec3, tolerance float64) bool {
	return approxEqual(a.X, b.X, tolerance) &&
		approxEqual(a.Y, b.Y, tolerance) &&
		approxEqual(a.Z, b.Z, tolerance)
}

func approxEqualColor(a, b core.Color, tolerance float64) bool {
	return approxEqual(a.R, b.R, tolerance) &&
		approxEqual(a.G, b.G, tolerance) &&
		approxEqual(a.B, b.B, tolerance)
}

// matte returns a material with no specular term so shaded values are easy to predict
func matte(diffuse core.Color, kd, ambient float64) material.Material {
	m := material.NewPhong(diffuse, core.NewColor(0, 0, 0), kd, 0, 1)
	m.AmbientIntensity = ambient
	return m
}

func sphereWith(center core.Vec3, radius float64, m material.Material) *geometry.Sphere {
	s := geometry.NewSphere(center, radius)
	s.Material = m
	return s
}

func sceneWith(objects ...geometry.Object) *scene.Scene {
	s := scene.NewScene()
	for _, obj := range objects {
		s.AddObject(obj)
	}
	return s
}

func TestCamera_GetRay(t *testing.T) {
	eye := core.NewVec3(0, 0, -10)
	cam := NewCamera(eye, scene.DefaultWindow(), 12, 8)

	tests := []struct {
		name   string
		i, j   int
		offset core.Vec2
		point  core.Vec3
	}{
		{"top left centre", 0, 0, core.NewVec2(0.5, 0.5), core.NewVec3(-5.5, -3.5, 0)},
		{"top left corner", 0, 0, core.NewVec2(0, 0), core.NewVec3(-6, -4, 0)},
		{"bottom right corner", 11, 7, core.NewVec2(1, 1), core.NewVec3(6, 4, 0)},
		{"middle", 6, 4, core.NewVec2(0, 0), core.NewVec3(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cam.ProjectionPoint(tt.i, tt.j, tt.offset)
			if !approxEqualVec(got, tt.point, 1e-12) {
				t.Errorf("ProjectionPoint = %v, want %v", got, tt.point)
			}
			ray := cam.GetRay(tt.i, tt.j, tt.offset)
			if ray.Origin != eye {
				t.Errorf("origin = %v, want the eye", ray.Origin)
			}
			if !approxEqual(ray.Direction.Length(), 1, 1e-12) {
				t.Errorf("direction not normalized: %v", ray.Direction)
			}
			want := tt.point.Subtract(eye).Normalize()
			if !approxEqualVec(ray.Direction, want, 1e-12) {
				t.Errorf("direction = %v, want %v", ray.Direction, want)
			}
		})
	}
}

func TestParsePattern(t *testing.T) {
	tests := []struct {
		name    string
		samples int
	}{
		{"center", 1},
		{"quincunx", 5},
		{"grid", 9},
		{"legacy", 13},
		{" Legacy ", 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePattern(tt.name)
			if err != nil {
				t.Fatalf("ParsePattern(%q) error: %v", tt.name, err)
			}
			if len(p) != tt.samples {
				t.Errorf("got %d samples, want %d", len(p), tt.samples)
			}
			for _, s := range p {
				if s.X < 0 || s.X > 1 || s.Y < 0 || s.Y > 1 {
					t.Errorf("offset %v outside the pixel", s)
				}
			}
		})
	}

	if _, err := ParsePattern("stratified"); err == nil {
		t.Error("expected an error for an unknown pattern")
	}
}

func TestReflect(t *testing.T) {
	n := core.NewVec3(0, 0, -1)
	v := core.NewVec3(1, 0, -1).Normalize()
	got := Reflect(n, v)
	want := core.NewVec3(-1, 0, -1).Normalize()
	if !approxEqualVec(got, want, 1e-12) {
		t.Errorf("Reflect = %v, want %v", got, want)
	}
}

func TestRefract(t *testing.T) {
	n := core.NewVec3(0, 0, -1)
	toViewer := func(theta float64) core.Vec3 {
		return core.NewVec3(math.Sin(theta), 0, -math.Cos(theta))
	}

	tests := []struct {
		name    string
		theta   float64
		n1, n2  float64
		wantOK  bool
		wantSin float64 // sine of the transmitted angle
	}{
		{"normal incidence", 0, 1, 1.5, true, 0},
		{"into glass", math.Pi / 4, 1, 1.5, true, math.Sin(math.Pi/4) / 1.5},
		{"out of glass", math.Pi / 6, 1.5, 1, true, 1.5 * math.Sin(math.Pi/6)},
		{"total internal reflection", math.Pi / 3, 1.5, 1, false, 0},
		{"matched indices", math.Pi / 5, 1.3, 1.3, true, math.Sin(math.Pi / 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, ok := Refract(n, toViewer(tt.theta), tt.n1, tt.n2)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !approxEqual(dir.Length(), 1, 1e-9) {
				t.Errorf("direction not normalized: %v", dir)
			}
			if dir.Z <= 0 {
				t.Errorf("transmitted ray should cross the surface, got %v", dir)
			}
			if !approxEqual(-dir.X, tt.wantSin, 1e-9) {
				t.Errorf("sin(transmitted) = %f, want %f", -dir.X, tt.wantSin)
			}
		})
	}
}

func TestShadowAttenuation(t *testing.T) {
	occluder := func(translucency float64) geometry.Object {
		m := material.DefaultMaterial()
		m.Translucency = translucency
		return sphereWith(core.NewVec3(0, 0, 0), 1, m)
	}
	half, mostly, opaque := occluder(0.5), occluder(0.8), occluder(0)

	tests := []struct {
		name     string
		hits     []geometry.Hit
		expected float64
	}{
		{"no occluders", nil, 1},
		{"two translucent", []geometry.Hit{{Object: half, Distance: 2}, {Object: mostly, Distance: 3}}, 0.4},
		{"beyond the light", []geometry.Hit{{Object: opaque, Distance: 12}, {Object: half, Distance: 2}}, 0.5},
		{"at the light", []geometry.Hit{{Object: opaque, Distance: 10}}, 1},
		{"self hit", []geometry.Hit{{Object: opaque, Distance: 1e-9}}, 1},
		{"opaque", []geometry.Hit{{Object: half, Distance: 2}, {Object: opaque, Distance: 4}, {Object: mostly, Distance: 5}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShadowAttenuation(tt.hits, 10)
			if !approxEqual(got, tt.expected, 1e-12) {
				t.Errorf("ShadowAttenuation = %f, want %f", got, tt.expected)
			}

			// Hit order carries no meaning
			reversed := make([]geometry.Hit, len(tt.hits))
			for i, h := range tt.hits {
				reversed[len(tt.hits)-1-i] = h
			}
			if got := ShadowAttenuation(reversed, 10); !approxEqual(got, tt.expected, 1e-12) {
				t.Errorf("reversed ShadowAttenuation = %f, want %f", got, tt.expected)
			}
		})
	}
}
