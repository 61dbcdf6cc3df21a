package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

func TestNewConeFromRadius(t *testing.T) {
	cone := NewConeFromRadius(core.NewVec3(0, 0, 0), core.NewVec3(0, -1, 0), 5)
	if !approxEqual(cone.CosAngle, 1/math.Sqrt2, 1e-9) {
		t.Errorf("Expected cos 45°, got %f", cone.CosAngle)
	}
	if cone.Finite() {
		t.Error("Cone from a radius alone should be infinite")
	}
}

func TestCone_Intersect(t *testing.T) {
	apex := core.NewVec3(0, 0, 0)
	down := core.NewVec3(0, -1, 0)

	tests := []struct {
		name string
		cone *Cone
		ray  core.Ray
		want []float64
	}{
		{
			name: "finite through the body",
			cone: NewFiniteCone(apex, down, 1, 1),
			ray:  core.NewRay(core.NewVec3(-5, -0.5, 0), core.NewVec3(1, 0, 0)),
			want: []float64{4.5, 5.5},
		},
		{
			name: "finite clips the upper nappe",
			cone: NewFiniteCone(apex, down, 1, 1),
			ray:  core.NewRay(core.NewVec3(-5, 0.5, 0), core.NewVec3(1, 0, 0)),
			want: nil,
		},
		{
			name: "finite below the base",
			cone: NewFiniteCone(apex, down, 1, 1),
			ray:  core.NewRay(core.NewVec3(-5, -1.5, 0), core.NewVec3(1, 0, 0)),
			want: nil,
		},
		{
			name: "infinite double cone keeps both nappes",
			cone: NewCone(apex, down, 1/math.Sqrt2),
			ray:  core.NewRay(core.NewVec3(-5, 0.5, 0), core.NewVec3(1, 0, 0)),
			want: []float64{4.5, 5.5},
		},
		{
			// Parallel to a generator line the quadratic degenerates: a = 0
			name: "parallel to the slant",
			cone: NewCone(apex, down, 1/math.Sqrt2),
			ray:  core.NewRay(core.NewVec3(-5, 0, 0), core.NewVec3(1, -1, 0).Normalize()),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, hit := intersectAll(tt.cone, tt.ray)
			if hit != (len(tt.want) > 0) {
				t.Fatalf("Expected hit=%t, got %t", len(tt.want) > 0, hit)
			}
			checkDistances(t, got, tt.want)
		})
	}
}

func TestCone_NormalAt(t *testing.T) {
	cone := NewFiniteCone(core.NewVec3(0, 0, 0), core.NewVec3(0, -1, 0), 1, 1)

	// A 45° cone opening downwards: the normal points outwards and up
	n := cone.NormalAt(core.NewVec3(0.5, -0.5, 0))
	want := core.NewVec3(1, 1, 0).Normalize()
	if !approxEqualVec(n, want, 1e-9) {
		t.Errorf("Expected %v, got %v", want, n)
	}

	// Upper nappe mirrors it
	n = cone.NormalAt(core.NewVec3(0.5, 0.5, 0))
	want = core.NewVec3(1, -1, 0).Normalize()
	if !approxEqualVec(n, want, 1e-9) {
		t.Errorf("Expected %v, got %v", want, n)
	}

	// The apex falls back to the reversed axis
	n = cone.NormalAt(core.NewVec3(0, 0, 0))
	want = core.NewVec3(0, 1, 0)
	if !approxEqualVec(n, want, 1e-9) {
		t.Errorf("Expected %v at the apex, got %v", want, n)
	}
}

func TestCone_UV(t *testing.T) {
	cone := NewFiniteCone(core.NewVec3(0, 0, 0), core.NewVec3(0, -1, 0), 1, 2)
	p := core.NewVec3(0, -1, -0.5)
	uv := cone.UV(p, cone.NormalAt(p))
	if !approxEqual(uv.X, 0, 1e-6) || !approxEqual(uv.Y, 0.5, 1e-6) {
		t.Errorf("Expected (0,0.5), got (%f,%f)", uv.X, uv.Y)
	}
}

func TestCone_TransformRoundTrip(t *testing.T) {
	cone := NewFiniteCone(core.NewVec3(0, 0, 0), core.NewVec3(0, -1, 0), 1, 1)
	ray := core.NewRay(core.NewVec3(-5, -0.5, 0.1), core.NewVec3(1, 0, 0))
	before, _, _ := intersectAll(cone, ray)
	if len(before) != 2 {
		t.Fatalf("Expected two hits before transforming, got %d", len(before))
	}

	m := core.Translate(core.NewVec3(-3, 2, 1)).Mul(core.RotateAxis(core.NewVec3(1, 1, 0), 0.9))
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("Expected invertible transform")
	}
	cone.Transform(m)
	cone.Transform(inv)

	after, _, _ := intersectAll(cone, ray)
	checkDistances(t, after, before)
}
