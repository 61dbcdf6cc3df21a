package geometry

import (
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// unitSphereQuadric returns x² + y² + z² - r² = 0
func unitSphereQuadric(r float64) *Quadric {
	return NewQuadric(1, 1, 1, 0, 0, 0, 0, 0, 0, -r*r)
}

func TestQuadric_Intersect_Sphere(t *testing.T) {
	q := unitSphereQuadric(2)

	got, nearest, hit := intersectAll(q, core.NewRay(core.NewVec3(-5, 0, 0), core.NewVec3(1, 0, 0)))
	if !hit {
		t.Fatal("Expected hit")
	}
	checkDistances(t, got, []float64{3, 7})
	if !approxEqual(nearest.Distance, 3, 1e-9) {
		t.Errorf("Expected nearest 3, got %f", nearest.Distance)
	}

	if _, _, hit := intersectAll(q, core.NewRay(core.NewVec3(0, 5, 0), core.NewVec3(1, 0, 0))); hit {
		t.Error("Expected miss")
	}
}

func TestQuadric_UniformScaleMatchesSphere(t *testing.T) {
	scale := core.Scale(core.NewVec3(2, 2, 2))

	q := unitSphereQuadric(1)
	q.Transform(scale)
	s := NewSphere(core.NewVec3(0, 0, 0), 1)
	s.Transform(scale)

	rays := []core.Ray{
		core.NewRay(core.NewVec3(-5, 0, 0), core.NewVec3(1, 0, 0)),
		core.NewRay(core.NewVec3(-5, 1, 0.5), core.NewVec3(1, 0, 0)),
		core.NewRay(core.NewVec3(3, 4, -2), core.NewVec3(-3, -4, 2).Normalize()),
	}
	for _, ray := range rays {
		want, _, _ := intersectAll(s, ray)
		got, _, _ := intersectAll(q, ray)
		checkDistances(t, got, want)
	}

	n := q.NormalAt(core.NewVec3(2, 0, 0))
	if !approxEqualVec(n, core.NewVec3(1, 0, 0), 1e-9) {
		t.Errorf("Expected normal (1,0,0), got %v", n)
	}
}

func TestQuadric_NonUniformScale(t *testing.T) {
	// Unit sphere stretched into x²/4 + y² + z² = 1
	q := unitSphereQuadric(1)
	q.Transform(core.Scale(core.NewVec3(2, 1, 1)))

	got, _, _ := intersectAll(q, core.NewRay(core.NewVec3(-5, 0, 0), core.NewVec3(1, 0, 0)))
	checkDistances(t, got, []float64{3, 7})

	got, _, _ = intersectAll(q, core.NewRay(core.NewVec3(0, -5, 0), core.NewVec3(0, 1, 0)))
	checkDistances(t, got, []float64{4, 6})
}

func TestQuadric_Translate(t *testing.T) {
	q := unitSphereQuadric(1)
	q.Transform(core.Translate(core.NewVec3(0, 0, 10)))

	got, _, _ := intersectAll(q, core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1)))
	checkDistances(t, got, []float64{9, 11})
}

func TestQuadric_SetBounds(t *testing.T) {
	q := unitSphereQuadric(2)
	q.SetBounds(1, 1, 1, 1)

	// Both roots along the x axis fall outside |x| <= 1
	if _, _, hit := intersectAll(q, core.NewRay(core.NewVec3(-5, 0, 0), core.NewVec3(1, 0, 0))); hit {
		t.Error("Expected the bounds to clip the hit")
	}

	p := core.NewVec3(0, 0, -2)
	got, _, hit := intersectAll(q, core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1)))
	if !hit {
		t.Fatal("Expected hit inside the bounds")
	}
	checkDistances(t, got, []float64{3, 7})

	uv := q.UV(p, q.NormalAt(p))
	if !approxEqual(uv.X, 0.5, 1e-9) || !approxEqual(uv.Y, 0.5, 1e-9) {
		t.Errorf("Expected UV (0.5,0.5), got (%f,%f)", uv.X, uv.Y)
	}
}

func TestQuadric_PerturbWithoutBounds(t *testing.T) {
	q := unitSphereQuadric(1)
	q.BumpMap = rampBumpMap()
	n := core.NewVec3(0, 0, -1)
	if got := q.PerturbNormal(n, 1, 0); got != n {
		t.Errorf("Expected unbounded quadric to keep its normal, got %v", got)
	}

	q.SetBounds(1, 1, 1, 1)
	if got := q.PerturbNormal(n, 1, 0); approxEqualVec(got, n, 1e-6) {
		t.Error("Expected bounded quadric to tilt its normal")
	}
}

func TestQuadric_SingularTransformIgnored(t *testing.T) {
	q := unitSphereQuadric(1)
	before := q.M
	q.Transform(core.Scale(core.NewVec3(1, 0, 1)))
	if q.M != before {
		t.Error("Singular transform should leave the quadric unchanged")
	}
}
