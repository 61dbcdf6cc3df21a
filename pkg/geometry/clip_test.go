package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

func TestClipPlane_Contains(t *testing.T) {
	// Outward normal +x keeps the x < 0 half-space
	plane := NewClipPlane(core.NewVec3(0, 0, 0), core.NewVec3(2, 0, 0))

	tests := []struct {
		name  string
		point core.Vec3
		want  bool
	}{
		{"inside", core.NewVec3(-1, 0, 0), true},
		{"inside off axis", core.NewVec3(-1, 5, 3), true},
		{"outside", core.NewVec3(1, 0, 0), false},
		{"on the plane", core.NewVec3(0, 3, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := plane.Contains(tt.point); got != tt.want {
				t.Errorf("Contains(%v) = %t, want %t", tt.point, got, tt.want)
			}
		})
	}
}

func TestClipPlane_Transform(t *testing.T) {
	plane := NewClipPlane(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))
	moved := plane.Transform(core.Translate(core.NewVec3(3, 0, 0)).Mul(core.RotateZ(math.Pi / 2)))

	if !approxEqualVec(moved.Anchor, core.NewVec3(3, 0, 0), 1e-9) {
		t.Errorf("Expected anchor (3,0,0), got %v", moved.Anchor)
	}
	if !approxEqualVec(moved.Normal, core.NewVec3(0, 1, 0), 1e-9) {
		t.Errorf("Expected normal (0,1,0), got %v", moved.Normal)
	}
}

func TestBoxClipPlanes(t *testing.T) {
	planes := BoxClipPlanes(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), 1, 2, 3, 4)
	s := NewSurface()
	s.AddClipPlanes(planes...)

	tests := []struct {
		name  string
		point core.Vec3
		want  bool
	}{
		{"center", core.NewVec3(0, 0, 0), true},
		{"near right edge", core.NewVec3(1.9, 0, 0), true},
		{"past right edge", core.NewVec3(2.1, 0, 0), false},
		{"past left edge", core.NewVec3(-1.1, 0, 0), false},
		{"near top edge", core.NewVec3(0, 3.9, 0), true},
		{"past bottom edge", core.NewVec3(0, -3.1, 0), false},
		{"depth is unbounded", core.NewVec3(0.5, 0.5, 100), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.InsideClipPlanes(tt.point); got != tt.want {
				t.Errorf("InsideClipPlanes(%v) = %t, want %t", tt.point, got, tt.want)
			}
		})
	}
}
