package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

func TestTransform_Matrix(t *testing.T) {
	tests := []struct {
		name      string
		transform Transform
		point     core.Vec3
		expected  core.Vec3
	}{
		{"zero value is identity", Transform{}, core.NewVec3(1, 2, 3), core.NewVec3(1, 2, 3)},
		{"translation", Transform{Translation: core.NewVec3(0, 0, 5)}, core.NewVec3(1, 2, 3), core.NewVec3(1, 2, 8)},
		{
			"rotation pivots around center",
			Transform{
				Translation: core.NewVec3(0, 0, 5),
				Center:      core.NewVec3(1, 0, 0),
				Rotation:    Rotation{Axis: core.NewVec3(0, 0, 1), Angle: math.Pi / 2},
			},
			core.NewVec3(2, 0, 0),
			core.NewVec3(1, 1, 5),
		},
		{
			"scale pivots around center",
			Transform{Center: core.NewVec3(1, 1, 1), Scale: core.NewVec3(2, 2, 2)},
			core.NewVec3(2, 1, 1),
			core.NewVec3(3, 1, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.transform.Matrix().TransformPoint(tt.point)
			if !approxEqualVec(got, tt.expected, 1e-9) {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_NestedTransforms(t *testing.T) {
	b := NewBuilder()
	b.PushTransform(Transform{Translation: core.NewVec3(0, 0, 10)})
	b.PushTransform(Transform{Scale: core.NewVec3(2, 2, 2)})
	sphere := b.AddSphere(1)
	b.PopTransform()
	b.PopTransform()

	// Innermost first: scale, then translate
	if !approxEqualVec(sphere.Center, core.NewVec3(0, 0, 10), 1e-9) {
		t.Errorf("center = %v, want (0,0,10)", sphere.Center)
	}
	if !approxEqual(sphere.Radius, 2, 1e-9) {
		t.Errorf("radius = %f, want 2", sphere.Radius)
	}

	s := b.Build()
	if s.Stats.Transformations != 4 {
		t.Errorf("transformations = %d, want 4 (two matrices, two UV rotations)", s.Stats.Transformations)
	}
	if b.Depth() != 0 {
		t.Errorf("depth = %d after popping everything", b.Depth())
	}

	// Extra pops are ignored
	b.PopTransform()
	if b.Depth() != 0 {
		t.Errorf("depth = %d after popping an empty stack", b.Depth())
	}
}

func TestBuilder_CutPlanesAreWorldSpace(t *testing.T) {
	b := NewBuilder()
	b.PushTransform(Transform{Translation: core.NewVec3(0, 0, 10)})
	b.AddCutPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	sphere := b.AddSphere(1)
	b.PopTransform()
	b.EndShape()

	if len(sphere.ClipPlanes) != 1 {
		t.Fatalf("got %d clip planes, want 1", len(sphere.ClipPlanes))
	}
	// Moved once when declared, not again with the sphere
	if !approxEqualVec(sphere.ClipPlanes[0].Anchor, core.NewVec3(0, 0, 10), 1e-9) {
		t.Errorf("anchor = %v, want (0,0,10)", sphere.ClipPlanes[0].Anchor)
	}

	// Only the back half of the sphere survives
	nearest := geometry.NewNearest()
	if !sphere.Intersect(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1)), nearest, nil) {
		t.Fatal("expected the back hit")
	}
	if !approxEqual(nearest.Distance, 11, 1e-9) {
		t.Errorf("distance = %f, want 11", nearest.Distance)
	}

	s := b.Build()
	if s.Stats.CutPlanes != 1 {
		t.Errorf("cut planes = %d, want 1", s.Stats.CutPlanes)
	}
}

func TestBuilder_ShapeScope(t *testing.T) {
	b := NewBuilder()
	red := material.NewPhong(core.NewColor(1, 0, 0), core.NewColor(1, 1, 1), 0.5, 0.5, 10)
	if err := b.SetMaterial(red); err != nil {
		t.Fatal(err)
	}
	tex := material.NewTexture(1, 1, []core.Color{core.NewColor(1, 1, 1)})
	b.SetTexture(tex)
	b.SetOrientation(core.NewVec3(0, 0, 2), core.NewVec3(3, 0, 0))
	b.AddCutPlane(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))
	first := b.AddSphere(1)
	b.EndShape()
	second := b.AddSphere(1)

	if first.Texture != tex || len(first.ClipPlanes) != 1 {
		t.Error("first sphere should carry the texture and the cut plane")
	}
	if !approxEqualVec(first.North, core.NewVec3(0, 0, 1), 1e-9) || !approxEqualVec(first.Greenwich, core.NewVec3(1, 0, 0), 1e-9) {
		t.Errorf("orientation = %v/%v, want normalized overrides", first.North, first.Greenwich)
	}
	if second.Texture != nil || len(second.ClipPlanes) != 0 {
		t.Error("EndShape should reset maps and cut planes")
	}
	if second.North != core.NewVec3(0, -1, 0) {
		t.Errorf("north = %v, want the default", second.North)
	}
	if second.Material != red {
		t.Error("material should carry over to the next shape")
	}
}

func TestBuilder_UVFollowsRotation(t *testing.T) {
	b := NewBuilder()
	b.PushTransform(Transform{
		Translation: core.NewVec3(5, 0, 0),
		Rotation:    Rotation{Axis: core.NewVec3(0, 0, 1), Angle: math.Pi / 2},
	})
	sphere := b.AddSphere(1)

	if !approxEqualVec(sphere.North, core.NewVec3(1, 0, 0), 1e-9) {
		t.Errorf("north = %v, want (1,0,0)", sphere.North)
	}
	if !approxEqualVec(sphere.Greenwich, core.NewVec3(0, 0, -1), 1e-9) {
		t.Errorf("greenwich = %v, want (0,0,-1)", sphere.Greenwich)
	}
}

func TestBuilder_SetMaterialValidates(t *testing.T) {
	b := NewBuilder()
	bad := material.DefaultMaterial()
	bad.Reflectiveness = 0.5

	err := b.SetMaterial(bad)
	if !errors.Is(err, material.ErrEnergySplit) {
		t.Fatalf("err = %v, want ErrEnergySplit", err)
	}
	if s := b.AddSphere(1); s.Material != material.DefaultMaterial() {
		t.Error("a rejected material must not replace the current one")
	}
}

func TestBuilder_Cylinder(t *testing.T) {
	tests := []struct {
		name        string
		height      float64
		top, bottom bool
		objects     int
		disks       int
	}{
		{"capped", 2, true, true, 3, 2},
		{"top only", 2, true, false, 2, 1},
		{"open", 2, false, false, 1, 0},
		{"infinite ignores caps", 0, true, true, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			glass := material.NewGlass(core.NewColor(1, 1, 1), 0.5, 1.5)
			if err := b.SetMaterial(glass); err != nil {
				t.Fatal(err)
			}
			cyl := b.AddCylinder(1, tt.height, tt.top, tt.bottom)
			s := b.Build()

			if len(s.Objects) != tt.objects {
				t.Fatalf("objects = %d, want %d", len(s.Objects), tt.objects)
			}
			if s.Stats.Disks != tt.disks || s.Stats.Cylinders != 1 {
				t.Errorf("stats = %+v", s.Stats)
			}
			if cyl.Finite() != (tt.height > 0) {
				t.Errorf("Finite() = %v", cyl.Finite())
			}
			for _, obj := range s.Objects {
				if obj.Base().Material != glass {
					t.Errorf("%s does not carry the cylinder material", geometry.Kind(obj))
				}
			}
		})
	}

	t.Run("top cap position", func(t *testing.T) {
		b := NewBuilder()
		b.AddCylinder(1, 2, true, false)
		top, ok := b.Build().Objects[0].(*geometry.Disk)
		if !ok {
			t.Fatal("first object should be the top cap")
		}
		if !approxEqualVec(top.Anchor, core.NewVec3(0, -2, 0), 1e-9) || !approxEqualVec(top.Normal, core.NewVec3(0, -1, 0), 1e-9) {
			t.Errorf("top cap at %v facing %v", top.Anchor, top.Normal)
		}
	})
}

func TestBuilder_Cone(t *testing.T) {
	b := NewBuilder()
	infinite := b.AddCone(1, 0)
	finite := b.AddCone(1, 3)

	if infinite.Finite() {
		t.Error("zero height should give an infinite cone")
	}
	if !finite.Finite() || len(finite.ClipPlanes) != 2 {
		t.Errorf("finite cone: Finite() = %v, %d clip planes", finite.Finite(), len(finite.ClipPlanes))
	}
	if b.Build().Stats.Cones != 2 {
		t.Errorf("cones = %d, want 2", b.Build().Stats.Cones)
	}
}

func TestBuilder_BoundedShapes(t *testing.T) {
	b := NewBuilder()
	open := b.AddDisk(1, false, Bounds{})
	bounded := b.AddDisk(1, true, Bounds{Left: 2, Right: 2, Bottom: 1, Top: 1})
	quadric := b.AddQuadric([10]float64{1, 1, 1, 0, 0, 0, 0, 0, 0, -1}, Bounds{})

	if len(open.ClipPlanes) != 0 {
		t.Errorf("unbounded disk has %d clip planes", len(open.ClipPlanes))
	}
	if len(bounded.ClipPlanes) != 4 || !bounded.Anti {
		t.Errorf("bounded disk: %d clip planes, anti %v", len(bounded.ClipPlanes), bounded.Anti)
	}
	if !approxEqualVec(bounded.Normal, core.NewVec3(0, 0, -1), 1e-9) {
		t.Errorf("disk normal = %v, want (0,0,-1)", bounded.Normal)
	}
	if len(quadric.ClipPlanes) != 4 {
		t.Fatalf("quadric has %d clip planes, want the default box", len(quadric.ClipPlanes))
	}
	if quadric.InsideClipPlanes(core.NewVec3(DefaultQuadricBound+1, 0, 0)) {
		t.Error("point beyond the default bound should be clipped")
	}
	if !quadric.InsideClipPlanes(core.NewVec3(1, 1, 0)) {
		t.Error("point near the origin should be inside the default bound")
	}

	stats := b.Build().Stats
	if stats.Disks != 2 || stats.Quadrics != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestBuilder_Polygons(t *testing.T) {
	b := NewBuilder()
	square := []core.Vec3{
		core.NewVec3(0, 0, 5), core.NewVec3(1, 0, 5), core.NewVec3(1, 1, 5), core.NewVec3(0, 1, 5),
	}
	if _, err := b.AddPolygon(square); err != nil {
		t.Fatalf("AddPolygon() error: %v", err)
	}

	collinear := []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(2, 0, 0)}
	if _, err := b.AddPolygon(collinear); !errors.Is(err, geometry.ErrDegeneratePolygon) {
		t.Errorf("err = %v, want ErrDegeneratePolygon", err)
	}

	b.AddTriangle(core.NewVec3(0, 0, 6), core.NewVec3(1, 0, 6), core.NewVec3(0, 1, 6))

	s := b.Build()
	if len(s.Objects) != 2 {
		t.Errorf("objects = %d, want 2", len(s.Objects))
	}
	if s.Stats.Polygons != 1 || s.Stats.Triangles != 1 {
		t.Errorf("stats = %+v", s.Stats)
	}
}

func TestBuilder_SceneSettings(t *testing.T) {
	b := NewBuilder()
	b.SetViewpoint(core.NewVec3(1, 2, -20))
	b.SetWindow(Window{Min: core.NewVec2(-1, -1), Max: core.NewVec2(1, 1)})
	b.SetBackground(core.NewColor(0, 0, 0))
	b.PushTransform(Transform{Translation: core.NewVec3(100, 0, 0)})
	b.AddLight(NewPointLight(1, core.NewVec3(0, -5, 0), core.NewColor(1, 1, 1)))

	s := b.Build()
	if s.Viewpoint != core.NewVec3(1, 2, -20) {
		t.Errorf("viewpoint = %v", s.Viewpoint)
	}
	if s.Window.Max != core.NewVec2(1, 1) {
		t.Errorf("window = %+v", s.Window)
	}
	if s.Background != core.NewColor(0, 0, 0) {
		t.Errorf("background = %v", s.Background)
	}
	if len(s.Lights) != 1 || s.Lights[0].Location != core.NewVec3(0, -5, 0) {
		t.Errorf("lights should not be transformed: %+v", s.Lights)
	}
}
