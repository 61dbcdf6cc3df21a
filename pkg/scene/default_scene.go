package scene

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// ErrUnknownScene is returned by Lookup for names that are not built in
var ErrUnknownScene = errors.New("unknown scene")

// Built-in scenes keyed by the name used on the command line and in the web UI
var builtins = map[string]struct {
	description string
	build       func() (*Scene, error)
}{
	"default":    {"Phong spheres, a mirror and a checkered floor", NewDefaultScene},
	"primitives": {"Every primitive kind: cone, capped cylinder, disk, quadric, polygon, triangle", NewPrimitivesScene},
	"glass":      {"Refraction through glass and an opacity cut-out disk", NewGlassScene},
}

// BuiltinNames returns the names accepted by Lookup, sorted
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup builds the named built-in scene
func Lookup(name string) (*Scene, error) {
	entry, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return entry.build()
}

// checkerTexture returns a two-color checkerboard of size x size texels
func checkerTexture(a, b core.Color, size int) *material.Texture {
	texels := make([]core.Color, size*size)
	half := max(size/2, 1)
	for j := 0; j < size; j++ {
		for i := 0; i < size; i++ {
			if (i/half+j/half)%2 == 0 {
				texels[j*size+i] = a
			} else {
				texels[j*size+i] = b
			}
		}
	}
	return material.NewTexture(size, size, texels)
}

// stripeOpacity returns an opacity map alternating solid and clear texels along u
func stripeOpacity(stripes, repeat int) *material.OpacityMap {
	texels := make([]core.Color, stripes)
	for i := range texels {
		texels[i] = core.Color{R: 1, G: 1, B: 1, A: float64((i + 1) % 2)}
	}
	return material.NewOpacityMap(material.NewTexture(stripes, 1, texels).WithTiling(repeat, 1), 0.5)
}

// addFloor adds a checkered floor at height y. -Y points up.
func addFloor(b *Builder, y float64) error {
	floor := material.NewPhong(core.NewColor(1, 1, 1), core.NewColor(0, 0, 0), 0.6, 0, 1)
	if err := b.SetMaterial(floor); err != nil {
		return err
	}
	b.SetTexture(checkerTexture(core.NewColor(0.9, 0.9, 0.9), core.NewColor(0.2, 0.2, 0.25), 2))
	b.AddPlane(core.NewVec3(0, y, 0), core.NewVec3(0, -1, 0))
	b.EndShape()
	return nil
}

func addStandardLights(b *Builder) {
	b.AddLight(NewPointLight(1, core.NewVec3(-6, -9, -4), core.NewColor(1, 1, 1)))
	b.AddLight(NewPointLight(0.6, core.NewVec3(8, -6, -2), core.NewColor(1, 1, 1)).SetAttenuation(0.5, 0.02, 0))
}

func translate(x, y, z float64) Transform {
	return Transform{Translation: core.NewVec3(x, y, z)}
}

// NewDefaultScene creates three spheres resting on a checkered floor, the middle one a mirror
func NewDefaultScene() (*Scene, error) {
	b := NewBuilder()
	addStandardLights(b)
	if err := addFloor(b, 2); err != nil {
		return nil, err
	}

	spheres := []struct {
		x, z float64
		mat  material.Material
	}{
		{-3.5, 9, material.NewPhong(core.NewColor(0.85, 0.2, 0.15), core.NewColor(1, 1, 1), 0.6, 0.5, 20)},
		{0, 11, material.NewMirror(core.NewColor(0.9, 0.9, 0.9), 0.8)},
		{3.5, 9, material.NewPhong(core.NewColor(0.15, 0.3, 0.85), core.NewColor(1, 1, 1), 0.6, 0.5, 20)},
	}
	for _, s := range spheres {
		if err := b.SetMaterial(s.mat); err != nil {
			return nil, err
		}
		b.PushTransform(translate(s.x, 0.5, s.z))
		b.AddSphere(1.5)
		b.PopTransform()
		b.EndShape()
	}
	return b.Build(), nil
}

// NewPrimitivesScene creates one instance of every primitive kind
func NewPrimitivesScene() (*Scene, error) {
	b := NewBuilder()
	addStandardLights(b)
	if err := addFloor(b, 3); err != nil {
		return nil, err
	}

	matte := func(r, g, bl float64) material.Material {
		return material.NewPhong(core.NewColor(r, g, bl), core.NewColor(1, 1, 1), 0.6, 0.4, 15)
	}

	// Capped cylinder tilted towards the viewer
	if err := b.SetMaterial(matte(0.9, 0.6, 0.1)); err != nil {
		return nil, err
	}
	b.PushTransform(Transform{
		Translation: core.NewVec3(-4.5, 3, 12),
		Rotation:    Rotation{Axis: core.NewVec3(1, 0, 0), Angle: -math.Pi / 8},
	})
	b.AddCylinder(1.2, 3.5, true, true)
	b.PopTransform()
	b.EndShape()

	// Finite cone turned apex up with its base on the floor
	if err := b.SetMaterial(matte(0.2, 0.7, 0.3)); err != nil {
		return nil, err
	}
	b.PushTransform(Transform{
		Translation: core.NewVec3(-1.2, -1, 11),
		Rotation:    Rotation{Axis: core.NewVec3(1, 0, 0), Angle: math.Pi},
	})
	b.AddCone(1.4, 4)
	b.PopTransform()
	b.EndShape()

	// Ellipsoid quadric x²/4 + y² + z² = 1, cut down to the half below its center
	if err := b.SetMaterial(matte(0.7, 0.2, 0.7)); err != nil {
		return nil, err
	}
	b.PushTransform(translate(2.5, 1.5, 10))
	b.AddCutPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, -1, 0))
	b.AddQuadric([10]float64{0.25, 1, 1, 0, 0, 0, 0, 0, 0, -1}, Bounds{})
	b.PopTransform()
	b.EndShape()

	// Pentagon and triangle hanging behind
	if err := b.SetMaterial(matte(0.2, 0.5, 0.9)); err != nil {
		return nil, err
	}
	pentagon := make([]core.Vec3, 5)
	for i := range pentagon {
		a := 2 * math.Pi * float64(i) / 5
		pentagon[i] = core.NewVec3(1.5*math.Sin(a), -1.5*math.Cos(a), 0)
	}
	b.PushTransform(translate(5, -2, 14))
	if _, err := b.AddPolygon(pentagon); err != nil {
		return nil, err
	}
	b.PopTransform()
	b.EndShape()

	if err := b.SetMaterial(matte(0.9, 0.9, 0.2)); err != nil {
		return nil, err
	}
	b.AddTriangle(core.NewVec3(-2, -3.5, 15), core.NewVec3(1, -3.5, 15), core.NewVec3(-0.5, -1, 15))
	b.EndShape()

	// Disk carrying the checker texture, bounded to a square texture frame
	if err := b.SetMaterial(matte(1, 1, 1)); err != nil {
		return nil, err
	}
	b.SetTexture(checkerTexture(core.NewColor(1, 0.3, 0.3), core.NewColor(1, 1, 1), 8).WithTiling(2, 2))
	b.PushTransform(translate(-4, -2.5, 16))
	b.AddDisk(1.6, false, Bounds{Left: 1.6, Right: 1.6, Bottom: 1.6, Top: 1.6})
	b.PopTransform()
	b.EndShape()

	return b.Build(), nil
}

// NewGlassScene creates a glass sphere in front of a checkered wall and a
// disk with an opacity cut-out pattern
func NewGlassScene() (*Scene, error) {
	b := NewBuilder()
	addStandardLights(b)
	if err := addFloor(b, 2.5); err != nil {
		return nil, err
	}

	wall := material.NewPhong(core.NewColor(1, 1, 1), core.NewColor(0, 0, 0), 0.7, 0, 1)
	if err := b.SetMaterial(wall); err != nil {
		return nil, err
	}
	b.SetTexture(checkerTexture(core.NewColor(0.9, 0.8, 0.3), core.NewColor(0.2, 0.4, 0.8), 2))
	b.AddPlane(core.NewVec3(0, 0, 20), core.NewVec3(0, 0, -1))
	b.EndShape()

	if err := b.SetMaterial(material.NewGlass(core.NewColor(0.9, 0.95, 1), 0.85, 1.5)); err != nil {
		return nil, err
	}
	b.PushTransform(translate(-1.5, 0, 9))
	b.AddSphere(2)
	b.PopTransform()
	b.EndShape()

	if err := b.SetMaterial(material.NewMirror(core.NewColor(0.8, 0.8, 0.8), 0.6)); err != nil {
		return nil, err
	}
	b.PushTransform(translate(3.5, 1, 12))
	b.AddSphere(1.5)
	b.PopTransform()
	b.EndShape()

	// Pinwheel: the polar UV of an unbounded disk turns stripes into sectors
	if err := b.SetMaterial(material.NewPhong(core.NewColor(0.9, 0.3, 0.2), core.NewColor(1, 1, 1), 0.6, 0.3, 10)); err != nil {
		return nil, err
	}
	b.SetOpacityMap(stripeOpacity(2, 6))
	b.PushTransform(translate(3.5, -2.5, 7))
	b.AddDisk(1.5, false, Bounds{})
	b.PopTransform()
	b.EndShape()

	return b.Build(), nil
}
