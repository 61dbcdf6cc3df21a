package scene

import (
	"fmt"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// DefaultQuadricBound is the half-width of the box every quadric is clipped to
const DefaultQuadricBound = 11.5

// BuildStats counts what went into a scene
type BuildStats struct {
	Cones           int
	CutPlanes       int
	Cylinders       int
	Disks           int
	Planes          int
	Polygons        int
	Quadrics        int
	Spheres         int
	Triangles       int
	Transformations int // Individual matrix applications, UV rotations included
}

// Rotation is a rotation of Angle radians around Axis
type Rotation struct {
	Axis  core.Vec3
	Angle float64
}

// Transform is one level of the transform hierarchy. Points map as
// P' = T·C·R·S·C⁻¹·P, so rotation and scale pivot around Center.
type Transform struct {
	Translation core.Vec3
	Center      core.Vec3
	Rotation    Rotation
	Scale       core.Vec3 // Zero means unit scale
}

// RotationMatrix returns R alone; surface orientation frames only follow rotations
func (t Transform) RotationMatrix() core.Matrix4 {
	if core.IsZero(t.Rotation.Angle) {
		return core.Identity()
	}
	return core.RotateAxis(t.Rotation.Axis, t.Rotation.Angle)
}

// Matrix returns the composed affine transform
func (t Transform) Matrix() core.Matrix4 {
	scale := t.Scale
	if scale == (core.Vec3{}) {
		scale = core.NewVec3(1, 1, 1)
	}
	return core.Translate(t.Translation).
		Mul(core.Translate(t.Center)).
		Mul(t.RotationMatrix()).
		Mul(core.Scale(scale)).
		Mul(core.Translate(t.Center.Negate()))
}

// Bounds is a rectangle measured from a shape's center, used as texture frame and clip box
type Bounds struct {
	Left, Right, Bottom, Top float64
}

// IsZero reports whether no bounds were given
func (b Bounds) IsZero() bool {
	return b == Bounds{}
}

// Builder assembles a scene from a nested description: transforms stack up,
// the current material and surface maps apply to every shape added after them,
// and cut planes are collected per shape.
type Builder struct {
	scene *Scene

	material  material.Material
	texture   *material.Texture
	bumpMap   *material.BumpMap
	normalMap *material.NormalMap
	opacity   *material.OpacityMap
	north     *core.Vec3
	greenwich *core.Vec3

	matrices   []core.Matrix4
	uvMatrices []core.Matrix4
	cutPlanes  []geometry.ClipPlane
}

// NewBuilder returns a builder for an empty scene
func NewBuilder() *Builder {
	return &Builder{
		scene:    NewScene(),
		material: material.DefaultMaterial(),
	}
}

// Build returns the assembled scene
func (b *Builder) Build() *Scene {
	return b.scene
}

// SetViewpoint sets the camera eye
func (b *Builder) SetViewpoint(p core.Vec3) {
	b.scene.Viewpoint = p
}

// SetWindow sets the projection window
func (b *Builder) SetWindow(w Window) {
	b.scene.Window = w
}

// SetBackground sets the color of rays that miss everything
func (b *Builder) SetBackground(c core.Color) {
	b.scene.Background = c
}

// AddLight adds a point light. Lights are not affected by transforms.
func (b *Builder) AddLight(light *PointLight) {
	b.scene.AddLight(light)
}

// PushTransform enters a transform level
func (b *Builder) PushTransform(t Transform) {
	b.matrices = append(b.matrices, t.Matrix())
	b.uvMatrices = append(b.uvMatrices, t.RotationMatrix())
}

// PopTransform leaves the innermost transform level
func (b *Builder) PopTransform() {
	if len(b.matrices) == 0 {
		return
	}
	b.matrices = b.matrices[:len(b.matrices)-1]
	b.uvMatrices = b.uvMatrices[:len(b.uvMatrices)-1]
}

// Depth returns the number of open transform levels
func (b *Builder) Depth() int {
	return len(b.matrices)
}

// SetMaterial makes m the material of subsequent shapes. It persists across shapes.
func (b *Builder) SetMaterial(m material.Material) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid material: %w", err)
	}
	b.material = m
	return nil
}

// SetTexture attaches a texture to the shapes of the current shape scope
func (b *Builder) SetTexture(t *material.Texture) {
	b.texture = t
}

// SetBumpMap attaches a bump map to the shapes of the current shape scope
func (b *Builder) SetBumpMap(m *material.BumpMap) {
	b.bumpMap = m
}

// SetNormalMap attaches a normal map to the shapes of the current shape scope
func (b *Builder) SetNormalMap(m *material.NormalMap) {
	b.normalMap = m
}

// SetOpacityMap attaches an opacity map to the shapes of the current shape scope
func (b *Builder) SetOpacityMap(m *material.OpacityMap) {
	b.opacity = m
}

// SetOrientation overrides the north/greenwich pair that orients the UV frame
func (b *Builder) SetOrientation(north, greenwich core.Vec3) {
	n, g := north.Normalize(), greenwich.Normalize()
	b.north, b.greenwich = &n, &g
}

// AddCutPlane restricts every shape of the current scope to the inside of a
// plane. The plane is moved by the transforms open at the time it is declared.
func (b *Builder) AddCutPlane(anchor, normal core.Vec3) {
	plane := geometry.NewClipPlane(anchor, normal)
	for i := len(b.matrices) - 1; i >= 0; i-- {
		plane = plane.Transform(b.matrices[i])
		b.scene.Stats.Transformations++
	}
	b.cutPlanes = append(b.cutPlanes, plane)
	b.scene.Stats.CutPlanes++
}

// EndShape closes a shape scope: cut planes, surface maps and orientation reset.
// The material carries over to the next shape.
func (b *Builder) EndShape() {
	b.cutPlanes = nil
	b.texture = nil
	b.bumpMap = nil
	b.normalMap = nil
	b.opacity = nil
	b.north = nil
	b.greenwich = nil
}

// AddSphere adds a sphere centered at the local origin
func (b *Builder) AddSphere(radius float64) *geometry.Sphere {
	s := geometry.NewSphere(core.NewVec3(0, 0, 0), radius)
	b.addObject(s)
	b.scene.Stats.Spheres++
	return s
}

// AddPlane adds an infinite plane
func (b *Builder) AddPlane(anchor, normal core.Vec3) *geometry.Plane {
	p := geometry.NewPlane(anchor, normal)
	b.addObject(p)
	b.scene.Stats.Planes++
	return p
}

// AddCone adds a cone with its apex at the local origin opening along -Y.
// A height below Epsilon makes the cone infinite.
func (b *Builder) AddCone(bottomRadius, height float64) *geometry.Cone {
	apex, axis := core.NewVec3(0, 0, 0), core.NewVec3(0, -1, 0)
	var c *geometry.Cone
	if height < core.Epsilon {
		c = geometry.NewConeFromRadius(apex, axis, bottomRadius)
	} else {
		c = geometry.NewFiniteCone(apex, axis, bottomRadius, height)
	}
	b.addObject(c)
	b.scene.Stats.Cones++
	return c
}

// AddCylinder adds a cylinder anchored at the local origin running along -Y.
// A height below Epsilon makes it infinite; finite cylinders may be closed by
// end cap disks, which count as disks.
func (b *Builder) AddCylinder(radius, height float64, top, bottom bool) *geometry.Cylinder {
	anchor, axis := core.NewVec3(0, 0, 0), core.NewVec3(0, -1, 0)
	var c *geometry.Cylinder
	if height < core.Epsilon {
		c = geometry.NewCylinder(anchor, axis, radius)
	} else {
		c = geometry.NewFiniteCylinder(anchor, axis, radius, height)
	}
	b.applySurface(c)

	// The axis runs along -Y, so the end cap is the top one
	start, end := c.EndCaps()
	for _, disk := range []struct {
		disk *geometry.Disk
		want bool
	}{{end, top}, {start, bottom}} {
		if disk.disk == nil || !disk.want {
			continue
		}
		b.place(disk.disk)
		b.scene.Stats.Disks++
	}

	b.place(c)
	b.scene.Stats.Cylinders++
	return c
}

// AddDisk adds a disk centered at the local origin facing -Z. Non-zero bounds
// set the texture rectangle and clip the disk to it.
func (b *Builder) AddDisk(radius float64, anti bool, bounds Bounds) *geometry.Disk {
	d := geometry.NewDisk(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), radius, anti)
	if !bounds.IsZero() {
		d.SetBounds(bounds.Left, bounds.Right, bounds.Bottom, bounds.Top)
	}
	b.addObject(d)
	b.scene.Stats.Disks++
	return d
}

// AddQuadric adds the quadric with coefficients A..K. Zero bounds clip it to
// the default box.
func (b *Builder) AddQuadric(coefficients [10]float64, bounds Bounds) *geometry.Quadric {
	c := coefficients
	q := geometry.NewQuadric(c[0], c[1], c[2], c[3], c[4], c[5], c[6], c[7], c[8], c[9])
	if bounds.IsZero() {
		bounds = Bounds{DefaultQuadricBound, DefaultQuadricBound, DefaultQuadricBound, DefaultQuadricBound}
	}
	q.SetBounds(bounds.Left, bounds.Right, bounds.Bottom, bounds.Top)
	b.addObject(q)
	b.scene.Stats.Quadrics++
	return q
}

// AddPolygon adds a planar polygon through the given local vertices
func (b *Builder) AddPolygon(vertices []core.Vec3) (*geometry.Polygon, error) {
	p, err := geometry.NewPolygon(vertices)
	if err != nil {
		return nil, err
	}
	b.addObject(p)
	b.scene.Stats.Polygons++
	return p, nil
}

// AddTriangle adds a triangle through three local vertices
func (b *Builder) AddTriangle(v0, v1, v2 core.Vec3) *geometry.Triangle {
	t := geometry.NewTriangle(v0, v1, v2)
	b.addObject(t)
	b.scene.Stats.Triangles++
	return t
}

func (b *Builder) addObject(obj geometry.Object) {
	b.applySurface(obj)
	b.place(obj)
}

// applySurface copies the current material, maps and orientation onto obj
func (b *Builder) applySurface(obj geometry.Object) {
	s := obj.Base()
	s.Material = b.material
	s.Texture = b.texture
	s.BumpMap = b.bumpMap
	s.NormalMap = b.normalMap
	s.OpacityMap = b.opacity
	if b.north != nil {
		s.North = *b.north
	}
	if b.greenwich != nil {
		s.Greenwich = *b.greenwich
	}
}

// place transforms obj into world space, innermost level first, attaches the
// world-space cut planes of the scope and adds it to the scene
func (b *Builder) place(obj geometry.Object) {
	for i := len(b.matrices) - 1; i >= 0; i-- {
		obj.Transform(b.matrices[i])
		b.scene.Stats.Transformations++
	}
	for i := len(b.uvMatrices) - 1; i >= 0; i-- {
		obj.TransformUV(b.uvMatrices[i])
		b.scene.Stats.Transformations++
	}
	obj.Base().AddClipPlanes(b.cutPlanes...)
	b.scene.AddObject(obj)
}
