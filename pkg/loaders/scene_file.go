package loaders

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

var (
	// ErrUnsupportedVersion is returned for scene files outside SupportedSceneVersions
	ErrUnsupportedVersion = errors.New("unsupported scene file version")
	// ErrUnknownGeometry is returned for nodes of an unrecognized type
	ErrUnknownGeometry = errors.New("unknown geometry type")
)

// SupportedSceneVersions is the semver constraint scene files must satisfy
const SupportedSceneVersions = "^1.0"

type vec2 [2]float64

func (v vec2) toVec2() core.Vec2 { return core.NewVec2(v[0], v[1]) }

type vec3 [3]float64

func (v vec3) toVec3() core.Vec3 { return core.NewVec3(v[0], v[1], v[2]) }

func (v vec3) toColor() core.Color { return core.NewColor(v[0], v[1], v[2]) }

type sceneFile struct {
	Version    string      `json:"version"`
	Viewpoint  *vec3       `json:"viewpoint"`
	Window     *windowJSON `json:"window"`
	Background *vec3       `json:"background"`
	Lights     []lightJSON `json:"lights"`
	Objects    []nodeJSON  `json:"objects"`
}

type windowJSON struct {
	Min vec2 `json:"min"`
	Max vec2 `json:"max"`
}

type lightJSON struct {
	Intensity   float64     `json:"intensity"`
	Location    vec3        `json:"location"`
	Color       *vec3       `json:"color"`
	Attenuation *[3]float64 `json:"attenuation"` // c1, c2, c3
}

type transformJSON struct {
	Translation vec3    `json:"translation"`
	Center      vec3    `json:"center"`
	Axis        *vec3   `json:"axis"`
	Angle       float64 `json:"angle"` // degrees
	Scale       *vec3   `json:"scale"`
}

type mapJSON struct {
	File      string  `json:"file"`
	HTile     int     `json:"hTile"`
	VTile     int     `json:"vTile"`
	Min       float64 `json:"min"`       // bump maps
	Max       float64 `json:"max"`       // bump maps
	Tolerance float64 `json:"tolerance"` // opacity maps
}

type planeJSON struct {
	Point  vec3 `json:"point"`
	Normal vec3 `json:"normal"`
}

type orientationJSON struct {
	North     vec3 `json:"north"`
	Greenwich vec3 `json:"greenwich"`
}

type boundsJSON struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Top    float64 `json:"top"`
}

// nodeJSON is either a transform group with children or a single shape
type nodeJSON struct {
	Type        string           `json:"type"`
	Transform   *transformJSON   `json:"transform"`
	Children    []nodeJSON       `json:"children"`
	Material    json.RawMessage  `json:"material"`
	Texture     *mapJSON         `json:"texture"`
	BumpMap     *mapJSON         `json:"bumpMap"`
	NormalMap   *mapJSON         `json:"normalMap"`
	OpacityMap  *mapJSON         `json:"opacityMap"`
	Orientation *orientationJSON `json:"orientation"`
	CutPlanes   []planeJSON      `json:"cutPlanes"`

	Radius       float64     `json:"radius"`
	Height       float64     `json:"height"`
	Top          bool        `json:"top"`
	Bottom       bool        `json:"bottom"`
	Anti         bool        `json:"anti"`
	Point        vec3        `json:"point"`
	Normal       vec3        `json:"normal"`
	Bounds       *boundsJSON `json:"bounds"`
	Coefficients []float64   `json:"coefficients"`
	Vertices     []vec3      `json:"vertices"`
}

// materialJSON mirrors material.Material. Absent fields keep their defaults.
type materialJSON struct {
	Ambient         float64 `json:"ambient"`
	Diffuse         vec3    `json:"diffuse"`
	Kd              float64 `json:"kd"`
	Specular        vec3    `json:"specular"`
	Ks              float64 `json:"ks"`
	Exponent        float64 `json:"exponent"`
	Diffusiveness   float64 `json:"diffusiveness"`
	Reflectiveness  float64 `json:"reflectiveness"`
	Transparency    float64 `json:"transparency"`
	Translucency    float64 `json:"translucency"`
	RefractionIndex float64 `json:"refractionIndex"`
}

func materialDefaults(m material.Material) materialJSON {
	return materialJSON{
		Ambient:         m.AmbientIntensity,
		Diffuse:         vec3{m.DiffuseColor.R, m.DiffuseColor.G, m.DiffuseColor.B},
		Kd:              m.DiffuseCoefficient,
		Specular:        vec3{m.SpecularColor.R, m.SpecularColor.G, m.SpecularColor.B},
		Ks:              m.Shininess,
		Exponent:        m.SpecularExponent,
		Diffusiveness:   m.Diffusiveness,
		Reflectiveness:  m.Reflectiveness,
		Transparency:    m.Transparency,
		Translucency:    m.Translucency,
		RefractionIndex: m.RefractionIndex,
	}
}

func (m materialJSON) toMaterial() material.Material {
	return material.Material{
		AmbientIntensity:   m.Ambient,
		DiffuseColor:       m.Diffuse.toColor(),
		DiffuseCoefficient: m.Kd,
		SpecularColor:      m.Specular.toColor(),
		Shininess:          m.Ks,
		SpecularExponent:   m.Exponent,
		Diffusiveness:      m.Diffusiveness,
		Reflectiveness:     m.Reflectiveness,
		Transparency:       m.Transparency,
		Translucency:       m.Translucency,
		RefractionIndex:    m.RefractionIndex,
	}
}

// LoadScene reads a JSON scene description and builds it
func LoadScene(path string) (*scene.Scene, error) {
	s, _, err := LoadSceneFiles(path)
	return s, err
}

// LoadSceneFiles is LoadScene that also returns every file the scene was built
// from: the scene file itself followed by the images it references.
func LoadSceneFiles(path string) (*scene.Scene, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	var doc sceneFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse scene file %s: %w", path, err)
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, nil, err
	}

	l := &sceneLoader{
		builder: scene.NewBuilder(),
		dir:     filepath.Dir(path),
		images:  make(map[string]*material.Texture),
		files:   []string{path},
	}
	if err := l.load(doc); err != nil {
		return nil, nil, fmt.Errorf("failed to build scene %s: %w", path, err)
	}
	return l.builder.Build(), l.files, nil
}

func checkVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrUnsupportedVersion, version, err)
	}
	c, err := semver.NewConstraint(SupportedSceneVersions)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedVersion, v, SupportedSceneVersions)
	}
	return nil
}

type sceneLoader struct {
	builder *scene.Builder
	dir     string
	images  map[string]*material.Texture
	files   []string
}

func (l *sceneLoader) load(doc sceneFile) error {
	b := l.builder
	if doc.Viewpoint != nil {
		b.SetViewpoint(doc.Viewpoint.toVec3())
	}
	if doc.Window != nil {
		b.SetWindow(scene.Window{Min: doc.Window.Min.toVec2(), Max: doc.Window.Max.toVec2()})
	}
	if doc.Background != nil {
		b.SetBackground(doc.Background.toColor())
	}

	for _, lj := range doc.Lights {
		color := core.NewColor(1, 1, 1)
		if lj.Color != nil {
			color = lj.Color.toColor()
		}
		light := scene.NewPointLight(lj.Intensity, lj.Location.toVec3(), color)
		if lj.Attenuation != nil {
			light.SetAttenuation(lj.Attenuation[0], lj.Attenuation[1], lj.Attenuation[2])
		}
		b.AddLight(light)
	}

	for i, node := range doc.Objects {
		if err := l.addNode(node); err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
	}
	return nil
}

func (l *sceneLoader) addNode(node nodeJSON) error {
	b := l.builder
	if err := l.applyMaterial(node.Material); err != nil {
		return err
	}

	if node.Type == "transform" || node.Type == "group" {
		if node.Transform != nil {
			b.PushTransform(node.Transform.toTransform())
			defer b.PopTransform()
		}
		for i, child := range node.Children {
			if err := l.addNode(child); err != nil {
				return fmt.Errorf("%s child %d: %w", node.Type, i, err)
			}
		}
		return nil
	}

	if node.Transform != nil {
		b.PushTransform(node.Transform.toTransform())
		defer b.PopTransform()
	}
	defer b.EndShape()
	if err := l.applyShapeAttributes(node); err != nil {
		return err
	}
	return l.addShape(node)
}

func (l *sceneLoader) applyMaterial(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	m := materialDefaults(material.DefaultMaterial())
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("invalid material: %w", err)
	}
	return l.builder.SetMaterial(m.toMaterial())
}

func (l *sceneLoader) applyShapeAttributes(node nodeJSON) error {
	b := l.builder
	if node.Texture != nil {
		tex, err := l.texture(node.Texture)
		if err != nil {
			return err
		}
		b.SetTexture(tex)
	}
	if node.BumpMap != nil {
		tex, err := l.texture(node.BumpMap)
		if err != nil {
			return err
		}
		b.SetBumpMap(material.NewBumpMap(tex, node.BumpMap.Min, node.BumpMap.Max))
	}
	if node.NormalMap != nil {
		tex, err := l.texture(node.NormalMap)
		if err != nil {
			return err
		}
		b.SetNormalMap(material.NewNormalMap(tex))
	}
	if node.OpacityMap != nil {
		tex, err := l.texture(node.OpacityMap)
		if err != nil {
			return err
		}
		b.SetOpacityMap(material.NewOpacityMap(tex, node.OpacityMap.Tolerance))
	}
	if node.Orientation != nil {
		b.SetOrientation(node.Orientation.North.toVec3(), node.Orientation.Greenwich.toVec3())
	}
	for _, p := range node.CutPlanes {
		b.AddCutPlane(p.Point.toVec3(), p.Normal.toVec3())
	}
	return nil
}

func (l *sceneLoader) addShape(node nodeJSON) error {
	b := l.builder
	switch node.Type {
	case "sphere":
		b.AddSphere(node.Radius)
	case "plane":
		b.AddPlane(node.Point.toVec3(), node.Normal.toVec3())
	case "cone":
		b.AddCone(node.Radius, node.Height)
	case "cylinder":
		b.AddCylinder(node.Radius, node.Height, node.Top, node.Bottom)
	case "disk":
		b.AddDisk(node.Radius, node.Anti, node.bounds())
	case "quadric":
		if len(node.Coefficients) != 10 {
			return fmt.Errorf("quadric needs 10 coefficients, got %d", len(node.Coefficients))
		}
		var k [10]float64
		copy(k[:], node.Coefficients)
		b.AddQuadric(k, node.bounds())
	case "polygon":
		vertices := make([]core.Vec3, len(node.Vertices))
		for i, v := range node.Vertices {
			vertices[i] = v.toVec3()
		}
		if _, err := b.AddPolygon(vertices); err != nil {
			return err
		}
	case "triangle":
		if len(node.Vertices) != 3 {
			return fmt.Errorf("triangle needs 3 vertices, got %d", len(node.Vertices))
		}
		b.AddTriangle(node.Vertices[0].toVec3(), node.Vertices[1].toVec3(), node.Vertices[2].toVec3())
	default:
		return fmt.Errorf("%w: %q", ErrUnknownGeometry, node.Type)
	}
	return nil
}

func (n nodeJSON) bounds() scene.Bounds {
	if n.Bounds == nil {
		return scene.Bounds{}
	}
	return scene.Bounds{Left: n.Bounds.Left, Right: n.Bounds.Right, Bottom: n.Bounds.Bottom, Top: n.Bounds.Top}
}

func (t transformJSON) toTransform() scene.Transform {
	tr := scene.Transform{
		Translation: t.Translation.toVec3(),
		Center:      t.Center.toVec3(),
	}
	if t.Axis != nil && t.Angle != 0 {
		tr.Rotation = scene.Rotation{Axis: t.Axis.toVec3(), Angle: t.Angle * math.Pi / 180}
	}
	if t.Scale != nil {
		tr.Scale = t.Scale.toVec3()
	}
	return tr
}

// texture loads an image relative to the scene file, once per path
func (l *sceneLoader) texture(m *mapJSON) (*material.Texture, error) {
	path := m.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.dir, path)
	}
	tex, ok := l.images[path]
	if !ok {
		var err error
		tex, err = LoadImage(path)
		if err != nil {
			return nil, err
		}
		l.images[path] = tex
		l.files = append(l.files, path)
	}
	if m.HTile > 0 || m.VTile > 0 {
		tiled := *tex
		return tiled.WithTiling(max(m.HTile, 1), max(m.VTile, 1)), nil
	}
	return tex, nil
}
