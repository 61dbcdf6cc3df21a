package material

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Tiling describes the texel grid of a surface map and how often it repeats
// across the unit UV square.
type Tiling struct {
	Width  int
	Height int
	HTile  int // horizontal repetitions
	VTile  int // vertical repetitions
}

// Index maps UV coordinates to texel indices: floor(tile*dim*uv) mod dim.
// Indices are always in range, negative coordinates included.
func (t Tiling) Index(uv core.Vec2) (int, int) {
	hSize := float64(max(t.HTile, 1) * t.Width)
	vSize := float64(max(t.VTile, 1) * t.Height)
	i := wrap(int(math.Floor(hSize*uv.X)), t.Width)
	j := wrap(int(math.Floor(vSize*uv.Y)), t.Height)
	return i, j
}

// clamp keeps texel indices inside the grid; used for neighbour lookups
func (t Tiling) clamp(i, j int) (int, int) {
	return max(0, min(t.Width-1, i)), max(0, min(t.Height-1, j))
}

func wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Texture provides RGBA texels from a decoded bitmap
type Texture struct {
	Tiling
	Texels []core.Color // Row-major: Texels[j*Width + i]
}

// NewTexture creates a texture from row-major texels
func NewTexture(width, height int, texels []core.Color) *Texture {
	return &Texture{
		Tiling: Tiling{Width: width, Height: height, HTile: 1, VTile: 1},
		Texels: texels,
	}
}

// WithTiling returns the texture repeated hTile x vTile times across the UV square
func (t *Texture) WithTiling(hTile, vTile int) *Texture {
	t.HTile = hTile
	t.VTile = vTile
	return t
}

// Texel returns the color at the given texel, wrapping out-of-range indices
func (t *Texture) Texel(i, j int) core.Color {
	i = wrap(i, t.Width)
	j = wrap(j, t.Height)
	return t.Texels[j*t.Width+i]
}

// Lookup returns the texel addressed by UV coordinates
func (t *Texture) Lookup(uv core.Vec2) core.Color {
	i, j := t.Index(uv)
	return t.Texel(i, j)
}

// BumpMap is a height field derived from a texture's channel sum
type BumpMap struct {
	Tiling
	MinHeight float64
	MaxHeight float64
	heights   []float64
}

// NewBumpMap maps the r+g+b sum of every texel linearly onto [minHeight, maxHeight]
func NewBumpMap(texture *Texture, minHeight, maxHeight float64) *BumpMap {
	b := &BumpMap{
		Tiling:    texture.Tiling,
		MinHeight: minHeight,
		MaxHeight: maxHeight,
		heights:   make([]float64, texture.Width*texture.Height),
	}

	delta := maxHeight - minHeight
	for j := 0; j < texture.Height; j++ {
		for i := 0; i < texture.Width; i++ {
			c := texture.Texels[j*texture.Width+i]
			b.heights[j*b.Width+i] = (delta/3.0)*(c.R+c.G+c.B) + minHeight
		}
	}
	return b
}

// Height returns the height at a texel. Out-of-range indices clamp to the edge
// so finite differences do not wrap across texture seams.
func (b *BumpMap) Height(i, j int) float64 {
	i, j = b.clamp(i, j)
	return b.heights[j*b.Width+i]
}

// Gradient returns the central differences (h(i-1)-h(i+1))/2 along i and j
func (b *BumpMap) Gradient(i, j int) (di, dj float64) {
	di = (b.Height(i-1, j) - b.Height(i+1, j)) / 2
	dj = (b.Height(i, j-1) - b.Height(i, j+1)) / 2
	return di, dj
}

// NormalMap stores a surface normal per texel
type NormalMap struct {
	Tiling
	normals []core.Vec3
}

// NewNormalMap decodes every texel as a normal: component*2 - 1 per axis
func NewNormalMap(texture *Texture) *NormalMap {
	n := &NormalMap{
		Tiling:  texture.Tiling,
		normals: make([]core.Vec3, texture.Width*texture.Height),
	}
	for idx, c := range texture.Texels {
		n.normals[idx] = core.NewVec3(c.R*2-1, c.G*2-1, c.B*2-1)
	}
	return n
}

// Normal returns the stored normal at a texel, clamping indices
func (n *NormalMap) Normal(i, j int) core.Vec3 {
	i, j = n.clamp(i, j)
	return n.normals[j*n.Width+i]
}

// Lookup returns the normal addressed by UV coordinates
func (n *NormalMap) Lookup(uv core.Vec2) core.Vec3 {
	i, j := n.Index(uv)
	return n.Normal(i, j)
}

// OpacityMap marks which texels are solid for hit testing
type OpacityMap struct {
	Tiling
	flags []bool
}

// NewOpacityMap marks texels whose alpha exceeds tolerance as solid
func NewOpacityMap(texture *Texture, tolerance float64) *OpacityMap {
	o := &OpacityMap{
		Tiling: texture.Tiling,
		flags:  make([]bool, texture.Width*texture.Height),
	}
	for idx, c := range texture.Texels {
		o.flags[idx] = c.A > tolerance
	}
	return o
}

// Flag reports whether the texel is solid, clamping indices
func (o *OpacityMap) Flag(i, j int) bool {
	i, j = o.clamp(i, j)
	return o.flags[j*o.Width+i]
}

// Solid reports whether the surface is solid at the given UV coordinates
func (o *OpacityMap) Solid(uv core.Vec2) bool {
	i, j := o.Index(uv)
	return o.Flag(i, j)
}
