package material

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// ErrEnergySplit is returned when diffusiveness, reflectiveness and transparency do not sum to 1
var ErrEnergySplit = errors.New("energy split coefficients must sum to 1")

// energySplitTolerance bounds how far the three coefficients may drift from 1
const energySplitTolerance = 1e-3

// Material holds the Phong reflectance parameters of a surface.
// Diffusiveness, Reflectiveness and Transparency partition the surface response
// into local, mirrored and transmitted light and must sum to 1.
type Material struct {
	AmbientIntensity   float64
	DiffuseColor       core.Color
	DiffuseCoefficient float64 // kd
	SpecularColor      core.Color
	Shininess          float64 // ks
	SpecularExponent   float64 // n
	Diffusiveness      float64
	Reflectiveness     float64
	Transparency       float64
	Translucency       float64 // shadow attenuation factor when occluding
	RefractionIndex    float64
}

// DefaultMaterial returns a matte light grey material
func DefaultMaterial() Material {
	return Material{
		AmbientIntensity:   0.2,
		DiffuseColor:       core.NewColor(0.8, 0.8, 0.8),
		DiffuseCoefficient: 0.45,
		SpecularColor:      core.NewColor(0, 0, 0),
		Shininess:          0.2,
		SpecularExponent:   3,
		Diffusiveness:      1,
		Reflectiveness:     0,
		Transparency:       0,
		Translucency:       0,
		RefractionIndex:    1,
	}
}

// NewPhong creates an opaque Phong material with the given colors
func NewPhong(diffuse, specular core.Color, kd, ks, exponent float64) Material {
	m := DefaultMaterial()
	m.DiffuseColor = diffuse
	m.SpecularColor = specular
	m.DiffuseCoefficient = kd
	m.Shininess = ks
	m.SpecularExponent = exponent
	return m
}

// NewMirror creates a material reflecting the given fraction of incoming light
func NewMirror(diffuse core.Color, reflectiveness float64) Material {
	m := NewPhong(diffuse, core.NewColor(1, 1, 1), 0.45, 0.6, 30)
	m.Diffusiveness = 1 - reflectiveness
	m.Reflectiveness = reflectiveness
	return m
}

// NewGlass creates a transparent material with the given refraction index
func NewGlass(diffuse core.Color, transparency, refractionIndex float64) Material {
	m := NewPhong(diffuse, core.NewColor(1, 1, 1), 0.2, 0.8, 60)
	m.Diffusiveness = 1 - transparency
	m.Transparency = transparency
	m.Translucency = transparency
	m.RefractionIndex = refractionIndex
	return m
}

// EnergySum returns diffusiveness + reflectiveness + transparency
func (m Material) EnergySum() float64 {
	return m.Diffusiveness + m.Reflectiveness + m.Transparency
}

// Validate checks the energy split and the refraction index
func (m Material) Validate() error {
	if sum := m.EnergySum(); math.Abs(sum-1) > energySplitTolerance {
		return fmt.Errorf("%w: got %.4f", ErrEnergySplit, sum)
	}
	if m.RefractionIndex <= 0 {
		return fmt.Errorf("refraction index must be positive, got %f", m.RefractionIndex)
	}
	return nil
}
