package core

import "image/color"

// Color is an RGBA color with float channels, nominally in [0, 1]
type Color struct {
	R, G, B, A float64
}

// NewColor creates an opaque color
func NewColor(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// Add returns the channel-wise sum of two colors, alpha included
func (c Color) Add(other Color) Color {
	return Color{c.R + other.R, c.G + other.G, c.B + other.B, c.A + other.A}
}

// Scale multiplies the color channels by a scalar, leaving alpha untouched
func (c Color) Scale(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A}
}

// Modulate multiplies the color channels component-wise, leaving alpha untouched
func (c Color) Modulate(other Color) Color {
	return Color{c.R * other.R, c.G * other.G, c.B * other.B, c.A}
}

// Clamp returns the color with every channel clamped to [0, 1]
func (c Color) Clamp() Color {
	return Color{
		R: max(0, min(1, c.R)),
		G: max(0, min(1, c.G)),
		B: max(0, min(1, c.B)),
		A: max(0, min(1, c.A)),
	}
}

// ToRGBA converts the color to an 8-bit RGBA value, clamping first
func (c Color) ToRGBA() color.RGBA {
	c = c.Clamp()
	return color.RGBA{
		R: uint8(255 * c.R),
		G: uint8(255 * c.G),
		B: uint8(255 * c.B),
		A: uint8(255 * c.A),
	}
}
