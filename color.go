package portal3d

import "math"

// A Color represents a color, containing R, G, B, and A components, each expected to range from 0 to 1.
// An alpha of 0 on a base color means "no base color"; the texture is used as-is.
type Color struct {
	R, G, B, A float32
}

// NewColor returns a new Color, with the provided R, G, B, and A components expected to range from 0 to 1.
func NewColor(r, g, b, a float32) Color {
	return Color{r, g, b, a}
}

// IsSet returns if the Color carries a value (a nonzero alpha).
func (color Color) IsSet() bool {
	return color.A > 0
}

// Floats returns the Color as an RGBA float slice, suitable for uniforms.
func (color Color) Floats() [4]float32 {
	return [4]float32{color.R, color.G, color.B, color.A}
}

// Multiply returns the Color multiplied component-wise by other.
func (color Color) Multiply(other Color) Color {
	return Color{color.R * other.R, color.G * other.G, color.B * other.B, color.A * other.A}
}

// RGBA implements image/color.Color, returning alpha-premultiplied 16-bit values.
func (color Color) RGBA() (r, g, b, a uint32) {
	c := func(v float32) float32 { return float32(math.Max(0, math.Min(1, float64(v)))) }
	alpha := c(color.A)
	return uint32(c(color.R) * alpha * 0xffff), uint32(c(color.G) * alpha * 0xffff), uint32(c(color.B) * alpha * 0xffff), uint32(alpha * 0xffff)
}
