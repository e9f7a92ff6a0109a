package core

import "math"

// Color is an RGB radiance value. Components are unbounded while shading and
// only clamped when written to an image.
type Color struct {
	R, G, B float64
}

// Common colors
var (
	Black = Color{0, 0, 0}
	White = Color{1, 1, 1}
	Red   = Color{1, 0, 0}
)

// NewColor creates a new Color
func NewColor(r, g, b float64) Color {
	return Color{R: r, G: g, B: b}
}

// Add returns the component-wise sum
func (c Color) Add(other Color) Color {
	return Color{c.R + other.R, c.G + other.G, c.B + other.B}
}

// Multiply scales every component
func (c Color) Multiply(scalar float64) Color {
	return Color{c.R * scalar, c.G * scalar, c.B * scalar}
}

// MultiplyColor returns the component-wise product (filtering)
func (c Color) MultiplyColor(other Color) Color {
	return Color{c.R * other.R, c.G * other.G, c.B * other.B}
}

// Divide divides every component; dividing by zero returns black
func (c Color) Divide(scalar float64) Color {
	if scalar == 0 {
		return Black
	}
	return Color{c.R / scalar, c.G / scalar, c.B / scalar}
}

// Distance returns the euclidean RGB distance used for supersampling decisions
func (c Color) Distance(other Color) float64 {
	dr := c.R - other.R
	dg := c.G - other.G
	db := c.B - other.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Clamp returns a color with every component clamped to [0, 1]
func (c Color) Clamp() Color {
	return Color{
		R: max(0, min(1, c.R)),
		G: max(0, min(1, c.G)),
		B: max(0, min(1, c.B)),
	}
}

// Bytes returns the clamped color as 8-bit components
func (c Color) Bytes() (r, g, b uint8) {
	clamped := c.Clamp()
	return saturate(clamped.R), saturate(clamped.G), saturate(clamped.B)
}

// IsBlack reports whether the color carries no energy
func (c Color) IsBlack() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

func saturate(v float64) uint8 {
	return uint8(math.Round(v * 255))
}
