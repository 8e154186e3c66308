package boxy

import (
	"image/color"
	"math"
)

// RGBA represents a color with red, green, blue, and alpha components.
// Each component is in the range [0, 1]. Components are straight (not
// premultiplied); premultiplication happens when colors enter the vertex
// stream.
type RGBA struct {
	R, G, B, A float64
}

// Common colors.
var (
	White       = RGBA{R: 1, G: 1, B: 1, A: 1}
	Black       = RGBA{R: 0, G: 0, B: 0, A: 1}
	Transparent = RGBA{}
	Red         = RGBA{R: 1, A: 1}
	Green       = RGBA{G: 1, A: 1}
	Blue        = RGBA{B: 1, A: 1}
)

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// Color converts RGBA to the standard color.Color interface.
func (c RGBA) Color() color.Color {
	return color.NRGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return RGBA{}
	}
	// color.Color returns premultiplied components; unmultiply.
	af := float64(a) / 65535
	return RGBA{
		R: float64(r) / float64(a),
		G: float64(g) / float64(a),
		B: float64(b) / float64(a),
		A: af,
	}
}

// Premultiply returns the color with RGB scaled by alpha.
func (c RGBA) Premultiply() RGBA {
	return RGBA{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// Modulate returns the component-wise product of two colors. Used to apply
// a tint to a stored cell color.
func (c RGBA) Modulate(o RGBA) RGBA {
	return RGBA{R: c.R * o.R, G: c.G * o.G, B: c.B * o.B, A: c.A * o.A}
}

// bytes returns the premultiplied 8-bit form used in the vertex stream.
func (c RGBA) bytes() [4]byte {
	p := c.Premultiply()
	return [4]byte{
		uint8(clamp255(p.R * 255)),
		uint8(clamp255(p.G * 255)),
		uint8(clamp255(p.B * 255)),
		uint8(clamp255(p.A * 255)),
	}
}

func clamp255(v float64) float64 {
	return math.Max(0, math.Min(255, math.Round(v)))
}
