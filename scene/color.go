package scene

import (
	"image/color"

	"github.com/chewxy/math32"
)

// Color is a linear RGB color. Hex values given by users are sRGB and are
// converted on construction.
type Color struct {
	R, G, B float32
}

// White is linear and sRGB white.
var White = Color{1, 1, 1}

// Hex returns the linear color for an sRGB 0xRRGGBB value.
func Hex(hex uint32) Color {
	return Color{
		R: SRGBToLinear(float32(hex>>16&0xff) / 255),
		G: SRGBToLinear(float32(hex>>8&0xff) / 255),
		B: SRGBToLinear(float32(hex&0xff) / 255),
	}
}

func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B}
}

func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B}
}

func (c Color) Scale(s float32) Color {
	return Color{c.R * s, c.G * s, c.B * s}
}

// Lerp moves from c toward o by t.
func (c Color) Lerp(o Color, t float32) Color {
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
	}
}

// NRGBA encodes c as opaque 8-bit sRGB, clamping out of range values.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: to8(LinearToSRGB(c.R)),
		G: to8(LinearToSRGB(c.G)),
		B: to8(LinearToSRGB(c.B)),
		A: 255,
	}
}

func to8(v float32) uint8 {
	v = math32.Max(0, math32.Min(1, v))
	return uint8(v*255 + 0.5)
}

func SRGBToLinear(c float32) float32 {
	if c < 0.04045 {
		return c * 0.0773993808
	}
	return math32.Pow(c*0.9478672986+0.0521327014, 2.4)
}

func LinearToSRGB(c float32) float32 {
	if c < 0.0031308 {
		return c * 12.92
	}
	return 1.055*math32.Pow(c, 0.41666) - 0.055
}
