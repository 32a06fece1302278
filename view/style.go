package view

import "image/color"

// AlphaTest is the fragment alpha below which sprite pixels are dropped.
const AlphaTest = 0.001

type Style struct {
	Color   color.NRGBA
	Opacity float32
	Size    float32
}

func DefaultStyle() Style {
	return Style{
		Color:   color.NRGBA{R: 0xff, G: 0xff, B: 0x48, A: 0xff},
		Opacity: 0.7,
		Size:    5,
	}
}

// RGBA returns the colour as normalised floats with Opacity folded into alpha.
func (s Style) RGBA() [4]float32 {
	return [4]float32{
		float32(s.Color.R) / 255,
		float32(s.Color.G) / 255,
		float32(s.Color.B) / 255,
		s.Opacity,
	}
}
