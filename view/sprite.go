package view

import (
	"image"
	"image/color"
	"math"
)

const SpriteSize = 32

// SpriteImage renders the point sprite: a white disc, fully opaque out to
// three quarters of its radius and fading to transparent at the rim.
func SpriteImage(size int) *image.NRGBA {
	if size <= 0 {
		size = SpriteSize
	}
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	radius := float64(size) / 2

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - radius
			dy := float64(y) + 0.5 - radius
			a := gradientAlpha(math.Hypot(dx, dy) / radius)
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: uint8(math.Round(a * 255))})
		}
	}
	return img
}

func gradientAlpha(t float64) float64 {
	switch {
	case t <= 0.75:
		return 1
	case t >= 1:
		return 0
	default:
		return 1 - (t-0.75)/0.25
	}
}
