package field

import "iter"

// AlphaThreshold is the alpha value a pixel has to exceed to count as
// foreground.
const AlphaThreshold = 128

// Pixel is an integer raster coordinate.
type Pixel struct {
	Col int
	Row int
}

// ForegroundPixels yields every pixel whose alpha exceeds AlphaThreshold,
// top-to-bottom and left-to-right. A raster with a zero dimension yields
// nothing.
func ForegroundPixels(r *Raster) iter.Seq[Pixel] {
	return func(yield func(Pixel) bool) {
		if r.Empty() {
			return
		}
		for row := 0; row < r.Height; row++ {
			for col := 0; col < r.Width; col++ {
				if r.Alpha(col, row) > AlphaThreshold {
					if !yield(Pixel{Col: col, Row: row}) {
						return
					}
				}
			}
		}
	}
}

func CountForeground(r *Raster) int {
	n := 0
	for range ForegroundPixels(r) {
		n++
	}
	return n
}
