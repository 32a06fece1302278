package field

import (
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
)

// DefaultScale leaves the source raster at its decoded size.
const DefaultScale = 1.0

var (
	ErrInvalidScale = errors.New("field: scale must be greater than zero")
	ErrShortBuffer  = errors.New("field: pixel buffer shorter than width*height*4")
)

// Raster is decoded, non-premultiplied RGBA data in row-major order, four
// bytes per pixel and no row padding.
type Raster struct {
	Width  int
	Height int
	Pix    []uint8
}

func NewRaster(width, height int, pix []uint8) (*Raster, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("field: negative raster size %dx%d", width, height)
	}
	if len(pix) < width*height*4 {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrShortBuffer, len(pix), width*height*4)
	}
	return &Raster{Width: width, Height: height, Pix: pix}, nil
}

// RasterFromImage draws img into a fresh raster of round(w*scale) x
// round(h*scale) pixels. Scaling goes through a bilinear filter, the same
// way a 2D canvas resamples an image drawn at a different size.
func RasterFromImage(img image.Image, scale float64) (*Raster, error) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidScale, scale)
	}

	src := img.Bounds()
	w := int(math.Round(float64(src.Dx()) * scale))
	h := int(math.Round(float64(src.Dy()) * scale))
	if w <= 0 || h <= 0 {
		return &Raster{}, nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == src.Dx() && h == src.Dy() {
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	}

	return &Raster{Width: w, Height: h, Pix: dst.Pix}, nil
}

// Empty reports whether the raster has no pixels at all.
func (r *Raster) Empty() bool {
	return r == nil || r.Width <= 0 || r.Height <= 0
}

func (r *Raster) Alpha(col, row int) uint8 {
	return r.Pix[(col+row*r.Width)*4+3]
}
