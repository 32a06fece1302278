package view

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective camera looking down -Z. Zoom narrows the field
// of view by dividing the tangent of the half angle.
type Camera struct {
	Fov      float32 // vertical, degrees
	Near     float32
	Far      float32
	Zoom     float32
	Position mgl32.Vec3
	Target   mgl32.Vec3

	// Parallax shifts the eye by cursor*Parallax world units.
	Parallax float32
}

func DefaultCamera() Camera {
	return Camera{
		Fov:      45,
		Near:     0.1,
		Far:      1000,
		Zoom:     4,
		Position: mgl32.Vec3{0, 0, 50},
	}
}

// FovY returns the zoomed vertical field of view in radians.
func (c Camera) FovY() float32 {
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	half := math.Tan(float64(mgl32.DegToRad(c.Fov)) / 2)
	return float32(2 * math.Atan(half/float64(zoom)))
}

func (c Camera) Eye(cursor mgl32.Vec2) mgl32.Vec3 {
	return c.Position.Add(mgl32.Vec3{cursor.X() * c.Parallax, cursor.Y() * c.Parallax, 0})
}

func (c Camera) View(cursor mgl32.Vec2) mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(cursor), c.Target, mgl32.Vec3{0, 1, 0})
}

// Projection is an OpenGL style projection with clip z in [-w, w].
func (c Camera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(c.FovY(), aspect, c.Near, c.Far)
}

// depthZeroToOne remaps clip z from [-w, w] to [0, w].
var depthZeroToOne = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// ProjectionZeroToOne is Projection for APIs whose clip z runs from 0 to w,
// such as WebGPU.
func (c Camera) ProjectionZeroToOne(aspect float32) mgl32.Mat4 {
	return depthZeroToOne.Mul4(c.Projection(aspect))
}

// Projector maps world positions to pixel coordinates of a viewport.
type Projector struct {
	view   mgl32.Mat4
	proj   mgl32.Mat4
	near   float32
	far    float32
	width  float32
	height float32
}

func (c Camera) Projector(width, height int, cursor mgl32.Vec2) Projector {
	w, h := float32(max(width, 1)), float32(max(height, 1))
	return Projector{
		view:   c.View(cursor),
		proj:   c.Projection(w / h),
		near:   c.Near,
		far:    c.Far,
		width:  w,
		height: h,
	}
}

// Project returns the pixel position of p, its distance in front of the
// eye and whether it lies between the near and far planes. Pixel y grows
// downwards.
func (p Projector) Project(pos mgl32.Vec3) (x, y, depth float32, ok bool) {
	v := p.view.Mul4x1(pos.Vec4(1))
	depth = -v.Z()
	if depth < p.near || depth > p.far {
		return 0, 0, depth, false
	}
	clip := p.proj.Mul4x1(v)
	ndcX := clip.X() / clip.W()
	ndcY := clip.Y() / clip.W()
	x = (ndcX*0.5 + 0.5) * p.width
	y = (0.5 - ndcY*0.5) * p.height
	return x, y, depth, true
}

// PointSize is the on-screen diameter in pixels of a point of the given
// size at depth, attenuated by distance against half the viewport height.
func PointSize(size, viewportHeight, depth float32) float32 {
	if depth <= 0 {
		return 0
	}
	return size * (viewportHeight / 2) / depth
}
