package view

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCamera_FovY(t *testing.T) {
	c := DefaultCamera()
	c.Zoom = 1
	assert.InDelta(t, mgl32.DegToRad(45), c.FovY(), 1e-6)

	c.Zoom = 4
	assert.Less(t, c.FovY(), mgl32.DegToRad(45)/3)

	c.Zoom = 0
	assert.InDelta(t, mgl32.DegToRad(45), c.FovY(), 1e-6)
}

func TestProjector_CenterAndOrientation(t *testing.T) {
	p := DefaultCamera().Projector(800, 600, mgl32.Vec2{})

	x, y, depth, ok := p.Project(mgl32.Vec3{0, 0, -100})
	require.True(t, ok)
	assert.InDelta(t, 400, x, 1e-3)
	assert.InDelta(t, 300, y, 1e-3)
	assert.InDelta(t, 150, depth, 1e-3)

	rx, uy, _, ok := p.Project(mgl32.Vec3{10, 10, -100})
	require.True(t, ok)
	assert.Greater(t, rx, x, "+x is right")
	assert.Less(t, uy, y, "+y is up")
}

func TestProjector_ClipsNearAndFar(t *testing.T) {
	p := DefaultCamera().Projector(100, 100, mgl32.Vec2{})

	_, _, _, ok := p.Project(mgl32.Vec3{0, 0, 60})
	assert.False(t, ok, "behind the eye")

	_, _, _, ok = p.Project(mgl32.Vec3{0, 0, -2000})
	assert.False(t, ok, "beyond far")
}

func TestCamera_Parallax(t *testing.T) {
	c := DefaultCamera()
	assert.Equal(t, c.Position, c.Eye(mgl32.Vec2{0.5, 0.5}))

	c.Parallax = 20
	assert.Equal(t, mgl32.Vec3{10, -10, 50}, c.Eye(mgl32.Vec2{0.5, -0.5}))
}

func TestProjectionZeroToOne(t *testing.T) {
	c := DefaultCamera()
	proj := c.ProjectionZeroToOne(1)

	near := proj.Mul4x1(mgl32.Vec4{0, 0, -c.Near, 1})
	far := proj.Mul4x1(mgl32.Vec4{0, 0, -c.Far, 1})
	assert.InDelta(t, 0, near.Z()/near.W(), 1e-4)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-4)
}

func TestPointSize(t *testing.T) {
	assert.Equal(t, float32(5), PointSize(5, 720, 360))
	assert.Equal(t, float32(2.5), PointSize(5, 720, 720))
	assert.Equal(t, float32(0), PointSize(5, 720, 0))
}

func TestSpriteImage(t *testing.T) {
	img := SpriteImage(SpriteSize)
	require.Equal(t, SpriteSize, img.Bounds().Dx())

	assert.Equal(t, uint8(255), img.NRGBAAt(16, 16).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(0, 0).A)
	assert.Equal(t, uint8(255), img.NRGBAAt(16, 16).R)

	rim := img.NRGBAAt(16, 1).A
	assert.Greater(t, rim, uint8(0))
	assert.Less(t, rim, uint8(255))
}

func TestStyle_RGBA(t *testing.T) {
	c := DefaultStyle().RGBA()
	assert.Equal(t, float32(1), c[0])
	assert.InDelta(t, 0x48/255.0, c[2], 1e-6)
	assert.Equal(t, float32(0.7), c[3])
}
