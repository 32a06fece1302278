package gpu

import (
	"unsafe"

	"github.com/gekko3d/morph/view"
	"github.com/go-gl/mathgl/mgl32"
)

// uniforms mirrors the Uniforms struct of points.wgsl, 160 bytes.
type uniforms struct {
	View     mgl32.Mat4
	Proj     mgl32.Mat4
	Color    [4]float32
	Viewport [2]float32
	Size     float32
	Scale    float32
}

const instanceStride = uint64(unsafe.Sizeof(mgl32.Vec3{}))

func makeUniforms(cam view.Camera, style view.Style, cursor mgl32.Vec2, width, height int) uniforms {
	w, h := float32(max(width, 1)), float32(max(height, 1))
	return uniforms{
		View:     cam.View(cursor),
		Proj:     cam.ProjectionZeroToOne(w / h),
		Color:    style.RGBA(),
		Viewport: [2]float32{w, h},
		Size:     style.Size,
		Scale:    h / 2,
	}
}

func (u *uniforms) bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(u)), unsafe.Sizeof(*u))
}

// positionBytes views the position column as the instance buffer contents.
func positionBytes(positions []mgl32.Vec3) []byte {
	if len(positions) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&positions[0])), uint64(len(positions))*instanceStride)
}
