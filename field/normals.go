package field

import "github.com/go-gl/mathgl/mgl32"

// FaceNormals treats positions as an unindexed triangle list and writes the
// unit face normal of every triangle to its three vertices. Trailing
// vertices that do not complete a triangle, and degenerate triangles, get a
// zero normal. dst is reused when it has enough capacity.
func FaceNormals(positions []mgl32.Vec3, dst []mgl32.Vec3) []mgl32.Vec3 {
	if cap(dst) < len(positions) {
		dst = make([]mgl32.Vec3, len(positions))
	}
	dst = dst[:len(positions)]

	i := 0
	for ; i+2 < len(positions); i += 3 {
		a, b, c := positions[i], positions[i+1], positions[i+2]
		n := c.Sub(b).Cross(a.Sub(b))
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		dst[i], dst[i+1], dst[i+2] = n, n, n
	}
	for ; i < len(positions); i++ {
		dst[i] = mgl32.Vec3{}
	}
	return dst
}
