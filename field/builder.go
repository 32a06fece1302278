package field

import (
	"iter"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultAmbient = 200

	// SpawnSpread is the edge length of the cube spawn points are drawn from.
	SpawnSpread = 1000
	// DepthJitter is the z spread of image-derived destinations.
	DepthJitter = 20

	AmbientSpread   = 500
	AmbientDepthMin = 100
	AmbientDepthMax = 300

	MinBlendRate = 0.015
	MaxBlendRate = 0.020
)

type BuildOptions struct {
	// Ambient is the number of extra particles not derived from the image.
	Ambient int
	// Rand drives every random draw. A nil Rand gets a time-seeded source.
	Rand *rand.Rand
}

func DefaultBuildOptions() BuildOptions {
	return BuildOptions{Ambient: DefaultAmbient}
}

// Build turns sampled pixels of a width x height raster plus opts.Ambient
// extra particles into a particle table. Image-derived rows come first in
// pixel order, ambient rows after them.
func Build(pixels iter.Seq[Pixel], width, height int, opts BuildOptions) *Table {
	return build(pixels, width, height, opts, max(opts.Ambient, 0))
}

// BuildFromRaster samples r and builds its table in one go.
func BuildFromRaster(r *Raster, opts BuildOptions) *Table {
	if r == nil {
		r = &Raster{}
	}
	capacity := CountForeground(r) + max(opts.Ambient, 0)
	return build(ForegroundPixels(r), r.Width, r.Height, opts, capacity)
}

func build(pixels iter.Seq[Pixel], width, height int, opts BuildOptions, capacity int) *Table {
	rng := opts.Rand
	if rng == nil {
		rng = NewRand(0)
	}
	ambient := max(opts.Ambient, 0)

	t := newTable(capacity)
	halfW := float32(width) / 2
	halfH := float32(height) / 2

	for px := range pixels {
		dest := mgl32.Vec3{
			float32(px.Col) - halfW,
			-float32(px.Row) + halfH,
			-float32(width) + spread(rng, DepthJitter),
		}
		t.push(spawnPoint(rng), dest, blendRate(rng))
	}
	t.Sampled = t.Len()

	for i := 0; i < ambient; i++ {
		initial := spawnPoint(rng)
		dest := mgl32.Vec3{
			spread(rng, AmbientSpread),
			spread(rng, AmbientSpread),
			-between(rng, AmbientDepthMin, AmbientDepthMax),
		}
		t.push(initial, dest, blendRate(rng))
	}

	t.MustValidate()
	return t
}

func spawnPoint(rng *rand.Rand) mgl32.Vec3 {
	return mgl32.Vec3{
		spread(rng, SpawnSpread),
		spread(rng, SpawnSpread),
		spread(rng, SpawnSpread),
	}
}
