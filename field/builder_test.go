package field

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded() *rand.Rand { return rand.New(rand.NewSource(42)) }

func TestBuild_SinglePixelScenario(t *testing.T) {
	r := rasterWithAlpha(2, 2, map[Pixel]uint8{{Col: 0, Row: 0}: 255})

	table := BuildFromRaster(r, BuildOptions{Ambient: 0, Rand: seeded()})

	require.Equal(t, 1, table.Len())
	assert.Equal(t, 1, table.Sampled)
	dest := table.Destination[0]
	assert.Equal(t, float32(-1), dest.X())
	assert.Equal(t, float32(1), dest.Y())
	assert.InDelta(t, -2, dest.Z(), DepthJitter/2)
}

func TestBuild_AmbientOnly(t *testing.T) {
	r := rasterWithAlpha(8, 8, nil)

	table := BuildFromRaster(r, BuildOptions{Ambient: 5, Rand: seeded()})

	require.Equal(t, 5, table.Len())
	assert.Equal(t, 0, table.Sampled)
	assert.Equal(t, 5, table.Ambient())
	for i, d := range table.Destination {
		assert.LessOrEqual(t, mgl32.Abs(d.X()), float32(AmbientSpread/2), "row %d x", i)
		assert.LessOrEqual(t, mgl32.Abs(d.Y()), float32(AmbientSpread/2), "row %d y", i)
		assert.LessOrEqual(t, d.Z(), float32(-AmbientDepthMin), "row %d z", i)
		assert.GreaterOrEqual(t, d.Z(), float32(-AmbientDepthMax), "row %d z", i)
	}
}

func TestBuild_CountMatchesForeground(t *testing.T) {
	rng := seeded()
	for trial := 0; trial < 20; trial++ {
		w, h := rng.Intn(12), rng.Intn(12)
		alpha := map[Pixel]uint8{}
		for i := 0; i < w*h; i++ {
			alpha[Pixel{Col: i % max(w, 1), Row: i / max(w, 1)}] = uint8(rng.Intn(256))
		}
		r := rasterWithAlpha(w, h, alpha)

		table := BuildFromRaster(r, BuildOptions{Ambient: DefaultAmbient, Rand: rng})
		assert.Equal(t, CountForeground(r)+DefaultAmbient, table.Len(), "trial %d (%dx%d)", trial, w, h)
		assert.NoError(t, table.Validate())
	}
}

func TestBuild_DefaultOptions(t *testing.T) {
	opts := DefaultBuildOptions()
	assert.Equal(t, DefaultAmbient, opts.Ambient)
	assert.Nil(t, opts.Rand)

	table := BuildFromRaster(nil, opts)
	assert.Equal(t, DefaultAmbient, table.Len())
	assert.Equal(t, 0, table.Sampled)
}

func TestBuild_CurrentStartsAtInitial(t *testing.T) {
	r := rasterWithAlpha(4, 4, map[Pixel]uint8{{Col: 1, Row: 1}: 255, {Col: 3, Row: 2}: 255})
	table := BuildFromRaster(r, BuildOptions{Ambient: 10, Rand: seeded()})

	require.Equal(t, table.Initial, table.Current)
	for i, p := range table.Initial {
		for axis := 0; axis < 3; axis++ {
			assert.LessOrEqual(t, mgl32.Abs(p[axis]), float32(SpawnSpread/2), "row %d axis %d", i, axis)
		}
	}

	// The two columns must not share storage.
	table.Current[0][0] += 1
	assert.NotEqual(t, table.Initial[0], table.Current[0])
}

func TestBuild_BlendRateRange(t *testing.T) {
	table := BuildFromRaster(nil, BuildOptions{Ambient: 5000, Rand: seeded()})
	for i, rate := range table.Rates {
		if rate < MinBlendRate || rate >= MaxBlendRate {
			t.Fatalf("row %d: rate %v outside [%v, %v)", i, rate, MinBlendRate, MaxBlendRate)
		}
	}
}

func TestBuild_SampledRowsFirst(t *testing.T) {
	r := rasterWithAlpha(3, 1, map[Pixel]uint8{{Col: 0, Row: 0}: 255, {Col: 2, Row: 0}: 255})
	table := BuildFromRaster(r, BuildOptions{Ambient: 3, Rand: seeded()})

	require.Equal(t, 2, table.Sampled)
	assert.Equal(t, float32(-1.5), table.Destination[0].X())
	assert.Equal(t, float32(0.5), table.Destination[1].X())
	for _, d := range table.Destination[2:] {
		assert.LessOrEqual(t, d.Z(), float32(-AmbientDepthMin))
	}
}

func TestBuild_DeterministicForSeed(t *testing.T) {
	r := rasterWithAlpha(5, 5, map[Pixel]uint8{{Col: 2, Row: 2}: 255, {Col: 4, Row: 0}: 255})
	a := BuildFromRaster(r, BuildOptions{Ambient: 7, Rand: rand.New(rand.NewSource(7))})
	b := BuildFromRaster(r, BuildOptions{Ambient: 7, Rand: rand.New(rand.NewSource(7))})

	assert.Equal(t, a.Initial, b.Initial)
	assert.Equal(t, a.Destination, b.Destination)
	assert.Equal(t, a.Rates, b.Rates)
}

func TestBuild_NegativeAmbientIsZero(t *testing.T) {
	table := BuildFromRaster(nil, BuildOptions{Ambient: -3, Rand: seeded()})
	assert.Equal(t, 0, table.Len())
}

func TestTable_ValidateMismatch(t *testing.T) {
	table := BuildFromRaster(nil, BuildOptions{Ambient: 3, Rand: seeded()})
	table.Rates = table.Rates[:2]

	assert.ErrorIs(t, table.Validate(), ErrShapeMismatch)
	assert.Panics(t, table.MustValidate)
}

func TestTable_Release(t *testing.T) {
	table := BuildFromRaster(nil, BuildOptions{Ambient: 3, Rand: seeded()})
	table.MarkDirty()
	table.Release()

	assert.True(t, table.Released())
	assert.Equal(t, 0, table.Len())
	assert.False(t, table.Dirty())
	assert.Nil(t, table.Current)
}
