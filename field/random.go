package field

import (
	"math"
	"math/rand"
	"time"
)

// spread returns a value uniformly distributed over [-s/2, s/2].
func spread(rng *rand.Rand, s float32) float32 {
	return s * (0.5 - rng.Float32())
}

func between(rng *rand.Rand, lo, hi float32) float32 {
	return lo + rng.Float32()*(hi-lo)
}

// blendRate draws from [MinBlendRate, MaxBlendRate). The float32 sum can
// round up onto the upper bound, which is clamped back below it.
func blendRate(rng *rand.Rand) float32 {
	r := float32(rng.Float64()/200 + MinBlendRate)
	if r >= MaxBlendRate {
		r = math.Nextafter32(MaxBlendRate, 0)
	}
	return r
}

func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
