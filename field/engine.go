package field

import "math/rand"

// Jitter is the full width of the per-axis noise added while particles
// seek their destinations.
const Jitter = 0.1

// Step moves every particle a blend-rate fraction of the way towards its
// active target. With assembling false the target is the destination and
// each axis also gets fresh jitter; with assembling true the target is the
// spawn point and there is no jitter. The table is marked dirty afterwards.
func Step(t *Table, assembling bool, rng *rand.Rand) {
	if t.Released() {
		return
	}

	if assembling {
		for i, cur := range t.Current {
			rate := t.Rates[i]
			target := t.Initial[i]
			cur[0] += (target[0] - cur[0]) * rate
			cur[1] += (target[1] - cur[1]) * rate
			cur[2] += (target[2] - cur[2]) * rate
			t.Current[i] = cur
		}
	} else {
		for i, cur := range t.Current {
			rate := t.Rates[i]
			target := t.Destination[i]
			cur[0] += (target[0]-cur[0])*rate + spread(rng, Jitter)
			cur[1] += (target[1]-cur[1])*rate + spread(rng, Jitter)
			cur[2] += (target[2]-cur[2])*rate + spread(rng, Jitter)
			t.Current[i] = cur
		}
	}

	t.dirty = true
}
