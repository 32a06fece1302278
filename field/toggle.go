package field

import "time"

const DefaultPeriod = 60 * time.Second

// Toggle is the two-state mode switch. It starts with Assembling false,
// which makes Step ease particles towards their destinations.
type Toggle struct {
	Period time.Duration

	assembling bool
	elapsed    time.Duration
	flips      uint64
}

func NewToggle(period time.Duration) *Toggle {
	return &Toggle{Period: period}
}

func (t *Toggle) Assembling() bool { return t.assembling }

func (t *Toggle) Flips() uint64 { return t.flips }

// Flip inverts the state and returns the new one.
func (t *Toggle) Flip() bool {
	t.assembling = !t.assembling
	t.flips++
	return t.assembling
}

// Advance feeds dt of wall time into the timer and fires one flip for every
// full period that elapsed. A non-positive Period never fires.
func (t *Toggle) Advance(dt time.Duration) int {
	if t.Period <= 0 || dt <= 0 {
		return 0
	}
	t.elapsed += dt
	fired := 0
	for t.elapsed >= t.Period {
		t.elapsed -= t.Period
		t.Flip()
		fired++
	}
	return fired
}

// Until returns the time left before the next flip.
func (t *Toggle) Until() time.Duration {
	if t.Period <= 0 {
		return 0
	}
	return t.Period - t.elapsed
}
