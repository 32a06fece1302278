package morph

import (
	"time"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Time is refreshed once per frame in the Prelude stage.
type Time struct {
	Now     time.Time
	Dt      time.Duration
	Elapsed time.Duration
	Frame   uint64

	clock Clock
}

type TimeModule struct {
	Clock Clock
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	clock := mod.Clock
	if clock == nil {
		clock = systemClock{}
	}
	cmd.AddResources(&Time{
		Now:   clock.Now(),
		clock: clock,
	})
	app.UseSystem(System(timeSystem).InStage(Prelude).RunAlways())
}

func timeSystem(t *Time) {
	now := t.clock.Now()

	t.Dt = max(now.Sub(t.Now), 0)
	t.Now = now
	t.Elapsed += t.Dt
	t.Frame++
}
