package morph

import (
	"time"
)

// LifecycleModule ends the session after a frame budget or a wall time
// budget, whichever comes first. Zero disables a budget.
type LifecycleModule struct {
	MaxFrames   uint64
	MaxDuration time.Duration
}

type lifetime struct {
	maxFrames   uint64
	maxDuration time.Duration
}

func (mod LifecycleModule) Install(app *App, cmd *Commands) {
	if GetResource[Time](app) == nil {
		TimeModule{}.Install(app, cmd)
	}
	cmd.AddResources(&lifetime{maxFrames: mod.MaxFrames, maxDuration: mod.MaxDuration})
	app.UseSystem(
		System(lifetimeSystem).
			InStage(Finale).
			RunAlways(),
	)
}

func lifetimeSystem(t *Time, lt *lifetime, cmd *Commands) {
	if lt.maxFrames > 0 && t.Frame >= lt.maxFrames {
		cmd.Logger().Infof("Lifecycle: frame budget %d reached", lt.maxFrames)
		cmd.Quit()
		return
	}
	if lt.maxDuration > 0 && t.Elapsed >= lt.maxDuration {
		cmd.Logger().Infof("Lifecycle: time budget %v reached", lt.maxDuration)
		cmd.Quit()
	}
}
