package morph

import (
	"math/rand"
	"time"

	"github.com/gekko3d/morph/field"
	"github.com/go-gl/mathgl/mgl32"
)

const DefaultSourceScale = 0.7

// ParticleFieldModule loads Source, builds the particle table once the load
// settles and drives it every frame while the app is running.
type ParticleFieldModule struct {
	Source  string
	Scale   float64
	Ambient int
	Period  time.Duration
	// Seed 0 seeds from the clock.
	Seed     int64
	OnFailed func(err error)
}

func NewParticleFieldModule(source string) ParticleFieldModule {
	return ParticleFieldModule{
		Source:  source,
		Scale:   DefaultSourceScale,
		Ambient: field.DefaultAmbient,
		Period:  field.DefaultPeriod,
	}
}

// Field is the particle session: the table, the mode toggle and the pending
// source load.
type Field struct {
	source   string
	scale    float64
	ambient  int
	assetId  AssetId
	pending  *Future[*RasterAsset]
	table    *field.Table
	toggle   *field.Toggle
	rng      *rand.Rand
	normals  []mgl32.Vec3
	err      error
	onFailed func(error)
}

// Table is nil until the source has loaded.
func (f *Field) Table() *field.Table {
	if f == nil {
		return nil
	}
	return f.table
}

// Ready reports whether a live table exists. A nil Field is never ready.
func (f *Field) Ready() bool { return f != nil && f.table != nil && !f.table.Released() }

func (f *Field) Assembling() bool { return f.toggle.Assembling() }

func (f *Field) Toggle() *field.Toggle { return f.toggle }

// Normals holds face normals of the current positions when the installed
// renderer asked for them.
func (f *Field) Normals() []mgl32.Vec3 { return f.normals }

// Err is the load failure, if any.
func (f *Field) Err() error { return f.err }

func (f *Field) AssetId() AssetId { return f.assetId }

func (f *Field) Release() {
	f.table.Release()
	f.normals = nil
}

func (mod ParticleFieldModule) Install(app *App, cmd *Commands) {
	if GetResource[AssetServer](app) == nil {
		AssetServerModule{}.Install(app, cmd)
	}
	if GetResource[Time](app) == nil {
		TimeModule{}.Install(app, cmd)
	}

	scale := mod.Scale
	if scale == 0 {
		scale = DefaultSourceScale
	}
	cmd.AddResources(&Field{
		source:   mod.Source,
		scale:    scale,
		ambient:  mod.Ambient,
		toggle:   field.NewToggle(mod.Period),
		rng:      field.NewRand(mod.Seed),
		onFailed: mod.OnFailed,
	})

	app.UseSystem(System(startLoadSystem).InStage(PreUpdate).InState(OnEnter(StateLoading)))
	app.UseSystem(System(pollLoadSystem).InStage(PreUpdate).InState(OnExecute(StateLoading)))
	app.UseSystem(System(buildFieldSystem).InStage(PreUpdate).InState(OnEnter(StateRunning)))
	app.UseSystem(System(loadFailedSystem).InStage(PreUpdate).InState(OnEnter(StateFailed)))
	app.UseSystem(System(modeTimerSystem).InStage(PreUpdate).InState(OnExecute(StateRunning)))
	app.UseSystem(System(particleUpdateSystem).InStage(Update).InState(OnExecute(StateRunning)))
	app.UseSystem(System(particleNormalsSystem).InStage(PostUpdate).InState(OnExecute(StateRunning)))
	app.UseSystem(System(releaseFieldSystem).InStage(Finale).InState(OnEnter(StateDisposed)))
}

func startLoadSystem(f *Field, assets *AssetServer, cmd *Commands) {
	cmd.Logger().Infof("Loading %s (scale %.2f)", f.source, f.scale)
	f.assetId, f.pending = assets.LoadRaster(f.source, f.scale)
}

func pollLoadSystem(f *Field, cmd *Commands) {
	if f.pending == nil {
		return
	}
	switch state, _, err := f.pending.Poll(); state {
	case LoadLoaded:
		cmd.ChangeState(StateRunning)
	case LoadFailed:
		f.err = err
		cmd.ChangeState(StateFailed)
	}
}

func buildFieldSystem(f *Field, cmd *Commands) {
	_, asset, _ := f.pending.Poll()
	f.pending = nil

	opts := field.DefaultBuildOptions()
	opts.Ambient = f.ambient
	opts.Rand = f.rng
	f.table = field.BuildFromRaster(asset.Raster, opts)
	cmd.Logger().Infof("Field built from %s (%dx%d): %d image particles, %d ambient",
		asset.Source, asset.Raster.Width, asset.Raster.Height, f.table.Sampled, f.table.Ambient())
}

func loadFailedSystem(f *Field, cmd *Commands) {
	f.pending = nil
	cmd.Logger().Errorf("Loading %s failed: %v", f.source, f.err)
	if f.onFailed != nil {
		f.onFailed(f.err)
	}
}

func modeTimerSystem(f *Field, t *Time, cmd *Commands) {
	if f.toggle.Advance(t.Dt) > 0 {
		cmd.Logger().Infof("Mode flipped: assembling=%v", f.toggle.Assembling())
	}
}

func particleUpdateSystem(f *Field) {
	field.Step(f.table, f.toggle.Assembling(), f.rng)
}

func particleNormalsSystem(f *Field, cmd *Commands) {
	tag := GetResource[RendererTag](cmd.App())
	if tag == nil || !tag.Normals || !f.Ready() {
		return
	}
	f.normals = field.FaceNormals(f.table.Current, f.normals)
}

func releaseFieldSystem(f *Field, cmd *Commands) {
	if f.table != nil {
		cmd.Logger().Debugf("Releasing %d particles", f.table.Len())
	}
	f.Release()
}
