package morph

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gekko3d/morph/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fieldSession struct {
	app   *App
	clock *fakeClock
	field *Field
}

func newFieldSession(t *testing.T, mod ParticleFieldModule, extra ...Module) fieldSession {
	t.Helper()
	clock := newFakeClock()
	modules := append([]Module{TimeModule{Clock: clock}, AssetServerModule{}, mod}, extra...)
	app := NewSessionBuilder().UseModule(modules...).Build()
	f := GetResource[Field](app)
	require.NotNil(t, f)
	return fieldSession{app: app, clock: clock, field: f}
}

// settle ticks once to start the load and waits for it to finish.
func (s fieldSession) settle(t *testing.T) {
	t.Helper()
	require.NoError(t, s.app.Tick())
	require.NotNil(t, s.field.pending)
	select {
	case <-s.field.pending.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("source load did not settle")
	}
}

func testModule(source string) ParticleFieldModule {
	mod := NewParticleFieldModule(source)
	mod.Scale = 1
	mod.Ambient = 10
	mod.Seed = 42
	return mod
}

func TestParticleField_LoadBuildAndStep(t *testing.T) {
	s := newFieldSession(t, testModule(writePNG(t, 6, 4)))

	assert.Equal(t, StateLoading, s.app.State())
	assert.False(t, s.field.Ready())
	assert.Nil(t, s.field.Table())

	s.settle(t)
	require.NoError(t, s.app.Tick())
	assert.Equal(t, StateRunning, s.app.State())
	require.True(t, s.field.Ready())

	table := s.field.Table()
	assert.Equal(t, 12, table.Sampled)
	assert.Equal(t, 10, table.Ambient())
	assert.Equal(t, table.Initial, table.Current)
	assert.False(t, table.Dirty())

	before := append(table.Current[:0:0], table.Current...)
	s.clock.Advance(16 * time.Millisecond)
	require.NoError(t, s.app.Tick())
	assert.True(t, table.TakeDirty())
	assert.NotEqual(t, before, table.Current)
	assert.Nil(t, s.field.Normals())

	assets := GetResource[AssetServer](s.app)
	require.NotNil(t, assets)
	future, ok := assets.Raster(s.field.AssetId())
	require.True(t, ok)
	state, asset, _ := future.Poll()
	assert.Equal(t, LoadLoaded, state)
	assert.Equal(t, 6, asset.Raster.Width)
}

func TestParticleField_ModeFlipsWithPeriod(t *testing.T) {
	mod := testModule(writePNG(t, 2, 2))
	mod.Period = time.Second
	s := newFieldSession(t, mod)
	s.settle(t)
	require.NoError(t, s.app.Tick())
	require.Equal(t, StateRunning, s.app.State())

	assert.False(t, s.field.Assembling())
	s.clock.Advance(999 * time.Millisecond)
	require.NoError(t, s.app.Tick())
	assert.False(t, s.field.Assembling())

	s.clock.Advance(time.Millisecond)
	require.NoError(t, s.app.Tick())
	assert.True(t, s.field.Assembling())
	assert.Equal(t, uint64(1), s.field.Toggle().Flips())
}

func TestParticleField_AssemblingConvergesToInitial(t *testing.T) {
	mod := testModule(writePNG(t, 4, 4))
	mod.Period = time.Millisecond
	s := newFieldSession(t, mod)
	s.settle(t)
	require.NoError(t, s.app.Tick())

	s.clock.Advance(time.Millisecond)
	require.NoError(t, s.app.Tick())
	require.True(t, s.field.Assembling())

	table := s.field.Table()
	s.field.toggle.Period = 0
	for i := 0; i < 2000; i++ {
		require.NoError(t, s.app.Tick())
	}
	for i := range table.Current {
		assert.InDelta(t, 0, table.Current[i].Sub(table.Initial[i]).Len(), 1e-2)
	}
}

func TestParticleField_NormalsWhenRequested(t *testing.T) {
	r := &mockRenderer{normals: true}
	clock := newFakeClock()
	app := NewSessionBuilder().
		UseModule(TimeModule{Clock: clock}, testModule(writePNG(t, 3, 3))).
		UseRenderer(RendererEbiten, r).
		Build()
	s := fieldSession{app: app, clock: clock, field: GetResource[Field](app)}

	s.settle(t)
	require.NoError(t, app.Tick())
	require.NoError(t, app.Tick())

	normals := s.field.Normals()
	require.Len(t, normals, s.field.Table().Len())
	assert.Equal(t, field.FaceNormals(s.field.Table().Current, nil), normals)
}

func TestParticleField_LoadFailure(t *testing.T) {
	var reported error
	mod := testModule(filepath.Join(t.TempDir(), "missing.png"))
	mod.OnFailed = func(err error) { reported = err }
	s := newFieldSession(t, mod)

	s.settle(t)
	require.NoError(t, s.app.Tick())

	assert.Equal(t, StateFailed, s.app.State())
	assert.Error(t, reported)
	assert.Equal(t, reported, s.field.Err())
	assert.Nil(t, s.field.Table())

	for i := 0; i < 5; i++ {
		require.NoError(t, s.app.Tick())
	}
	assert.Nil(t, s.field.Table())
	assert.False(t, s.field.Ready())
}

func TestParticleField_TeardownReleasesTable(t *testing.T) {
	s := newFieldSession(t, testModule(writePNG(t, 4, 2)))
	s.settle(t)
	require.NoError(t, s.app.Tick())
	table := s.field.Table()
	require.NotNil(t, table)

	s.app.Dispose()
	assert.True(t, table.Released())
	assert.Zero(t, table.Len())
	assert.False(t, s.field.Ready())
	assert.True(t, errors.Is(s.app.Tick(), ErrDisposed))
}

func TestParticleField_DisposeWhileLoading(t *testing.T) {
	s := newFieldSession(t, testModule(writePNG(t, 4, 2)))
	require.NoError(t, s.app.Tick())

	s.app.Dispose()
	assert.Nil(t, s.field.Table())
	assert.Equal(t, StateDisposed, s.app.State())

	_, _ = s.field.pending.Wait(context.Background())
	assert.Nil(t, s.field.Table())
}

func TestParticleField_RunHeadless(t *testing.T) {
	s := newFieldSession(t, testModule(writePNG(t, 4, 4)), LifecycleModule{MaxFrames: 100000})

	running := 0
	s.app.UseSystem(System(func(cmd *Commands) {
		running++
		if running == 3 {
			cmd.Quit()
		}
	}).InStage(Render).InState(OnExecute(StateRunning)))

	require.NoError(t, s.app.Run(LoopScheduler{Interval: time.Millisecond}))
	assert.Equal(t, 3, running)
	assert.True(t, s.app.Disposed())
	assert.True(t, s.field.Table().Released())
}
