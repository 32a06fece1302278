package term

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gekko3d/morph"
	"github.com/gekko3d/morph/view"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimRenderer(t *testing.T, cols, rows int) (*Renderer, tcell.SimulationScreen, *morph.App) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	r, err := New(screen, DefaultConfig())
	require.NoError(t, err)
	screen.SetSize(cols, rows)

	app := morph.NewAppBuilder().UseRenderer(morph.RendererTerminal, r).Build()
	t.Cleanup(app.Dispose)
	return r, screen, app
}

func TestCoverage(t *testing.T) {
	assert.Zero(t, coverage(0, 0.7))
	assert.InDelta(t, 0.7, coverage(1, 0.7), 1e-6)
	assert.InDelta(t, 0.91, coverage(2, 0.7), 1e-6)
	assert.Less(t, coverage(10, 0.7), 1.0+1e-12)
}

func TestPollEventsStopsWhenDone(t *testing.T) {
	r, screen, _ := newSimRenderer(t, 10, 5)
	require.NoError(t, screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))

	events := make(chan tcell.Event)
	done := make(chan struct{})
	close(done)

	returned := make(chan struct{})
	go func() {
		r.pollEvents(events, done)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("event pump blocked after done")
	}
}

func TestRasterizeCentre(t *testing.T) {
	r, screen, _ := newSimRenderer(t, 40, 20)

	positions := []mgl32.Vec3{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}
	require.True(t, r.rasterize(positions, morph.Cursor{}, true))
	r.draw()

	hit := -1
	for i, n := range r.density {
		if n > 0 {
			require.Equal(t, -1, hit, "particles at the origin share one cell")
			hit = i
		}
	}
	require.NotEqual(t, -1, hit)
	assert.Equal(t, 3, r.density[hit])
	col, row := hit%40, hit/40
	assert.InDelta(t, 20, col, 1)
	assert.InDelta(t, 10, row, 1)

	glyph, _, style, _ := screen.GetContent(col, row)
	assert.NotEqual(t, ' ', glyph)
	fg, _, _ := style.Decompose()
	assert.NotEqual(t, tcell.ColorDefault, fg)

	blank, _, _, _ := screen.GetContent(0, 0)
	assert.Equal(t, ' ', blank)
}

func TestRasterizeSkipsUnchangedFrames(t *testing.T) {
	r, _, _ := newSimRenderer(t, 10, 10)
	positions := []mgl32.Vec3{{0, 0, 0}}

	assert.True(t, r.rasterize(positions, morph.Cursor{}, false))
	assert.False(t, r.rasterize(positions, morph.Cursor{}, false))
	assert.True(t, r.rasterize(positions, morph.Cursor{}, true))
	assert.True(t, r.rasterize(positions, morph.Cursor{X: 0.1}, false))
}

func TestRasterizeClipsOffscreenAndBehind(t *testing.T) {
	r, _, _ := newSimRenderer(t, 10, 10)
	positions := []mgl32.Vec3{{1000, 0, 0}, {0, 0, 60}, {0, 0, -5000}}

	r.rasterize(positions, morph.Cursor{}, true)
	for _, n := range r.density {
		assert.Zero(t, n)
	}
}

func TestCellStyle(t *testing.T) {
	r, _, _ := newSimRenderer(t, 1, 1)

	glyph, _ := r.cell(0)
	assert.Equal(t, ' ', glyph)

	one, _ := r.cell(1)
	many, style := r.cell(20)
	assert.Less(t, indexOf(one), indexOf(many))
	fg, bg, _ := style.Decompose()
	assert.Equal(t, tcell.ColorBlack, bg)
	red, green, blue := fg.RGB()
	assert.InDelta(t, 0xff, red, 1)
	assert.InDelta(t, 0xff, green, 1)
	assert.InDelta(t, 0x48, blue, 1)

	r.cfg.Style = view.Style{Opacity: 0}
	glyph, _ = r.cell(5)
	assert.Equal(t, ' ', glyph)
}

func indexOf(glyph rune) int {
	for i, g := range ramp {
		if g == glyph {
			return i
		}
	}
	return -1
}

func TestHandleEvent(t *testing.T) {
	r, screen, app := newSimRenderer(t, 40, 20)

	r.handleEvent(tcell.NewEventMouse(0, 0, tcell.ButtonNone, tcell.ModNone))
	cursor := morph.GetResource[morph.Cursor](app)
	assert.InDelta(t, -0.5, cursor.X, 0.05)
	assert.InDelta(t, 0.5, cursor.Y, 0.05)

	screen.SetSize(60, 30)
	r.handleEvent(tcell.NewEventResize(60, 30))
	vp := morph.GetResource[morph.Viewport](app)
	assert.Equal(t, morph.Viewport{Width: 60, Height: 60}, *vp)

	in := morph.GetResource[morph.Input](app)
	r.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone))
	assert.True(t, in.JustPressed(morph.KeyQ))
	r.handleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	assert.True(t, in.JustPressed(morph.KeyEscape))

	require.NoError(t, app.Tick())
	assert.True(t, app.Done())
}

func TestRunStopsWhenFrameDeclines(t *testing.T) {
	r, _, _ := newSimRenderer(t, 10, 10)
	r.cfg.FPS = 1000

	frames := 0
	require.NoError(t, r.Run(func() bool {
		frames++
		return frames < 3
	}))
	assert.Equal(t, 3, frames)
}
