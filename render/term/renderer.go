package term

import (
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gekko3d/morph"
	"github.com/gekko3d/morph/view"
	"github.com/go-gl/mathgl/mgl32"
)

const DefaultFPS = 30

// ramp orders glyphs by coverage, blank first.
var ramp = []rune(" .:-=+*#%@")

type Config struct {
	FPS    int
	Camera view.Camera
	Style  view.Style
}

func DefaultConfig() Config {
	return Config{
		FPS:    DefaultFPS,
		Camera: view.DefaultCamera(),
		Style:  view.DefaultStyle(),
	}
}

// Renderer draws particles into terminal cells. A cell is treated as two
// pixels tall so the projection keeps the image aspect.
type Renderer struct {
	cfg    Config
	screen tcell.Screen
	logger morph.Logger

	cursor *morph.Cursor
	vp     *morph.Viewport
	input  *morph.Input

	density    []int
	cols, rows int
	lastCursor morph.Cursor
	released   bool
}

// New takes ownership of screen, initialising it. A nil screen opens the
// controlling terminal.
func New(screen tcell.Screen, cfg Config) (*Renderer, error) {
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return nil, err
		}
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.HideCursor()
	screen.Clear()

	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	return &Renderer{cfg: cfg, screen: screen, logger: morph.NewNopLogger()}, nil
}

func (r *Renderer) Install(app *morph.App, cmd *morph.Commands) {
	r.logger = app.Logger()
	cols, rows := r.screen.Size()
	r.cursor, r.vp, r.input = morph.EnsureInput(app, cols, rows*2)
	r.vp.Width, r.vp.Height = cols, rows*2

	cmd.AddResources(r)
	app.UseSystem(morph.System(drawSystem).InStage(morph.Render).RunAlways())
}

// Run polls terminal events on a goroutine and ticks frames at cfg.FPS.
func (r *Renderer) Run(frame func() bool) error {
	events := make(chan tcell.Event, 64)
	done := make(chan struct{})
	defer close(done)
	go r.pollEvents(events, done)

	ticker := time.NewTicker(time.Second / time.Duration(r.cfg.FPS))
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			r.handleEvent(ev)
		case <-ticker.C:
			if !frame() {
				return nil
			}
		}
	}
}

// pollEvents forwards screen events until the screen is finalized or done
// is closed.
func (r *Renderer) pollEvents(events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := r.screen.PollEvent()
		if ev == nil {
			close(events)
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func (r *Renderer) NeedsNormals() bool { return false }

func (r *Renderer) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape:
			r.input.Press(morph.KeyEscape)
		case ev.Key() == tcell.KeyCtrlC:
			r.input.Press(morph.KeyCtrlC)
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			r.input.Press(morph.KeyQ)
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		r.cursor.Track(float64(x)+0.5, float64(y)*2+1, *r.vp)
	case *tcell.EventResize:
		r.screen.Sync()
		cols, rows := r.screen.Size()
		r.vp.Width, r.vp.Height = cols, rows*2
	}
}

// rasterize counts particles per cell. It reports whether the grid changed.
func (r *Renderer) rasterize(positions []mgl32.Vec3, cursor morph.Cursor, dirty bool) bool {
	cols, rows := r.screen.Size()
	if !dirty && cols == r.cols && rows == r.rows && cursor == r.lastCursor {
		return false
	}
	r.cols, r.rows, r.lastCursor = cols, rows, cursor

	if cap(r.density) < cols*rows {
		r.density = make([]int, cols*rows)
	}
	r.density = r.density[:cols*rows]
	clear(r.density)

	proj := r.cfg.Camera.Projector(cols, rows*2, cursor.Vec2())
	for _, p := range positions {
		x, y, _, ok := proj.Project(p)
		if !ok {
			continue
		}
		col, row := int(math.Floor(float64(x))), int(math.Floor(float64(y)/2))
		if col < 0 || col >= cols || row < 0 || row >= rows {
			continue
		}
		r.density[row*cols+col]++
	}
	return true
}

// coverage composites n sprites of the given opacity over each other.
func coverage(n int, opacity float32) float64 {
	if n <= 0 {
		return 0
	}
	return 1 - math.Pow(1-float64(opacity), float64(n))
}

func (r *Renderer) cell(n int) (rune, tcell.Style) {
	c := coverage(n, r.cfg.Style.Opacity)
	if c <= view.AlphaTest {
		return ' ', tcell.StyleDefault
	}
	glyph := ramp[min(len(ramp)-1, 1+int(c*float64(len(ramp)-2)))]
	col := r.cfg.Style.Color
	fg := tcell.NewRGBColor(
		int32(float64(col.R)*c),
		int32(float64(col.G)*c),
		int32(float64(col.B)*c),
	)
	return glyph, tcell.StyleDefault.Foreground(fg).Background(tcell.ColorBlack)
}

func (r *Renderer) draw() {
	for row := 0; row < r.rows; row++ {
		for col := 0; col < r.cols; col++ {
			glyph, style := r.cell(r.density[row*r.cols+col])
			r.screen.SetContent(col, row, glyph, nil, style)
		}
	}
	r.screen.Show()
}

func (r *Renderer) Release() {
	if r.released {
		return
	}
	r.released = true
	r.screen.Fini()
	r.logger.Debugf("terminal renderer released")
}

func drawSystem(r *Renderer, cursor *morph.Cursor, cmd *morph.Commands) {
	f := morph.GetResource[morph.Field](cmd.App())
	var positions []mgl32.Vec3
	dirty := false
	if f.Ready() {
		positions = f.Table().Current
		dirty = f.Table().TakeDirty()
	}
	if r.rasterize(positions, *cursor, dirty) {
		r.draw()
	}
}
