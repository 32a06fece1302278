package morph

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Key int

const (
	KeyEscape Key = iota
	KeyQ
	KeyCtrlC
	keyCount
)

// Cursor is the pointer position normalised to [-0.5, 0.5] on both axes,
// with Y growing upward.
type Cursor struct {
	X, Y float32
}

// Track converts a window pixel position into normalised coordinates.
func (c *Cursor) Track(px, py float64, vp Viewport) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return
	}
	c.X = float32(px/float64(vp.Width) - 0.5)
	c.Y = float32(-(py/float64(vp.Height) - 0.5))
}

func (c Cursor) Vec2() mgl32.Vec2 {
	return mgl32.Vec2{c.X, c.Y}
}

type Viewport struct {
	Width, Height int
}

func (vp Viewport) Aspect() float32 {
	if vp.Height <= 0 {
		return 1
	}
	return float32(vp.Width) / float32(vp.Height)
}

// Input collects key presses reported by the renderer during a frame.
type Input struct {
	pressed [keyCount]bool
}

func (in *Input) Press(k Key) {
	if k >= 0 && k < keyCount {
		in.pressed[k] = true
	}
}

func (in *Input) JustPressed(k Key) bool {
	return k >= 0 && k < keyCount && in.pressed[k]
}

type InputModule struct {
	Width, Height int
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	EnsureInput(app, mod.Width, mod.Height)
}

// EnsureInput returns the shared cursor, viewport and key input, creating
// them with the given size when missing.
func EnsureInput(app *App, width, height int) (*Cursor, *Viewport, *Input) {
	cursor := GetResource[Cursor](app)
	if cursor == nil {
		cursor = &Cursor{}
		app.addResources(cursor)
	}
	vp := GetResource[Viewport](app)
	if vp == nil {
		vp = &Viewport{Width: width, Height: height}
		app.addResources(vp)
	}
	in := GetResource[Input](app)
	if in == nil {
		in = &Input{}
		app.addResources(in)
		app.UseSystem(System(inputSystem).InStage(PostRender).RunAlways())
	}
	return cursor, vp, in
}

// inputSystem quits on Esc, q or Ctrl-C and clears the presses of the frame.
func inputSystem(in *Input, cmd *Commands) {
	if in.JustPressed(KeyEscape) || in.JustPressed(KeyQ) || in.JustPressed(KeyCtrlC) {
		cmd.Logger().Infof("Quit requested")
		cmd.Quit()
	}
	in.pressed = [keyCount]bool{}
}
