package ebit

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/gekko3d/morph"
	"github.com/gekko3d/morph/view"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// ShadeAmount is how much face normals darken sprites facing away from
// the camera.
const ShadeAmount = 0.3

type Config struct {
	Width  int
	Height int
	Title  string
	Camera view.Camera
	Style  view.Style
	// Overlay prints particle count, mode and frame rate in the corner.
	Overlay bool
}

func DefaultConfig() Config {
	return Config{
		Width:  1280,
		Height: 720,
		Title:  "morph",
		Camera: view.DefaultCamera(),
		Style:  view.DefaultStyle(),
	}
}

// Renderer is an ebiten.Game that ticks the app from Update and draws one
// sprite per particle.
type Renderer struct {
	cfg    Config
	logger morph.Logger
	sprite *ebiten.Image
	frame  func() bool

	cursor *morph.Cursor
	vp     *morph.Viewport
	input  *morph.Input

	positions  []mgl32.Vec3
	normals    []mgl32.Vec3
	assembling bool
	released   bool
}

func New(cfg Config) *Renderer {
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	return &Renderer{cfg: cfg, logger: morph.NewNopLogger()}
}

func (r *Renderer) Install(app *morph.App, cmd *morph.Commands) {
	r.logger = app.Logger()
	r.cursor, r.vp, r.input = morph.EnsureInput(app, r.cfg.Width, r.cfg.Height)
	r.sprite = ebiten.NewImageFromImage(view.SpriteImage(view.SpriteSize))

	cmd.AddResources(r)
	app.UseSystem(morph.System(syncSystem).InStage(morph.Render).RunAlways())
}

func (r *Renderer) NeedsNormals() bool { return true }

// Run blocks in ebiten.RunGame until the window closes or frame declines.
func (r *Renderer) Run(frame func() bool) error {
	r.frame = frame
	ebiten.SetWindowSize(r.cfg.Width, r.cfg.Height)
	ebiten.SetWindowTitle(r.cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err := ebiten.RunGame(r)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (r *Renderer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		r.input.Press(morph.KeyEscape)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		r.input.Press(morph.KeyQ)
	}
	x, y := ebiten.CursorPosition()
	r.cursor.Track(float64(x), float64(y), *r.vp)

	if r.frame != nil && !r.frame() {
		return ebiten.Termination
	}
	return nil
}

func (r *Renderer) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	if r.cfg.Overlay {
		defer func() { ebitenutil.DebugPrint(screen, r.overlay(ebiten.ActualFPS())) }()
	}
	if r.released || len(r.positions) == 0 {
		return
	}

	proj := r.cfg.Camera.Projector(r.vp.Width, r.vp.Height, r.cursor.Vec2())
	op := &ebiten.DrawImageOptions{}
	for i, p := range r.positions {
		x, y, depth, ok := proj.Project(p)
		if !ok {
			continue
		}
		var n mgl32.Vec3
		if i < len(r.normals) {
			n = r.normals[i]
		}
		r.spriteOptions(op, x, y, depth, float32(r.vp.Height), n)
		screen.DrawImage(r.sprite, op)
	}
}

func (r *Renderer) overlay(fps float64) string {
	mode := "dispersed"
	if r.assembling {
		mode = "assembling"
	}
	return fmt.Sprintf("particles: %d\nmode: %s\nfps: %.0f", len(r.positions), mode, fps)
}

func (r *Renderer) Layout(outsideWidth, outsideHeight int) (int, int) {
	r.vp.Width, r.vp.Height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// spriteOptions places the sprite centred on (x, y) with attenuated size
// and the style colour, shaded by normal.
func (r *Renderer) spriteOptions(op *ebiten.DrawImageOptions, x, y, depth, viewportHeight float32, normal mgl32.Vec3) {
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Filter = ebiten.FilterLinear

	half := float64(view.SpriteSize) / 2
	scale := float64(view.PointSize(r.cfg.Style.Size, viewportHeight, depth)) / float64(view.SpriteSize)
	op.GeoM.Translate(-half, -half)
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(float64(x), float64(y))

	rgba := r.cfg.Style.RGBA()
	b := shade(normal)
	a := rgba[3]
	op.ColorScale.Scale(rgba[0]*b*a, rgba[1]*b*a, rgba[2]*b*a, a)
}

// shade maps a face normal to a brightness factor. A zero normal leaves
// the sprite unshaded.
func shade(n mgl32.Vec3) float32 {
	if n.Len() == 0 {
		return 1
	}
	facing := n.Z()
	if facing < 0 {
		facing = -facing
	}
	return 1 - ShadeAmount*(1-facing)
}

func (r *Renderer) Release() {
	if r.released {
		return
	}
	r.released = true
	r.positions, r.normals = nil, nil
	if r.sprite != nil {
		r.sprite.Deallocate()
	}
	r.logger.Debugf("ebiten renderer released")
}

// syncSystem hands the latest positions to Draw, which ebiten calls
// outside the app tick.
func syncSystem(r *Renderer, cmd *morph.Commands) {
	f := morph.GetResource[morph.Field](cmd.App())
	if !f.Ready() {
		r.positions, r.normals = nil, nil
		return
	}
	table := f.Table()
	table.TakeDirty()
	r.positions = table.Current
	r.normals = f.Normals()
	r.assembling = f.Assembling()
}
