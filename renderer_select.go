package morph

// RendererName identifies a concrete renderer module.
type RendererName string

const (
	RendererWGPU     RendererName = "wgpu"
	RendererTerminal RendererName = "term"
	RendererEbiten   RendererName = "ebiten"
)

// Renderer presents the field and owns the frame loop of its backend.
type Renderer interface {
	Module
	FrameScheduler
}

// NormalsRequester is implemented by renderers that shade with per-vertex
// normals. The particle module computes normals only when asked.
type NormalsRequester interface {
	NeedsNormals() bool
}

// UseRenderer installs exactly one renderer and makes it the scheduler used
// by Run.
func (app *App) UseRenderer(name RendererName, r Renderer) *App {
	tag := ensureSingleRenderer(app, name)
	if nr, ok := r.(NormalsRequester); ok {
		tag.Normals = nr.NeedsNormals()
	}
	app.Logger().Infof("Renderer selected: %s", name)
	app.renderer = r
	app.UseModules(r)
	return app
}
