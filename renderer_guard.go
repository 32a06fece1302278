package morph

import (
	"fmt"
)

// RendererTag marks that a renderer has been installed into the App.
// Only one renderer can be installed at a time.
type RendererTag struct {
	Name    RendererName
	Normals bool
}

func ensureSingleRenderer(app *App, name RendererName) *RendererTag {
	if app == nil {
		panic("ensureSingleRenderer: app is nil")
	}
	if tag := GetResource[RendererTag](app); tag != nil {
		if tag.Name != name {
			app.Logger().Errorf("Multiple renderers installed: %s and %s", tag.Name, name)
			panic(fmt.Sprintf("Multiple renderers installed: %s and %s", tag.Name, name))
		}
		return tag
	}
	tag := &RendererTag{Name: name}
	app.addResources(tag)
	return tag
}
