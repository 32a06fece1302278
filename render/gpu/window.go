package gpu

import (
	"github.com/gekko3d/morph"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func createWindow(width, height int, title string) (*glfw.Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, err
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // no OpenGL context, wgpu owns the surface
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}
	return win, nil
}

// bindInput routes window callbacks into the shared input resources.
func (r *Renderer) bindInput(cursor *morph.Cursor, vp *morph.Viewport, in *morph.Input) {
	r.window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		r.resize(width, height)
	})
	r.window.SetSizeCallback(func(w *glfw.Window, width, height int) {
		vp.Width, vp.Height = width, height
	})
	r.window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		cursor.Track(xpos, ypos, *vp)
	})
	r.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			in.Press(morph.KeyEscape)
		case glfw.KeyQ:
			in.Press(morph.KeyQ)
		}
	})
}
