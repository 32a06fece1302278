package morph

type Commands struct {
	app *App
}

// ChangeState requests a transition applied at the end of the current frame.
func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// Quit stops the frame loop after the current frame.
func (cmd *Commands) Quit() {
	cmd.app.quit = true
}

func (cmd *Commands) State() State {
	return cmd.app.state
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}

func (cmd *Commands) App() *App {
	return cmd.app
}
