package morph

import (
	"reflect"
)

type AppBuilder struct {
	app      *App
	modules  []Module
	renderer Renderer
	name     RendererName
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: &App{
		systems:          make(map[string]map[State]map[statePhase][]systemFn),
		systemsStateless: make(map[string][]systemFn),
		resources:        make(map[reflect.Type]any),
		stateful:         false,
	}}
}

// NewSessionBuilder returns a builder using the particle session states,
// from StateLoading to StateDisposed.
func NewSessionBuilder() *AppBuilder {
	return NewAppBuilder().UseStates(StateLoading, StateDisposed)
}

func (b *AppBuilder) UseStates(initialState State, finalState State) *AppBuilder {
	b.app.stateful = true
	b.app.initialState = initialState
	b.app.finalState = finalState

	return b
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

// UseRenderer selects the renderer installed after all other modules.
func (b *AppBuilder) UseRenderer(name RendererName, r Renderer) *AppBuilder {
	b.name = name
	b.renderer = r

	return b
}

func (b *AppBuilder) Build() *App {
	app := b.app
	for _, stage := range defaultStages {
		app.stages = append(app.stages, stage)
		app.initStatefulStage(stage)
	}

	commands := &Commands{app: app}
	for _, module := range b.modules {
		module.Install(app, commands)
	}
	if b.renderer != nil {
		app.UseRenderer(b.name, b.renderer)
	}

	return app
}
