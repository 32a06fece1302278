package morph

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
)

var ErrDisposed = errors.New("morph: app is disposed")

type systemFn any

type Module interface {
	Install(app *App, cmd *Commands)
}

// Releaser is implemented by resources that own memory or handles which
// must be freed on teardown.
type Releaser interface {
	Release()
}

type App struct {
	stateful           bool
	stateTransitioning bool
	initialState       State
	finalState         State
	nextState          State
	state              State

	started  bool
	quit     bool
	disposed bool

	stages           []Stage
	systems          map[string]map[State]map[statePhase][]systemFn
	systemsStateless map[string][]systemFn
	resources        map[reflect.Type]any
	resourceOrder    []any
	renderer         Renderer
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

func (app *App) UseModules(modules ...Module) *App {
	cmd := app.Commands()
	for _, module := range modules {
		module.Install(app, cmd)
	}
	return app
}

func (app *App) State() State { return app.state }

// Done reports whether the frame loop should stop.
func (app *App) Done() bool {
	return app.disposed || app.quit || (app.stateful && app.started && app.state == app.finalState)
}

func (app *App) Disposed() bool { return app.disposed }

func (app *App) start() {
	if app.started {
		return
	}
	app.started = true

	if app.stateful {
		app.Logger().Debugf("Starting in state %v", app.initialState)
		app.state = app.initialState
		app.callSystems(app.state, enter)
		app.applyStateChange()
	} else {
		app.Logger().Debugf("Starting in stateless mode")
	}
}

// Tick runs one frame to completion. A state change requested during the
// frame is applied only after every stage ran.
func (app *App) Tick() error {
	if app.disposed {
		return ErrDisposed
	}
	app.start()

	app.callSystems(app.state, execute)
	app.applyStateChange()
	return nil
}

// Run drives the app from scheduler until the scheduler returns or the app
// is done. A nil scheduler means the installed renderer's frame loop. The
// app is always disposed on return.
func (app *App) Run(scheduler FrameScheduler) error {
	defer app.Dispose()

	if scheduler == nil {
		if app.renderer == nil {
			return errors.New("morph: no renderer installed")
		}
		scheduler = app.renderer
	}

	return scheduler.Run(func() bool {
		if err := app.Tick(); err != nil {
			return false
		}
		return !app.Done()
	})
}

// Dispose tears the app down once: exit systems of the current state run,
// the final state is entered and every Releaser resource is released in
// reverse registration order. Further Ticks return ErrDisposed.
func (app *App) Dispose() {
	if app.disposed {
		return
	}
	if app.stateful && app.started && app.state != app.finalState {
		app.executeChangeState(app.finalState)
	}
	app.disposed = true

	for i := len(app.resourceOrder) - 1; i >= 0; i-- {
		if r, ok := app.resourceOrder[i].(Releaser); ok {
			r.Release()
		}
	}
	app.Logger().Infof("Disposed")
}

func (app *App) callSystems(state State, phase statePhase) {
	for _, stage := range app.stages {
		// On execute, call stateless/always run systems first
		if execute == phase {
			for _, system := range app.systemsStateless[stage.Name] {
				app.callSystem(system)
			}
		}

		if !app.stateful {
			continue
		}
		if systemsInState, ok := app.systems[stage.Name][state]; ok {
			for _, system := range systemsInState[phase] {
				app.callSystem(system)
			}
		}
	}
}

func (app *App) changeState(newState State) {
	app.nextState = newState
	app.stateTransitioning = true
}

func (app *App) applyStateChange() {
	for app.stateful && app.stateTransitioning {
		app.stateTransitioning = false
		app.executeChangeState(app.nextState)
	}
}

func (app *App) executeChangeState(newState State) {
	if newState == app.state {
		return
	}
	app.callSystems(app.state, exit)
	app.Logger().Debugf("State %v -> %v", app.state, newState)
	app.state = newState
	app.callSystems(app.state, enter)
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
		app.resourceOrder = append(app.resourceOrder, resource)
	}
	return app
}

// GetResource returns the resource of type *T, or nil when none is installed.
func GetResource[T any](app *App) *T {
	if app == nil {
		return nil
	}
	if res, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]; ok {
		return res.(*T)
	}
	return nil
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("System %s: parameter %d must be a pointer, got %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(), i, argType))
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				fmt.Sprint(systemType),
				fmt.Sprint(argType),
			)
			app.Logger().Errorf("%s", msg)
			panic(msg)
		}
	}
	systemValue.Call(args)
}
