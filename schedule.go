package morph

import (
	"fmt"
	"slices"
)

type State int

// Session states. StateDisposed is final.
const (
	StateLoading State = iota
	StateRunning
	StateFailed
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "Loading"
	case StateRunning:
		return "Running"
	case StateFailed:
		return "Failed"
	case StateDisposed:
		return "Disposed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Stage struct {
	Name string
}

var (
	Prelude    = Stage{Name: "Prelude"}
	PreUpdate  = Stage{Name: "PreUpdate"}
	Update     = Stage{Name: "Update"}
	PostUpdate = Stage{Name: "PostUpdate"}
	PreRender  = Stage{Name: "PreRender"}
	Render     = Stage{Name: "Render"}
	PostRender = Stage{Name: "PostRender"}
	Finale     = Stage{Name: "Finale"}
)

var defaultStages = []Stage{Prelude, PreUpdate, Update, PostUpdate, PreRender, Render, PostRender, Finale}

type statePhase int

const (
	enter statePhase = iota
	execute
	exit
)

type systemScheduleBuilder struct {
	system        systemFn
	inStage       Stage
	runAlways     bool
	inState       State
	inStatePhase  statePhase
	stateProvided bool
}

type stateScheduleBuilder struct {
	state  State
	phase  statePhase
	always bool
}

func OnEnter(state State) stateScheduleBuilder {
	return stateScheduleBuilder{state: state, phase: enter}
}

func OnExecute(state State) stateScheduleBuilder {
	return stateScheduleBuilder{state: state, phase: execute}
}

func OnExit(state State) stateScheduleBuilder {
	return stateScheduleBuilder{state: state, phase: exit}
}

func Always() stateScheduleBuilder {
	return stateScheduleBuilder{always: true}
}

// System schedules fn in the Update stage of a stateless app. Every pointer
// parameter of fn is resolved from the app resources or *Commands.
func System(fn systemFn) systemScheduleBuilder {
	return systemScheduleBuilder{system: fn, inStage: Update}
}

func (sched systemScheduleBuilder) InStage(s Stage) systemScheduleBuilder {
	sched.inStage = s
	return sched
}

func (sched systemScheduleBuilder) InState(s stateScheduleBuilder) systemScheduleBuilder {
	sched.runAlways = s.always
	sched.inState = s.state
	sched.inStatePhase = s.phase
	sched.stateProvided = true
	return sched
}

func (sched systemScheduleBuilder) RunAlways() systemScheduleBuilder {
	sched.runAlways = true
	return sched
}

type stagePosition int

const (
	stageBefore stagePosition = iota
	stageAfter
)

type stagePositionBuilder struct {
	position stagePosition
	target   Stage
}

func BeforeStage(s Stage) stagePositionBuilder {
	return stagePositionBuilder{position: stageBefore, target: s}
}

func AfterStage(s Stage) stagePositionBuilder {
	return stagePositionBuilder{position: stageAfter, target: s}
}

func (app *App) UseStage(stage Stage, where stagePositionBuilder) *App {
	stageIdx := slices.IndexFunc(app.stages, func(s Stage) bool { return s.Name == where.target.Name })
	if stageIdx == -1 {
		panic(fmt.Sprintf("Stage %v not found", where.target.Name))
	}

	insertAt := stageIdx
	if where.position == stageAfter {
		insertAt++
	}

	app.stages = slices.Insert(app.stages, insertAt, stage)
	app.initStatefulStage(stage)

	return app
}

func (app *App) UseSystem(system systemScheduleBuilder) *App {
	if system.runAlways || !system.stateProvided {
		if _, ok := app.systemsStateless[system.inStage.Name]; ok {
			app.systemsStateless[system.inStage.Name] = append(app.systemsStateless[system.inStage.Name], system.system)
			return app
		}
		panic(fmt.Sprintf("Stage %v doesn't exist", system.inStage.Name))
	}

	if !app.stateful {
		panic("Trying to use a stateful system in a stateless app.")
	}

	systemsInStage, ok := app.systems[system.inStage.Name]
	if !ok {
		panic(fmt.Sprintf("Stage %v doesn't exist", system.inStage.Name))
	}
	systemsInState, ok := systemsInStage[system.inState]
	if !ok {
		panic(fmt.Sprintf("State %v doesn't exist", system.inState))
	}
	systemsInState[system.inStatePhase] = append(systemsInState[system.inStatePhase], system.system)
	return app
}

func (app *App) initStatefulStage(stage Stage) {
	app.systemsStateless[stage.Name] = make([]systemFn, 0)

	if !app.stateful {
		return
	}
	app.systems[stage.Name] = make(map[State]map[statePhase][]systemFn)
	for state := app.initialState; state <= app.finalState; state++ {
		app.systems[stage.Name][state] = map[statePhase][]systemFn{
			enter:   nil,
			execute: nil,
			exit:    nil,
		}
	}
}
