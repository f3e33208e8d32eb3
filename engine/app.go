package engine

import (
	"fmt"
	"reflect"
	"sort"
)

// Plugin configures an App: inserts resources, registers events and systems
type Plugin interface {
	Build(app *App)
}

// PluginGroup bundles plugins added in a fixed order
// Each member is subject to the same uniqueness rule as a plugin added directly
type PluginGroup interface {
	Plugin
	Plugins() []Plugin
}

// RunnerFunc drives the app until it exits
type RunnerFunc func(app *App) AppExit

// AppExit is the result of running an App
type AppExit struct {
	Code uint8
}

// AppExitSuccess is the normal exit
var AppExitSuccess = AppExit{}

// AppExitError builds a failing exit; a zero code is promoted to 1
func AppExitError(code uint8) AppExit {
	if code == 0 {
		code = 1
	}
	return AppExit{Code: code}
}

// IsSuccess reports whether the exit code is zero
func (e AppExit) IsSuccess() bool {
	return e.Code == 0
}

// App owns a World, its schedules, and the runner driving updates
type App struct {
	world   *World
	systems [scheduleCount][]System

	plugins     map[reflect.Type]struct{}
	pluginNames []string

	eventUpdaters []func()
	runner        RunnerFunc
	startupDone   bool
	running       bool
}

// NewApp creates an app with an empty world and the run-once runner
func NewApp() *App {
	return &App{
		world:   NewWorld(),
		plugins: make(map[reflect.Type]struct{}),
		runner:  runOnce,
	}
}

// World returns the app's ECS world
func (a *App) World() *World {
	return a.world
}

// AddPlugins builds each plugin immediately, in argument order
// Adding the same plugin type twice is a programming error and panics
func (a *App) AddPlugins(plugins ...Plugin) *App {
	for _, p := range plugins {
		if group, ok := p.(PluginGroup); ok {
			a.AddPlugins(group.Plugins()...)
			continue
		}
		t := reflect.TypeOf(p)
		if _, dup := a.plugins[t]; dup {
			panic(fmt.Sprintf("plugin already added: %s", t))
		}
		a.plugins[t] = struct{}{}
		a.pluginNames = append(a.pluginNames, t.String())
		p.Build(a)
	}
	return a
}

// IsPluginAdded reports whether a plugin of p's type was built
func (a *App) IsPluginAdded(p Plugin) bool {
	_, ok := a.plugins[reflect.TypeOf(p)]
	return ok
}

// PluginNames returns the built plugins in build order
func (a *App) PluginNames() []string {
	names := make([]string, len(a.pluginNames))
	copy(names, a.pluginNames)
	return names
}

// AddSystems registers systems on a schedule, keeping priority order stable
func (a *App) AddSystems(s Schedule, systems ...System) *App {
	if s >= scheduleCount {
		panic(fmt.Sprintf("unknown schedule %d", s))
	}
	list := append(a.systems[s], systems...)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Priority() < list[j].Priority()
	})
	a.systems[s] = list
	return a
}

// Systems returns a copy of the systems registered on a schedule, in run order
func (a *App) Systems(s Schedule) []System {
	result := make([]System, len(a.systems[s]))
	copy(result, a.systems[s])
	return result
}

// SetRunner replaces the function that drives updates
func (a *App) SetRunner(r RunnerFunc) *App {
	a.runner = r
	return a
}

// Run hands the app to its runner and returns the runner's exit
func (a *App) Run() AppExit {
	if a.running {
		panic("app is already running")
	}
	a.running = true
	return a.runner(a)
}

// Update runs the startup schedules once, swaps event buffers, then runs every main schedule
func (a *App) Update() {
	if !a.startupDone {
		a.startupDone = true
		for _, s := range startupSchedules {
			a.runSchedule(s)
		}
	}

	for _, swap := range a.eventUpdaters {
		swap()
	}

	for _, s := range mainSchedules {
		a.runSchedule(s)
	}
}

// ShouldExit returns the exit requested by a system, if any
func (a *App) ShouldExit() (AppExit, bool) {
	return a.world.Exit()
}

func (a *App) runSchedule(s Schedule) {
	for _, sys := range a.systems[s] {
		sys.Run(a.world)
	}
}

func runOnce(app *App) AppExit {
	app.Update()
	if exit, ok := app.ShouldExit(); ok {
		return exit
	}
	return AppExitSuccess
}
