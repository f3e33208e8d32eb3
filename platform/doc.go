// Package platform runs an engine App on the console.
//
// The plugins bring the hardware up once per boot and expose it as ECS
// resources, install the monotonic clock driven by timer 2, translate the
// button register into gamepad events, push sprites into object attribute
// memory and pace the app loop to the display refresh.
//
// Typical entry point:
//
//	func Main(m *gba.Machine) {
//		app := engine.NewApp()
//		platform.Install(app, m)
//		app.AddPlugins(engine.TimePlugin{}, transform.Plugin{}, input.Plugin{})
//		app.Run()
//		gba.Halt(m)
//	}
package platform
