// Package bind turns a populated configuration tree into typed Go values.
//
// Map and Koanf export the tree as nested maps keyed by element name. Decode
// runs the export through a staged pipeline:
//
//	snapshot -> defaults -> decode -> validate
//
// Every failure is a *StageError wrapping one of ErrSnapshot, ErrDefaults,
// ErrDecode or ErrValidate, so callers can branch with errors.Is and inspect
// the stage metadata with errors.As.
//
//	type App struct {
//		Port  int           `koanf:"port"`
//		Hosts []string      `koanf:"hosts"`
//		Wait  time.Duration `koanf:"wait"`
//	}
//
//	app, err := bind.Decode[App](cfg, bind.WithDefaults(App{Port: 8080}))
package bind
