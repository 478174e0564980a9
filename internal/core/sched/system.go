package sched

// System is a named unit of per-frame logic not tied to a single entity.
// Init and Destroy are optional capabilities discovered by interface
// assertion when the system is added or removed.
type System interface {
	Update(dt float64)
}

// Initializer is run synchronously when the system is added.
type Initializer interface {
	Init()
}

// Destroyer is run when the system is removed from the scheduler.
type Destroyer interface {
	Destroy()
}

// SystemFunc adapts a plain function to the System interface.
type SystemFunc func(dt float64)

func (f SystemFunc) Update(dt float64) { f(dt) }

type namedSystem struct {
	name    string
	sys     System
	enabled bool
}
