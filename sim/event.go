package sim

// An Event is a B event: an unconditional state change that happens when its
// calendar entry becomes due.
type Event interface {
	// Name identifies the event in traces.
	Name() string

	// Fire performs the state change.
	Fire()
}

// An Activity is a C activity: a state change that starts only when its
// condition holds, for example when a queue is not empty and a resource unit
// is free. TryStart returns true if the activity started.
type Activity interface {
	// Name identifies the activity in traces.
	Name() string

	// TryStart checks the start condition and, if it holds, performs the
	// activity's side effects.
	TryStart() bool
}

type funcEvent struct {
	name string
	fn   func()
}

// NewEvent wraps a function as an Event.
func NewEvent(name string, fn func()) Event {
	return &funcEvent{name: name, fn: fn}
}

func (e *funcEvent) Name() string {
	return e.name
}

func (e *funcEvent) Fire() {
	e.fn()
}

type funcActivity struct {
	name string
	fn   func() bool
}

// NewActivity wraps a function as an Activity.
func NewActivity(name string, fn func() bool) Activity {
	return &funcActivity{name: name, fn: fn}
}

func (a *funcActivity) Name() string {
	return a.name
}

func (a *funcActivity) TryStart() bool {
	return a.fn()
}
