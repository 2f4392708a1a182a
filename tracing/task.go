package tracing

import "github.com/sarchlab/threephase/sim"

// Task kinds.
const (
	// KindBEvent is the kind of the tasks that span from the moment an entity
	// is scheduled to the moment its B event fires.
	KindBEvent = "b_event"

	// KindCActivity is the kind of the tasks that record a C activity start.
	// They start and end at the same time.
	KindCActivity = "c_activity"
)

// A Task is a piece of simulated work, such as a patient occupying a bed.
type Task struct {
	ID        string      `json:"id"`
	ParentID  string      `json:"parent_id"`
	Kind      string      `json:"kind"`
	What      string      `json:"what"`
	Location  string      `json:"location"`
	StartTime sim.VTime   `json:"start_time"`
	EndTime   sim.VTime   `json:"end_time"`
	Detail    interface{} `json:"-"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool

// FilterByKind returns a filter that accepts the tasks of the given kind.
func FilterByKind(kind string) TaskFilter {
	return func(t Task) bool {
		return t.Kind == kind
	}
}

// FilterByWhat returns a filter that accepts the tasks with the given what.
func FilterByWhat(what string) TaskFilter {
	return func(t Task) bool {
		return t.What == what
	}
}
