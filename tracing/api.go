package tracing

import (
	"github.com/sarchlab/threephase/sim"
)

// TaskFromEntry converts a calendar entry to the task that it represents.
// The what of the task is the event name and the location is the entity name.
func TaskFromEntry(entry *sim.CalendarEntry) Task {
	return Task{
		ID:        entry.ID,
		ParentID:  string(entry.Entity.ID),
		Kind:      KindBEvent,
		What:      entry.Event.Name(),
		Location:  entry.Entity.Name,
		StartTime: entry.ScheduledAt,
		EndTime:   entry.TimeCell,
		Detail:    entry,
	}
}

// TaskFromActivity converts a C activity start to a task.
func TaskFromActivity(id string, activity sim.Activity) Task {
	return Task{
		ID:       id,
		Kind:     KindCActivity,
		What:     activity.Name(),
		Location: activity.Name(),
		Detail:   activity,
	}
}

func taskMustBeValid(task Task) {
	if task.ID == "" {
		panic("task ID must be set")
	}

	if task.Kind == "" {
		panic("task kind must be set")
	}

	if task.What == "" {
		panic("task what must be set")
	}

	if task.Location == "" {
		panic("task location must be set")
	}
}
