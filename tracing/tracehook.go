package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/threephase/sim"
)

// HookableTechnique is a technique whose registered hooks can be listed.
type HookableTechnique interface {
	sim.Hookable
	Hooks() []sim.Hook
}

// CollectTrace lets the tracer collect the tasks of a technique. Scheduling
// an entity starts a task and firing its B event ends it. A C activity start
// is a task that starts and ends immediately.
func CollectTrace(domain sim.Hookable, tracer Tracer) {
	if d, ok := domain.(HookableTechnique); ok {
		for _, hook := range d.Hooks() {
			hook, ok := hook.(*traceHook)
			if ok && hook.t == tracer {
				panic(fmt.Sprintf("domain already has tracer %s",
					reflect.TypeOf(tracer)))
			}
		}
	}

	h := traceHook{t: tracer}
	domain.AcceptHook(&h)
}

// A traceHook is a hook that traces tasks
type traceHook struct {
	t               Tracer
	activityStarted uint64
}

// Func calls the tracer interfaces when the hook is triggered
func (h *traceHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosSchedule:
		h.t.StartTask(TaskFromEntry(ctx.Item.(*sim.CalendarEntry)))
	case sim.HookPosBeforeEvent:
		h.t.EndTask(TaskFromEntry(ctx.Item.(*sim.CalendarEntry)))
	case sim.HookPosActivityStarted:
		h.activityStarted++
		activity := ctx.Item.(sim.Activity)
		task := TaskFromActivity(
			fmt.Sprintf("%s@%d", activity.Name(), h.activityStarted),
			activity)
		h.t.StartTask(task)
		h.t.EndTask(task)
	}
}
