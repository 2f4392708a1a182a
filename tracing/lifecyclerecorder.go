package tracing

import (
	"time"

	"github.com/sarchlab/threephase/datarecording"
	"github.com/sarchlab/threephase/sim"
)

const notificationTable = "notifications"

type notificationEntry struct {
	Position string
	Run      uint32
	Time     sim.VTime
	WallTime string
}

// LifecycleRecorder is a hook that writes every lifecycle notification of a
// controller into the notifications table. Completed ticks are skipped
// unless requested, as they are by far the most frequent notification.
type LifecycleRecorder struct {
	recorder  datarecording.DataRecorder
	withTicks bool
}

// NewLifecycleRecorder creates a LifecycleRecorder and its table.
func NewLifecycleRecorder(
	recorder datarecording.DataRecorder,
) *LifecycleRecorder {
	recorder.CreateTable(notificationTable, notificationEntry{})

	return &LifecycleRecorder{
		recorder: recorder,
	}
}

// WithTicks makes the recorder also record completed ticks.
func (r *LifecycleRecorder) WithTicks() *LifecycleRecorder {
	r.withTicks = true
	return r
}

// Func records the notification.
func (r *LifecycleRecorder) Func(ctx sim.HookCtx) {
	info, ok := ctx.Item.(sim.Info)
	if !ok {
		return
	}

	if ctx.Pos == sim.HookPosCompleteThreePhases && !r.withTicks {
		return
	}

	r.recorder.InsertData(notificationTable, notificationEntry{
		Position: ctx.Pos.Name,
		Run:      info.Run,
		Time:     info.Time,
		WallTime: time.Now().Format(time.RFC3339Nano),
	})

	if ctx.Pos == sim.HookPosFinishSimulation {
		r.recorder.Flush()
	}
}
