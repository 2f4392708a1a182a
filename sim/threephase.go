package sim

import (
	"github.com/sirupsen/logrus"
)

// ThreePhaseTechnique implements the three-phase method. Every tick runs:
//
//   - the A phase, which finds the earliest due time in the calendar and
//     collects all the entries due at that time;
//   - the B phase, which fires the due B events;
//   - the C phase, which keeps trying the C activities until none of them can
//     start.
type ThreePhaseTechnique struct {
	*HookableBase

	calendar    *Calendar
	dueNow      []*CalendarEntry
	currentTime VTime
}

// NewThreePhaseTechnique creates a technique with an empty calendar.
func NewThreePhaseTechnique() *ThreePhaseTechnique {
	return &ThreePhaseTechnique{
		HookableBase: NewHookableBase(),
		calendar:     NewCalendar(),
	}
}

// Calendar returns the pending entries.
func (t *ThreePhaseTechnique) Calendar() *Calendar {
	return t.calendar
}

// CurrentTime returns the time of the last A phase.
func (t *ThreePhaseTechnique) CurrentTime() VTime {
	return t.currentTime
}

// Initialise clears the calendar and moves the clock back to 0.
func (t *ThreePhaseTechnique) Initialise() {
	t.calendar.Clear()
	t.dueNow = nil
	t.currentTime = 0
}

// Reset starts a new run from an empty calendar.
func (t *ThreePhaseTechnique) Reset() {
	t.Initialise()
}

// Run executes the A, B and C phases once.
func (t *ThreePhaseTechnique) Run(
	currentRun uint32,
	duration, time VTime,
	activities []Activity,
) (VTime, error) {
	next, err := t.aPhase(duration, time)
	if err != nil {
		return time, &InfiniteLoopError{Run: currentRun, Time: time}
	}

	t.currentTime = next

	t.bPhase()
	t.cPhase(activities)

	return t.currentTime, nil
}

func (t *ThreePhaseTechnique) aPhase(duration, time VTime) (VTime, error) {
	minimumTimeCell := duration
	t.dueNow = t.dueNow[:0]

	for _, entry := range t.calendar.entries {
		if entry.Entity.Available {
			continue
		}

		if entry.TimeCell > minimumTimeCell {
			continue
		}

		if entry.TimeCell < minimumTimeCell {
			t.dueNow = t.dueNow[:0]
		}

		t.dueNow = append(t.dueNow, entry)
		minimumTimeCell = entry.TimeCell
	}

	if time > 0 && time == minimumTimeCell {
		logrus.Errorf("[time %d] %s", time, ErrInfiniteLoop)
		return time, ErrInfiniteLoop
	}

	logrus.Debugf("[time %d] A phase: time advanced from %d, %d entries in calendar",
		minimumTimeCell, time, t.calendar.Len())

	return minimumTimeCell, nil
}

func (t *ThreePhaseTechnique) bPhase() {
	logrus.Debugf("[time %d] B phase: %d events due now",
		t.currentTime, len(t.dueNow))

	for _, entry := range t.dueNow {
		ctx := HookCtx{
			Domain: t,
			Pos:    HookPosBeforeEvent,
			Item:   entry,
		}
		t.InvokeHook(ctx)

		logrus.Tracef("[time %d] B phase: firing %s for %s",
			t.currentTime, entry.Event.Name(), entry.Entity.Name)

		entry.Entity.Available = true
		entry.Event.Fire()
		t.calendar.Remove(entry)

		ctx.Pos = HookPosAfterEvent
		t.InvokeHook(ctx)
	}

	t.dueNow = t.dueNow[:0]
}

func (t *ThreePhaseTechnique) cPhase(activities []Activity) {
	for {
		anyStarted := false

		for _, activity := range activities {
			if !activity.TryStart() {
				logrus.Tracef("[time %d] C phase: %s did not start",
					t.currentTime, activity.Name())
				continue
			}

			anyStarted = true

			logrus.Tracef("[time %d] C phase: %s started",
				t.currentTime, activity.Name())
			t.InvokeHook(HookCtx{
				Domain: t,
				Pos:    HookPosActivityStarted,
				Item:   activity,
			})
		}

		if !anyStarted {
			return
		}
	}
}

// Schedule binds the entity to the event, due offset time units after the
// current time. The entity becomes unavailable and its utilisation grows by
// offset.
func (t *ThreePhaseTechnique) Schedule(
	entity *Entity,
	event Event,
	offset VTime,
) {
	entity.Available = false
	entity.Utilisation += uint64(offset)

	entry := &CalendarEntry{
		ID:          GetIDGenerator().Generate(),
		Entity:      entity,
		Event:       event,
		TimeCell:    t.currentTime + offset,
		ScheduledAt: t.currentTime,
	}
	t.calendar.Add(entry)

	logrus.Tracef("[time %d] %s scheduled for %s at %d",
		t.currentTime, event.Name(), entity.Name, entry.TimeCell)

	t.InvokeHook(HookCtx{
		Domain: t,
		Pos:    HookPosSchedule,
		Item:   entry,
	})
}
