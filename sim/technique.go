package sim

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTime
}

// EventScheduler can be used to schedule future B events.
type EventScheduler interface {
	// Schedule binds the entity to the event, due offset time units after the
	// current time.
	Schedule(entity *Entity, event Event, offset VTime)
}

// A Technique is a simulation method that advances a model one tick at a
// time. The controller owns the outer loop and delegates every tick to it.
type Technique interface {
	Hookable
	TimeTeller
	EventScheduler

	// Initialise clears the calendar and moves the clock back to 0.
	Initialise()

	// Reset prepares the technique for a new run.
	Reset()

	// Run executes one tick and returns the time the clock advanced to.
	// Duration is the end of the run; time is the clock before the tick.
	Run(
		currentRun uint32,
		duration, time VTime,
		activities []Activity,
	) (VTime, error)
}
