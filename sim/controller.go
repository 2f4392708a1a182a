package sim

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Controller owns a simulation. It holds the configuration, the registries
// and the run-state, and drives the technique through the lifecycle of the
// simulation.
//
// Run must be called from a single goroutine. Pause, State, Time and
// CurrentRun can be called from any goroutine.
type Controller struct {
	*HookableBase

	configurator *Configurator
	info         *CurrentInformation
	technique    Technique
	entities     *EntityAndResourceManager
	events       *EventAndActivityManager

	sleep func(time.Duration)
}

// NewController creates an idle controller that uses the three-phase
// technique.
func NewController() *Controller {
	return NewControllerWithTechnique(NewThreePhaseTechnique())
}

// NewControllerWithTechnique creates an idle controller that delegates every
// tick to the given technique.
func NewControllerWithTechnique(t Technique) *Controller {
	c := &Controller{
		HookableBase: NewHookableBase(),
		info:         NewCurrentInformation(),
		technique:    t,
		sleep:        time.Sleep,
	}

	c.configurator = NewConfigurator(c.info)
	c.entities = NewEntityAndResourceManager(c.info)
	c.events = NewEventAndActivityManager(c.info)

	return c
}

// SetSleepFunc replaces the function used to pace the simulation.
func (c *Controller) SetSleepFunc(sleep func(time.Duration)) {
	c.sleep = sleep
}

// Configurator returns the configuration of the simulation.
func (c *Controller) Configurator() *Configurator {
	return c.configurator
}

// CurrentInformation returns the run-state of the simulation.
func (c *Controller) CurrentInformation() *CurrentInformation {
	return c.info
}

// Technique returns the technique that executes the ticks.
func (c *Controller) Technique() Technique {
	return c.technique
}

// EntityAndResourceManager returns the registry of entities and resources.
func (c *Controller) EntityAndResourceManager() *EntityAndResourceManager {
	return c.entities
}

// EventAndActivityManager returns the registry of B events and C activities.
func (c *Controller) EventAndActivityManager() *EventAndActivityManager {
	return c.events
}

// AddEntity registers an entity.
func (c *Controller) AddEntity(e *Entity) error {
	return c.entities.AddEntity(e)
}

// AddResource registers a resource.
func (c *Controller) AddResource(r *Resource) error {
	return c.entities.AddResource(r)
}

// AddEvent registers a B event.
func (c *Controller) AddEvent(e Event) error {
	return c.events.AddEvent(e)
}

// AddActivity registers a C activity.
func (c *Controller) AddActivity(a Activity) error {
	return c.events.AddActivity(a)
}

// Schedule binds the entity to the event, due offset time units from now.
func (c *Controller) Schedule(entity *Entity, event Event, offset VTime) {
	c.technique.Schedule(entity, event, offset)
}

// Time returns the simulated time of the current run.
func (c *Controller) Time() VTime {
	return c.info.Time()
}

// CurrentTime returns the simulated time of the current run.
func (c *Controller) CurrentTime() VTime {
	return c.info.Time()
}

// CurrentRun returns the 1-based index of the run being executed.
func (c *Controller) CurrentRun() uint32 {
	return c.info.CurrentRun()
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	return c.info.CurrentState()
}

// CurrentState returns the lifecycle state.
func (c *Controller) CurrentState() State {
	return c.info.CurrentState()
}

// IsWarmUpTime tells if the current run is still warming up.
func (c *Controller) IsWarmUpTime() bool {
	return c.info.IsWarmUpTime
}

// Run starts or resumes the simulation. It returns when the simulation is
// finished, paused, or when a tick fails. In step mode, it returns after a
// single tick. Calling Run on a running or finished simulation does nothing.
func (c *Controller) Run() error {
	switch c.info.CurrentState() {
	case Running, Finished:
		return nil
	}

	c.startSimulation()

	for c.info.CurrentState() == Running {
		if err := c.tick(); err != nil {
			c.info.SetState(Paused)
			return err
		}

		if c.configurator.Step() && c.info.CurrentState() == Running {
			c.info.SetState(Paused)
			return nil
		}
	}

	return nil
}

func (c *Controller) startSimulation() {
	if !c.info.HasSimulationStarted {
		c.notify(HookPosStartSimulation)
		c.info.HasSimulationStarted = true
	}

	if !c.info.Initialised {
		c.technique.Initialise()
		c.info.Initialisation()
		c.enterWarmUpIfNeeded()
	}

	c.info.SetState(Running)
}

func (c *Controller) tick() error {
	if !c.info.HasRunStarted {
		c.notify(HookPosStartRun)
		c.info.HasRunStarted = true
	}

	duration := c.configurator.Duration()
	info := c.info.Info()

	now, err := c.technique.Run(
		info.Run, duration, info.Time, c.events.activities)
	if err != nil {
		logrus.Errorf("[run %d][time %d] %s", info.Run, info.Time, err)
		return err
	}

	c.info.SetTime(now)
	c.notify(HookPosCompleteThreePhases)

	if now == duration {
		c.finishRun()
		return nil
	}

	if c.info.IsWarmUpTime && now >= c.configurator.WarmUpTime() {
		c.info.IsWarmUpTime = false
		c.notify(HookPosFinishWarmUpTime)
	}

	if !c.configurator.Step() {
		c.delay()
	}

	return nil
}

func (c *Controller) finishRun() {
	c.info.HasRunStarted = false
	c.notify(HookPosFinishRun)

	if c.info.CurrentRun() == c.configurator.NumberOfRuns() {
		c.notify(HookPosFinishSimulation)
		c.info.SetState(Finished)
		c.info.HasSimulationStarted = false
		c.info.Initialised = false

		return
	}

	c.technique.Reset()
	c.info.SetTime(0)
	c.info.SetCurrentRun(c.info.CurrentRun() + 1)
	c.enterWarmUpIfNeeded()
}

func (c *Controller) enterWarmUpIfNeeded() {
	if c.configurator.WarmUpTime() == 0 {
		return
	}

	c.info.IsWarmUpTime = true
	c.notify(HookPosStartWarmUpTime)
}

// delay sleeps between ticks so that the simulation can be watched. At speed
// 100 there is no delay; at speed 0 the delay is the configured delay
// duration.
func (c *Controller) delay() {
	d := int64(c.configurator.DelayDuration())
	s := int64(c.configurator.Speed())

	ms := ((-d * s) / 100) + d
	if ms <= 0 {
		return
	}

	c.sleep(time.Duration(ms) * time.Millisecond)
}

// Pause stops a running simulation after the current tick.
func (c *Controller) Pause() {
	c.info.lock.Lock()
	defer c.info.lock.Unlock()

	if c.info.state != Running {
		return
	}

	c.info.state = Paused
	logrus.Infof("[run %d][time %d] paused", c.info.currentRun, c.info.time)
}

// Reset brings a paused or finished simulation back to the idle state, so
// that it can be configured and run again.
func (c *Controller) Reset() {
	if c.info.CurrentState() == Idle {
		return
	}

	c.info.Reset()
	logrus.Info("simulation reset")
}

func (c *Controller) notify(pos *HookPos) {
	info := c.info.Info()

	logrus.Debugf("[run %d][time %d] %s", info.Run, info.Time, pos.Name)

	c.InvokeHook(HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   info,
	})
}
