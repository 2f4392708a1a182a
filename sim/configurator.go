package sim

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Default configuration values.
const (
	DefaultDuration      VTime  = 365
	DefaultNumberOfRuns  uint32 = 1
	DefaultSpeed         uint8  = 100
	DefaultDelayDuration uint32 = 100
	MaxSpeed             uint8  = 100
)

// Configurator holds the parameters of a simulation. Duration, number of
// runs, warm-up time and step mode can only be changed while the simulation
// is idle. Speed and delay duration can be tuned at any time.
type Configurator struct {
	lock        sync.RWMutex
	stateTeller StateTeller

	duration      VTime
	numberOfRuns  uint32
	warmUpTime    VTime
	speed         uint8
	delayDuration uint32
	step          bool
}

// NewConfigurator creates a Configurator with the default values. The state
// teller is consulted on every guarded change.
func NewConfigurator(stateTeller StateTeller) *Configurator {
	return &Configurator{
		stateTeller:   stateTeller,
		duration:      DefaultDuration,
		numberOfRuns:  DefaultNumberOfRuns,
		speed:         DefaultSpeed,
		delayDuration: DefaultDelayDuration,
	}
}

// Duration returns the length of a run.
func (c *Configurator) Duration() VTime {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.duration
}

// SetDuration sets the length of a run.
func (c *Configurator) SetDuration(d VTime) error {
	if err := mustBeIdle(c.stateTeller, "duration"); err != nil {
		return err
	}

	if err := checkRange("duration", uint64(d), 0, UpperBound); err != nil {
		return err
	}

	c.lock.Lock()
	logChange("duration", c.duration, d)
	c.duration = d
	c.lock.Unlock()

	return nil
}

// NumberOfRuns returns how many replications a simulation executes.
func (c *Configurator) NumberOfRuns() uint32 {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.numberOfRuns
}

// SetNumberOfRuns sets how many replications a simulation executes.
func (c *Configurator) SetNumberOfRuns(n uint32) error {
	if err := mustBeIdle(c.stateTeller, "number of runs"); err != nil {
		return err
	}

	if err := checkRange("number of runs", uint64(n), 1, UpperBound); err != nil {
		return err
	}

	c.lock.Lock()
	logChange("number of runs", c.numberOfRuns, n)
	c.numberOfRuns = n
	c.lock.Unlock()

	return nil
}

// WarmUpTime returns the length of the warm-up period at the start of each
// run.
func (c *Configurator) WarmUpTime() VTime {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.warmUpTime
}

// SetWarmUpTime sets the length of the warm-up period. A warm-up time that is
// not shorter than the duration is accepted; the warm-up then never ends
// within a run.
func (c *Configurator) SetWarmUpTime(t VTime) error {
	if err := mustBeIdle(c.stateTeller, "warm-up time"); err != nil {
		return err
	}

	if err := checkRange("warm-up time", uint64(t), 0, UpperBound); err != nil {
		return err
	}

	c.lock.Lock()
	logChange("warm-up time", c.warmUpTime, t)
	c.warmUpTime = t
	c.lock.Unlock()

	return nil
}

// Speed returns the pacing speed, from 0 (slowest) to 100 (no delay).
func (c *Configurator) Speed() uint8 {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.speed
}

// SetSpeed sets the pacing speed.
func (c *Configurator) SetSpeed(speed uint32) error {
	if err := checkRange("speed", uint64(speed), 0, uint64(MaxSpeed)); err != nil {
		return err
	}

	c.lock.Lock()
	logChange("speed", c.speed, speed)
	c.speed = uint8(speed)
	c.lock.Unlock()

	return nil
}

// DelayDuration returns the pacing delay at speed 0, in milliseconds.
func (c *Configurator) DelayDuration() uint32 {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.delayDuration
}

// SetDelayDuration sets the pacing delay at speed 0, in milliseconds.
func (c *Configurator) SetDelayDuration(ms uint32) error {
	err := checkRange("delay duration", uint64(ms), 0, UpperBound)
	if err != nil {
		return err
	}

	c.lock.Lock()
	logChange("delay duration", c.delayDuration, ms)
	c.delayDuration = ms
	c.lock.Unlock()

	return nil
}

// Step tells if the controller returns after every tick.
func (c *Configurator) Step() bool {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.step
}

// SetStep turns step mode on or off.
func (c *Configurator) SetStep(step bool) error {
	if err := mustBeIdle(c.stateTeller, "step"); err != nil {
		return err
	}

	c.lock.Lock()
	c.step = step
	c.lock.Unlock()

	if step {
		logrus.Info("step mode on")
	} else {
		logrus.Info("step mode off")
	}

	return nil
}

func checkRange(parameter string, value, lo, hi uint64) error {
	if value >= lo && value <= hi {
		return nil
	}

	err := &RangeError{Parameter: parameter, Value: value, Min: lo, Max: hi}
	logrus.Error(err)

	return err
}

func logChange(parameter string, from, to any) {
	logrus.WithFields(logrus.Fields{
		"from": from,
		"to":   to,
	}).Infof("%s changed", parameter)
}
