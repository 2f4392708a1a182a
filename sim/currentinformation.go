package sim

import "sync"

// State is the lifecycle state of a simulation.
type State uint8

// The lifecycle states.
const (
	Idle State = iota
	Running
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Paused:
		return "Paused"
	case Finished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// A StateTeller can be used to get the current lifecycle state.
type StateTeller interface {
	CurrentState() State
}

// CurrentInformation is the mutable record of where a simulation is: the
// clock, the run being executed, the lifecycle state and the flags the
// controller uses to coordinate its loop.
//
// State and time can be read from other goroutines; everything else is only
// touched by the goroutine running the controller.
type CurrentInformation struct {
	lock       sync.RWMutex
	state      State
	time       VTime
	currentRun uint32

	IsWarmUpTime         bool
	Initialised          bool
	HasSimulationStarted bool
	HasRunStarted        bool
}

// NewCurrentInformation returns the information of an idle simulation.
func NewCurrentInformation() *CurrentInformation {
	return &CurrentInformation{
		state:      Idle,
		currentRun: 1,
	}
}

// CurrentState returns the lifecycle state.
func (i *CurrentInformation) CurrentState() State {
	i.lock.RLock()
	defer i.lock.RUnlock()

	return i.state
}

// SetState changes the lifecycle state.
func (i *CurrentInformation) SetState(s State) {
	i.lock.Lock()
	i.state = s
	i.lock.Unlock()
}

// Time returns the simulated time of the current run.
func (i *CurrentInformation) Time() VTime {
	i.lock.RLock()
	defer i.lock.RUnlock()

	return i.time
}

// SetTime moves the clock.
func (i *CurrentInformation) SetTime(t VTime) {
	i.lock.Lock()
	i.time = t
	i.lock.Unlock()
}

// CurrentRun returns the 1-based index of the run being executed.
func (i *CurrentInformation) CurrentRun() uint32 {
	i.lock.RLock()
	defer i.lock.RUnlock()

	return i.currentRun
}

// SetCurrentRun changes the run index.
func (i *CurrentInformation) SetCurrentRun(run uint32) {
	i.lock.Lock()
	i.currentRun = run
	i.lock.Unlock()
}

// Info returns the current run and time as a pair read under one lock.
func (i *CurrentInformation) Info() Info {
	i.lock.RLock()
	defer i.lock.RUnlock()

	return Info{Run: i.currentRun, Time: i.time}
}

// Initialisation prepares the record for the first run of a simulation.
func (i *CurrentInformation) Initialisation() {
	i.lock.Lock()
	i.time = 0
	i.currentRun = 1
	i.lock.Unlock()

	i.Initialised = true
}

// Reset brings the record back to the idle state.
func (i *CurrentInformation) Reset() {
	i.lock.Lock()
	i.time = 0
	i.currentRun = 1
	i.state = Idle
	i.lock.Unlock()

	i.IsWarmUpTime = false
	i.Initialised = false
	i.HasSimulationStarted = false
	i.HasRunStarted = false
}
