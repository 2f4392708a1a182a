package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInfiniteLoop is returned when the A phase finds that simulated time
	// cannot advance. It usually means that the model has no pending B event
	// and no C activity that can start.
	ErrInfiniteLoop = errors.New("simulation time is not advancing")

	// ErrConfigurationCannotBeChanged is returned when the configuration or a
	// registry is modified while the simulation is not idle.
	ErrConfigurationCannotBeChanged = errors.New(
		"configuration cannot be changed unless the simulation is idle")

	// ErrValueOutOfRange is returned when a configuration value is outside
	// its bounds.
	ErrValueOutOfRange = errors.New("value out of range")
)

// InfiniteLoopError reports where the simulation got stuck.
type InfiniteLoopError struct {
	Run  uint32
	Time VTime
}

func (e *InfiniteLoopError) Error() string {
	return fmt.Sprintf("run %d, time %d: %s", e.Run, e.Time, ErrInfiniteLoop)
}

func (e *InfiniteLoopError) Unwrap() error {
	return ErrInfiniteLoop
}

// ConfigurationChangeError reports a rejected change.
type ConfigurationChangeError struct {
	What  string
	State State
}

func (e *ConfigurationChangeError) Error() string {
	return fmt.Sprintf("cannot change %s in state %s: %s",
		e.What, e.State, ErrConfigurationCannotBeChanged)
}

func (e *ConfigurationChangeError) Unwrap() error {
	return ErrConfigurationCannotBeChanged
}

// RangeError reports a rejected configuration value.
type RangeError struct {
	Parameter string
	Value     uint64
	Min, Max  uint64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d, got %d: %s",
		e.Parameter, e.Min, e.Max, e.Value, ErrValueOutOfRange)
}

func (e *RangeError) Unwrap() error {
	return ErrValueOutOfRange
}
