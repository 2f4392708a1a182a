// Package simulation assembles a controller with the recording, tracing and
// monitoring services.
package simulation

import (
	"github.com/sarchlab/threephase/datarecording"
	"github.com/sarchlab/threephase/monitoring"
	"github.com/sarchlab/threephase/sim"
	"github.com/sarchlab/threephase/tracing"
)

// A Model registers its entities, resources, events, activities and hooks to
// a controller.
type Model interface {
	Register(controller *sim.Controller) error
}

// A Simulation provides the services required to run a model.
type Simulation struct {
	id         string
	controller *sim.Controller
	models     []Model

	outputPath        string
	dataRecorder      datarecording.DataRecorder
	lifecycleRecorder *tracing.LifecycleRecorder
	tracer            *tracing.DBTracer
	monitor           *monitoring.Monitor
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Controller returns the controller that runs the simulation.
func (s *Simulation) Controller() *sim.Controller {
	return s.controller
}

// DataRecorder returns the data recorder used in the simulation. It is nil if
// recording is disabled.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// OutputPath returns the path of the database, without the extension.
func (s *Simulation) OutputPath() string {
	return s.outputPath
}

// Tracer returns the tracer that records the tasks. It is nil if recording is
// disabled.
func (s *Simulation) Tracer() *tracing.DBTracer {
	return s.tracer
}

// Monitor returns the monitor used in the simulation. It is nil if monitoring
// is disabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// RegisterModel lets the model register itself to the controller.
func (s *Simulation) RegisterModel(m Model) error {
	if err := m.Register(s.controller); err != nil {
		return err
	}

	s.models = append(s.models, m)

	return nil
}

// Models returns the registered models.
func (s *Simulation) Models() []Model {
	return s.models
}

// Run runs the simulation until it finishes, pauses or fails.
func (s *Simulation) Run() error {
	return s.controller.Run()
}

// Terminate flushes the recorded data and closes the database.
func (s *Simulation) Terminate() {
	if s.tracer != nil {
		s.tracer.Terminate()
	}

	if s.dataRecorder != nil {
		_ = s.dataRecorder.Close()
	}
}
