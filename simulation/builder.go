package simulation

import (
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/threephase/datarecording"
	"github.com/sarchlab/threephase/monitoring"
	"github.com/sarchlab/threephase/sim"
	"github.com/sarchlab/threephase/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	recordingOn    bool
	monitorOn      bool
	monitorPort    int
	openBrowser    bool
	outputFileName string
	logger         logrus.FieldLogger
}

// MakeBuilder creates a new builder. By default, the simulation neither
// records data nor starts a monitoring server.
func MakeBuilder() Builder {
	return Builder{}
}

// WithRecording makes the simulation record its trace and lifecycle into a
// SQLite database.
func (b Builder) WithRecording() Builder {
	b.recordingOn = true
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithMonitoring starts a monitoring server when the simulation is built.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitoring page in a browser.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithLogger logs the lifecycle of the simulation to the logger.
func (b Builder) WithLogger(logger logrus.FieldLogger) Builder {
	b.logger = logger
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && (b.monitorPort != 0 || b.openBrowser) {
		panic("monitor options cannot be set when monitoring is disabled")
	}

	if !b.recordingOn && b.outputFileName != "" {
		panic("output file name cannot be set when recording is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:         xid.New().String(),
		controller: sim.NewController(),
	}

	if b.logger != nil {
		s.controller.AcceptHook(sim.NewLogHook(b.logger))
	}

	if b.recordingOn {
		b.buildRecording(s)
	}

	if b.monitorOn {
		b.buildMonitor(s)
	}

	return s
}

func (b Builder) buildRecording(s *Simulation) {
	s.outputPath = b.outputFileName
	if s.outputPath == "" {
		s.outputPath = "threephase_sim_" + s.id
	}

	s.dataRecorder = datarecording.NewDataRecorder(s.outputPath)

	s.lifecycleRecorder = tracing.NewLifecycleRecorder(s.dataRecorder)
	s.controller.AcceptHook(s.lifecycleRecorder)

	technique := s.controller.Technique()
	s.tracer = tracing.NewDBTracer(technique, s.dataRecorder)
	s.controller.AcceptHook(s.tracer)
	tracing.CollectTrace(technique, s.tracer)
}

func (b Builder) buildMonitor(s *Simulation) {
	s.monitor = monitoring.NewMonitor()
	if b.monitorPort > 0 {
		s.monitor.WithPortNumber(b.monitorPort)
	}

	if b.openBrowser {
		s.monitor.WithBrowser()
	}

	s.monitor.RegisterController(s.controller)
	s.monitor.StartServer()
}
