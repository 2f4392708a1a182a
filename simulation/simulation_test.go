package simulation

import (
	"context"
	"errors"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gstruct"
	"github.com/sirupsen/logrus/hooks/test"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/threephase/datarecording"
	"github.com/sarchlab/threephase/sim"
)

type traceRow struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	Location  string
	Run       uint32
	StartTime uint32
	EndTime   uint32
}

type notificationRow struct {
	Position string
	Run      uint32
	Time     uint32
	WallTime string
}

// machine is a model with one entity that comes back every 3 time units.
type machine struct{}

func (machine) Register(controller *sim.Controller) error {
	entity := sim.NewEntity("machine")
	var repair sim.Event
	repair = sim.NewEvent("repair", func() {
		controller.Schedule(entity, repair, 3)
	})

	if err := controller.AddEntity(entity); err != nil {
		return err
	}

	controller.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
		if ctx.Pos == sim.HookPosStartRun {
			controller.Schedule(entity, repair, 3)
		}
	}))

	return controller.AddEvent(repair)
}

var _ = Describe("Simulation", func() {
	var (
		mockCtrl *gomock.Controller
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should build a bare simulation", func() {
		s := MakeBuilder().Build()
		defer s.Terminate()

		Expect(s.ID()).NotTo(BeEmpty())
		Expect(s.Controller()).NotTo(BeNil())
		Expect(s.DataRecorder()).To(BeNil())
		Expect(s.Tracer()).To(BeNil())
		Expect(s.Monitor()).To(BeNil())
	})

	It("should register models", func() {
		s := MakeBuilder().Build()
		model := NewMockModel(mockCtrl)
		model.EXPECT().Register(s.Controller()).Return(nil)

		Expect(s.RegisterModel(model)).To(Succeed())
		Expect(s.Models()).To(HaveLen(1))
	})

	It("should not keep models that fail to register", func() {
		s := MakeBuilder().Build()
		model := NewMockModel(mockCtrl)
		model.EXPECT().Register(gomock.Any()).Return(errors.New("broken"))

		Expect(s.RegisterModel(model)).NotTo(Succeed())
		Expect(s.Models()).To(BeEmpty())
	})

	It("should log the lifecycle", func() {
		logger, logs := test.NewNullLogger()
		s := MakeBuilder().WithLogger(logger).Build()

		Expect(s.Controller().Configurator().SetDuration(5)).To(Succeed())
		Expect(s.Run()).To(Succeed())

		Expect(logs.LastEntry().Message).To(Equal("FinishSimulation"))
	})

	It("should not accept monitor options without monitoring", func() {
		Expect(func() { MakeBuilder().WithMonitorPort(3000).Build() }).
			To(Panic())
		Expect(func() { MakeBuilder().WithOutputFileName("x").Build() }).
			To(Panic())
	})

	It("should start a monitor", func() {
		s := MakeBuilder().WithMonitoring().Build()

		Expect(s.Monitor()).NotTo(BeNil())
		Expect(s.Monitor().URL()).To(HavePrefix("http://localhost:"))
	})

	It("should record the trace and the lifecycle", func() {
		path := filepath.Join(GinkgoT().TempDir(), "machine")
		s := MakeBuilder().
			WithRecording().
			WithOutputFileName(path).
			Build()
		Expect(s.OutputPath()).To(Equal(path))

		Expect(s.RegisterModel(machine{})).To(Succeed())
		Expect(s.Controller().Configurator().SetDuration(10)).To(Succeed())
		Expect(s.Controller().Configurator().SetNumberOfRuns(2)).To(Succeed())

		Expect(s.Run()).To(Succeed())
		s.Terminate()

		reader := datarecording.NewReader(path + ".sqlite3")
		defer reader.Close()
		reader.MapTable("trace", traceRow{})
		reader.MapTable("notifications", notificationRow{})

		traces, total, err := reader.Query(context.Background(), "trace",
			datarecording.QueryParams{OrderBy: "Run, StartTime"})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(6))
		Expect(traces[0]).To(PointTo(MatchFields(IgnoreExtras, Fields{
			"Kind":      Equal("b_event"),
			"What":      Equal("repair"),
			"Location":  Equal("machine"),
			"Run":       Equal(uint32(1)),
			"StartTime": Equal(uint32(0)),
			"EndTime":   Equal(uint32(3)),
		})))

		_, total, err = reader.Query(context.Background(), "notifications",
			datarecording.QueryParams{Where: "Position = ?", Args: []any{"FinishRun"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(2))
	})
})
