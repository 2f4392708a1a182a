package sim

import (
	"errors"
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

type notification struct {
	pos  *HookPos
	info Info
}

type notificationRecorder struct {
	notifications []notification
}

func (r *notificationRecorder) Func(ctx HookCtx) {
	r.notifications = append(r.notifications, notification{
		pos:  ctx.Pos,
		info: ctx.Item.(Info),
	})
}

func (r *notificationRecorder) at(pos *HookPos) []Info {
	var infos []Info

	for _, n := range r.notifications {
		if n.pos == pos {
			infos = append(infos, n.info)
		}
	}

	return infos
}

func (r *notificationRecorder) times() []VTime {
	var times []VTime

	for _, info := range r.at(HookPosCompleteThreePhases) {
		times = append(times, info.Time)
	}

	return times
}

// periodicModel is an entity that comes back every period time units.
type periodicModel struct {
	ctrl   *Controller
	entity *Entity
	event  Event
	period VTime
	fired  int
}

func newPeriodicModel(ctrl *Controller, period VTime) *periodicModel {
	m := &periodicModel{
		ctrl:   ctrl,
		entity: NewEntity("machine"),
		period: period,
	}

	m.event = NewEvent("tick", func() {
		m.fired++
		m.ctrl.Schedule(m.entity, m.event, m.period)
	})

	Expect(ctrl.AddEntity(m.entity)).To(Succeed())
	Expect(ctrl.AddEvent(m.event)).To(Succeed())

	ctrl.AcceptHook(HookFunc(func(ctx HookCtx) {
		if ctx.Pos == HookPosStartRun {
			m.ctrl.Schedule(m.entity, m.event, m.period)
		}
	}))

	return m
}

var _ = Describe("Controller", func() {
	var (
		ctrl     *Controller
		recorder *notificationRecorder
	)

	BeforeEach(func() {
		ctrl = NewController()
		ctrl.SetSleepFunc(func(time.Duration) {
			Fail("should not sleep at full speed")
		})
		recorder = &notificationRecorder{}
		ctrl.AcceptHook(recorder)
	})

	It("should start idle", func() {
		Expect(ctrl.State()).To(Equal(Idle))
		Expect(ctrl.Time()).To(Equal(VTime(0)))
		Expect(ctrl.CurrentRun()).To(Equal(uint32(1)))
		Expect(ctrl.IsWarmUpTime()).To(BeFalse())
	})

	It("should advance time to the due events and the end of the run", func() {
		Expect(ctrl.Configurator().SetDuration(10)).To(Succeed())
		model := newPeriodicModel(ctrl, 3)

		Expect(ctrl.Run()).To(Succeed())

		Expect(recorder.times()).To(Equal([]VTime{3, 6, 9, 10}))
		Expect(model.fired).To(Equal(3))
		Expect(ctrl.State()).To(Equal(Finished))
		Expect(ctrl.Time()).To(Equal(VTime(10)))
	})

	It("should finish a run without any event in a single tick", func() {
		Expect(ctrl.Configurator().SetDuration(5)).To(Succeed())

		Expect(ctrl.Run()).To(Succeed())

		Expect(recorder.times()).To(Equal([]VTime{5}))
		Expect(ctrl.State()).To(Equal(Finished))
	})

	It("should raise the lifecycle notifications in order", func() {
		Expect(ctrl.Configurator().SetDuration(5)).To(Succeed())

		Expect(ctrl.Run()).To(Succeed())

		Expect(recorder.notifications).To(Equal([]notification{
			{HookPosStartSimulation, Info{Run: 1, Time: 0}},
			{HookPosStartRun, Info{Run: 1, Time: 0}},
			{HookPosCompleteThreePhases, Info{Run: 1, Time: 5}},
			{HookPosFinishRun, Info{Run: 1, Time: 5}},
			{HookPosFinishSimulation, Info{Run: 1, Time: 5}},
		}))
	})

	It("should restart the clock for every run", func() {
		Expect(ctrl.Configurator().SetDuration(10)).To(Succeed())
		Expect(ctrl.Configurator().SetNumberOfRuns(3)).To(Succeed())
		newPeriodicModel(ctrl, 4)

		Expect(ctrl.Run()).To(Succeed())

		Expect(recorder.at(HookPosStartRun)).To(Equal([]Info{
			{Run: 1, Time: 0}, {Run: 2, Time: 0}, {Run: 3, Time: 0},
		}))
		Expect(recorder.at(HookPosFinishRun)).To(Equal([]Info{
			{Run: 1, Time: 10}, {Run: 2, Time: 10}, {Run: 3, Time: 10},
		}))
		Expect(recorder.at(HookPosStartSimulation)).To(HaveLen(1))
		Expect(recorder.at(HookPosFinishSimulation)).To(HaveLen(1))
		Expect(recorder.times()).To(Equal([]VTime{
			4, 8, 10,
			4, 8, 10,
			4, 8, 10,
		}))
		Expect(ctrl.CurrentRun()).To(Equal(uint32(3)))
	})

	It("should keep time monotonic within a run", func() {
		Expect(ctrl.Configurator().SetDuration(50)).To(Succeed())
		Expect(ctrl.Configurator().SetNumberOfRuns(2)).To(Succeed())
		newPeriodicModel(ctrl, 7)
		newPeriodicModel(ctrl, 5)

		Expect(ctrl.Run()).To(Succeed())

		previous := Info{Run: 1}
		for _, info := range recorder.at(HookPosCompleteThreePhases) {
			if info.Run == previous.Run {
				Expect(info.Time).To(BeNumerically(">=", previous.Time))
			}
			Expect(info.Time).To(BeNumerically("<=", 50))
			previous = info
		}
	})

	It("should warm up at the start of every run", func() {
		Expect(ctrl.Configurator().SetDuration(10)).To(Succeed())
		Expect(ctrl.Configurator().SetNumberOfRuns(2)).To(Succeed())
		Expect(ctrl.Configurator().SetWarmUpTime(5)).To(Succeed())
		newPeriodicModel(ctrl, 3)

		warmUp := map[VTime]bool{}
		ctrl.AcceptHook(HookFunc(func(ctx HookCtx) {
			if ctx.Pos == HookPosCompleteThreePhases {
				warmUp[ctx.Item.(Info).Time] = ctrl.IsWarmUpTime()
			}
		}))

		Expect(ctrl.Run()).To(Succeed())

		Expect(recorder.at(HookPosStartWarmUpTime)).To(Equal([]Info{
			{Run: 1, Time: 0}, {Run: 2, Time: 0},
		}))
		Expect(recorder.at(HookPosFinishWarmUpTime)).To(Equal([]Info{
			{Run: 1, Time: 6}, {Run: 2, Time: 6},
		}))
		Expect(warmUp[3]).To(BeTrue())
		Expect(warmUp[9]).To(BeFalse())
	})

	It("should not warm up when the warm-up time is 0", func() {
		Expect(ctrl.Configurator().SetDuration(10)).To(Succeed())

		Expect(ctrl.Run()).To(Succeed())

		Expect(recorder.at(HookPosStartWarmUpTime)).To(BeEmpty())
		Expect(recorder.at(HookPosFinishWarmUpTime)).To(BeEmpty())
	})

	It("should run one tick per call in step mode", func() {
		Expect(ctrl.Configurator().SetDuration(10)).To(Succeed())
		Expect(ctrl.Configurator().SetStep(true)).To(Succeed())
		Expect(ctrl.Configurator().SetSpeed(0)).To(Succeed())
		newPeriodicModel(ctrl, 3)

		for _, expected := range []VTime{3, 6, 9} {
			Expect(ctrl.Run()).To(Succeed())
			Expect(ctrl.Time()).To(Equal(expected))
			Expect(ctrl.State()).To(Equal(Paused))
		}

		Expect(ctrl.Run()).To(Succeed())
		Expect(ctrl.Time()).To(Equal(VTime(10)))
		Expect(ctrl.State()).To(Equal(Finished))

		Expect(ctrl.Run()).To(Succeed())
		Expect(recorder.times()).To(Equal([]VTime{3, 6, 9, 10}))
		Expect(recorder.at(HookPosStartSimulation)).To(HaveLen(1))
	})

	It("should pause and resume", func() {
		Expect(ctrl.Configurator().SetDuration(10)).To(Succeed())
		newPeriodicModel(ctrl, 3)
		ctrl.AcceptHook(HookFunc(func(ctx HookCtx) {
			if ctx.Pos == HookPosCompleteThreePhases &&
				ctx.Item.(Info).Time == 6 {
				ctrl.Pause()
			}
		}))

		Expect(ctrl.Run()).To(Succeed())
		Expect(ctrl.State()).To(Equal(Paused))
		Expect(ctrl.Time()).To(Equal(VTime(6)))

		Expect(ctrl.Run()).To(Succeed())
		Expect(ctrl.State()).To(Equal(Finished))
		Expect(recorder.times()).To(Equal([]VTime{3, 6, 9, 10}))
		Expect(recorder.at(HookPosStartSimulation)).To(HaveLen(1))
		Expect(recorder.at(HookPosStartRun)).To(HaveLen(1))
	})

	It("should ignore pause unless running", func() {
		ctrl.Pause()
		Expect(ctrl.State()).To(Equal(Idle))

		Expect(ctrl.Run()).To(Succeed())
		ctrl.Pause()
		Expect(ctrl.State()).To(Equal(Finished))
	})

	It("should reset to idle", func() {
		Expect(ctrl.Configurator().SetDuration(10)).To(Succeed())
		Expect(ctrl.Configurator().SetNumberOfRuns(2)).To(Succeed())
		Expect(ctrl.Configurator().SetWarmUpTime(20)).To(Succeed())
		newPeriodicModel(ctrl, 3)
		Expect(ctrl.Run()).To(Succeed())

		ctrl.Reset()

		Expect(ctrl.State()).To(Equal(Idle))
		Expect(ctrl.Time()).To(Equal(VTime(0)))
		Expect(ctrl.CurrentRun()).To(Equal(uint32(1)))
		Expect(ctrl.IsWarmUpTime()).To(BeFalse())
		Expect(ctrl.Configurator().SetDuration(20)).To(Succeed())

		ctrl.Reset()
		Expect(ctrl.State()).To(Equal(Idle))
	})

	It("should reproduce a seeded simulation after reset", func() {
		Expect(ctrl.Configurator().SetDuration(100)).To(Succeed())
		Expect(ctrl.Configurator().SetNumberOfRuns(2)).To(Succeed())

		var rng *rand.Rand
		entity := NewEntity("random")
		var evt Event
		evt = NewEvent("random", func() {
			ctrl.Schedule(entity, evt, VTime(rng.Intn(10)+1))
		})
		Expect(ctrl.AddEntity(entity)).To(Succeed())
		ctrl.AcceptHook(HookFunc(func(ctx HookCtx) {
			if ctx.Pos == HookPosStartRun {
				ctrl.Schedule(entity, evt, VTime(rng.Intn(10)+1))
			}
		}))

		rng = rand.New(rand.NewSource(7))
		Expect(ctrl.Run()).To(Succeed())
		first := recorder.times()

		ctrl.Reset()
		recorder.notifications = nil
		rng = rand.New(rand.NewSource(7))
		Expect(ctrl.Run()).To(Succeed())

		Expect(recorder.times()).To(Equal(first))
		Expect(len(first)).To(BeNumerically(">", 20))
	})

	It("should pause and return the error when time does not advance", func() {
		Expect(ctrl.Configurator().SetDuration(10)).To(Succeed())
		entity := NewEntity("stuck")
		var evt Event
		evt = NewEvent("stuck", func() {
			ctrl.Schedule(entity, evt, 0)
		})
		ctrl.AcceptHook(HookFunc(func(ctx HookCtx) {
			if ctx.Pos == HookPosStartRun {
				ctrl.Schedule(entity, evt, 2)
			}
		}))

		err := ctrl.Run()

		Expect(errors.Is(err, ErrInfiniteLoop)).To(BeTrue())
		var loopErr *InfiniteLoopError
		Expect(errors.As(err, &loopErr)).To(BeTrue())
		Expect(loopErr.Time).To(Equal(VTime(2)))
		Expect(loopErr.Run).To(Equal(uint32(1)))
		Expect(ctrl.State()).To(Equal(Paused))
		Expect(ctrl.Time()).To(Equal(VTime(2)))
	})

	It("should reject configuration changes while running", func() {
		entity := NewEntity("late")
		var durationErr, entityErr, speedErr error
		ctrl.AcceptHook(HookFunc(func(ctx HookCtx) {
			if ctx.Pos == HookPosStartRun {
				durationErr = ctrl.Configurator().SetDuration(20)
				entityErr = ctrl.AddEntity(entity)
				speedErr = ctrl.Configurator().SetSpeed(80)
			}
		}))

		Expect(ctrl.Run()).To(Succeed())

		Expect(errors.Is(durationErr, ErrConfigurationCannotBeChanged)).
			To(BeTrue())
		Expect(errors.Is(entityErr, ErrConfigurationCannotBeChanged)).
			To(BeTrue())
		Expect(speedErr).NotTo(HaveOccurred())
		Expect(ctrl.Configurator().Duration()).To(Equal(DefaultDuration))
		Expect(ctrl.Configurator().Speed()).To(Equal(uint8(80)))
		Expect(ctrl.EntityAndResourceManager().Entities()).To(BeEmpty())
	})

	Context("when pacing", func() {
		var sleeps []time.Duration

		BeforeEach(func() {
			sleeps = nil
			ctrl.SetSleepFunc(func(d time.Duration) {
				sleeps = append(sleeps, d)
			})
			Expect(ctrl.Configurator().SetDuration(10)).To(Succeed())
			newPeriodicModel(ctrl, 3)
		})

		It("should sleep between ticks but not at the end of a run", func() {
			Expect(ctrl.Configurator().SetSpeed(50)).To(Succeed())
			Expect(ctrl.Configurator().SetDelayDuration(100)).To(Succeed())

			Expect(ctrl.Run()).To(Succeed())

			Expect(sleeps).To(Equal([]time.Duration{
				50 * time.Millisecond,
				50 * time.Millisecond,
				50 * time.Millisecond,
			}))
		})

		It("should sleep the full delay at speed 0", func() {
			Expect(ctrl.Configurator().SetSpeed(0)).To(Succeed())
			Expect(ctrl.Configurator().SetDelayDuration(40)).To(Succeed())

			Expect(ctrl.Run()).To(Succeed())

			Expect(sleeps).To(HaveLen(3))
			Expect(sleeps[0]).To(Equal(40 * time.Millisecond))
		})

		It("should not sleep in step mode", func() {
			Expect(ctrl.Configurator().SetSpeed(0)).To(Succeed())
			Expect(ctrl.Configurator().SetStep(true)).To(Succeed())

			Expect(ctrl.Run()).To(Succeed())

			Expect(sleeps).To(BeEmpty())
		})
	})

	Context("with a mocked technique", func() {
		var (
			mockCtrl  *gomock.Controller
			technique *MockTechnique
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			technique = NewMockTechnique(mockCtrl)
			ctrl = NewControllerWithTechnique(technique)
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should reset the technique between runs", func() {
			Expect(ctrl.Configurator().SetDuration(10)).To(Succeed())
			Expect(ctrl.Configurator().SetNumberOfRuns(2)).To(Succeed())
			activity := NewActivity("a", func() bool { return false })
			Expect(ctrl.AddActivity(activity)).To(Succeed())

			gomock.InOrder(
				technique.EXPECT().Initialise(),
				technique.EXPECT().
					Run(uint32(1), VTime(10), VTime(0), []Activity{activity}).
					Return(VTime(10), nil),
				technique.EXPECT().Reset(),
				technique.EXPECT().
					Run(uint32(2), VTime(10), VTime(0), []Activity{activity}).
					Return(VTime(10), nil),
			)

			Expect(ctrl.Run()).To(Succeed())
			Expect(ctrl.State()).To(Equal(Finished))
		})

		It("should delegate scheduling", func() {
			entity := NewEntity("e")
			evt := NewEvent("evt", func() {})

			technique.EXPECT().Schedule(entity, evt, VTime(4))

			ctrl.Schedule(entity, evt, 4)
		})
	})
})
