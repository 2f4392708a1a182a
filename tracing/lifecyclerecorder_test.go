package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/threephase/sim"
)

var _ = Describe("LifecycleRecorder", func() {
	var (
		mockCtrl     *gomock.Controller
		dataRecorder *MockDataRecorder
		controller   *sim.Controller
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		dataRecorder = NewMockDataRecorder(mockCtrl)
		dataRecorder.EXPECT().
			CreateTable("notifications", notificationEntry{})

		controller = sim.NewController()
		Expect(controller.Configurator().SetDuration(10)).To(Succeed())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record every notification but the ticks", func() {
		controller.AcceptHook(NewLifecycleRecorder(dataRecorder))

		var positions []string
		dataRecorder.EXPECT().
			InsertData("notifications", gomock.Any()).
			Do(func(_ string, entry any) {
				e := entry.(notificationEntry)
				Expect(e.Run).To(Equal(uint32(1)))
				positions = append(positions, e.Position)
			}).
			Times(4)
		dataRecorder.EXPECT().Flush()

		Expect(controller.Run()).To(Succeed())

		Expect(positions).To(Equal([]string{
			"StartSimulation", "StartRun", "FinishRun", "FinishSimulation",
		}))
	})

	It("should record the ticks when asked", func() {
		controller.AcceptHook(NewLifecycleRecorder(dataRecorder).WithTicks())

		dataRecorder.EXPECT().
			InsertData("notifications", gomock.Any()).
			Times(5)
		dataRecorder.EXPECT().Flush()

		Expect(controller.Run()).To(Succeed())
	})
})
