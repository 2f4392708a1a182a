package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("HookableBase", func() {
	var (
		mockCtrl *gomock.Controller
		domain   *HookableBase
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		domain = NewHookableBase()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should invoke the hooks in registration order", func() {
		first := NewMockHook(mockCtrl)
		second := NewMockHook(mockCtrl)
		domain.AcceptHook(first)
		domain.AcceptHook(second)

		ctx := HookCtx{Pos: HookPosStartRun, Item: Info{Run: 2, Time: 5}}
		gomock.InOrder(
			first.EXPECT().Func(ctx),
			second.EXPECT().Func(ctx),
		)

		domain.InvokeHook(ctx)

		Expect(domain.NumHooks()).To(Equal(2))
		Expect(domain.Hooks()).To(HaveExactElements(first, second))
	})

	It("should accept plain functions", func() {
		var positions []string
		domain.AcceptHook(HookFunc(func(ctx HookCtx) {
			positions = append(positions, ctx.Pos.Name)
		}))

		domain.InvokeHook(HookCtx{Pos: HookPosSchedule})
		domain.InvokeHook(HookCtx{Pos: HookPosBeforeEvent})

		Expect(positions).To(Equal([]string{"Schedule", "BeforeEvent"}))
	})
})

var _ = Describe("IDGenerator", func() {
	It("should generate distinct IDs", func() {
		g := GetIDGenerator()

		a := g.Generate()
		b := g.Generate()

		Expect(a).NotTo(BeEmpty())
		Expect(a).NotTo(Equal(b))
		Expect(func() { UseXIDGenerator() }).To(Panic())
	})
})
