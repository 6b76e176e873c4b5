package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("Ticking Component", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *MockEngine
		ticker   *MockTicker
		tc       *TickingComponent
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewMockEngine()
		ticker = NewMockTicker(mockCtrl)
		tc = NewTickingComponent("TC", engine, 1, ticker)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should tick when the ticker makes progress in a tick", func() {
		engine.Now = 10
		ticker.EXPECT().Tick().Return(true)

		_ = tc.Handle(MakeTickEvent(tc, 10))

		Expect(engine.ScheduledEvents).To(HaveLen(1))
		Expect(engine.ScheduledEvents[0].Time()).To(Equal(VTimeInSec(11)))
	})

	It("should not tick if there is another tick scheduled in the future", func() {
		engine.Now = 10
		ticker.EXPECT().Tick().Return(true).Times(2)

		_ = tc.Handle(MakeTickEvent(tc, 10))
		_ = tc.Handle(MakeTickEvent(tc, 10))

		Expect(engine.ScheduledEvents).To(HaveLen(1))
	})

	It("should stop ticking if no progress is made", func() {
		engine.Now = 10
		ticker.EXPECT().Tick().Return(false)

		_ = tc.Handle(MakeTickEvent(tc, 10))

		Expect(engine.ScheduledEvents).To(BeEmpty())
	})

	It("should schedule the first tick at the current tick time", func() {
		engine.Now = 10
		tc.TickNow()

		Expect(engine.ScheduledEvents).To(HaveLen(1))
		Expect(engine.ScheduledEvents[0].Time()).To(Equal(VTimeInSec(10)))
	})
})
