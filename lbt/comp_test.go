package lbt

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Anvesh-Bunga/MTP-MTECH/sim"
)

var _ = Describe("Comp", func() {
	var (
		engine *sim.MockEngine
		comp   *Comp
	)

	BeforeEach(func() {
		engine = sim.NewMockEngine()
		comp = MakeBuilder().
			WithEngine(engine).
			Build("LBT")
	})

	It("should return initial defaults after registering a sub-band", func() {
		comp.AddBwp(0, 100.0)

		Expect(comp.FailureRate(0)).To(Equal(0.0))
		Expect(comp.WifiOccupancy(0)).To(Equal(0.0))
		Expect(comp.ContentionWindow(0)).To(Equal(8))
		Expect(comp.Attempts(0)).To(Equal(uint64(0)))
	})

	It("should return safe defaults for unknown sub-bands", func() {
		Expect(comp.FailureRate(9)).To(Equal(0.0))
		Expect(comp.WifiOccupancy(9)).To(Equal(0.0))
		Expect(comp.ContentionWindow(9)).To(Equal(8))
	})

	It("should panic when registering the same sub-band twice", func() {
		comp.AddBwp(0, 100.0)

		Expect(func() {
			comp.AddBwp(0, 50.0)
		}).To(Panic())
	})

	It("should panic on access to an unregistered sub-band", func() {
		Expect(func() {
			comp.ChannelAccessRequest(3)
		}).To(Panic())
	})

	It("should schedule the first interference arrival", func() {
		comp.AddBwp(0, 100.0)

		Expect(engine.ScheduledEvents).To(HaveLen(1))
		Expect(engine.ScheduledEvents[0].Time()).To(
			BeNumerically(">", 0.0))
	})

	It("should not start an interference process for a zero rate", func() {
		comp.AddBwp(0, 0.0)

		Expect(engine.ScheduledEvents).To(BeEmpty())
	})

	It("should deny and count one failure per request while busy", func() {
		comp.AddBwp(0, 100.0)

		evt := engine.PopEarliest()
		_ = comp.Handle(evt)

		Expect(comp.ChannelAccessRequest(0)).To(BeFalse())
		Expect(comp.Attempts(0)).To(Equal(uint64(1)))
		Expect(comp.Failures(0)).To(Equal(uint64(1)))
		Expect(comp.FailureRate(0)).To(BeNumerically("~", 0.1, 1e-12))
		Expect(comp.ContentionWindow(0)).To(Equal(8))

		Expect(comp.ChannelAccessRequest(0)).To(BeFalse())
		Expect(comp.Failures(0)).To(Equal(uint64(2)))
	})

	It("should update occupancy and reschedule on interference", func() {
		comp.AddBwp(0, 100.0)

		evt := engine.PopEarliest()
		_ = comp.Handle(evt)

		Expect(comp.WifiOccupancy(0)).To(BeNumerically(">", 0.0))
		Expect(engine.ScheduledEvents).To(HaveLen(1))
		Expect(engine.ScheduledEvents[0].Time()).To(
			BeNumerically(">", float64(engine.Now)))
	})

	It("should ignore interference for a removed sub-band", func() {
		comp.AddBwp(0, 100.0)
		comp.RemoveBwp(0)

		evt := engine.PopEarliest()
		_ = comp.Handle(evt)

		Expect(engine.ScheduledEvents).To(BeEmpty())
		Expect(comp.WifiOccupancy(0)).To(Equal(0.0))
	})

	It("should stop rescheduling interference past the horizon", func() {
		comp = MakeBuilder().
			WithEngine(engine).
			WithHorizon(0.05).
			Build("LBT")
		comp.AddBwp(0, 100.0)

		for len(engine.ScheduledEvents) > 0 {
			_ = comp.Handle(engine.PopEarliest())
		}

		Expect(engine.Now).To(BeNumerically("<=", 0.05))
	})

	Context("with a single-slot contention window", func() {
		BeforeEach(func() {
			comp = MakeBuilder().
				WithEngine(engine).
				WithCwMin(1).
				WithCwMax(4).
				Build("LBT")
			comp.AddBwp(0, 0.0)
		})

		It("should grant when the backoff completes by the busy-until time",
			func() {
				Expect(comp.ChannelAccessRequest(0)).To(BeTrue())
				Expect(comp.Failures(0)).To(Equal(uint64(0)))
				Expect(comp.ContentionWindow(0)).To(Equal(1))
			})

		It("should deny and double the window once the busy time is behind",
			func() {
				engine.Now = 5.0

				Expect(comp.ChannelAccessRequest(0)).To(BeFalse())
				Expect(comp.ContentionWindow(0)).To(Equal(2))

				Expect(comp.ChannelAccessRequest(0)).To(BeFalse())
				Expect(comp.ContentionWindow(0)).To(Equal(4))

				Expect(comp.ChannelAccessRequest(0)).To(BeFalse())
				Expect(comp.ContentionWindow(0)).To(Equal(4))
			})
	})

	It("should smooth the failure rate over cumulative counters", func() {
		comp.AddBwp(0, 100.0)
		engine.Now = 1.0

		numDenials := 5
		for i := 0; i < numDenials; i++ {
			Expect(comp.ChannelAccessRequest(0)).To(BeFalse())
		}

		expected := 1.0 - math.Pow(0.9, float64(numDenials))
		Expect(comp.FailureRate(0)).To(BeNumerically("~", expected, 1e-12))
		Expect(comp.FailureRate(0)).To(BeNumerically("<=", 1.0))
	})

	It("should invoke access hooks with attempt details", func() {
		granted := make([]AccessDetail, 0)
		denied := make([]AccessDetail, 0)
		comp.AcceptHook(hookFunc(func(ctx sim.HookCtx) {
			detail, ok := ctx.Item.(AccessDetail)
			if !ok {
				return
			}
			switch ctx.Pos {
			case HookPosAccessGranted:
				granted = append(granted, detail)
			case HookPosAccessDenied:
				denied = append(denied, detail)
			}
		}))

		comp.AddBwp(0, 100.0)
		engine.Now = 1.0
		comp.ChannelAccessRequest(0)

		Expect(denied).To(HaveLen(1))
		Expect(denied[0].BwpID).To(Equal(0))
		Expect(denied[0].Phase).To(Equal(PhaseEcca))
		Expect(granted).To(BeEmpty())
	})
})

type hookFunc func(ctx sim.HookCtx)

func (f hookFunc) Func(ctx sim.HookCtx) {
	f(ctx)
}
