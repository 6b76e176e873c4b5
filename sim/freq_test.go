package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should get period", func() {
		var f = 1 * GHz
		Expect(f.Period()).To(BeNumerically("==", 1e-9))
	})

	It("should get the slot period of a 2 kHz slot clock", func() {
		var f = 2 * KHz
		Expect(f.Period()).To(BeNumerically("==", 0.0005))
	})

	It("should get this tick", func() {
		var f = 1 * Hz
		Expect(f.ThisTick(1)).To(BeNumerically("~", 1, 1e-12))
	})

	It("should get the next tick", func() {
		var f = 1 * GHz
		Expect(f.NextTick(102.000000001)).To(
			BeNumerically("~", 102.000000002, 1e-12))
	})

	It("should get the next tick, if currTime is not on a tick", func() {
		var f = 1 * GHz
		Expect(f.NextTick(102.0000000011)).To(
			BeNumerically("~", 102.000000002, 1e-12))
	})

	It("should get the next slot boundary", func() {
		var f = 2 * KHz
		Expect(f.NextTick(0.00125)).To(BeNumerically("~", 0.0015, 1e-12))
	})

	It("should get the n cycles later", func() {
		var f = 1 * GHz
		Expect(f.NCyclesLater(12, 102.000000001)).To(
			BeNumerically("~", 102.000000013, 1e-12))
	})

	It("should count slots elapsed since time zero", func() {
		var f = 2 * KHz
		Expect(f.Cycle(0.25)).To(Equal(uint64(500)))
	})

	It("should get the n slots later time", func() {
		var f = 2 * KHz
		Expect(f.NCyclesLater(5, 0.001)).To(
			BeNumerically("~", 0.0035, 1e-12))
	})

	It("should get the no-earlier-than time, on tick", func() {
		var f = 1 * GHz
		Expect(f.NoEarlierThan(102.00)).To(BeNumerically("~", 102.00, 1e-12))
	})

	It("should get the no-earlier-than time, off tick", func() {
		var f = 1 * GHz
		Expect(f.NoEarlierThan(102.0000000011)).To(
			BeNumerically("~", 102.000000002, 1e-12))
	})
})
