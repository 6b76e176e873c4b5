package simulation

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/Anvesh-Bunga/MTP-MTECH/datarecording"
)

var _ = Describe("Simulation", func() {
	var (
		mockCtrl   *gomock.Controller
		simulation *Simulation
		comp       *MockComponent
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		simulation = MakeBuilder().
			WithoutMonitoring().
			Build()

		comp = NewMockComponent(mockCtrl)
		comp.EXPECT().Name().Return("comp").AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()

		simulation.Terminate()

		os.Remove("nrusim_" + simulation.ID() + ".sqlite3")
	})

	It("should have an engine and a recorder", func() {
		Expect(simulation.GetEngine()).ToNot(BeNil())
		Expect(simulation.GetDataRecorder()).ToNot(BeNil())
		Expect(simulation.GetMonitor()).To(BeNil())
	})

	It("should register a component", func() {
		simulation.RegisterComponent(comp)

		Expect(simulation.GetComponentByName("comp")).To(Equal(comp))
	})

	It("should reject a duplicated component name", func() {
		simulation.RegisterComponent(comp)

		other := NewMockComponent(mockCtrl)
		other.EXPECT().Name().Return("comp").AnyTimes()

		Expect(func() {
			simulation.RegisterComponent(other)
		}).To(Panic())
	})

	It("should return all registered components", func() {
		simulation.RegisterComponent(comp)

		comps := simulation.Components()
		Expect(comps).To(HaveLen(1))
		Expect(comps[0]).To(Equal(comp))
	})

	It("should return nil for an unknown component name", func() {
		Expect(simulation.GetComponentByName("nope")).To(BeNil())
	})

	Context("Builder with custom output file", func() {
		var customSim *Simulation

		AfterEach(func() {
			if customSim != nil {
				customSim.Terminate()
				os.Remove("test_custom_output.sqlite3")
				customSim = nil
			}
		})

		It("should allow custom output file to be set", func() {
			builder := MakeBuilder().
				WithoutMonitoring().
				WithOutputFileName("test_custom_output")
			customSim = builder.Build()

			Expect(customSim).ToNot(BeNil())
			Expect(customSim.GetDataRecorder()).ToNot(BeNil())
		})
	})

	Context("Builder without data recording", func() {
		It("should hand out a drop-everything recorder", func() {
			s := MakeBuilder().
				WithoutMonitoring().
				WithoutDataRecording().
				Build()
			defer s.Terminate()

			Expect(s.GetDataRecorder()).
				To(Equal(datarecording.NullRecorder{}))
		})

		It("should reject an output file", func() {
			Expect(func() {
				MakeBuilder().
					WithoutMonitoring().
					WithoutDataRecording().
					WithOutputFileName("out").
					Build()
			}).To(Panic())
		})
	})

	Context("Builder without monitoring", func() {
		It("should reject a monitor port", func() {
			Expect(func() {
				MakeBuilder().
					WithoutMonitoring().
					WithMonitorPort(8080).
					Build()
			}).To(Panic())
		})
	})
})
