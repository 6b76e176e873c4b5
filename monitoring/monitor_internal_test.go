package monitoring

import (
	"reflect"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Anvesh-Bunga/MTP-MTECH/sim"
)

type sampleStruct struct {
	field1 int
	field2 string
	field3 *sampleStruct
	field4 []sampleStruct
}

type sampleComponent struct {
	*sim.ComponentBase
}

func (c *sampleComponent) Handle(_ sim.Event) error {
	return nil
}

func newSampleComponent(name string) *sampleComponent {
	return &sampleComponent{
		ComponentBase: sim.NewComponentBase(name),
	}
}

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
	)

	BeforeEach(func() {
		m = &Monitor{}
	})

	It("should register components", func() {
		m.RegisterComponent(newSampleComponent("Comp1"))
		m.RegisterComponent(newSampleComponent("Comp2"))

		Expect(m.components).To(HaveLen(2))
	})

	It("should create and complete progress bars", func() {
		bar := m.CreateProgressBar("windows", 100)
		bar.IncrementFinished(3)
		bar.SetFinished(42)

		Expect(m.progressBars).To(HaveLen(1))
		Expect(bar.Finished).To(Equal(uint64(42)))

		m.CompleteProgressBar(bar)

		Expect(m.progressBars).To(BeEmpty())
	})

	It("should sort queue levels by size", func() {
		sizes := map[int]int{4: 2, 9: 7, 7: 2}

		levels := sortAndSelectQueues(sizes, "size", 0, 0)

		Expect(levels).To(Equal([]queueLevel{
			{UeID: 9, Size: 7},
			{UeID: 4, Size: 2},
			{UeID: 7, Size: 2},
		}))
	})

	It("should sort queue levels by user id", func() {
		sizes := map[int]int{9: 7, 4: 2}

		levels := sortAndSelectQueues(sizes, "ue", 0, 0)

		Expect(levels).To(Equal([]queueLevel{
			{UeID: 4, Size: 2},
			{UeID: 9, Size: 7},
		}))
	})

	It("should page queue levels", func() {
		sizes := map[int]int{1: 1, 2: 2, 3: 3, 4: 4}

		levels := sortAndSelectQueues(sizes, "ue", 2, 1)

		Expect(levels).To(Equal([]queueLevel{
			{UeID: 2, Size: 2},
			{UeID: 3, Size: 3},
		}))
	})

	It("should clamp the queue page to the available levels", func() {
		sizes := map[int]int{1: 1}

		levels := sortAndSelectQueues(sizes, "ue", 5, 3)

		Expect(levels).To(BeEmpty())
	})

	It("should walk int fields", func() {
		s := &sampleStruct{
			field1: 1,
		}

		elem, err := m.walkFields(s, "field1")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Int))
		Expect(elem.Type().Name()).To(Equal("int"))
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should walk string fields", func() {
		s := &sampleStruct{
			field2: "abc",
		}

		elem, err := m.walkFields(s, "field2")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.String))
		Expect(elem.Type().Name()).To(Equal("string"))
		Expect(elem.String()).To(Equal("abc"))
	})

	It("should walk struct", func() {
		s := &sampleStruct{
			field3: &sampleStruct{},
		}

		elem, err := m.walkFields(s, "field3")

		Expect(err).To(BeNil())

		Expect(elem.Kind()).To(Equal(reflect.Struct))
		Expect(elem.Type().Name()).To(Equal("sampleStruct"))
	})

	It("should walk recursively", func() {
		s := &sampleStruct{
			field3: &sampleStruct{
				field1: 1,
			},
		}

		elem, err := m.walkFields(s, "field3.field1")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Int))
		Expect(elem.Type().Name()).To(Equal("int"))
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should walk slice recursively", func() {
		s := &sampleStruct{
			field4: []sampleStruct{{
				field4: []sampleStruct{
					{field1: 1},
				},
			}, {}},
		}

		elem, err := m.walkFields(s, "field4.0.field4.0.field1")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Int))
		Expect(elem.Type().Name()).To(Equal("int"))
		Expect(elem.Int()).To(Equal(int64(1)))
	})
})
