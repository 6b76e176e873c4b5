package lbt

import (
	"math/rand"

	"github.com/Anvesh-Bunga/MTP-MTECH/sim"
)

// Builder can build listen-before-talk components.
type Builder struct {
	engine       sim.Engine
	slotFreq     sim.Freq
	cwMin        int
	cwMax        int
	iccaDuration int
	mcotDuration int
	horizon      sim.VTimeInSec
	seed         int64
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		slotFreq:     2 * sim.KHz,
		cwMin:        8,
		cwMax:        128,
		iccaDuration: 1,
		mcotDuration: 5,
		seed:         1,
	}
}

// WithEngine sets the engine that drives the component.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithSlotFreq sets the slot clock. The default of 2 kHz gives 0.5 ms
// slots.
func (b Builder) WithSlotFreq(freq sim.Freq) Builder {
	b.slotFreq = freq
	return b
}

// WithCwMin sets the minimum contention window.
func (b Builder) WithCwMin(cwMin int) Builder {
	b.cwMin = cwMin
	return b
}

// WithCwMax sets the maximum contention window.
func (b Builder) WithCwMax(cwMax int) Builder {
	b.cwMax = cwMax
	return b
}

// WithIccaDuration sets the immediate-check duration, in slots.
func (b Builder) WithIccaDuration(slots int) Builder {
	b.iccaDuration = slots
	return b
}

// WithMcotDuration sets the maximum channel occupancy time, in slots.
func (b Builder) WithMcotDuration(slots int) Builder {
	b.mcotDuration = slots
	return b
}

// WithSeed sets the seed of the random source that draws backoffs,
// interference gaps, and busy durations.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithHorizon stops the interference processes from rescheduling past
// the given time, letting the event queue drain at the end of a run. A
// zero horizon keeps them running forever.
func (b Builder) WithHorizon(t sim.VTimeInSec) Builder {
	b.horizon = t
	return b
}

// Build creates a listen-before-talk component.
func (b Builder) Build(name string) *Comp {
	b.parametersMustBeValid()

	c := &Comp{
		ComponentBase: sim.NewComponentBase(name),
		engine:        b.engine,
		slotPeriod:    b.slotFreq.Period(),
		cwMin:         b.cwMin,
		cwMax:         b.cwMax,
		iccaDuration:  b.iccaDuration,
		mcotDuration:  b.mcotDuration,
		horizon:       b.horizon,
		rng:           rand.New(rand.NewSource(b.seed)),
		bwps:          make(map[int]*bwpState),
	}

	return c
}

func (b Builder) parametersMustBeValid() {
	if b.engine == nil {
		panic("engine is not given")
	}

	if b.slotFreq == 0 {
		panic("slot freq must be given")
	}

	if b.cwMin < 1 {
		panic("cw min must be at least 1")
	}

	if b.cwMax < b.cwMin {
		panic("cw max must not be smaller than cw min")
	}

	if b.mcotDuration < 1 {
		panic("mcot duration must be at least 1 slot")
	}
}
