package phy

import (
	"math/rand"

	"github.com/Anvesh-Bunga/MTP-MTECH/sim"
)

// Builder can build link components.
type Builder struct {
	engine           sim.Engine
	channel          ChannelAccess
	capacities       Capacities
	slotFreq         sim.Freq
	arrivalRate      float64
	meanPacketBits   float64
	initialBitsPerRb float64
	maxScheduledUes  int
	horizon          sim.VTimeInSec
	seed             int64
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		slotFreq:         2 * sim.KHz,
		arrivalRate:      200,
		meanPacketBits:   4000,
		initialBitsPerRb: 20.0,
		maxScheduledUes:  16,
		seed:             1,
	}
}

// WithEngine sets the engine that drives the component.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithChannelAccess sets the contention side transmissions are cleared
// through.
func (b Builder) WithChannelAccess(c ChannelAccess) Builder {
	b.channel = c
	return b
}

// WithCapacities sets the source of per-sub-band resource block counts.
func (b Builder) WithCapacities(c Capacities) Builder {
	b.capacities = c
	return b
}

// WithSlotFreq sets the slot clock. The default of 2 kHz gives 0.5 ms
// slots.
func (b Builder) WithSlotFreq(freq sim.Freq) Builder {
	b.slotFreq = freq
	return b
}

// WithArrivalRate sets the mean packet arrivals per user per second.
func (b Builder) WithArrivalRate(rate float64) Builder {
	b.arrivalRate = rate
	return b
}

// WithMeanPacketBits sets the mean packet size in bits.
func (b Builder) WithMeanPacketBits(bits float64) Builder {
	b.meanPacketBits = bits
	return b
}

// WithInitialBitsPerRb sets the link quality every user starts from.
func (b Builder) WithInitialBitsPerRb(bits float64) Builder {
	b.initialBitsPerRb = bits
	return b
}

// WithMaxScheduledUes sets how many users a sub-band serves per slot.
func (b Builder) WithMaxScheduledUes(n int) Builder {
	b.maxScheduledUes = n
	return b
}

// WithHorizon stops the slot loop past the given time, letting the
// event queue drain at the end of a run. A zero horizon keeps it
// ticking forever.
func (b Builder) WithHorizon(t sim.VTimeInSec) Builder {
	b.horizon = t
	return b
}

// WithSeed sets the seed of the random source that draws arrivals,
// packet sizes, and link quality walks.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// Build creates a link component.
func (b Builder) Build(name string) *Comp {
	b.parametersMustBeValid()

	c := &Comp{
		channel:          b.channel,
		capacities:       b.capacities,
		arrivalRate:      b.arrivalRate,
		meanPacketBits:   b.meanPacketBits,
		initialBitsPerRb: b.initialBitsPerRb,
		maxScheduledUes:  b.maxScheduledUes,
		horizon:          b.horizon,
		rng:              rand.New(rand.NewSource(b.seed)),
		ues:              make(map[int]*ueState),
	}
	c.TickingComponent =
		sim.NewTickingComponent(name, b.engine, b.slotFreq, c)

	return c
}

func (b Builder) parametersMustBeValid() {
	if b.engine == nil {
		panic("engine is not given")
	}

	if b.channel == nil {
		panic("channel access is not given")
	}

	if b.capacities == nil {
		panic("capacities source is not given")
	}

	if b.slotFreq == 0 {
		panic("slot freq must be given")
	}

	if b.arrivalRate <= 0 {
		panic("arrival rate must be positive")
	}

	if b.meanPacketBits <= 0 {
		panic("mean packet bits must be positive")
	}

	if b.maxScheduledUes < 1 {
		panic("max scheduled ues must be at least 1")
	}
}
