package sched

import (
	"math/rand"

	"github.com/Anvesh-Bunga/MTP-MTECH/datarecording"
	"github.com/Anvesh-Bunga/MTP-MTECH/sim"
)

// Builder can build schedulers.
type Builder struct {
	engine          sim.Engine
	accessStats     AccessStats
	registry        Registry
	linkStats       LinkStats
	env             Env
	recorder        datarecording.DataRecorder
	algorithm       Algorithm
	slotFreq        sim.Freq
	windowSlots     int
	maxScheduledUes int
	epsilon         float64
	epsilonMin      float64
	epsilonDecay    float64
	horizon         sim.VTimeInSec
	seed            int64
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		algorithm:       RLA,
		slotFreq:        2 * sim.KHz,
		windowSlots:     500,
		maxScheduledUes: 16,
		epsilon:         1.0,
		epsilonMin:      0.01,
		epsilonDecay:    0.995,
		seed:            1,
	}
}

// WithEngine sets the event engine the scheduler schedules windows on.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithAccessStats sets the contention statistics source.
func (b Builder) WithAccessStats(s AccessStats) Builder {
	b.accessStats = s
	return b
}

// WithRegistry sets the membership registry the scheduler reads and
// applies switches through.
func (b Builder) WithRegistry(r Registry) Builder {
	b.registry = r
	return b
}

// WithLinkStats sets the link statistics source.
func (b Builder) WithLinkStats(l LinkStats) Builder {
	b.linkStats = l
	return b
}

// WithEnv sets the learned policy environment. It is required when the
// algorithm is RLA.
func (b Builder) WithEnv(e Env) Builder {
	b.env = e
	return b
}

// WithRecorder sets the data recorder the per-window metrics are
// written to. Without a recorder nothing is written.
func (b Builder) WithRecorder(r datarecording.DataRecorder) Builder {
	b.recorder = r
	return b
}

// WithAlgorithm sets the assignment policy.
func (b Builder) WithAlgorithm(a Algorithm) Builder {
	b.algorithm = a
	return b
}

// WithSlotFreq sets the slot clock frequency.
func (b Builder) WithSlotFreq(f sim.Freq) Builder {
	b.slotFreq = f
	return b
}

// WithWindowSlots sets the decision window length in slots.
func (b Builder) WithWindowSlots(n int) Builder {
	b.windowSlots = n
	return b
}

// WithMaxScheduledUes sets the largest user count a single bandwidth
// part is expected to schedule in one window.
func (b Builder) WithMaxScheduledUes(n int) Builder {
	b.maxScheduledUes = n
	return b
}

// WithEpsilon sets the initial exploration rate.
func (b Builder) WithEpsilon(e float64) Builder {
	b.epsilon = e
	return b
}

// WithEpsilonMin sets the exploration rate floor.
func (b Builder) WithEpsilonMin(e float64) Builder {
	b.epsilonMin = e
	return b
}

// WithEpsilonDecay sets the per-window exploration decay factor.
func (b Builder) WithEpsilonDecay(d float64) Builder {
	b.epsilonDecay = d
	return b
}

// WithHorizon stops the scheduler from rescheduling decision windows
// past the given time, letting the event queue drain at the end of a
// run. A zero horizon keeps the windows running forever.
func (b Builder) WithHorizon(t sim.VTimeInSec) Builder {
	b.horizon = t
	return b
}

// WithSeed sets the seed of the exploration random source.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// Build creates a scheduler with the given name.
func (b Builder) Build(name string) *Scheduler {
	b.parametersMustBeValid()

	s := &Scheduler{
		ComponentBase:   sim.NewComponentBase(name),
		engine:          b.engine,
		accessStats:     b.accessStats,
		registry:        b.registry,
		linkStats:       b.linkStats,
		env:             b.env,
		recorder:        b.recorder,
		algorithm:       b.algorithm,
		windowDuration:  b.slotFreq.Period() * sim.VTimeInSec(b.windowSlots),
		maxScheduledUes: b.maxScheduledUes,
		epsilon:         b.epsilon,
		epsilonMin:      b.epsilonMin,
		epsilonDecay:    b.epsilonDecay,
		horizon:         b.horizon,
		rng:             rand.New(rand.NewSource(b.seed)),
		prevFailures:    make(map[int]uint64),
	}

	switch b.algorithm {
	case LCA:
		s.policy = &lcaPolicy{s: s}
	case RLA:
		s.policy = &rlaPolicy{s: s}
	}

	if s.recorder != nil {
		s.recorder.CreateTable(windowMetricsTable, windowMetricsEntry{})
		s.recorder.CreateTable(bwpWindowMetricsTable, bwpWindowMetricsEntry{})
	}

	return s
}

func (b Builder) parametersMustBeValid() {
	if b.engine == nil {
		panic("engine is not given")
	}

	if b.accessStats == nil {
		panic("access stats source is not given")
	}

	if b.registry == nil {
		panic("registry is not given")
	}

	if b.linkStats == nil {
		panic("link stats source is not given")
	}

	if b.algorithm == RLA && b.env == nil {
		panic("the rla algorithm requires an environment")
	}

	if b.algorithm != LCA && b.algorithm != RLA {
		panic("unknown algorithm")
	}

	if b.slotFreq == 0 {
		panic("slot frequency must not be 0")
	}

	if b.windowSlots < 1 {
		panic("window must be at least 1 slot")
	}

	if b.maxScheduledUes < 1 {
		panic("max scheduled ues must be at least 1")
	}

	if b.epsilonDecay <= 0 || b.epsilonDecay > 1 {
		panic("epsilon decay must be in (0, 1]")
	}
}
