package rlenv

import (
	"math/rand"

	"github.com/Anvesh-Bunga/MTP-MTECH/datarecording"
	"github.com/Anvesh-Bunga/MTP-MTECH/sim"
)

// Builder can build policy environments.
type Builder struct {
	oracle        Oracle
	recorder      datarecording.DataRecorder
	timeTeller    sim.TimeTeller
	alpha         float64
	beta          float64
	maxThroughput float64
	episodeSteps  int
	seed          int64
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		alpha:         1.0,
		beta:          1.0,
		maxThroughput: 1000.0,
		episodeSteps:  1000,
		seed:          1,
	}
}

// WithOracle sets the policy oracle that answers exploit queries.
func (b Builder) WithOracle(o Oracle) Builder {
	b.oracle = o
	return b
}

// WithRecorder sets the data recorder the step rows are written to.
// Without a recorder nothing is written.
func (b Builder) WithRecorder(r datarecording.DataRecorder) Builder {
	b.recorder = r
	return b
}

// WithTimeTeller sets the clock the step rows are stamped with.
func (b Builder) WithTimeTeller(t sim.TimeTeller) Builder {
	b.timeTeller = t
	return b
}

// WithAlpha sets the head-of-line delay weight of the reward.
func (b Builder) WithAlpha(a float64) Builder {
	b.alpha = a
	return b
}

// WithBeta sets the throughput shortfall weight of the reward.
func (b Builder) WithBeta(beta float64) Builder {
	b.beta = beta
	return b
}

// WithMaxThroughput sets the throughput ceiling of the reward.
func (b Builder) WithMaxThroughput(t float64) Builder {
	b.maxThroughput = t
	return b
}

// WithEpisodeSteps sets the number of steps after which an episode
// terminates.
func (b Builder) WithEpisodeSteps(n int) Builder {
	b.episodeSteps = n
	return b
}

// WithSeed sets the seed of the action sampling random source.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// Build creates an environment with the given name.
func (b Builder) Build(name string) *Env {
	b.parametersMustBeValid()

	e := &Env{
		name:          name,
		oracle:        b.oracle,
		recorder:      b.recorder,
		timeTeller:    b.timeTeller,
		rng:           rand.New(rand.NewSource(b.seed)),
		alpha:         b.alpha,
		beta:          b.beta,
		maxThroughput: b.maxThroughput,
		episodeSteps:  b.episodeSteps,
	}

	if e.recorder != nil {
		e.recorder.CreateTable(stepTable, stepEntry{})
	}

	return e
}

func (b Builder) parametersMustBeValid() {
	if b.oracle == nil {
		panic("oracle is not given")
	}

	if b.episodeSteps < 1 {
		panic("episode must be at least 1 step")
	}
}
