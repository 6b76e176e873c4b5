// Package rlenv implements the observation, action, and reward protocol
// between the decision engine and a policy oracle. The environment turns
// window snapshots into fixed-length observation vectors, maps discrete
// actions back to per-user assignments, and keeps episode accounting.
package rlenv

import (
	"math/rand"

	"github.com/Anvesh-Bunga/MTP-MTECH/datarecording"
	"github.com/Anvesh-Bunga/MTP-MTECH/sched"
	"github.com/Anvesh-Bunga/MTP-MTECH/sim"
)

// Oracle maps an observation vector to a discrete sub-band action.
type Oracle interface {
	Act(obs []float64) int
}

// Info is the per-step diagnostic record of the environment.
type Info struct {
	Episode     int
	Step        int
	TotalReward float64
}

type stepEntry struct {
	Time        float64
	Episode     int
	Step        int
	Action      int
	Reward      float64
	TotalReward float64
}

const stepTable = "rl_steps"

// Env is the policy environment. The scheduler pushes one snapshot per
// decision window and reads one action back.
type Env struct {
	name       string
	oracle     Oracle
	recorder   datarecording.DataRecorder
	timeTeller sim.TimeTeller
	rng        *rand.Rand

	alpha         float64
	beta          float64
	maxThroughput float64
	episodeSteps  int

	snap        sched.Snapshot
	lastAction  int
	episode     int
	step        int
	totalReward float64
	done        bool
}

// Name returns the name of the environment.
func (e *Env) Name() string {
	return e.name
}

// UpdateSnapshot replaces the window snapshot the next observation,
// assignment, and reward are derived from.
func (e *Env) UpdateSnapshot(snap sched.Snapshot) {
	e.snap = snap
}

// Observation flattens the current snapshot into the observation
// vector. Every user contributes its five link metrics followed by a
// one-hot encoding of its current sub-band. The per-sub-band occupancy,
// failure rate, and contention window close the vector.
func (e *Env) Observation() []float64 {
	numBwps := len(e.snap.Bwps)
	obs := make([]float64, 0,
		len(e.snap.Ues)*(5+numBwps)+numBwps*3)

	for _, ue := range e.snap.Ues {
		obs = append(obs,
			float64(ue.QueueSize),
			float64(ue.HolDelay),
			ue.AvgBitsPerRb,
			ue.Throughput,
			ue.AvgThroughput,
		)
		for _, b := range e.snap.Bwps {
			if b.BwpID == ue.CurrentBwp {
				obs = append(obs, 1.0)
			} else {
				obs = append(obs, 0.0)
			}
		}
	}

	for _, b := range e.snap.Bwps {
		obs = append(obs, b.WifiOccupancy, b.FailureRate, b.ContentionWindow)
	}

	return obs
}

// SampleAction draws a uniformly random action.
func (e *Env) SampleAction() int {
	if len(e.snap.Bwps) == 0 {
		return 0
	}
	return e.rng.Intn(len(e.snap.Bwps))
}

// OracleAction asks the oracle for its best action on the current
// observation.
func (e *Env) OracleAction() int {
	return e.oracle.Act(e.Observation())
}

// Assignments maps an action to one target sub-band per user, in
// snapshot order. Every user is directed to the sub-band the action
// selects.
func (e *Env) Assignments(action int) []int {
	e.lastAction = action

	if len(e.snap.Bwps) == 0 {
		return nil
	}

	target := e.snap.Bwps[action%len(e.snap.Bwps)].BwpID
	out := make([]int, len(e.snap.Ues))
	for i := range out {
		out[i] = target
	}

	return out
}

// Reward scores the current snapshot. More head-of-line delay and more
// shortfall from the throughput ceiling both reduce the reward.
func (e *Env) Reward() float64 {
	totalThroughput := 0.0
	sumHolDelay := 0.0
	for _, ue := range e.snap.Ues {
		totalThroughput += ue.Throughput
		sumHolDelay += float64(ue.HolDelay)
	}

	avgHolDelay := 0.0
	if len(e.snap.Ues) > 0 {
		avgHolDelay = sumHolDelay / float64(len(e.snap.Ues))
	}

	return -(e.alpha*avgHolDelay + e.beta*(e.maxThroughput-totalThroughput))
}

// RecordStep closes one environment step. It accumulates the reward,
// writes the step row, and rolls the episode over once the step limit
// is reached.
func (e *Env) RecordStep() {
	reward := e.Reward()
	e.totalReward += reward
	e.step++
	e.done = false

	if e.recorder != nil {
		now := 0.0
		if e.timeTeller != nil {
			now = float64(e.timeTeller.CurrentTime())
		}
		e.recorder.InsertData(stepTable, stepEntry{
			Time:        now,
			Episode:     e.episode,
			Step:        e.step,
			Action:      e.lastAction,
			Reward:      reward,
			TotalReward: e.totalReward,
		})
	}

	if e.step >= e.episodeSteps {
		e.episode++
		e.step = 0
		e.totalReward = 0
		e.done = true
	}
}

// Done reports whether the last recorded step closed an episode.
func (e *Env) Done() bool {
	return e.done
}

// Episode returns the index of the running episode.
func (e *Env) Episode() int {
	return e.episode
}

// Step returns the number of steps recorded in the running episode.
func (e *Env) Step() int {
	return e.step
}

// TotalReward returns the reward accumulated in the running episode.
func (e *Env) TotalReward() float64 {
	return e.totalReward
}

// CurrentInfo returns the diagnostic record of the environment.
func (e *Env) CurrentInfo() Info {
	return Info{
		Episode:     e.episode,
		Step:        e.step,
		TotalReward: e.totalReward,
	}
}
