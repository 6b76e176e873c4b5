// Package sched implements the periodic decision engine that reassigns
// user equipments to bandwidth parts. At a fixed slot-count cadence the
// scheduler snapshots the contention and link statistics, runs the
// configured assignment policy, applies the resulting switches, and
// resets the per-window counters.
package sched

import (
	"log"
	"math/rand"
	"reflect"

	"github.com/Anvesh-Bunga/MTP-MTECH/datarecording"
	"github.com/Anvesh-Bunga/MTP-MTECH/sim"
)

// Algorithm selects the assignment policy that runs each decision window.
type Algorithm int

const (
	// LCA is the least-collision heuristic. It scores every bandwidth
	// part from the windowed statistics and concentrates or spreads the
	// users proportionally to the scores.
	LCA Algorithm = iota

	// RLA delegates the assignment to a learned policy through the
	// environment boundary.
	RLA
)

// Name returns the short lower-case tag of the algorithm.
func (a Algorithm) Name() string {
	switch a {
	case LCA:
		return "lca"
	case RLA:
		return "rla"
	}
	return "unknown"
}

// HookPosWindowDone is a hook position that triggers after each decision
// window completes. The hook item is the index of the completed window.
var HookPosWindowDone = &sim.HookPos{Name: "WindowDone"}

// AccessStats is the read-only view of the listen-before-talk component
// the scheduler collects contention statistics from.
type AccessStats interface {
	FailureRate(bwpID int) float64
	WifiOccupancy(bwpID int) float64
	ContentionWindow(bwpID int) int
	Failures(bwpID int) uint64
}

// Registry is the view of the bandwidth-part membership registry. The
// scheduler reads the topology from it and applies switches through it.
type Registry interface {
	BwpIDs() []int
	NumRbs(bwpID int) int
	ActiveUes(bwpID int) int
	UeIDs() []int
	UeBwp(ueID int) int
	SwitchUe(ueID, bwpID int) bool
}

// LinkStats is the read-only view of the radio link layer the scheduler
// collects per-user and per-bandwidth-part link quality from.
type LinkStats interface {
	QueueSize(ueID int) int
	HolDelay(ueID int) sim.VTimeInSec
	Throughput(ueID int) float64
	AvgThroughput(ueID int) float64
	UeAvgBitsPerRb(ueID int) float64
	AvgBitsPerRb(bwpID int) float64
	ResetWindowStats()
}

// Env is the boundary to the learned policy. The scheduler pushes the
// window snapshot into the environment, asks it for an action, and maps
// the action back to per-user assignments. The environment never
// mutates the registry itself.
type Env interface {
	UpdateSnapshot(snap Snapshot)
	SampleAction() int
	OracleAction() int
	Assignments(action int) []int
	RecordStep()
}

// BwpSnapshot carries the smoothed statistics of one bandwidth part as
// seen at the start of a decision window.
type BwpSnapshot struct {
	BwpID            int
	FailureRate      float64
	WifiOccupancy    float64
	ContentionWindow float64
	AvgBitsPerRb     float64
	NumRbs           int
	ActiveUes        int
	WindowThroughput float64
	WindowCollisions int
}

// UeSnapshot carries the link statistics of one user equipment as seen
// at the start of a decision window.
type UeSnapshot struct {
	UeID          int
	CurrentBwp    int
	QueueSize     int
	HolDelay      sim.VTimeInSec
	Throughput    float64
	AvgThroughput float64
	AvgBitsPerRb  float64
}

// Snapshot is the full per-window view the policies decide on.
type Snapshot struct {
	Bwps []BwpSnapshot
	Ues  []UeSnapshot
}

type windowEvent struct {
	*sim.EventBase
}

func newWindowEvent(t sim.VTimeInSec, handler sim.Handler) windowEvent {
	return windowEvent{sim.NewSecondaryEventBase(t, handler)}
}

type policy interface {
	assign()
}

type windowMetricsEntry struct {
	Window          int
	Time            float64
	Algorithm       string
	NumUes          int
	AvgHolDelay     float64
	TotalThroughput float64
	Epsilon         float64
}

type bwpWindowMetricsEntry struct {
	Window           int
	Time             float64
	BwpID            int
	FailureRate      float64
	WifiOccupancy    float64
	ContentionWindow float64
	AvgBitsPerRb     float64
	NumRbs           int
	ActiveUes        int
	WindowThroughput float64
	WindowCollisions int
}

const (
	windowMetricsTable    = "window_metrics"
	bwpWindowMetricsTable = "bwp_window_metrics"
)

// Scheduler is the decision engine component. It wakes up once per
// window, collects statistics, runs the assignment policy, and
// schedules the next window.
type Scheduler struct {
	*sim.ComponentBase

	engine      sim.Engine
	accessStats AccessStats
	registry    Registry
	linkStats   LinkStats
	env         Env
	recorder    datarecording.DataRecorder

	algorithm       Algorithm
	windowDuration  sim.VTimeInSec
	maxScheduledUes int
	epsilon         float64
	epsilonMin      float64
	epsilonDecay    float64
	horizon         sim.VTimeInSec
	rng             *rand.Rand

	policy        policy
	currentWindow int
	bwps          []BwpSnapshot
	ues           []UeSnapshot
	prevFailures  map[int]uint64
}

// StartAt seeds the bandwidth-part statistics from the registry and
// schedules the first decision window at the given time. The registry
// must already hold its bandwidth parts when StartAt is called.
func (s *Scheduler) StartAt(t sim.VTimeInSec) {
	s.Lock()
	defer s.Unlock()

	s.seedBwpStats()
	s.engine.Schedule(newWindowEvent(t, s))
}

// The initial statistics are staggered by position so that the first
// window already ranks the bandwidth parts instead of tie-breaking on
// identical seeds.
func (s *Scheduler) seedBwpStats() {
	ids := s.registry.BwpIDs()
	s.bwps = make([]BwpSnapshot, len(ids))
	for i, id := range ids {
		s.bwps[i] = BwpSnapshot{
			BwpID:            id,
			FailureRate:      0.1 + 0.2*float64(i),
			WifiOccupancy:    0.2 + 0.2*float64(i),
			ContentionWindow: 8,
			AvgBitsPerRb:     20.0,
			NumRbs:           s.registry.NumRbs(id),
		}
		s.prevFailures[id] = s.accessStats.Failures(id)
	}
}

// Handle processes the window events of the scheduler.
func (s *Scheduler) Handle(e sim.Event) error {
	s.Lock()
	defer s.Unlock()

	switch e.(type) {
	case windowEvent:
		s.runDecisionWindow()
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

func (s *Scheduler) runDecisionWindow() {
	s.collectWindowStatistics()
	s.recordWindow()
	s.policy.assign()
	s.resetWindowStatistics()
	s.currentWindow++

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosWindowDone,
		Item:   s.currentWindow - 1,
	})

	next := s.engine.CurrentTime() + s.windowDuration
	if s.horizon > 0 && next > s.horizon {
		return
	}

	s.engine.Schedule(newWindowEvent(next, s))
}

func (s *Scheduler) collectWindowStatistics() {
	for i := range s.bwps {
		b := &s.bwps[i]
		b.FailureRate = s.accessStats.FailureRate(b.BwpID)
		b.WifiOccupancy = s.accessStats.WifiOccupancy(b.BwpID)
		b.ContentionWindow = float64(s.accessStats.ContentionWindow(b.BwpID))
		b.AvgBitsPerRb = 0.9*b.AvgBitsPerRb +
			0.1*s.linkStats.AvgBitsPerRb(b.BwpID)
		b.NumRbs = s.registry.NumRbs(b.BwpID)
		b.ActiveUes = s.registry.ActiveUes(b.BwpID)

		failures := s.accessStats.Failures(b.BwpID)
		b.WindowCollisions = int(failures - s.prevFailures[b.BwpID])
		s.prevFailures[b.BwpID] = failures
	}

	ueIDs := s.registry.UeIDs()
	s.ues = s.ues[:0]
	for _, id := range ueIDs {
		s.ues = append(s.ues, UeSnapshot{
			UeID:          id,
			CurrentBwp:    s.registry.UeBwp(id),
			QueueSize:     s.linkStats.QueueSize(id),
			HolDelay:      s.linkStats.HolDelay(id),
			Throughput:    s.linkStats.Throughput(id),
			AvgThroughput: s.linkStats.AvgThroughput(id),
			AvgBitsPerRb:  s.linkStats.UeAvgBitsPerRb(id),
		})
	}

	for i := range s.bwps {
		s.bwps[i].WindowThroughput = 0
	}
	for _, ue := range s.ues {
		for i := range s.bwps {
			if s.bwps[i].BwpID == ue.CurrentBwp {
				s.bwps[i].WindowThroughput += ue.Throughput
				break
			}
		}
	}
}

func (s *Scheduler) resetWindowStatistics() {
	s.linkStats.ResetWindowStats()
	for i := range s.bwps {
		s.bwps[i].WindowThroughput = 0
		s.bwps[i].WindowCollisions = 0
	}
}

func (s *Scheduler) recordWindow() {
	if s.recorder == nil {
		return
	}

	now := float64(s.engine.CurrentTime())

	totalThroughput := 0.0
	sumHolDelay := 0.0
	for _, ue := range s.ues {
		totalThroughput += ue.Throughput
		sumHolDelay += float64(ue.HolDelay)
	}
	avgHolDelay := 0.0
	if len(s.ues) > 0 {
		avgHolDelay = sumHolDelay / float64(len(s.ues))
	}

	s.recorder.InsertData(windowMetricsTable, windowMetricsEntry{
		Window:          s.currentWindow,
		Time:            now,
		Algorithm:       s.algorithm.Name(),
		NumUes:          len(s.ues),
		AvgHolDelay:     avgHolDelay,
		TotalThroughput: totalThroughput,
		Epsilon:         s.epsilon,
	})

	for _, b := range s.bwps {
		s.recorder.InsertData(bwpWindowMetricsTable, bwpWindowMetricsEntry{
			Window:           s.currentWindow,
			Time:             now,
			BwpID:            b.BwpID,
			FailureRate:      b.FailureRate,
			WifiOccupancy:    b.WifiOccupancy,
			ContentionWindow: b.ContentionWindow,
			AvgBitsPerRb:     b.AvgBitsPerRb,
			NumRbs:           b.NumRbs,
			ActiveUes:        b.ActiveUes,
			WindowThroughput: b.WindowThroughput,
			WindowCollisions: b.WindowCollisions,
		})
	}
}

func (s *Scheduler) snapshotLocked() Snapshot {
	snap := Snapshot{
		Bwps: make([]BwpSnapshot, len(s.bwps)),
		Ues:  make([]UeSnapshot, len(s.ues)),
	}
	copy(snap.Bwps, s.bwps)
	copy(snap.Ues, s.ues)
	return snap
}

// Snapshot returns a copy of the most recently collected window
// statistics.
func (s *Scheduler) Snapshot() Snapshot {
	s.Lock()
	defer s.Unlock()

	return s.snapshotLocked()
}

// CurrentWindow returns the number of completed decision windows.
func (s *Scheduler) CurrentWindow() int {
	s.Lock()
	defer s.Unlock()

	return s.currentWindow
}

// Epsilon returns the current exploration rate.
func (s *Scheduler) Epsilon() float64 {
	s.Lock()
	defer s.Unlock()

	return s.epsilon
}

// Algorithm returns the assignment policy the scheduler runs.
func (s *Scheduler) Algorithm() Algorithm {
	return s.algorithm
}
