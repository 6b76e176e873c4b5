// Package lbt models the listen-before-talk channel access procedure that
// a device must run before transmitting in unlicensed spectrum. Each
// sub-band (BWP) carries its own contention state and its own stream of
// simulated WiFi interference.
package lbt

import (
	"log"
	"math/rand"
	"reflect"

	"github.com/Anvesh-Bunga/MTP-MTECH/sim"
)

// HookPosAccessGranted is a hook position that triggers when a channel
// access request is granted.
var HookPosAccessGranted = &sim.HookPos{Name: "AccessGranted"}

// HookPosAccessDenied is a hook position that triggers when a channel
// access request is denied.
var HookPosAccessDenied = &sim.HookPos{Name: "AccessDenied"}

// Access phases reported in AccessDetail.
const (
	PhaseIcca = "icca"
	PhaseEcca = "ecca"
)

// AccessDetail describes one channel access attempt. It is delivered as the
// hook item at HookPosAccessGranted and HookPosAccessDenied.
type AccessDetail struct {
	BwpID        int
	Granted      bool
	Phase        string
	BackoffSlots int
	Cw           int
}

// bwpState is the contention state of one sub-band.
type bwpState struct {
	id            int
	currentCw     int
	wifiRate      float64
	wifiOccupancy float64
	failureRate   float64
	totalAttempts uint64
	totalFailures uint64
	busyUntil     sim.VTimeInSec
	occupiedUntil sim.VTimeInSec
	lastUpdate    sim.VTimeInSec
}

// interferenceEvent marks one sub-band busy for a short while. It
// reschedules itself with exponentially distributed gaps.
type interferenceEvent struct {
	*sim.EventBase

	bwpID int
}

func newInterferenceEvent(
	time sim.VTimeInSec,
	handler sim.Handler,
	bwpID int,
) *interferenceEvent {
	return &interferenceEvent{
		EventBase: sim.NewEventBase(time, handler),
		bwpID:     bwpID,
	}
}

// Comp tracks per-sub-band contention windows, failure statistics, and
// simulated WiFi occupancy. Access requests complete synchronously; only
// the next interference arrival is deferred through the event queue.
type Comp struct {
	*sim.ComponentBase

	engine       sim.Engine
	slotPeriod   sim.VTimeInSec
	cwMin        int
	cwMax        int
	iccaDuration int
	mcotDuration int
	horizon      sim.VTimeInSec
	rng          *rand.Rand

	bwps map[int]*bwpState
}

// AddBwp registers a sub-band and starts its interference process.
// wifiRate is the mean number of interference arrivals per second.
// Registering the same id twice is a wiring mistake.
func (c *Comp) AddBwp(bwpID int, wifiRate float64) {
	c.Lock()
	defer c.Unlock()

	if _, exists := c.bwps[bwpID]; exists {
		log.Panicf("bwp %d is already registered with %s", bwpID, c.Name())
	}

	state := &bwpState{
		id:         bwpID,
		currentCw:  c.cwMin,
		wifiRate:   wifiRate,
		lastUpdate: c.engine.CurrentTime(),
	}
	c.bwps[bwpID] = state

	c.scheduleInterference(state)
}

// RemoveBwp forgets a sub-band. In-flight interference events for the
// removed id detect the missing state when they fire and do nothing.
// Removing an unknown id is a no-op.
func (c *Comp) RemoveBwp(bwpID int) {
	c.Lock()
	defer c.Unlock()

	delete(c.bwps, bwpID)
}

// ChannelAccessRequest runs one listen-before-talk attempt on a sub-band.
// The immediate check denies while the channel is busy. Otherwise a backoff
// of [0, cw) slots is drawn; the attempt is denied, with the contention
// window doubled, when the backoff would complete after the channel's
// busy-until time. A grant resets the contention window to its minimum and
// occupies the channel for the maximum occupancy duration.
func (c *Comp) ChannelAccessRequest(bwpID int) bool {
	c.Lock()
	defer c.Unlock()

	state, found := c.bwps[bwpID]
	if !found {
		log.Panicf("channel access requested on unregistered bwp %d", bwpID)
	}

	now := c.engine.CurrentTime()
	state.totalAttempts++

	if now < state.busyUntil {
		c.recordDenial(state, PhaseIcca, 0)
		return false
	}

	cwUsed := state.currentCw
	backoffSlots := c.rng.Intn(cwUsed)
	backoffEnd := now + sim.VTimeInSec(backoffSlots)*c.slotPeriod

	if backoffEnd > state.busyUntil {
		c.recordDenial(state, PhaseEcca, backoffSlots)
		state.currentCw = 2 * state.currentCw
		if state.currentCw > c.cwMax {
			state.currentCw = c.cwMax
		}
		return false
	}

	state.currentCw = c.cwMin
	state.occupiedUntil = now + sim.VTimeInSec(c.mcotDuration)*c.slotPeriod

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosAccessGranted,
		Item: AccessDetail{
			BwpID:        bwpID,
			Granted:      true,
			Phase:        PhaseEcca,
			BackoffSlots: backoffSlots,
			Cw:           cwUsed,
		},
	})

	return true
}

func (c *Comp) recordDenial(state *bwpState, phase string, backoffSlots int) {
	state.totalFailures++
	observed := float64(state.totalFailures) / float64(state.totalAttempts)
	state.failureRate = 0.9*state.failureRate + 0.1*observed

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosAccessDenied,
		Item: AccessDetail{
			BwpID:        state.id,
			Granted:      false,
			Phase:        phase,
			BackoffSlots: backoffSlots,
			Cw:           state.currentCw,
		},
	})
}

// FailureRate returns the smoothed access failure rate of a sub-band, or 0
// for an unknown id.
func (c *Comp) FailureRate(bwpID int) float64 {
	c.Lock()
	defer c.Unlock()

	if state, found := c.bwps[bwpID]; found {
		return state.failureRate
	}
	return 0.0
}

// WifiOccupancy returns the estimated fraction of time a sub-band is held
// by interfering traffic, or 0 for an unknown id.
func (c *Comp) WifiOccupancy(bwpID int) float64 {
	c.Lock()
	defer c.Unlock()

	if state, found := c.bwps[bwpID]; found {
		return state.wifiOccupancy
	}
	return 0.0
}

// ContentionWindow returns the current contention window of a sub-band, or
// the configured minimum for an unknown id.
func (c *Comp) ContentionWindow(bwpID int) int {
	c.Lock()
	defer c.Unlock()

	if state, found := c.bwps[bwpID]; found {
		return state.currentCw
	}
	return c.cwMin
}

// Attempts returns the cumulative access attempt count of a sub-band, or 0
// for an unknown id.
func (c *Comp) Attempts(bwpID int) uint64 {
	c.Lock()
	defer c.Unlock()

	if state, found := c.bwps[bwpID]; found {
		return state.totalAttempts
	}
	return 0
}

// Failures returns the cumulative access failure count of a sub-band, or 0
// for an unknown id.
func (c *Comp) Failures(bwpID int) uint64 {
	c.Lock()
	defer c.Unlock()

	if state, found := c.bwps[bwpID]; found {
		return state.totalFailures
	}
	return 0
}

// SetWifiInterference reconfigures the mean interference arrival rate of a
// sub-band. Only future arrivals are affected. Unknown ids are ignored.
func (c *Comp) SetWifiInterference(bwpID int, wifiRate float64) {
	c.Lock()
	defer c.Unlock()

	if state, found := c.bwps[bwpID]; found {
		state.wifiRate = wifiRate
	}
}

// Handle processes the events scheduled by the component.
func (c *Comp) Handle(e sim.Event) error {
	c.Lock()
	defer c.Unlock()

	switch e := e.(type) {
	case *interferenceEvent:
		c.handleInterferenceEvent(e)
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

func (c *Comp) handleInterferenceEvent(evt *interferenceEvent) {
	state, found := c.bwps[evt.bwpID]
	if !found {
		return
	}

	now := c.engine.CurrentTime()

	busySlots := 1 + c.rng.Intn(5)
	busyDur := sim.VTimeInSec(busySlots) * c.slotPeriod
	state.busyUntil = now + busyDur

	delta := now - state.lastUpdate
	if delta > 0 {
		state.wifiOccupancy = 0.9*state.wifiOccupancy +
			0.1*float64(busyDur/delta)
	}
	state.lastUpdate = now

	c.scheduleInterference(state)
}

func (c *Comp) scheduleInterference(state *bwpState) {
	if state.wifiRate <= 0 {
		return
	}

	interval := sim.VTimeInSec(c.rng.ExpFloat64() / state.wifiRate)
	t := c.engine.CurrentTime() + interval
	if c.horizon > 0 && t > c.horizon {
		return
	}

	evt := newInterferenceEvent(t, c, state.id)
	c.engine.Schedule(evt)
}
