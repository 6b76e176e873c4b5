// Package phy models the radio link between the base station and its
// users: packet arrivals, per-user link quality, and the slot-by-slot
// resource allocation on each sub-band. It is the source of the queueing
// and throughput statistics the decision engine consumes.
package phy

import (
	"log"
	"math/rand"
	"sort"

	"github.com/Anvesh-Bunga/MTP-MTECH/sim"
)

// ChannelAccess is the contention side the allocator clears every
// transmission through. A denied request leaves the sub-band silent for
// the slot.
type ChannelAccess interface {
	ChannelAccessRequest(bwpID int) bool
}

// Capacities reports how many resource blocks a sub-band carries.
type Capacities interface {
	NumRbs(bwpID int) int
}

// Link quality walks within this band, in bits per resource block.
const (
	bitsPerRbWalkStep = 0.5
	bitsPerRbMin      = 4.0
	bitsPerRbMax      = 40.0
)

type packet struct {
	bits    float64
	arrival sim.VTimeInSec
}

// ueState is the link state of one user. servingBwp trails the registry
// assignment until the switch notification fires, so a retuning user
// keeps draining on its old sub-band during the switch latency.
type ueState struct {
	id          int
	servingBwp  int
	queue       []packet
	nextArrival sim.VTimeInSec
	bitsPerRb   float64

	windowBits    float64
	windowStart   sim.VTimeInSec
	avgThroughput float64
}

func (u *ueState) pfMetric() float64 {
	return u.bitsPerRb / (u.avgThroughput + 1e-6)
}

// Comp generates traffic, walks link quality, and allocates resource
// blocks once per slot. Users are always visited in ascending id order
// so that runs with the same seed replay identically.
type Comp struct {
	*sim.TickingComponent

	channel    ChannelAccess
	capacities Capacities

	arrivalRate      float64
	meanPacketBits   float64
	initialBitsPerRb float64
	maxScheduledUes  int
	horizon          sim.VTimeInSec
	rng              *rand.Rand

	ues     map[int]*ueState
	ueOrder []int
}

// AddUe registers a user served on the given sub-band. Registering the
// same id twice is a wiring mistake.
func (c *Comp) AddUe(ueID, bwpID int) {
	c.Lock()
	defer c.Unlock()

	if _, exists := c.ues[ueID]; exists {
		log.Panicf("ue %d is already registered with %s", ueID, c.Name())
	}

	now := c.CurrentTime()
	c.ues[ueID] = &ueState{
		id:          ueID,
		servingBwp:  bwpID,
		bitsPerRb:   c.initialBitsPerRb,
		nextArrival: now + sim.VTimeInSec(c.rng.ExpFloat64()/c.arrivalRate),
		windowStart: now,
	}

	i := sort.SearchInts(c.ueOrder, ueID)
	c.ueOrder = append(c.ueOrder, 0)
	copy(c.ueOrder[i+1:], c.ueOrder[i:])
	c.ueOrder[i] = ueID
}

// RemoveUe forgets a user, dropping its queue. Removing an unknown id is
// a no-op.
func (c *Comp) RemoveUe(ueID int) {
	c.Lock()
	defer c.Unlock()

	if _, exists := c.ues[ueID]; !exists {
		return
	}

	delete(c.ues, ueID)
	i := sort.SearchInts(c.ueOrder, ueID)
	c.ueOrder = append(c.ueOrder[:i], c.ueOrder[i+1:]...)
}

// NotifyBwpSwitch retunes a user to its new sub-band. It fires after the
// switch latency, not at the moment the registry reassigns the user.
// Notifications for removed users are ignored.
func (c *Comp) NotifyBwpSwitch(ueID, bwpID int) {
	c.Lock()
	defer c.Unlock()

	if ue, found := c.ues[ueID]; found {
		ue.servingBwp = bwpID
	}
}

// Tick advances the link by one slot.
func (c *Comp) Tick() bool {
	c.Lock()
	defer c.Unlock()

	now := c.CurrentTime()
	if c.horizon > 0 && now >= c.horizon {
		return false
	}

	c.generateArrivals(now)
	c.walkLinkQuality()
	c.serveSubbands(now)

	return true
}

// Packets that arrived since the previous slot keep their true arrival
// time so head-of-line delays are exact.
func (c *Comp) generateArrivals(now sim.VTimeInSec) {
	for _, id := range c.ueOrder {
		ue := c.ues[id]
		for ue.nextArrival <= now {
			ue.queue = append(ue.queue, packet{
				bits:    c.rng.ExpFloat64() * c.meanPacketBits,
				arrival: ue.nextArrival,
			})
			ue.nextArrival +=
				sim.VTimeInSec(c.rng.ExpFloat64() / c.arrivalRate)
		}
	}
}

func (c *Comp) walkLinkQuality() {
	for _, id := range c.ueOrder {
		ue := c.ues[id]
		ue.bitsPerRb += (c.rng.Float64()*2 - 1) * bitsPerRbWalkStep
		if ue.bitsPerRb < bitsPerRbMin {
			ue.bitsPerRb = bitsPerRbMin
		}
		if ue.bitsPerRb > bitsPerRbMax {
			ue.bitsPerRb = bitsPerRbMax
		}
	}
}

// serveSubbands runs one access attempt per backlogged sub-band and, on
// a grant, splits the sub-band's resource blocks over the members with
// the best proportional-fair metric. Sub-bands without queued traffic
// stay silent and burn no attempts.
func (c *Comp) serveSubbands(now sim.VTimeInSec) {
	backlogged := make(map[int][]int)
	for _, id := range c.ueOrder {
		ue := c.ues[id]
		if len(ue.queue) == 0 {
			continue
		}
		backlogged[ue.servingBwp] = append(backlogged[ue.servingBwp], id)
	}

	bwpIDs := make([]int, 0, len(backlogged))
	for id := range backlogged {
		bwpIDs = append(bwpIDs, id)
	}
	sort.Ints(bwpIDs)

	for _, bwpID := range bwpIDs {
		if !c.channel.ChannelAccessRequest(bwpID) {
			continue
		}
		c.serveMembers(bwpID, backlogged[bwpID])
	}
}

func (c *Comp) serveMembers(bwpID int, ids []int) {
	sort.SliceStable(ids, func(i, j int) bool {
		return c.ues[ids[i]].pfMetric() > c.ues[ids[j]].pfMetric()
	})
	if len(ids) > c.maxScheduledUes {
		ids = ids[:c.maxScheduledUes]
	}

	rbs := c.capacities.NumRbs(bwpID)
	if rbs < 1 {
		return
	}

	share := rbs / len(ids)
	extra := rbs % len(ids)
	for i, id := range ids {
		allocated := share
		if i < extra {
			allocated++
		}
		if allocated == 0 {
			break
		}
		c.drainQueue(c.ues[id], float64(allocated))
	}
}

// drainQueue serves a user with the given resource blocks. The head
// packet may be consumed partially; the remainder keeps its original
// arrival time.
func (c *Comp) drainQueue(ue *ueState, rbs float64) {
	capacity := rbs * ue.bitsPerRb
	for len(ue.queue) > 0 && capacity > 0 {
		head := &ue.queue[0]
		if head.bits <= capacity {
			capacity -= head.bits
			ue.windowBits += head.bits
			ue.queue = ue.queue[1:]
		} else {
			head.bits -= capacity
			ue.windowBits += capacity
			capacity = 0
		}
	}
}

// QueueSize returns the number of packets waiting for a user, or 0 for
// an unknown id.
func (c *Comp) QueueSize(ueID int) int {
	c.Lock()
	defer c.Unlock()

	if ue, found := c.ues[ueID]; found {
		return len(ue.queue)
	}

	return 0
}

// HolDelay returns how long the user's oldest queued packet has waited.
func (c *Comp) HolDelay(ueID int) sim.VTimeInSec {
	c.Lock()
	defer c.Unlock()

	ue, found := c.ues[ueID]
	if !found || len(ue.queue) == 0 {
		return 0
	}

	return c.CurrentTime() - ue.queue[0].arrival
}

// Throughput returns the user's rate over the current measurement
// window, in Mbps.
func (c *Comp) Throughput(ueID int) float64 {
	c.Lock()
	defer c.Unlock()

	if ue, found := c.ues[ueID]; found {
		return c.windowThroughput(ue)
	}

	return 0
}

func (c *Comp) windowThroughput(ue *ueState) float64 {
	elapsed := c.CurrentTime() - ue.windowStart
	if elapsed <= 0 {
		return 0
	}

	return ue.windowBits / float64(elapsed) / 1e6
}

// AvgThroughput returns the user's smoothed rate across measurement
// windows, in Mbps.
func (c *Comp) AvgThroughput(ueID int) float64 {
	c.Lock()
	defer c.Unlock()

	if ue, found := c.ues[ueID]; found {
		return ue.avgThroughput
	}

	return 0
}

// UeAvgBitsPerRb returns the user's current link quality.
func (c *Comp) UeAvgBitsPerRb(ueID int) float64 {
	c.Lock()
	defer c.Unlock()

	if ue, found := c.ues[ueID]; found {
		return ue.bitsPerRb
	}

	return 0
}

// AvgBitsPerRb returns the mean link quality over the users served on a
// sub-band, or 0 when none are.
func (c *Comp) AvgBitsPerRb(bwpID int) float64 {
	c.Lock()
	defer c.Unlock()

	sum := 0.0
	count := 0
	for _, id := range c.ueOrder {
		ue := c.ues[id]
		if ue.servingBwp == bwpID {
			sum += ue.bitsPerRb
			count++
		}
	}

	if count == 0 {
		return 0
	}

	return sum / float64(count)
}

// ResetWindowStats folds the closing window's rate into each user's
// smoothed throughput and opens a fresh window.
func (c *Comp) ResetWindowStats() {
	c.Lock()
	defer c.Unlock()

	now := c.CurrentTime()
	for _, id := range c.ueOrder {
		ue := c.ues[id]
		tp := c.windowThroughput(ue)
		ue.avgThroughput = 0.9*ue.avgThroughput + 0.1*tp
		ue.windowBits = 0
		ue.windowStart = now
	}
}

// NumUes returns the number of registered users.
func (c *Comp) NumUes() int {
	c.Lock()
	defer c.Unlock()

	return len(c.ues)
}

// QueueSizes returns the queue depth of every user, keyed by id.
func (c *Comp) QueueSizes() map[int]int {
	c.Lock()
	defer c.Unlock()

	sizes := make(map[int]int, len(c.ues))
	for id, ue := range c.ues {
		sizes[id] = len(ue.queue)
	}

	return sizes
}
