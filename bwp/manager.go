// Package bwp keeps the authoritative mapping between devices and the
// sub-band (BWP) each one is currently assigned to, together with per
// sub-band capacity and occupancy counts.
package bwp

import (
	"log"
	"reflect"
	"sort"

	"github.com/Anvesh-Bunga/MTP-MTECH/sim"
)

// A Notifier is informed when a device finishes retuning to its newly
// assigned sub-band, one switch latency after the registry was updated.
type Notifier interface {
	NotifyBwpSwitch(ueID, bwpID int)
}

type bwpInfo struct {
	id        int
	numRbs    int
	activeUes int
}

// switchNotifyEvent delivers the delayed link-layer notification of a
// device switch. It checks that the device still holds the same assignment
// when it fires, so that switches or removals that happened in between
// simply invalidate it.
type switchNotifyEvent struct {
	*sim.EventBase

	ueID  int
	bwpID int
}

func newSwitchNotifyEvent(
	time sim.VTimeInSec,
	handler sim.Handler,
	ueID, bwpID int,
) *switchNotifyEvent {
	return &switchNotifyEvent{
		EventBase: sim.NewEventBase(time, handler),
		ueID:      ueID,
		bwpID:     bwpID,
	}
}

// Manager is the sub-band membership registry. Mutations keep the per
// sub-band active-device counts exact: for every sub-band, the count always
// equals the number of devices mapped to it.
type Manager struct {
	*sim.ComponentBase

	engine        sim.Engine
	defaultBwpID  int
	switchLatency sim.VTimeInSec
	notifier      Notifier

	bwps map[int]*bwpInfo
	ues  map[int]int
}

// SetNotifier sets the receiver of the delayed switch notifications. It
// exists for wiring orders where the notifier itself needs the registry
// first. Switches performed while no notifier is set are silent.
func (m *Manager) SetNotifier(notifier Notifier) {
	m.Lock()
	defer m.Unlock()

	m.notifier = notifier
}

// AddBwp registers a sub-band with its resource-block capacity.
func (m *Manager) AddBwp(bwpID, numRbs int) {
	m.Lock()
	defer m.Unlock()

	if _, exists := m.bwps[bwpID]; exists {
		log.Panicf("bwp %d is already registered with %s", bwpID, m.Name())
	}

	m.bwps[bwpID] = &bwpInfo{
		id:     bwpID,
		numRbs: numRbs,
	}
}

// RemoveBwp erases a sub-band after reassigning every device on it to the
// default sub-band. Removing an unknown id is a no-op. The default
// sub-band itself cannot be removed, as devices must always have a
// sub-band to fall back to.
func (m *Manager) RemoveBwp(bwpID int) {
	m.Lock()
	defer m.Unlock()

	if _, found := m.bwps[bwpID]; !found {
		return
	}

	if bwpID == m.defaultBwpID {
		log.Panicf("cannot remove default bwp %d", bwpID)
	}

	moved := make([]int, 0)
	for ueID, assigned := range m.ues {
		if assigned == bwpID {
			m.ues[ueID] = m.defaultBwpID
			m.bwps[m.defaultBwpID].activeUes++
			moved = append(moved, ueID)
		}
	}
	sort.Ints(moved)

	if m.notifier != nil {
		for _, ueID := range moved {
			evt := newSwitchNotifyEvent(
				m.engine.CurrentTime()+m.switchLatency,
				m, ueID, m.defaultBwpID)
			m.engine.Schedule(evt)
		}
	}

	delete(m.bwps, bwpID)
}

// NumBwps returns the number of registered sub-bands.
func (m *Manager) NumBwps() int {
	m.Lock()
	defer m.Unlock()

	return len(m.bwps)
}

// NumRbs returns the resource-block capacity of a sub-band, or 0 for an
// unknown id.
func (m *Manager) NumRbs(bwpID int) int {
	m.Lock()
	defer m.Unlock()

	if info, found := m.bwps[bwpID]; found {
		return info.numRbs
	}
	return 0
}

// ActiveUes returns the number of devices currently assigned to a
// sub-band, or 0 for an unknown id.
func (m *Manager) ActiveUes(bwpID int) int {
	m.Lock()
	defer m.Unlock()

	if info, found := m.bwps[bwpID]; found {
		return info.activeUes
	}
	return 0
}

// BwpIDs returns the registered sub-band ids in ascending order.
func (m *Manager) BwpIDs() []int {
	m.Lock()
	defer m.Unlock()

	ids := make([]int, 0, len(m.bwps))
	for id := range m.bwps {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	return ids
}

// DefaultBwp returns the id of the default sub-band.
func (m *Manager) DefaultBwp() int {
	return m.defaultBwpID
}

// AddUe registers a device on the default sub-band. Re-adding a present
// device has no effect. The default sub-band must be registered first.
func (m *Manager) AddUe(ueID int) {
	m.Lock()
	defer m.Unlock()

	if _, exists := m.ues[ueID]; exists {
		return
	}

	defaultBwp, found := m.bwps[m.defaultBwpID]
	if !found {
		log.Panicf("default bwp %d is not registered with %s",
			m.defaultBwpID, m.Name())
	}

	m.ues[ueID] = m.defaultBwpID
	defaultBwp.activeUes++
}

// RemoveUe erases a device and releases its sub-band slot. Removing an
// unknown id is a no-op.
func (m *Manager) RemoveUe(ueID int) {
	m.Lock()
	defer m.Unlock()

	bwpID, found := m.ues[ueID]
	if !found {
		return
	}

	m.bwps[bwpID].activeUes--
	delete(m.ues, ueID)
}

// SwitchUe moves a device to another sub-band. It reports false when
// either id is unknown or the device is already there. On success the
// registry reflects the new assignment immediately; the link-layer
// notification is delivered one switch latency later.
func (m *Manager) SwitchUe(ueID, bwpID int) bool {
	m.Lock()
	defer m.Unlock()

	currentBwp, ueFound := m.ues[ueID]
	target, bwpFound := m.bwps[bwpID]
	if !ueFound || !bwpFound {
		return false
	}

	if currentBwp == bwpID {
		return false
	}

	m.bwps[currentBwp].activeUes--
	target.activeUes++
	m.ues[ueID] = bwpID

	if m.notifier != nil {
		evt := newSwitchNotifyEvent(
			m.engine.CurrentTime()+m.switchLatency, m, ueID, bwpID)
		m.engine.Schedule(evt)
	}

	return true
}

// UeBwp returns the sub-band a device is assigned to, falling back to the
// default sub-band for unknown devices.
func (m *Manager) UeBwp(ueID int) int {
	m.Lock()
	defer m.Unlock()

	if bwpID, found := m.ues[ueID]; found {
		return bwpID
	}
	return m.defaultBwpID
}

// UeIDs returns the registered device ids in ascending order.
func (m *Manager) UeIDs() []int {
	m.Lock()
	defer m.Unlock()

	ids := make([]int, 0, len(m.ues))
	for id := range m.ues {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	return ids
}

// NumUes returns the number of registered devices.
func (m *Manager) NumUes() int {
	m.Lock()
	defer m.Unlock()

	return len(m.ues)
}

// UeMap returns a copy of the device to sub-band mapping.
func (m *Manager) UeMap() map[int]int {
	m.Lock()
	defer m.Unlock()

	ueMap := make(map[int]int, len(m.ues))
	for ueID, bwpID := range m.ues {
		ueMap[ueID] = bwpID
	}

	return ueMap
}

// Handle processes the events scheduled by the manager.
func (m *Manager) Handle(e sim.Event) error {
	m.Lock()
	defer m.Unlock()

	switch e := e.(type) {
	case *switchNotifyEvent:
		m.handleSwitchNotifyEvent(e)
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

func (m *Manager) handleSwitchNotifyEvent(evt *switchNotifyEvent) {
	bwpID, found := m.ues[evt.ueID]
	if !found || bwpID != evt.bwpID {
		return
	}

	m.notifier.NotifyBwpSwitch(evt.ueID, evt.bwpID)
}
