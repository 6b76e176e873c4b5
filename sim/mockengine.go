package sim

import (
	"log"
)

// MockEngine is an Engine for unit tests. It records scheduled events
// instead of firing them, and lets the test control the current time.
type MockEngine struct {
	HookableBase

	// Now is the virtual time the engine reports. Tests set it directly.
	Now VTimeInSec

	// ScheduledEvents holds all the events scheduled so far, in the order
	// they were scheduled.
	ScheduledEvents []Event

	endHandlers []SimulationEndHandler
}

// NewMockEngine returns a new MockEngine.
func NewMockEngine() *MockEngine {
	e := new(MockEngine)
	e.ScheduledEvents = make([]Event, 0)
	return e
}

// Schedule records the event. It panics if the event is scheduled in the
// past, matching the behavior of a real engine.
func (e *MockEngine) Schedule(evt Event) {
	if evt.Time() < e.Now {
		log.Panic("scheduling an event earlier than current time")
	}
	e.ScheduledEvents = append(e.ScheduledEvents, evt)
}

// CurrentTime returns the time the test has set.
func (e *MockEngine) CurrentTime() VTimeInSec {
	return e.Now
}

// PopEarliest removes and returns the earliest scheduled event. Events with
// the same time are returned in scheduling order. The engine time advances
// to the event time. It panics if no event is scheduled.
func (e *MockEngine) PopEarliest() Event {
	if len(e.ScheduledEvents) == 0 {
		log.Panic("no scheduled event to pop")
	}

	earliest := 0
	for i, evt := range e.ScheduledEvents {
		if evt.Time() < e.ScheduledEvents[earliest].Time() {
			earliest = i
		}
	}

	evt := e.ScheduledEvents[earliest]
	e.ScheduledEvents = append(
		e.ScheduledEvents[:earliest], e.ScheduledEvents[earliest+1:]...)
	e.Now = evt.Time()

	return evt
}

// Run does not fire any event.
func (e *MockEngine) Run() error {
	return nil
}

// Pause does nothing.
func (e *MockEngine) Pause() {
}

// Continue does nothing.
func (e *MockEngine) Continue() {
}

// RegisterSimulationEndHandler registers a handler to be called by Finished.
func (e *MockEngine) RegisterSimulationEndHandler(h SimulationEndHandler) {
	e.endHandlers = append(e.endHandlers, h)
}

// Finished calls all the registered SimulationEndHandlers.
func (e *MockEngine) Finished() {
	for _, h := range e.endHandlers {
		h.Handle(e.Now)
	}
}
