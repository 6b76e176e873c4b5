package sim

// VTimeInSec is a time in the simulated world, in seconds.
type VTimeInSec float64

// An Event is something that happens at a future simulated time.
type Event interface {
	// Time returns the time at which the event should fire.
	Time() VTimeInSec

	// Handler returns the handler that processes the event.
	Handler() Handler

	// IsSecondary tells if the event is a secondary event. Secondary events
	// fire after all primary events of the same time have fired.
	IsSecondary() bool
}

// EventBase provides the fields and getters shared by concrete events.
type EventBase struct {
	ID        string
	time      VTimeInSec
	handler   Handler
	secondary bool
}

// NewEventBase creates a new EventBase.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	e := new(EventBase)
	e.ID = GetIDGenerator().Generate()
	e.time = t
	e.handler = handler
	e.secondary = false
	return e
}

// NewSecondaryEventBase creates an EventBase for a secondary event.
// Secondary events fire after all the primary events of the same time.
func NewSecondaryEventBase(t VTimeInSec, handler Handler) *EventBase {
	e := NewEventBase(t, handler)
	e.secondary = true
	return e
}

// Time returns the time at which the event fires.
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler that processes the event.
//
// An event is always constrained to one handler: it can only be scheduled
// by the component that will handle it, and firing it may only directly
// mutate that component's state. The one exception is the kick-start of a
// simulation, where the assembly code schedules the first event of each
// self-driving component.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary returns true if the event is a secondary event.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}

// A Handler processes events that belong to one domain.
type Handler interface {
	Handle(e Event) error
}
