package bwp

import (
	"github.com/Anvesh-Bunga/MTP-MTECH/sim"
)

// Builder can build membership registries.
type Builder struct {
	engine        sim.Engine
	defaultBwpID  int
	switchLatency sim.VTimeInSec
	notifier      Notifier
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		defaultBwpID:  0,
		switchLatency: 0.001,
	}
}

// WithEngine sets the engine that delivers the delayed switch
// notifications.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithDefaultBwp sets the sub-band that devices start on and fall back to.
func (b Builder) WithDefaultBwp(bwpID int) Builder {
	b.defaultBwpID = bwpID
	return b
}

// WithSwitchLatency sets the retune time between the registry update and
// the link-layer notification.
func (b Builder) WithSwitchLatency(latency sim.VTimeInSec) Builder {
	b.switchLatency = latency
	return b
}

// WithNotifier sets the receiver of the delayed switch notifications.
func (b Builder) WithNotifier(notifier Notifier) Builder {
	b.notifier = notifier
	return b
}

// Build creates a membership registry.
func (b Builder) Build(name string) *Manager {
	b.parametersMustBeValid()

	m := &Manager{
		ComponentBase: sim.NewComponentBase(name),
		engine:        b.engine,
		defaultBwpID:  b.defaultBwpID,
		switchLatency: b.switchLatency,
		notifier:      b.notifier,
		bwps:          make(map[int]*bwpInfo),
		ues:           make(map[int]int),
	}

	return m
}

func (b Builder) parametersMustBeValid() {
	if b.engine == nil {
		panic("engine is not given")
	}

	if b.switchLatency < 0 {
		panic("switch latency must not be negative")
	}
}
