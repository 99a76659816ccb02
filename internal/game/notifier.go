package game

import (
	"sync"

	"github.com/verte-zerg/intuit/internal/model"
)

// Subscriber receives the full snapshot after every observable mutation.
// It is called synchronously while the engine is locked, so it must not
// call back into the engine.
type Subscriber func(model.Snapshot)

// Fanout returns a Subscriber that calls each non-nil subscriber in order.
func Fanout(subs ...Subscriber) Subscriber {
	live := make([]Subscriber, 0, len(subs))
	for _, s := range subs {
		if s != nil {
			live = append(live, s)
		}
	}
	return func(snap model.Snapshot) {
		for _, s := range live {
			s(snap)
		}
	}
}

// Mirror keeps the most recent snapshot for consumers that poll.
type Mirror struct {
	mu    sync.Mutex
	last  model.Snapshot
	count int
}

// Subscriber returns the callback that feeds the mirror.
func (m *Mirror) Subscriber() Subscriber {
	return func(snap model.Snapshot) {
		m.mu.Lock()
		m.last = snap
		m.count++
		m.mu.Unlock()
	}
}

// Latest returns the last snapshot and the number of emissions seen.
func (m *Mirror) Latest() (model.Snapshot, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.count
}
