package events

import (
	"context"
	"sync"
)

// MemoryStore keeps emitted events in memory, in emission order.
type MemoryStore struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// InsertEvent appends ev.
func (m *MemoryStore) InsertEvent(_ context.Context, ev Event) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return ev, nil
}

// Events returns a copy of every stored event.
func (m *MemoryStore) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// ByTopic returns the stored events for topic.
func (m *MemoryStore) ByTopic(topic string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, ev := range m.events {
		if ev.Topic == topic {
			out = append(out, ev)
		}
	}
	return out
}
