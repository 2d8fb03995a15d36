package notify

import (
	"context"
	"strings"
	"sync"

	"PriceWatch/internal/domain/models"
)

// Memory keeps published events in order. Handy for tests and for
// inspecting recent events without a websocket client.
type Memory struct {
	mu     sync.Mutex
	events []models.Event
	limit  int
}

// NewMemory keeps at most limit events (0 keeps all).
func NewMemory(limit int) *Memory {
	return &Memory{limit: limit}
}

func (m *Memory) Publish(_ context.Context, ev models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	if m.limit > 0 && len(m.events) > m.limit {
		m.events = m.events[len(m.events)-m.limit:]
	}
	return nil
}

func (m *Memory) Close() error { return nil }

// Events returns a copy of the recorded events.
func (m *Memory) Events() []models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Event, len(m.events))
	copy(out, m.events)
	return out
}

// Named returns the recorded events whose name starts with prefix.
func (m *Memory) Named(prefix string) []models.Event {
	var out []models.Event
	for _, ev := range m.Events() {
		if strings.HasPrefix(ev.Name, prefix) {
			out = append(out, ev)
		}
	}
	return out
}

// Reset drops every recorded event.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}
