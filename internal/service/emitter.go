package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter — decouples the service from whatever surface is
// listening (CLI progress output, MCP notifications, nothing at all)
// ─────────────────────────────────────────────────────────────

// EventEmitter receives job lifecycle events. Implementations must
// tolerate being called from trigger goroutines.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// NopEmitter discards all events.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, any) {}

// MockEmitter records all calls for test assertions. Safe to read
// while trigger goroutines are emitting.
type MockEmitter struct {
	mu     sync.Mutex
	events []EmittedEvent
}

// EmittedEvent holds a single recorded emission.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, EmittedEvent{Event: event, Data: data})
}

// Events returns a copy of the recorded emissions.
func (m *MockEmitter) Events() []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EmittedEvent(nil), m.events...)
}
