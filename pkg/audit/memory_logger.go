package audit

import (
	"context"
	"sync"
)

// MemoryLogger keeps events in memory. Used in tests and local development.
type MemoryLogger struct {
	events []*Event
	mu     sync.Mutex
}

// NewMemoryLogger creates an empty in-memory audit logger.
func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

// Log stores the event.
func (l *MemoryLogger) Log(ctx context.Context, event *Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

// Close implements Logger.
func (l *MemoryLogger) Close() error { return nil }

// Events returns a snapshot of the recorded events.
func (l *MemoryLogger) Events() []*Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Event, len(l.events))
	copy(out, l.events)
	return out
}
