package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Logger is the interface for audit logging
type Logger interface {
	// Log records one audit event.
	Log(ctx context.Context, event *Event) error

	// Close closes the logger and flushes any buffered events.
	Close() error
}

// NewEvent creates an event with its id and timestamp filled in.
func NewEvent(eventType EventType, status EventStatus) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Status:    status,
	}
}

// NopLogger discards all events. Used when auditing is not configured.
type NopLogger struct{}

// Log implements Logger.
func (NopLogger) Log(ctx context.Context, event *Event) error { return nil }

// Close implements Logger.
func (NopLogger) Close() error { return nil }
