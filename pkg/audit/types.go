// Package audit records security-relevant portal events: authentication
// outcomes, authorization denials, legacy role usage and data mutations.
// Events are append-only JSON documents consumed by the club's log pipeline.
package audit

import (
	"encoding/json"
	"time"
)

// EventType represents the category of audit event
type EventType string

const (
	// Authentication events
	EventTypeAuthLogin       EventType = "auth.login"
	EventTypeAuthTokenFailed EventType = "auth.token_failed"

	// Authorization events
	EventTypeAccessDenied    EventType = "authz.access_denied"
	EventTypeLegacyRoleUsage EventType = "authz.legacy_role_usage"

	// Data mutation events
	EventTypeRecordCreate EventType = "data.record_create"
	EventTypeRecordUpdate EventType = "data.record_update"
	EventTypeRecordDelete EventType = "data.record_delete"

	// Field-level filter events
	EventTypeFieldsRejected EventType = "data.fields_rejected"
)

// EventStatus represents the outcome of an event
type EventStatus string

const (
	EventStatusSuccess EventStatus = "success"
	EventStatusFailure EventStatus = "failure"
	EventStatusDenied  EventStatus = "denied"
)

// Event represents a single audit log entry.
type Event struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	EventType EventType   `json:"event_type"`
	Status    EventStatus `json:"status"`

	// Actor information
	Subject     string `json:"subject,omitempty"`
	Email       string `json:"email,omitempty"`
	PrimaryRole string `json:"primary_role,omitempty"`

	// What was attempted
	Function string `json:"function,omitempty"`
	Action   string `json:"action,omitempty"`

	// Resource information
	Collection string `json:"collection,omitempty"`
	RecordID   string `json:"record_id,omitempty"`
	Region     string `json:"region,omitempty"`

	// Request context
	RequestID string `json:"request_id,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`

	// Additional details
	Message        string   `json:"message,omitempty"`
	RejectedFields []string `json:"rejected_fields,omitempty"`
}

// ToJSON converts the event to JSON
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON parses an event from JSON
func FromJSON(data []byte) (*Event, error) {
	var event Event
	err := json.Unmarshal(data, &event)
	return &event, err
}
