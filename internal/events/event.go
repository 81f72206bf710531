// Package events publishes pipeline progress to in-process subscribers and
// persists it to the SQLite event log.
package events

import "time"

// Event is the base interface all events implement.
type Event interface {
	EventType() string
	RunID() string // Run that produced the event; "" for standalone commands
	OccurredAt() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	Type      string    `json:"type"`
	Run       string    `json:"run_id"`
	Timestamp time.Time `json:"occurred_at"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) RunID() string         { return e.Run }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent creates a BaseEvent with the current timestamp.
func NewBaseEvent(eventType, runID string) BaseEvent {
	return BaseEvent{
		Type:      eventType,
		Run:       runID,
		Timestamp: time.Now(),
	}
}
