package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/lifecycle"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// EventType defines the type of friendship event
type EventType string

const (
	EventTypeFriendshipRequested EventType = "friendship.requested"
	EventTypeFriendshipAccepted  EventType = "friendship.accepted"
	EventTypeFriendshipRefused   EventType = "friendship.refused"
)

// EventTypeForKind maps a lifecycle transition kind to its event type.
// Returns "" for unknown kinds.
func EventTypeForKind(kind lifecycle.TransitionKind) EventType {
	switch kind {
	case lifecycle.RequestCreated:
		return EventTypeFriendshipRequested
	case lifecycle.RequestAccepted:
		return EventTypeFriendshipAccepted
	case lifecycle.RequestRefused:
		return EventTypeFriendshipRefused
	default:
		return ""
	}
}

// BaseEvent contains common fields for all friendship events
type BaseEvent struct {
	EventID       string    `json:"event_id"`
	EventType     EventType `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		Timestamp:     time.Now().UTC(),
	}
}
