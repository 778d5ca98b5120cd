package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/clover/pkg/lifecycle"
)

func TestEventTypeForKind(t *testing.T) {
	assert.Equal(t, EventTypeFriendshipRequested, EventTypeForKind(lifecycle.RequestCreated))
	assert.Equal(t, EventTypeFriendshipAccepted, EventTypeForKind(lifecycle.RequestAccepted))
	assert.Equal(t, EventTypeFriendshipRefused, EventTypeForKind(lifecycle.RequestRefused))
	assert.Equal(t, EventType(""), EventTypeForKind(lifecycle.TransitionKind("bogus")))
}

func TestNewBaseEvent(t *testing.T) {
	event := NewBaseEvent(EventTypeFriendshipRequested)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, EventTypeFriendshipRequested, event.EventType)
	assert.Equal(t, SchemaVersion, event.SchemaVersion)
	assert.False(t, event.Timestamp.IsZero())
}
