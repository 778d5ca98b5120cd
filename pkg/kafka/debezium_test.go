package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDebeziumMessage_FriendRequestCreate(t *testing.T) {
	raw := []byte(`{
		"payload": {
			"before": null,
			"after": {"receiver_uid": "bob", "sender_uid": "alice", "message": "hi", "created_at": "2026-08-01T10:00:00Z"},
			"source": {"connector": "postgresql", "db": "clover", "schema": "public", "table": "friend_requests"},
			"op": "c",
			"ts_ms": 1754042400000
		}
	}`)

	envelope, err := ParseDebeziumMessage(raw)
	require.NoError(t, err)
	assert.True(t, envelope.Payload.IsCreate())
	assert.False(t, envelope.Payload.IsDelete())

	row, err := envelope.Payload.ParseFriendRequestAfter()
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.True(t, row.IsValid())
	assert.Equal(t, "bob", row.ReceiverUID)
	assert.Equal(t, "alice", row.SenderUID)

	request := row.ToFriendRequest()
	require.NotNil(t, request.Message)
	assert.Equal(t, "hi", *request.Message)
	assert.Equal(t, time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), request.CreatedAt)
}

func TestParseDebeziumMessage_FriendRequestDelete(t *testing.T) {
	raw := []byte(`{
		"payload": {
			"before": {"receiver_uid": "bob", "sender_uid": "alice"},
			"after": null,
			"op": "d",
			"ts_ms": 1754042400000
		}
	}`)

	envelope, err := ParseDebeziumMessage(raw)
	require.NoError(t, err)
	assert.True(t, envelope.Payload.IsDelete())

	after, err := envelope.Payload.ParseFriendRequestAfter()
	require.NoError(t, err)
	assert.Nil(t, after)

	before, err := envelope.Payload.ParseFriendRequestBefore()
	require.NoError(t, err)
	require.NotNil(t, before)
	assert.True(t, before.IsValid())
	assert.Equal(t, "bob", before.ReceiverUID)
	assert.Equal(t, "alice", before.SenderUID)
}

func TestParseDebeziumMessage_SnapshotReadCountsAsCreate(t *testing.T) {
	raw := []byte(`{"payload": {"after": {"receiver_uid": "bob", "sender_uid": "alice"}, "op": "r"}}`)

	envelope, err := ParseDebeziumMessage(raw)
	require.NoError(t, err)
	assert.True(t, envelope.Payload.IsCreate())
}

func TestParseDebeziumMessage_ContactCreate(t *testing.T) {
	raw := []byte(`{
		"payload": {
			"before": null,
			"after": {"owner_uid": "bob", "other_uid": "alice", "is_sender": true, "created_at": "2026-08-01 10:00:00"},
			"op": "c"
		}
	}`)

	envelope, err := ParseDebeziumMessage(raw)
	require.NoError(t, err)

	row, err := envelope.Payload.ParseContactAfter()
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.True(t, row.IsValid())
	assert.Equal(t, "bob", row.OwnerUID)
	assert.Equal(t, "alice", row.OtherUID)
	assert.True(t, row.IsSender)

	contact := row.ToContact()
	assert.Equal(t, time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), contact.CreatedAt)
}

func TestParseDebeziumMessage_Invalid(t *testing.T) {
	_, err := ParseDebeziumMessage([]byte(`not json`))
	assert.Error(t, err)
}

func TestFriendRequestRow_MissingKeyIsInvalid(t *testing.T) {
	row := &FriendRequestRow{ReceiverUID: "bob"}
	assert.False(t, row.IsValid())
}

func TestParseDebeziumTimestamp_Formats(t *testing.T) {
	cases := map[string]string{
		"rfc3339":      "2026-08-01T10:00:00Z",
		"micros":       "2026-08-01T10:00:00.000000Z",
		"no zone":      "2026-08-01T10:00:00",
		"space format": "2026-08-01 10:00:00",
	}
	want := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, parseDebeziumTimestamp(value))
		})
	}

	assert.True(t, parseDebeziumTimestamp("").IsZero())
	assert.True(t, parseDebeziumTimestamp("garbage").IsZero())
}
