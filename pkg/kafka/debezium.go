package kafka

import (
	"encoding/json"
	"time"

	"github.com/Ramsey-B/clover/pkg/models"
)

// DebeziumEnvelope is the standard Debezium CDC message format
type DebeziumEnvelope struct {
	Schema  json.RawMessage `json:"schema,omitempty"`
	Payload DebeziumPayload `json:"payload"`
}

// DebeziumPayload contains the before/after state of a row
type DebeziumPayload struct {
	Before json.RawMessage `json:"before"`
	After  json.RawMessage `json:"after"`
	Source DebeziumSource  `json:"source"`
	Op     string          `json:"op"` // c=create, u=update, d=delete, r=read (snapshot)
	TsMs   int64           `json:"ts_ms"`
}

// DebeziumSource contains metadata about the source of the change
type DebeziumSource struct {
	Version   string `json:"version"`
	Connector string `json:"connector"`
	Name      string `json:"name"`
	TsMs      int64  `json:"ts_ms"`
	Snapshot  string `json:"snapshot,omitempty"`
	Db        string `json:"db"`
	Schema    string `json:"schema"`
	Table     string `json:"table"`
	TxId      int64  `json:"txId,omitempty"`
	Lsn       int64  `json:"lsn,omitempty"`
}

// IsCreate returns true if this is a create operation
func (p *DebeziumPayload) IsCreate() bool {
	return p.Op == "c" || p.Op == "r"
}

// IsUpdate returns true if this is an update operation
func (p *DebeziumPayload) IsUpdate() bool {
	return p.Op == "u"
}

// IsDelete returns true if this is a delete operation
func (p *DebeziumPayload) IsDelete() bool {
	return p.Op == "d"
}

// Timestamp returns the event timestamp
func (p *DebeziumPayload) Timestamp() time.Time {
	return time.UnixMilli(p.TsMs)
}

// ParseDebeziumMessage parses a raw Kafka message as a Debezium envelope
func ParseDebeziumMessage(data []byte) (*DebeziumEnvelope, error) {
	var envelope DebeziumEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// FriendRequestRow represents a row from the friend_requests table
type FriendRequestRow struct {
	ReceiverUID string  `json:"receiver_uid"`
	SenderUID   string  `json:"sender_uid"`
	Message     *string `json:"message"`
	CreatedAt   string  `json:"created_at"`
}

// IsValid reports whether the row carries both key halves. Debezium delete
// events only include the full row when REPLICA IDENTITY FULL is set; with
// the default identity the before-image still has the primary key, which is
// all the resolver needs.
func (r *FriendRequestRow) IsValid() bool {
	return r.ReceiverUID != "" && r.SenderUID != ""
}

// ToFriendRequest converts the Debezium row to a FriendRequest model
func (r *FriendRequestRow) ToFriendRequest() *models.FriendRequest {
	return &models.FriendRequest{
		ReceiverUID: r.ReceiverUID,
		SenderUID:   r.SenderUID,
		Message:     r.Message,
		CreatedAt:   parseDebeziumTimestamp(r.CreatedAt),
	}
}

// ContactRow represents a row from the contacts table
type ContactRow struct {
	OwnerUID  string `json:"owner_uid"`
	OtherUID  string `json:"other_uid"`
	IsSender  bool   `json:"is_sender"`
	CreatedAt string `json:"created_at"`
}

func (r *ContactRow) IsValid() bool {
	return r.OwnerUID != "" && r.OtherUID != ""
}

// ToContact converts the Debezium row to a Contact model
func (r *ContactRow) ToContact() *models.Contact {
	return &models.Contact{
		OwnerUID:  r.OwnerUID,
		OtherUID:  r.OtherUID,
		IsSender:  r.IsSender,
		CreatedAt: parseDebeziumTimestamp(r.CreatedAt),
	}
}

// ParseFriendRequestRow parses the given row image as a FriendRequestRow.
// Returns nil when the image is absent (e.g. After on a delete event).
func parseFriendRequestRow(raw json.RawMessage) (*FriendRequestRow, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var row FriendRequestRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// ParseFriendRequestAfter parses the After payload as a FriendRequestRow
func (p *DebeziumPayload) ParseFriendRequestAfter() (*FriendRequestRow, error) {
	return parseFriendRequestRow(p.After)
}

// ParseFriendRequestBefore parses the Before payload as a FriendRequestRow
func (p *DebeziumPayload) ParseFriendRequestBefore() (*FriendRequestRow, error) {
	return parseFriendRequestRow(p.Before)
}

// ParseContactAfter parses the After payload as a ContactRow
func (p *DebeziumPayload) ParseContactAfter() (*ContactRow, error) {
	if len(p.After) == 0 || string(p.After) == "null" {
		return nil, nil
	}
	var row ContactRow
	if err := json.Unmarshal(p.After, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// parseDebeziumTimestamp parses a timestamp string from Debezium.
// Debezium can send timestamps in various formats depending on the connector config.
func parseDebeziumTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999Z",
		"2006-01-02T15:04:05.999999",
		"2006-01-02 15:04:05.999999",
		"2006-01-02 15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}

	return time.Time{}
}
