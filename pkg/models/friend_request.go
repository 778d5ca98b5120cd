package models

import "time"

// FriendRequest is a pending, directional ask from sender to receiver. The
// row is keyed (receiver_uid, sender_uid): it lives under the receiver's
// side of the graph, matching where the mobile app writes it.
//
// The social application deletes the row either when the receiver refuses,
// or as cleanup once the request was accepted and the contact rows exist.
// Clover tells those two deletions apart; see pkg/lifecycle.
type FriendRequest struct {
	ReceiverUID string    `json:"receiver_uid" db:"receiver_uid"`
	SenderUID   string    `json:"sender_uid" db:"sender_uid"`
	Message     *string   `json:"message,omitempty" db:"message"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
