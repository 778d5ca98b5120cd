package models

import "time"

// Contact is a confirmed relationship record, written per owner: accepting a
// request creates one row under each party. IsSender is true on the row that
// belongs to the accepter (the side that performed the accept); the
// requester's mirror row carries false. The flag lets the resolver pick the
// one row that should notify without consulting the (already deleted)
// request record.
type Contact struct {
	OwnerUID  string    `json:"owner_uid" db:"owner_uid"`
	OtherUID  string    `json:"other_uid" db:"other_uid"`
	IsSender  bool      `json:"is_sender" db:"is_sender"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
