package models

import "time"

// User is a social-app user record. Clover only ever reads it: display name
// for notification bodies, fcm_token for delivery. A user with no token is
// simply unreachable, not an error.
type User struct {
	UID         string    `json:"uid" db:"uid"`
	DisplayName *string   `json:"display_name,omitempty" db:"display_name"`
	FCMToken    *string   `json:"fcm_token,omitempty" db:"fcm_token"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Name returns the display name or the fixed placeholder when absent.
func (u *User) Name() string {
	if u == nil || u.DisplayName == nil || *u.DisplayName == "" {
		return PlaceholderName
	}
	return *u.DisplayName
}

// Token returns the push token, empty when the user is unreachable.
func (u *User) Token() string {
	if u == nil || u.FCMToken == nil {
		return ""
	}
	return *u.FCMToken
}

// PlaceholderName is used in notification bodies when a user has no display name.
const PlaceholderName = "Someone"
