package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserName(t *testing.T) {
	name := "Alice"
	empty := ""

	assert.Equal(t, "Alice", (&User{UID: "alice", DisplayName: &name}).Name())
	assert.Equal(t, PlaceholderName, (&User{UID: "alice"}).Name())
	assert.Equal(t, PlaceholderName, (&User{UID: "alice", DisplayName: &empty}).Name())

	var nilUser *User
	assert.Equal(t, PlaceholderName, nilUser.Name())
}

func TestUserToken(t *testing.T) {
	token := "device-token"

	assert.Equal(t, "device-token", (&User{UID: "alice", FCMToken: &token}).Token())
	assert.Equal(t, "", (&User{UID: "alice"}).Token())

	var nilUser *User
	assert.Equal(t, "", nilUser.Token())
}
