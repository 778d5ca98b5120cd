package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestFCMClient_Send(t *testing.T) {
	var got fcmRequest
	var auth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(fcmResponse{Success: 1})
	}))
	defer server.Close()

	client := NewFCMClient(FCMConfig{
		Endpoint:  server.URL,
		ServerKey: "test-key",
		Timeout:   time.Second,
	}, noopLogger())

	err := client.Send(context.Background(), &Notification{
		Token: "device-token",
		Title: "New friend request",
		Body:  "Alice sent you a friend request",
		Data:  map[string]string{"type": "friend_request", "uid": "alice"},
	})
	require.NoError(t, err)

	assert.Equal(t, "key=test-key", auth)
	assert.Equal(t, "device-token", got.To)
	assert.Equal(t, "New friend request", got.Notification.Title)
	assert.Equal(t, "Alice sent you a friend request", got.Notification.Body)
	assert.Equal(t, map[string]string{"type": "friend_request", "uid": "alice"}, got.Data)
}

func TestFCMClient_SendNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewFCMClient(FCMConfig{Endpoint: server.URL, ServerKey: "bad-key"}, noopLogger())

	err := client.Send(context.Background(), &Notification{Token: "device-token"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestFCMClient_SendRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(fcmResponse{Success: 0, Failure: 1})
	}))
	defer server.Close()

	client := NewFCMClient(FCMConfig{Endpoint: server.URL, ServerKey: "test-key"}, noopLogger())

	err := client.Send(context.Background(), &Notification{Token: "stale-token"})
	assert.Error(t, err)
}

func TestFCMClient_SendTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := NewFCMClient(FCMConfig{Endpoint: server.URL, ServerKey: "test-key"}, noopLogger())

	err := client.Send(context.Background(), &Notification{Token: "device-token"})
	assert.Error(t, err)
}
