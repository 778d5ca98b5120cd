// Package push delivers notifications to user devices. Delivery is
// fire-and-forget: failures are reported to the caller for logging but
// nothing is retried or persisted.
package push

import "context"

// Notification is a single push message for one device token
type Notification struct {
	Token string
	Title string
	Body  string
	// Data is machine-readable metadata for client-side deep linking
	Data map[string]string
}

// Sender sends a notification to a device token
type Sender interface {
	Send(ctx context.Context, n *Notification) error
}
