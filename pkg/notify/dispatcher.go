// Package notify turns lifecycle transitions into push notifications.
package notify

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/lifecycle"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/push"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// UserGetter resolves users for delivery
type UserGetter interface {
	Get(ctx context.Context, uid string) (*models.User, error)
}

// Dispatcher resolves recipients and sends push notifications for transitions
type Dispatcher struct {
	users  UserGetter
	sender push.Sender
	logger ectologger.Logger
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(users UserGetter, sender push.Sender, logger ectologger.Logger) *Dispatcher {
	return &Dispatcher{
		users:  users,
		sender: sender,
		logger: logger,
	}
}

// Dispatch sends the push notification for a transition. A missing recipient
// or missing device token is a silent no-op. User store failures are returned
// so the triggering event can be redelivered; push transport failures are
// logged and swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, transition *lifecycle.Transition) error {
	if transition == nil {
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "notify.Dispatcher.Dispatch")
	defer span.End()

	log := d.logger.WithContext(ctx).WithFields(map[string]any{
		"kind":          string(transition.Kind),
		"actor_uid":     transition.ActorUID,
		"recipient_uid": transition.RecipientUID,
	})

	recipient, err := d.users.Get(ctx, transition.RecipientUID)
	if err != nil {
		return err
	}
	if recipient == nil {
		metrics.NotificationsSkippedTotal.WithLabelValues(metrics.ReasonMissingUser).Inc()
		log.Debug("Recipient not found, skipping notification")
		return nil
	}

	token := recipient.Token()
	if token == "" {
		metrics.NotificationsSkippedTotal.WithLabelValues(metrics.ReasonNoToken).Inc()
		log.Debug("Recipient has no device token, skipping notification")
		return nil
	}

	actor, err := d.users.Get(ctx, transition.ActorUID)
	if err != nil {
		return err
	}

	actorName := models.PlaceholderName
	if actor != nil {
		actorName = actor.Name()
	}

	notification := buildNotification(transition, token, actorName)
	if notification == nil {
		log.Warn("Unknown transition kind, skipping notification")
		return nil
	}

	if err := d.sender.Send(ctx, notification); err != nil {
		metrics.NotificationsSkippedTotal.WithLabelValues(metrics.ReasonSendFailed).Inc()
		log.WithError(err).Error("Failed to send push notification")
		return nil
	}

	metrics.NotificationsSentTotal.WithLabelValues(string(transition.Kind)).Inc()
	log.Info("Sent push notification")
	return nil
}

func buildNotification(transition *lifecycle.Transition, token, actorName string) *push.Notification {
	var title, body, dataType string
	switch transition.Kind {
	case lifecycle.RequestCreated:
		title = "New friend request"
		body = fmt.Sprintf("%s sent you a friend request", actorName)
		dataType = "friend_request"
	case lifecycle.RequestAccepted:
		title = "Request accepted"
		body = fmt.Sprintf("%s accepted your friend request", actorName)
		dataType = "friend_accept"
	case lifecycle.RequestRefused:
		title = "Request refused"
		body = fmt.Sprintf("%s refused your friend request", actorName)
		dataType = "friend_refuse"
	default:
		return nil
	}

	return &push.Notification{
		Token: token,
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type": dataType,
			"uid":  transition.ActorUID,
		},
	}
}
