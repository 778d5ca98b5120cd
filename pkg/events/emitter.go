// Package events handles domain event emission for friendship lifecycle changes
package events

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/lifecycle"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Emitter publishes friendship events for resolved transitions
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitTransition publishes the friendship event for a transition. The sender
// and receiver of the underlying request are recovered from the transition:
// on creation the actor is the sender, on acceptance and refusal the actor is
// the receiver.
func (e *Emitter) EmitTransition(ctx context.Context, transition *lifecycle.Transition) error {
	if transition == nil {
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitTransition")
	defer span.End()

	eventType := EventTypeForKind(transition.Kind)
	if eventType == "" {
		e.logger.WithContext(ctx).WithFields(map[string]any{"kind": string(transition.Kind)}).Warn("Unknown transition kind, not emitting event")
		return nil
	}

	senderUID := transition.ActorUID
	receiverUID := transition.RecipientUID
	if transition.Kind != lifecycle.RequestCreated {
		senderUID, receiverUID = receiverUID, senderUID
	}

	event := &kafka.FriendshipEvent{
		EventID:     uuid.New().String(),
		EventType:   string(eventType),
		SenderUID:   senderUID,
		ReceiverUID: receiverUID,
		ActorUID:    transition.ActorUID,
	}

	if err := e.producer.PublishFriendshipEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"event_type": string(eventType)}).Error("Failed to emit friendship event")
		return err
	}

	return nil
}
