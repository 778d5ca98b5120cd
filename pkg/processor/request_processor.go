// Package processor consumes Debezium CDC events for friend request and
// contact tables, classifies them into lifecycle transitions, and hands
// fresh transitions to the notification dispatcher and event emitter.
package processor

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/lifecycle"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// TransitionHandler receives fresh transitions. Dispatch errors are returned
// so the triggering message can be redelivered.
type TransitionHandler interface {
	Dispatch(ctx context.Context, transition *lifecycle.Transition) error
}

// TransitionEmitter publishes domain events for fresh transitions
type TransitionEmitter interface {
	EmitTransition(ctx context.Context, transition *lifecycle.Transition) error
}

// RequestProcessor processes CDC events from the friend_requests table
type RequestProcessor struct {
	logger     ectologger.Logger
	resolver   *lifecycle.Resolver
	dispatcher TransitionHandler
	emitter    TransitionEmitter
}

// NewRequestProcessor creates a new friend request CDC processor
func NewRequestProcessor(logger ectologger.Logger, resolver *lifecycle.Resolver, dispatcher TransitionHandler, emitter TransitionEmitter) *RequestProcessor {
	return &RequestProcessor{
		logger:     logger,
		resolver:   resolver,
		dispatcher: dispatcher,
		emitter:    emitter,
	}
}

// ProcessMessage processes a Debezium CDC event for the friend_requests table.
// Creates classify from the after image, deletes from the before image.
// Updates are ignored: a friend request row is never meaningfully updated.
func (p *RequestProcessor) ProcessMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "RequestProcessor.ProcessMessage")
	defer span.End()

	envelope, err := kafka.ParseDebeziumMessage(msg.Value)
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to parse Debezium message")
		metrics.EventsProcessedTotal.WithLabelValues("friend_requests", metrics.OutcomeError).Inc()
		return err
	}

	switch {
	case envelope.Payload.IsCreate():
		return p.processCreate(ctx, &envelope.Payload)
	case envelope.Payload.IsDelete():
		return p.processDelete(ctx, &envelope.Payload)
	default:
		p.logger.WithContext(ctx).WithFields(map[string]any{"op": envelope.Payload.Op}).Debug("Ignoring friend request op")
		metrics.EventsProcessedTotal.WithLabelValues("friend_requests", metrics.OutcomeSkipped).Inc()
		return nil
	}
}

func (p *RequestProcessor) processCreate(ctx context.Context, payload *kafka.DebeziumPayload) error {
	row, err := payload.ParseFriendRequestAfter()
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to parse friend request row")
		metrics.EventsProcessedTotal.WithLabelValues("friend_requests", metrics.OutcomeError).Inc()
		return err
	}
	if row == nil || !row.IsValid() {
		p.logger.WithContext(ctx).Warn("Friend request create event has no usable after image")
		metrics.EventsProcessedTotal.WithLabelValues("friend_requests", metrics.OutcomeSkipped).Inc()
		return nil
	}

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"receiver_uid": row.ReceiverUID,
		"sender_uid":   row.SenderUID,
	})
	log.Debug("Processing friend request creation")

	transition := p.resolver.ClassifyRequestCreated(row.ReceiverUID, row.SenderUID)
	return p.handleTransition(ctx, "friend_requests", transition)
}

func (p *RequestProcessor) processDelete(ctx context.Context, payload *kafka.DebeziumPayload) error {
	row, err := payload.ParseFriendRequestBefore()
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to parse friend request row")
		metrics.EventsProcessedTotal.WithLabelValues("friend_requests", metrics.OutcomeError).Inc()
		return err
	}
	if row == nil || !row.IsValid() {
		p.logger.WithContext(ctx).Warn("Friend request delete event has no usable before image")
		metrics.EventsProcessedTotal.WithLabelValues("friend_requests", metrics.OutcomeSkipped).Inc()
		return nil
	}

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"receiver_uid": row.ReceiverUID,
		"sender_uid":   row.SenderUID,
	})
	log.Debug("Processing friend request deletion")

	transition := p.resolver.ClassifyRequestDeleted(ctx, row.ReceiverUID, row.SenderUID)
	return p.handleTransition(ctx, "friend_requests", transition)
}

func (p *RequestProcessor) handleTransition(ctx context.Context, stream string, transition *lifecycle.Transition) error {
	return handleTransition(ctx, p.logger, p.dispatcher, p.emitter, stream, transition)
}

func handleTransition(ctx context.Context, logger ectologger.Logger, dispatcher TransitionHandler, emitter TransitionEmitter, stream string, transition *lifecycle.Transition) error {
	if transition == nil {
		metrics.EventsProcessedTotal.WithLabelValues(stream, metrics.OutcomeSuppressed).Inc()
		return nil
	}

	if err := dispatcher.Dispatch(ctx, transition); err != nil {
		metrics.EventsProcessedTotal.WithLabelValues(stream, metrics.OutcomeError).Inc()
		return err
	}

	// Event emission failures never fail the handler: the notification has
	// already gone out and a redelivery would duplicate it.
	if emitter != nil {
		if err := emitter.EmitTransition(ctx, transition); err != nil {
			logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"kind": string(transition.Kind)}).Warn("Continuing after event emission failure")
		}
	}

	metrics.EventsProcessedTotal.WithLabelValues(stream, metrics.OutcomeNotified).Inc()
	return nil
}
