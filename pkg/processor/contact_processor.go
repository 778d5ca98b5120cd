package processor

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/lifecycle"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// ContactProcessor processes CDC events from the contacts table
type ContactProcessor struct {
	logger     ectologger.Logger
	resolver   *lifecycle.Resolver
	dispatcher TransitionHandler
	emitter    TransitionEmitter
}

// NewContactProcessor creates a new contact CDC processor
func NewContactProcessor(logger ectologger.Logger, resolver *lifecycle.Resolver, dispatcher TransitionHandler, emitter TransitionEmitter) *ContactProcessor {
	return &ContactProcessor{
		logger:     logger,
		resolver:   resolver,
		dispatcher: dispatcher,
		emitter:    emitter,
	}
}

// ProcessMessage processes a Debezium CDC event for the contacts table.
// Only creates matter: contact deletion (unfriending) produces no
// notification, and contact rows are never updated in place.
func (p *ContactProcessor) ProcessMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "ContactProcessor.ProcessMessage")
	defer span.End()

	envelope, err := kafka.ParseDebeziumMessage(msg.Value)
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to parse Debezium message")
		metrics.EventsProcessedTotal.WithLabelValues("contacts", metrics.OutcomeError).Inc()
		return err
	}

	if !envelope.Payload.IsCreate() {
		p.logger.WithContext(ctx).WithFields(map[string]any{"op": envelope.Payload.Op}).Debug("Ignoring contact op")
		metrics.EventsProcessedTotal.WithLabelValues("contacts", metrics.OutcomeSkipped).Inc()
		return nil
	}

	row, err := envelope.Payload.ParseContactAfter()
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to parse contact row")
		metrics.EventsProcessedTotal.WithLabelValues("contacts", metrics.OutcomeError).Inc()
		return err
	}
	if row == nil || !row.IsValid() {
		p.logger.WithContext(ctx).Warn("Contact create event has no usable after image")
		metrics.EventsProcessedTotal.WithLabelValues("contacts", metrics.OutcomeSkipped).Inc()
		return nil
	}

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"owner_uid": row.OwnerUID,
		"other_uid": row.OtherUID,
		"is_sender": row.IsSender,
	})
	log.Debug("Processing contact creation")

	transition := p.resolver.ClassifyContactCreated(row.OwnerUID, row.OtherUID, row.IsSender)
	return handleTransition(ctx, p.logger, p.dispatcher, p.emitter, "contacts", transition)
}
