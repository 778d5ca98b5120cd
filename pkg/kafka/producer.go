package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Producer handles Kafka event emission
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	requiredAcks := kafka.RequiredAcks(cfg.RequiredAcks)

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           requiredAcks,
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.Topic,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// FriendshipEvent is the canonical domain event published for every resolved
// lifecycle transition, keyed by the (sender, receiver) pair so all events
// for one relationship land on the same partition.
type FriendshipEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"` // friendship.requested, friendship.accepted, friendship.refused
	SenderUID   string    `json:"sender_uid"`
	ReceiverUID string    `json:"receiver_uid"`
	ActorUID    string    `json:"actor_uid"`
	Timestamp   time.Time `json:"timestamp"`
}

// PublishFriendshipEvent publishes a friendship event to Kafka
func (p *Producer) PublishFriendshipEvent(ctx context.Context, event *FriendshipEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishFriendshipEvent")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.SenderUID + "|" + event.ReceiverUID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "actor_uid", Value: []byte(event.ActorUID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type": event.EventType,
			"topic":      p.topic,
		}).Error("Failed to publish friendship event")
		return err
	}

	return nil
}
