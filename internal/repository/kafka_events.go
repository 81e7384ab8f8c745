package repository

import (
	"context"

	"FxSignals/internal/domain/models"
	"FxSignals/internal/domain/repository"
	pkgkafka "FxSignals/pkg/kafka"
)

// MessageWriter is the part of the Kafka producer used for events.
type MessageWriter interface {
	Publish(ctx context.Context, m pkgkafka.Message) error
	Close() error
}

// KafkaEvents publishes lifecycle events keyed by submission id, so the events
// of one submission stay on one partition in order.
type KafkaEvents struct {
	producer MessageWriter
}

func NewKafkaEvents(producer MessageWriter) *KafkaEvents {
	return &KafkaEvents{producer: producer}
}

func (p *KafkaEvents) Publish(ctx context.Context, e models.Event) error {
	return p.producer.Publish(ctx, pkgkafka.Message{
		Key:   []byte(e.SubmissionID),
		Value: e,
		Headers: map[string]string{
			"event_type": e.Type,
		},
	})
}

func (p *KafkaEvents) Close() error {
	return p.producer.Close()
}

var _ repository.EventPublisher = (*KafkaEvents)(nil)
