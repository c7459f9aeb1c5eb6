package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"tourplanner/internal/config"
)

// EventPublisher hands events to the booking side.
type EventPublisher interface {
	Publish(ctx context.Context, key, value []byte) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

// NewEventPublisher returns a publisher that drops events when no brokers are
// configured.
func NewEventPublisher(cfg config.Config) EventPublisher {
	if len(cfg.Kafka.Brokers) == 0 {
		return noopPublisher{}
	}
	return &kafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Kafka.Brokers...),
		Topic:                  cfg.Kafka.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            5,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: true,
	}}
}

func (p *kafkaPublisher) Publish(ctx context.Context, key, value []byte) error {
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, []byte, []byte) error { return nil }

func (noopPublisher) Close() error { return nil }
