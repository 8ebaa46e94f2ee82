package events

import (
	"context"

	"lodgebook/pkg/kafka"
)

const sourceService = "listings"

// KafkaPublisher publishes booking events keyed by booking id.
type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	if err != nil {
		return nil, err
	}
	return &KafkaPublisher{producer: producer}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event BookingEvent) error {
	msg, err := kafka.NewMessage(event.BookingID, event.Type, sourceService, event)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher discards events. Used in tests and when no broker is wired.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, BookingEvent) error { return nil }
func (NoopPublisher) Close() error                                { return nil }
