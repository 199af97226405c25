// Package events publishes domain events to Kafka for downstream consumers
// (notifications, archival). Delivery is best effort and fully optional: a
// nil Publisher is valid and does nothing.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher returns nil when no brokers are configured.
func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &Publisher{writer: w}
}

func (p *Publisher) Publish(ctx context.Context, event string, payload any) error {
	if p == nil || p.writer == nil {
		return nil
	}
	b, err := json.Marshal(map[string]any{
		"event":   event,
		"payload": payload,
		"at":      time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event),
		Value: b,
		Time:  time.Now(),
	})
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
