package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// EventChannel publishes alerts as JSON events to a Kafka topic, keyed by
// service so per-service ordering is preserved.
type EventChannel struct {
	writer *kafka.Writer
}

// NewEventChannel creates the Kafka channel.
func NewEventChannel(brokers []string, topic string) *EventChannel {
	return &EventChannel{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Name identifies the channel.
func (c *EventChannel) Name() string { return "event" }

// Send publishes the alert.
func (c *EventChannel) Send(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	err = c.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(alert.ServiceKey),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish alert event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (c *EventChannel) Close() error {
	return c.writer.Close()
}
