package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Relay forwards notification messages consumed from Kafka to the subscriber
// channel named by their topic.
type Relay struct {
	target Publisher
}

func NewRelay(target Publisher) *Relay {
	return &Relay{target: target}
}

// HandleMessage processes one Kafka message. Malformed messages are dropped.
func (r *Relay) HandleMessage(ctx context.Context, key, value []byte) error {
	var msg Message
	if err := json.Unmarshal(value, &msg); err != nil {
		slog.WarnContext(ctx, "dropping malformed notification", "component", "Relay", "error", err)
		return nil
	}

	topic := msg.Topic
	if topic == "" {
		topic = string(key)
	}
	if !IsTopic(topic) {
		slog.WarnContext(ctx, "dropping notification without topic", "component", "Relay", "key", string(key))
		return nil
	}

	if err := r.target.Publish(ctx, topic, json.RawMessage(value)); err != nil {
		return fmt.Errorf("relay to %s: %w", topic, err)
	}

	slog.DebugContext(ctx, "notification relayed", "component", "Relay", "topic", topic, "order_id", msg.OrderID)
	return nil
}
