package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher sends messages to Redis pub/sub channels
type Publisher struct {
	client *redis.Client
}

func NewPublisher(addr string) *Publisher {
	return &Publisher{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// NewPublisherFromClient wraps an existing client
func NewPublisherFromClient(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish sends event as JSON to the channel. Raw bytes are sent unchanged.
func (p *Publisher) Publish(ctx context.Context, channel string, event any) error {
	var payload any
	switch v := event.(type) {
	case []byte:
		payload = v
	case json.RawMessage:
		payload = []byte(v)
	default:
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}
		payload = data
	}

	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %q: %w", channel, err)
	}
	return nil
}

func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *Publisher) Close() error {
	return p.client.Close()
}
