package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func receive(t *testing.T, sub *redis.PubSub) string {
	t.Helper()
	select {
	case msg := <-sub.Channel():
		return msg.Payload
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
		return ""
	}
}

func TestPublisher_Publish(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	publisher := NewPublisherFromClient(client)
	require.NoError(t, publisher.Ping(ctx))

	sub := client.Subscribe(ctx, "/topic/order-paid/10")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	// structs are encoded as JSON
	require.NoError(t, publisher.Publish(ctx, "/topic/order-paid/10", map[string]any{"orderId": 42}))
	assert.JSONEq(t, `{"orderId":42}`, receive(t, sub))

	// raw JSON is forwarded unchanged
	raw := json.RawMessage(`{"orderId":43,"message":"hi"}`)
	require.NoError(t, publisher.Publish(ctx, "/topic/order-paid/10", raw))
	assert.Equal(t, string(raw), receive(t, sub))
}
