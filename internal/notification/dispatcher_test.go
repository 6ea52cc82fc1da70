package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/example/marketplace-orders/internal/domain/order"
	storemocks "github.com/example/marketplace-orders/internal/infrastructure/store/mocks"
	"github.com/example/marketplace-orders/internal/metrics"
	"github.com/example/marketplace-orders/internal/notification/mocks"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher() (*Dispatcher, *mocks.MockPublisher, *mocks.MockMailer, *metrics.Metrics) {
	publisher := mocks.NewMockPublisher()
	mailer := mocks.NewMockMailer()
	catalog := storemocks.NewMockCatalog()
	catalog.AddUser(7, "Asha", "Rao", "asha@example.com")
	m := metrics.NewNop()

	return NewDispatcher(publisher, mailer, catalog, m), publisher, mailer, m
}

func messageFor(t *testing.T, publisher *mocks.MockPublisher, topic string) Message {
	t.Helper()
	for _, c := range publisher.Calls() {
		if c.Topic == topic {
			msg, ok := c.Payload.(Message)
			require.True(t, ok)
			return msg
		}
	}
	t.Fatalf("nothing published to %s", topic)
	return Message{}
}

// ============================================
// Topic Tests
// ============================================

func TestTopics(t *testing.T) {
	assert.Equal(t, "/topic/order-paid/3", OrderPaidTopic(3))
	assert.Equal(t, "/topic/order-confirmed/7", OrderConfirmedTopic(7))
	assert.Equal(t, "/topic/order-packed/9", OrderPackedTopic(9))
	assert.True(t, IsTopic("/topic/order-paid/3"))
	assert.False(t, IsTopic("/topic/"))
	assert.False(t, IsTopic("order-paid/3"))
}

// ============================================
// Dispatch Tests
// ============================================

func TestDispatcher_OrderPaidFanOut(t *testing.T) {
	d, publisher, _, m := newTestDispatcher()
	o := &order.Order{
		ID:     42,
		UserID: 7,
		Status: order.StatusPending,
		Items: []order.Item{
			{ID: 1, ProductName: "Tomatoes", VendorID: 10, Quantity: 2},
			{ID: 2, ProductName: "Onions", VendorID: 11, Quantity: 1},
		},
	}
	events, err := o.Pay("pay_1")
	require.NoError(t, err)

	d.Dispatch(context.Background(), events)

	assert.ElementsMatch(t, []string{
		"/topic/order-paid/10",
		"/topic/order-paid/11",
		"/topic/order-confirmed/7",
	}, publisher.Topics())

	vendorMsg := messageFor(t, publisher, "/topic/order-paid/10")
	assert.Equal(t, "💰 New order #42 paid by Asha for: Tomatoes x2, Onions x1", vendorMsg.Message)
	assert.Equal(t, int64(42), vendorMsg.OrderID)
	assert.NotEmpty(t, vendorMsg.ID)

	buyerMsg := messageFor(t, publisher, "/topic/order-confirmed/7")
	assert.Equal(t, "🎉 Your payment for order #42 was successful!", buyerMsg.Message)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Notifications.WithLabelValues("publish", "success")))
}

func TestDispatcher_PackEvents(t *testing.T) {
	d, publisher, mailer, _ := newTestDispatcher()
	paymentID := "pay_1"
	o := &order.Order{
		ID: 42, UserID: 7, Status: order.StatusPaid, PaymentID: &paymentID,
		Items: []order.Item{{ID: 5, ProductName: "Onions", VendorID: 11, Quantity: 1}},
	}
	packEvents, err := o.Pack()
	require.NoError(t, err)
	itemEvents, err := o.PackItem(5)
	require.NoError(t, err)

	d.Dispatch(context.Background(), append(packEvents, itemEvents...))

	assert.ElementsMatch(t, []string{"/topic/order-packed/7", "/topic/order-packed/11"}, publisher.Topics())
	assert.Equal(t, "🎉 Your order #42 has been packed!", messageFor(t, publisher, "/topic/order-packed/7").Message)
	assert.Equal(t, "📦 Item packed: Onions", messageFor(t, publisher, "/topic/order-packed/11").Message)

	require.Len(t, mailer.Calls(), 1)
	assert.Equal(t, mocks.SendCall{To: "asha@example.com", FirstName: "Asha", OrderID: 42}, mailer.Calls()[0])
}

func TestDispatcher_FailuresAreSwallowed(t *testing.T) {
	d, publisher, mailer, m := newTestDispatcher()
	publisher.PublishErr = errors.New("broker down")
	mailer.SendErr = errors.New("smtp down")

	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), []order.Event{
			{Kind: order.EventPaymentConfirmed, OrderID: 1, UserID: 7},
			{Kind: order.EventPackingEmail, OrderID: 1, UserID: 7},
		})
	})

	assert.Len(t, publisher.Calls(), 1)
	assert.Len(t, mailer.Calls(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("publish", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("email", "error")))
}

func TestDispatcher_UnknownBuyer(t *testing.T) {
	d, publisher, mailer, _ := newTestDispatcher()

	d.Dispatch(context.Background(), []order.Event{
		{Kind: order.EventOrderPaid, OrderID: 1, UserID: 99, VendorID: 3, Lines: []order.Line{{ProductName: "Rice", Quantity: 1}}},
		{Kind: order.EventPackingEmail, OrderID: 1, UserID: 99},
	})

	assert.Equal(t, "💰 New order #1 paid by a customer for: Rice x1", messageFor(t, publisher, "/topic/order-paid/3").Message)
	assert.Empty(t, mailer.Calls())
}

func TestDispatcher_CancelledContextStillDelivers(t *testing.T) {
	d, publisher, _, _ := newTestDispatcher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d.Dispatch(ctx, []order.Event{{Kind: order.EventPaymentConfirmed, OrderID: 1, UserID: 7}})

	assert.Len(t, publisher.Calls(), 1)
}

// ============================================
// Relay Tests
// ============================================

func TestRelay_HandleMessage(t *testing.T) {
	target := mocks.NewMockPublisher()
	relay := NewRelay(target)
	msg := newMessage(OrderConfirmedTopic(7), 42, paymentConfirmedText(42))
	value, err := json.Marshal(msg)
	require.NoError(t, err)

	err = relay.HandleMessage(context.Background(), []byte(msg.Topic), value)

	require.NoError(t, err)
	require.Len(t, target.Calls(), 1)
	assert.Equal(t, "/topic/order-confirmed/7", target.Calls()[0].Topic)
	assert.JSONEq(t, string(value), string(target.Calls()[0].Payload.(json.RawMessage)))
}

func TestRelay_DropsMalformed(t *testing.T) {
	target := mocks.NewMockPublisher()
	relay := NewRelay(target)

	require.NoError(t, relay.HandleMessage(context.Background(), nil, []byte("not json")))
	require.NoError(t, relay.HandleMessage(context.Background(), []byte("no-topic"), []byte(`{"orderId":1}`)))

	assert.Empty(t, target.Calls())
}

func TestRelay_TargetError(t *testing.T) {
	target := mocks.NewMockPublisher()
	target.PublishErr = errors.New("redis down")
	relay := NewRelay(target)

	err := relay.HandleMessage(context.Background(), nil, []byte(`{"topic":"/topic/order-paid/1","orderId":1}`))

	assert.ErrorContains(t, err, "redis down")
}
