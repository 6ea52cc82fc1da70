package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/marketplace-orders/internal/domain/order"
	"github.com/example/marketplace-orders/internal/metrics"
	"github.com/example/marketplace-orders/internal/readmodel"
	"golang.org/x/sync/errgroup"
)

const (
	deliveryTimeout = 5 * time.Second
	maxInFlight     = 8
)

// Publisher delivers a payload to a topic. Kafka and Redis implement it.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Mailer sends the packing email
type Mailer interface {
	SendPackingNotification(to, firstName string, orderID int64) error
}

// UserReader resolves the buyer an event refers to
type UserReader interface {
	User(ctx context.Context, id int64) (*readmodel.UserReadModel, error)
}

// Dispatcher executes the events returned by order transitions once the
// transition has been committed. Delivery is at most once: failures are logged
// and counted, never returned.
type Dispatcher struct {
	publisher Publisher
	mailer    Mailer
	users     UserReader
	metrics   *metrics.Metrics
}

func NewDispatcher(publisher Publisher, mailer Mailer, users UserReader, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		publisher: publisher,
		mailer:    mailer,
		users:     users,
		metrics:   m,
	}
}

// Dispatch delivers events concurrently and returns when all attempts have
// finished. Deliveries are detached from ctx cancellation.
func (d *Dispatcher) Dispatch(ctx context.Context, events []order.Event) {
	if len(events) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
	defer cancel()

	buyers := d.resolveBuyers(ctx, events)

	var g errgroup.Group
	g.SetLimit(maxInFlight)
	for _, e := range events {
		buyer := buyers[e.UserID]
		g.Go(func() error {
			d.deliver(ctx, e, buyer)
			return nil
		})
	}
	_ = g.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, e order.Event, buyer *readmodel.UserReadModel) {
	switch e.Kind {
	case order.EventOrderPaid:
		firstName := "a customer"
		if buyer != nil && buyer.FirstName != "" {
			firstName = buyer.FirstName
		}
		d.publish(ctx, e, OrderPaidTopic(e.VendorID), orderPaidText(e.OrderID, firstName, e.Lines))
	case order.EventPaymentConfirmed:
		d.publish(ctx, e, OrderConfirmedTopic(e.UserID), paymentConfirmedText(e.OrderID))
	case order.EventOrderPacked:
		d.publish(ctx, e, OrderPackedTopic(e.UserID), orderPackedText(e.OrderID))
	case order.EventItemPacked:
		if e.VendorID == 0 {
			slog.WarnContext(ctx, "item packed for product without vendor",
				"component", "Notifier", "order_id", e.OrderID, "item_id", e.ItemID)
			d.metrics.Notifications.WithLabelValues("publish", "skipped").Inc()
			return
		}
		d.publish(ctx, e, OrderPackedTopic(e.VendorID), itemPackedText(e.ProductName))
	case order.EventPackingEmail:
		d.sendPackingEmail(ctx, e, buyer)
	default:
		slog.WarnContext(ctx, "unknown event kind", "component", "Notifier", "kind", e.Kind)
	}
}

func (d *Dispatcher) publish(ctx context.Context, e order.Event, topic, text string) {
	msg := newMessage(topic, e.OrderID, text)
	if err := d.publisher.Publish(ctx, topic, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish notification",
			"component", "Notifier",
			"topic", topic,
			"order_id", e.OrderID,
			"error", err,
		)
		d.metrics.Notifications.WithLabelValues("publish", "error").Inc()
		return
	}
	d.metrics.Notifications.WithLabelValues("publish", "success").Inc()
}

func (d *Dispatcher) sendPackingEmail(ctx context.Context, e order.Event, buyer *readmodel.UserReadModel) {
	if buyer == nil || buyer.Email == "" {
		slog.WarnContext(ctx, "no email address for buyer",
			"component", "Notifier", "order_id", e.OrderID, "user_id", e.UserID)
		d.metrics.Notifications.WithLabelValues("email", "skipped").Inc()
		return
	}

	if err := d.mailer.SendPackingNotification(buyer.Email, buyer.FirstName, e.OrderID); err != nil {
		slog.ErrorContext(ctx, "failed to send packing email",
			"component", "Notifier",
			"order_id", e.OrderID,
			"error", err,
		)
		d.metrics.Notifications.WithLabelValues("email", "error").Inc()
		return
	}
	slog.InfoContext(ctx, "packing email sent", "component", "Notifier", "order_id", e.OrderID)
	d.metrics.Notifications.WithLabelValues("email", "success").Inc()
}

// resolveBuyers loads each buyer once for the events that need one
func (d *Dispatcher) resolveBuyers(ctx context.Context, events []order.Event) map[int64]*readmodel.UserReadModel {
	buyers := make(map[int64]*readmodel.UserReadModel)
	for _, e := range events {
		if e.Kind != order.EventOrderPaid && e.Kind != order.EventPackingEmail {
			continue
		}
		if _, seen := buyers[e.UserID]; seen {
			continue
		}
		u, err := d.users.User(ctx, e.UserID)
		if err != nil {
			slog.WarnContext(ctx, "failed to load buyer",
				"component", "Notifier", "user_id", e.UserID, "error", err)
		}
		buyers[e.UserID] = u
	}
	return buyers
}
