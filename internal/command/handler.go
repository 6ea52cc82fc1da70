package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/marketplace-orders/internal/domain/order"
	"github.com/example/marketplace-orders/internal/infrastructure/store"
	"github.com/example/marketplace-orders/internal/metrics"
	"github.com/example/marketplace-orders/internal/payment"
	"github.com/example/marketplace-orders/internal/payment/attemptlog"
	"github.com/example/marketplace-orders/internal/readmodel"
)

// Catalog is the read access the write side needs on products and users
type Catalog interface {
	order.Catalog
	User(ctx context.Context, id int64) (*readmodel.UserReadModel, error)
}

// Gateway creates remote payment orders
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*payment.RemoteOrder, error)
}

type SignatureVerifier interface {
	Verify(gatewayOrderID, paymentID, signature string) bool
}

// EventDispatcher executes the side effects of committed transitions
type EventDispatcher interface {
	Dispatch(ctx context.Context, events []order.Event)
}

type Handler struct {
	orders     store.OrderStore
	catalog    Catalog
	builder    *order.Builder
	gateway    Gateway
	verifier   SignatureVerifier
	attempts   attemptlog.Repository
	dispatcher EventDispatcher
	metrics    *metrics.Metrics
	currency   string
}

func NewHandler(
	orders store.OrderStore,
	catalog Catalog,
	gateway Gateway,
	verifier SignatureVerifier,
	attempts attemptlog.Repository,
	dispatcher EventDispatcher,
	m *metrics.Metrics,
	currency string,
) *Handler {
	if attempts == nil {
		attempts = attemptlog.Nop{}
	}
	return &Handler{
		orders:     orders,
		catalog:    catalog,
		builder:    order.NewBuilder(catalog),
		gateway:    gateway,
		verifier:   verifier,
		attempts:   attempts,
		dispatcher: dispatcher,
		metrics:    m,
		currency:   currency,
	}
}

// PlaceOrder prices the requested lines and persists a PENDING order. Nothing
// is persisted when any line is invalid or cannot be resolved.
func (h *Handler) PlaceOrder(ctx context.Context, cmd PlaceOrder) (*order.Order, error) {
	o, err := h.builder.Build(ctx, cmd.UserID, cmd.Lines)
	if err != nil {
		return nil, err
	}

	if _, err := h.catalog.User(ctx, cmd.UserID); err != nil {
		return nil, err
	}

	created, err := h.orders.Create(ctx, o)
	if err != nil {
		return nil, err
	}
	if err := order.Enrich(ctx, h.catalog, created); err != nil {
		return nil, err
	}
	return created, nil
}

// MarkPaid is the manual fallback for confirming a payment. Marking an order
// that is already paid does nothing.
func (h *Handler) MarkPaid(ctx context.Context, cmd MarkPaid) error {
	if cmd.PaymentID == "" {
		return order.ErrMissingPayment
	}

	var events []order.Event
	_, err := h.orders.Update(ctx, cmd.OrderID, func(o *order.Order) error {
		var err error
		events, err = h.pay(ctx, o, cmd.PaymentID)
		return err
	})
	if errors.Is(err, order.ErrAlreadyPaid) {
		return nil
	}
	if err != nil {
		return err
	}

	h.dispatcher.Dispatch(ctx, events)
	return nil
}

// Checkout closes the order. It does not require payment.
func (h *Handler) Checkout(ctx context.Context, orderID int64) error {
	_, err := h.orders.Update(ctx, orderID, func(o *order.Order) error {
		return o.Complete()
	})
	return err
}

func (h *Handler) PackOrder(ctx context.Context, orderID int64) error {
	var events []order.Event
	_, err := h.orders.Update(ctx, orderID, func(o *order.Order) error {
		var err error
		events, err = o.Pack()
		return err
	})
	if err != nil {
		return err
	}

	h.dispatcher.Dispatch(ctx, events)
	return nil
}

func (h *Handler) PackItem(ctx context.Context, cmd PackItem) error {
	var events []order.Event
	_, err := h.orders.Update(ctx, cmd.OrderID, func(o *order.Order) error {
		if err := order.Enrich(ctx, h.catalog, o); err != nil {
			return err
		}
		var err error
		events, err = o.PackItem(cmd.ItemID)
		return err
	})
	if err != nil {
		return err
	}

	h.dispatcher.Dispatch(ctx, events)
	return nil
}

// DeleteOrder cancels an order by removing it with all its items
func (h *Handler) DeleteOrder(ctx context.Context, orderID int64) error {
	return h.orders.Delete(ctx, orderID)
}

// pay runs inside the order's transaction. An order that already carries a
// payment reports ErrAlreadyPaid whatever its status.
func (h *Handler) pay(ctx context.Context, o *order.Order, paymentID string) ([]order.Event, error) {
	if o.IsPaid() {
		return nil, order.ErrAlreadyPaid
	}
	if err := order.Enrich(ctx, h.catalog, o); err != nil {
		return nil, fmt.Errorf("order.Enrich: %w", err)
	}
	return o.Pay(paymentID)
}
