package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/marketplace-orders/internal/domain/order"
	"github.com/example/marketplace-orders/internal/infrastructure/store"
	"github.com/example/marketplace-orders/internal/readmodel"
	"github.com/samber/lo"
)

// Catalog is the read access the views need on products and users
type Catalog interface {
	order.Catalog
	ProductIDsByVendor(ctx context.Context, vendorID int64) ([]int64, error)
	User(ctx context.Context, id int64) (*readmodel.UserReadModel, error)
}

type Handler struct {
	orders  store.OrderStore
	catalog Catalog
}

func NewHandler(orders store.OrderStore, catalog Catalog) *Handler {
	return &Handler{orders: orders, catalog: catalog}
}

// Orders
func (h *Handler) GetOrder(ctx context.Context, id int64) (*OrderView, error) {
	o, err := h.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := h.views(ctx, []*order.Order{o})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (h *Handler) ListOrders(ctx context.Context) ([]OrderView, error) {
	orders, err := h.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	return h.views(ctx, orders)
}

// ListOrdersByUser returns the buyer's orders, newest first. An unknown user is
// ErrUserNotFound rather than an empty list.
func (h *Handler) ListOrdersByUser(ctx context.Context, userID int64) ([]OrderView, error) {
	if _, err := h.catalog.User(ctx, userID); err != nil {
		return nil, err
	}
	orders, err := h.orders.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return h.views(ctx, orders)
}

// ListPaidByVendor returns each PAID order holding at least one of the
// vendor's products once, newest first.
func (h *Handler) ListPaidByVendor(ctx context.Context, vendorID int64) ([]OrderView, error) {
	productIDs, err := h.catalog.ProductIDsByVendor(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("catalog.ProductIDsByVendor: %w", err)
	}
	if len(productIDs) == 0 {
		return []OrderView{}, nil
	}
	orders, err := h.orders.FindPaidByProducts(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	return h.views(ctx, orders)
}

func (h *Handler) views(ctx context.Context, orders []*order.Order) ([]OrderView, error) {
	if err := order.Enrich(ctx, h.catalog, orders...); err != nil {
		return nil, err
	}

	buyers := make(map[int64]*readmodel.UserReadModel)
	userIDs := lo.Uniq(lo.Map(orders, func(o *order.Order, _ int) int64 { return o.UserID }))
	for _, id := range userIDs {
		u, err := h.catalog.User(ctx, id)
		if errors.Is(err, order.ErrUserNotFound) {
			continue
		}
		if err != nil {
			slog.WarnContext(ctx, "failed to load buyer", "component", "Query", "user_id", id, "error", err)
			continue
		}
		buyers[id] = u
	}

	return lo.Map(orders, func(o *order.Order, _ int) OrderView {
		return NewOrderView(o, buyers[o.UserID])
	}), nil
}
