package store

import (
	"context"

	"github.com/example/marketplace-orders/internal/domain/order"
)

// UpdateFunc mutates a loaded order. Returning an error discards every change.
type UpdateFunc func(o *order.Order) error

// OrderStore persists order aggregates. Update and UpdateByGatewayOrderID run
// load, mutate and save in one transaction with the order row locked, so
// concurrent updates of the same order are serialised.
type OrderStore interface {
	Create(ctx context.Context, o *order.Order) (*order.Order, error)
	Get(ctx context.Context, id int64) (*order.Order, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*order.Order, error)
	List(ctx context.Context) ([]*order.Order, error)
	FindByUser(ctx context.Context, userID int64) ([]*order.Order, error)
	// FindPaidByProducts returns PAID orders with at least one item for any
	// of the given products, newest first, each order once.
	FindPaidByProducts(ctx context.Context, productIDs []int64) ([]*order.Order, error)
	Update(ctx context.Context, id int64, fn UpdateFunc) (*order.Order, error)
	UpdateByGatewayOrderID(ctx context.Context, gatewayOrderID string, fn UpdateFunc) (*order.Order, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}
