package order

import (
	"context"
	"fmt"

	"github.com/example/marketplace-orders/internal/readmodel"
	"github.com/samber/lo"
)

// Catalog is the narrow read interface the order subsystem has on the
// externally managed product catalog.
type Catalog interface {
	Product(ctx context.Context, id int64) (*readmodel.ProductReadModel, error)
	Products(ctx context.Context, ids []int64) (map[int64]*readmodel.ProductReadModel, error)
}

// LineRequest is one requested line of a new order
type LineRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Builder resolves requested lines against the catalog and produces an
// unsaved order with price snapshots and a computed total.
type Builder struct {
	catalog Catalog
}

func NewBuilder(catalog Catalog) *Builder {
	return &Builder{catalog: catalog}
}

// Build validates every line before resolving any product, so a bad quantity
// never reaches the catalog. A product that cannot be resolved aborts the
// whole build.
func (b *Builder) Build(ctx context.Context, userID int64, lines []LineRequest) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	for i, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("line %d (product %d): %w", i, line.ProductID, ErrInvalidQuantity)
		}
	}

	o := &Order{
		UserID: userID,
		Status: StatusPending,
		Items:  make([]Item, 0, len(lines)),
	}
	for _, line := range lines {
		p, err := b.catalog.Product(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("catalog.Product[%d]: %w", line.ProductID, err)
		}
		o.Items = append(o.Items, Item{
			ProductID:   p.ID,
			ProductName: p.Name,
			VendorID:    p.VendorID,
			Quantity:    line.Quantity,
			UnitPrice:   p.Price,
		})
	}
	o.TotalAmount = o.ComputeTotal()

	return o, nil
}

// Enrich fills the derived ProductName and VendorID of every item from the
// catalog. Products that no longer exist leave the fields empty.
func Enrich(ctx context.Context, catalog Catalog, orders ...*Order) error {
	var ids []int64
	for _, o := range orders {
		for _, it := range o.Items {
			ids = append(ids, it.ProductID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	products, err := catalog.Products(ctx, lo.Uniq(ids))
	if err != nil {
		return fmt.Errorf("catalog.Products: %w", err)
	}

	for _, o := range orders {
		for i := range o.Items {
			if p, ok := products[o.Items[i].ProductID]; ok {
				o.Items[i].ProductName = p.Name
				o.Items[i].VendorID = p.VendorID
			}
		}
	}
	return nil
}
