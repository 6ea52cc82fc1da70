package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/marketplace-orders/internal/domain/order"
	"github.com/example/marketplace-orders/internal/readmodel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Catalog reads the externally managed product and user tables. It never
// writes to them.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

func (c *Catalog) Product(ctx context.Context, id int64) (*readmodel.ProductReadModel, error) {
	row := c.pool.QueryRow(ctx,
		`SELECT id, product_name, cost::text, COALESCE(vendor_id, 0) FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, order.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("c.Product[%d]: %w", id, err)
	}
	return p, nil
}

// Products returns the products found among ids, keyed by id. Missing ids are
// simply absent from the result.
func (c *Catalog) Products(ctx context.Context, ids []int64) (map[int64]*readmodel.ProductReadModel, error) {
	result := make(map[int64]*readmodel.ProductReadModel, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := c.pool.Query(ctx,
		`SELECT id, product_name, cost::text, COALESCE(vendor_id, 0) FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("c.Products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("c.Products: %w", err)
		}
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}
	return result, nil
}

// ProductIDsByVendor returns the ids of every product owned by the vendor
func (c *Catalog) ProductIDsByVendor(ctx context.Context, vendorID int64) ([]int64, error) {
	rows, err := c.pool.Query(ctx, `SELECT id FROM products WHERE vendor_id = $1`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("c.ProductIDsByVendor[%d]: %w", vendorID, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return ids, nil
}

func (c *Catalog) User(ctx context.Context, id int64) (*readmodel.UserReadModel, error) {
	var u readmodel.UserReadModel
	err := c.pool.QueryRow(ctx,
		`SELECT id, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(email, '')
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, order.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("c.User[%d]: %w", id, err)
	}
	return &u, nil
}

func scanProduct(row pgx.Row) (*readmodel.ProductReadModel, error) {
	var (
		p    readmodel.ProductReadModel
		cost string
	)
	if err := row.Scan(&p.ID, &p.Name, &cost, &p.VendorID); err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(cost)
	if err != nil {
		return nil, fmt.Errorf("decimal.NewFromString: %w", err)
	}
	p.Price = price
	return &p, nil
}
