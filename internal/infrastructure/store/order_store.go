package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/marketplace-orders/internal/domain/order"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

const selectOrder = `
	SELECT id, user_id, status, packed, total_amount, gateway_order_id, payment_id, created_at, updated_at
	FROM orders`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// PostgresOrderStore stores order aggregates in PostgreSQL
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

// Create inserts the order and its items in one transaction. The store
// assigns ids and timestamps; the status defaults to PENDING.
func (s *PostgresOrderStore) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	created := *o
	created.Items = append([]order.Item(nil), o.Items...)
	if created.Status == "" {
		created.Status = order.StatusPending
	}

	_, err := withTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO orders (user_id, status, packed, total_amount, gateway_order_id, payment_id)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, created_at, updated_at`,
			created.UserID, created.Status, created.Packed, created.TotalAmount,
			created.GatewayOrderID, created.PaymentID,
		).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
		if err != nil {
			return struct{}{}, fmt.Errorf("insert order: %w", err)
		}

		for i := range created.Items {
			it := &created.Items[i]
			it.OrderID = created.ID
			err := tx.QueryRowContext(ctx,
				`INSERT INTO order_items (order_id, position, product_id, quantity, unit_price, packed)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 RETURNING id`,
				created.ID, i, it.ProductID, it.Quantity, it.UnitPrice, it.Packed,
			).Scan(&it.ID)
			if err != nil {
				return struct{}{}, fmt.Errorf("insert order item[%d]: %w", i, err)
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("s.Create: %w", err)
	}

	return &created, nil
}

func (s *PostgresOrderStore) Get(ctx context.Context, id int64) (*order.Order, error) {
	o, err := s.getOne(ctx, s.db, selectOrder+` WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("s.Get[%d]: %w", id, err)
	}
	return o, nil
}

func (s *PostgresOrderStore) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*order.Order, error) {
	o, err := s.getOne(ctx, s.db, selectOrder+` WHERE gateway_order_id = $1`, gatewayOrderID)
	if err != nil {
		return nil, fmt.Errorf("s.GetByGatewayOrderID: %w", err)
	}
	return o, nil
}

func (s *PostgresOrderStore) List(ctx context.Context) ([]*order.Order, error) {
	orders, err := s.query(ctx, s.db, selectOrder+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("s.List: %w", err)
	}
	return orders, nil
}

func (s *PostgresOrderStore) FindByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	orders, err := s.query(ctx, s.db, selectOrder+` WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("s.FindByUser[%d]: %w", userID, err)
	}
	return orders, nil
}

func (s *PostgresOrderStore) FindPaidByProducts(ctx context.Context, productIDs []int64) ([]*order.Order, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	// EXISTS keeps one row per order however many matching items it has
	orders, err := s.query(ctx, s.db, selectOrder+`
		WHERE status = $1
		  AND EXISTS (
			SELECT 1 FROM order_items oi
			WHERE oi.order_id = orders.id AND oi.product_id = ANY($2)
		  )
		ORDER BY created_at DESC, id DESC`,
		order.StatusPaid, pq.Array(productIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("s.FindPaidByProducts: %w", err)
	}
	return orders, nil
}

func (s *PostgresOrderStore) Update(ctx context.Context, id int64, fn UpdateFunc) (*order.Order, error) {
	o, err := s.update(ctx, selectOrder+` WHERE id = $1 FOR UPDATE`, id, fn)
	if err != nil {
		return nil, fmt.Errorf("s.Update[%d]: %w", id, err)
	}
	return o, nil
}

func (s *PostgresOrderStore) UpdateByGatewayOrderID(ctx context.Context, gatewayOrderID string, fn UpdateFunc) (*order.Order, error) {
	o, err := s.update(ctx, selectOrder+` WHERE gateway_order_id = $1 FOR UPDATE`, gatewayOrderID, fn)
	if err != nil {
		return nil, fmt.Errorf("s.UpdateByGatewayOrderID: %w", err)
	}
	return o, nil
}

// Delete removes the order; its items go with it through ON DELETE CASCADE.
func (s *PostgresOrderStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("s.Delete[%d]: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("res.RowsAffected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("s.Delete[%d]: %w", id, order.ErrOrderNotFound)
	}
	return nil
}

func (s *PostgresOrderStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresOrderStore) update(ctx context.Context, lockQuery string, key any, fn UpdateFunc) (*order.Order, error) {
	return withTx(ctx, s.db, func(tx *sql.Tx) (*order.Order, error) {
		o, err := s.getOne(ctx, tx, lockQuery, key)
		if err != nil {
			return nil, err
		}
		if err := fn(o); err != nil {
			return nil, err
		}
		if err := s.save(ctx, tx, o); err != nil {
			return nil, err
		}
		return o, nil
	})
}

// save writes the mutable state of a locked order. The gateway order id is
// only ever written while still NULL.
func (s *PostgresOrderStore) save(ctx context.Context, tx *sql.Tx, o *order.Order) error {
	err := tx.QueryRowContext(ctx,
		`UPDATE orders
		 SET status = $2,
		     packed = $3,
		     gateway_order_id = COALESCE(gateway_order_id, $4),
		     payment_id = $5,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING gateway_order_id, updated_at`,
		o.ID, o.Status, o.Packed, o.GatewayOrderID, o.PaymentID,
	).Scan(&o.GatewayOrderID, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	for _, it := range o.Items {
		if _, err := tx.ExecContext(ctx,
			`UPDATE order_items SET packed = $3 WHERE id = $1 AND order_id = $2`,
			it.ID, o.ID, it.Packed,
		); err != nil {
			return fmt.Errorf("update order item[%d]: %w", it.ID, err)
		}
	}
	return nil
}

func (s *PostgresOrderStore) getOne(ctx context.Context, q querier, query string, args ...any) (*order.Order, error) {
	orders, err := s.query(ctx, q, query, args...)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, order.ErrOrderNotFound
	}
	return orders[0], nil
}

func (s *PostgresOrderStore) query(ctx context.Context, q querier, query string, args ...any) ([]*order.Order, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		var (
			o         order.Order
			status    string
			gatewayID sql.NullString
			paymentID sql.NullString
		)
		if err := rows.Scan(&o.ID, &o.UserID, &status, &o.Packed, &o.TotalAmount,
			&gatewayID, &paymentID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = order.Status(status)
		if gatewayID.Valid {
			o.GatewayOrderID = &gatewayID.String
		}
		if paymentID.Valid {
			o.PaymentID = &paymentID.String
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	if err := s.loadItems(ctx, q, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *PostgresOrderStore) loadItems(ctx context.Context, q querier, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := lo.KeyBy(orders, func(o *order.Order) int64 { return o.ID })
	rows, err := q.QueryContext(ctx,
		`SELECT id, order_id, product_id, quantity, unit_price, packed
		 FROM order_items
		 WHERE order_id = ANY($1)
		 ORDER BY order_id, position`,
		pq.Array(lo.Keys(byID)),
	)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Packed); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows.Err: %w", err)
	}
	return nil
}
