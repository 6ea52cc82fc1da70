package store

import (
	"context"
	"database/sql"
	"fmt"
)

const orderSchema = `
CREATE TABLE IF NOT EXISTS orders (
	id               BIGSERIAL PRIMARY KEY,
	user_id          BIGINT         NOT NULL,
	status           VARCHAR(20)    NOT NULL DEFAULT 'PENDING',
	packed           BOOLEAN        NOT NULL DEFAULT FALSE,
	total_amount     NUMERIC(12, 2) NOT NULL,
	gateway_order_id VARCHAR(64)    UNIQUE,
	payment_id       VARCHAR(64),
	created_at       TIMESTAMPTZ    NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ    NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders (user_id);
CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders (status, created_at DESC);

CREATE TABLE IF NOT EXISTS order_items (
	id         BIGSERIAL PRIMARY KEY,
	order_id   BIGINT         NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
	position   INT            NOT NULL,
	product_id BIGINT         NOT NULL,
	quantity   INT            NOT NULL CHECK (quantity > 0),
	unit_price NUMERIC(12, 2) NOT NULL,
	packed     BOOLEAN        NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items (order_id);
CREATE INDEX IF NOT EXISTS idx_order_items_product_id ON order_items (product_id);
`

// Migrate creates the order tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, orderSchema); err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}
	return nil
}
