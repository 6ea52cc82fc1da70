// Package sqlite provides a SQLite-backed attemptlog.Repository.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/marketplace-orders/internal/payment/attemptlog"

	// pure-Go driver, registered as "sqlite"
	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05.999999999Z"

const schema = `
CREATE TABLE IF NOT EXISTS payment_attempts (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    receipt          TEXT    NOT NULL,
    local_order_id   INTEGER NOT NULL,
    amount           INTEGER NOT NULL,
    currency         TEXT    NOT NULL,
    outcome          TEXT    NOT NULL,
    gateway_order_id TEXT    NOT NULL DEFAULT '',
    error            TEXT    NOT NULL DEFAULT '',
    trace_id         TEXT    NOT NULL DEFAULT '',
    created_at       TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_payment_attempts_order ON payment_attempts(local_order_id, created_at);
CREATE INDEX IF NOT EXISTS idx_payment_attempts_outcome ON payment_attempts(outcome);
`

// Repository is the SQLite implementation of attemptlog.Repository
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Join(fmt.Errorf("sqlite: apply schema: %w", err), db.Close())
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Save appends an attempt. It is safe to call concurrently.
func (r *Repository) Save(ctx context.Context, a *attemptlog.Attempt) error {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_attempts
			(receipt, local_order_id, amount, currency, outcome, gateway_order_id, error, trace_id, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Receipt,
		a.LocalOrderID,
		a.Amount,
		a.Currency,
		string(a.Outcome),
		a.GatewayOrderID,
		a.Error,
		a.TraceID,
		createdAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save attempt %q: %w", a.Receipt, err)
	}
	return nil
}

// ListByOrder returns the attempts for a local order, oldest first
func (r *Repository) ListByOrder(ctx context.Context, localOrderID int64) ([]attemptlog.Attempt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT receipt, local_order_id, amount, currency, outcome, gateway_order_id, error, trace_id, created_at
		FROM   payment_attempts
		WHERE  local_order_id = ?
		ORDER  BY created_at, id`, localOrderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list attempts for %d: %w", localOrderID, err)
	}
	defer rows.Close()

	var attempts []attemptlog.Attempt
	for rows.Next() {
		var (
			a         attemptlog.Attempt
			outcome   string
			createdAt string
		)
		if err := rows.Scan(&a.Receipt, &a.LocalOrderID, &a.Amount, &a.Currency, &outcome,
			&a.GatewayOrderID, &a.Error, &a.TraceID, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan attempt: %w", err)
		}
		a.Outcome = attemptlog.Outcome(outcome)
		a.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parse created_at %q: %w", createdAt, err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: rows: %w", err)
	}
	return attempts, nil
}
