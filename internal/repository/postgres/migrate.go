package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order on startup. Statements must be idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id             TEXT PRIMARY KEY,
		user_id        TEXT REFERENCES users (id),
		total_amount   NUMERIC(12, 2) NOT NULL CHECK (total_amount > 0),
		payment_method TEXT NOT NULL,
		status         TEXT NOT NULL,
		failure_reason TEXT,
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS payment_attempts (
		id             TEXT PRIMARY KEY,
		order_id       TEXT NOT NULL REFERENCES orders (id),
		amount         NUMERIC(12, 2) NOT NULL,
		method         TEXT NOT NULL,
		outcome        TEXT NOT NULL,
		failure_reason TEXT,
		gateway_ref    TEXT,
		created_at     TIMESTAMPTZ NOT NULL,
		completed_at   TIMESTAMPTZ
	)`,

	`CREATE INDEX IF NOT EXISTS idx_payment_attempts_order_id ON payment_attempts (order_id)`,

	// At most one successful attempt per order.
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_payment_attempts_success
		ON payment_attempts (order_id) WHERE outcome = 'SUCCESS'`,
}

// Migrate creates the tables used by the repositories.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
