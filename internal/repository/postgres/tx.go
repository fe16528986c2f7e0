package postgres

import (
	"context"
	"database/sql"

	"orderdesk/internal/repository"
)

// Transactor implements repository.Transactor with a database transaction.
type Transactor struct {
	db *sql.DB
}

// NewTransactor creates a new Transactor.
func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTx runs fn inside a transaction and commits if fn succeeds.
func (t *Transactor) WithinTx(ctx context.Context, fn func(repos repository.Repos) error) (err error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Create transaction-scoped repositories.
	err = fn(repository.Repos{
		Orders:   NewOrderRepositoryWithTx(tx),
		Attempts: NewPaymentAttemptRepositoryWithTx(tx),
	})
	if err != nil {
		return err
	}

	return tx.Commit()
}
