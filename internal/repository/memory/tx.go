package memory

import (
	"context"
	"sync"

	"orderdesk/internal/repository"
)

// Transactor implements repository.Transactor for the in-memory repositories.
// Units of work are serialized; there is no rollback.
type Transactor struct {
	mu       sync.Mutex
	orders   *OrderRepository
	attempts *PaymentAttemptRepository
}

// NewTransactor creates a Transactor over the given repositories.
func NewTransactor(orders *OrderRepository, attempts *PaymentAttemptRepository) *Transactor {
	return &Transactor{orders: orders, attempts: attempts}
}

// WithinTx runs fn with the shared repositories.
func (t *Transactor) WithinTx(ctx context.Context, fn func(repos repository.Repos) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(repository.Repos{Orders: t.orders, Attempts: t.attempts})
}
