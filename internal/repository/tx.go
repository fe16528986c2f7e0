package repository

import "context"

// Repos groups the repositories that take part in a payment transaction.
type Repos struct {
	Orders   OrderRepository
	Attempts PaymentAttemptRepository
}

// Transactor runs fn with repositories bound to a single unit of work.
// If fn returns an error the work is rolled back where the backend supports it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos Repos) error) error
}
