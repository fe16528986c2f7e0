package repository

import (
	"context"

	"orderdesk/internal/domain"
)

// PaymentAttemptRepository defines the persistence operations for payment attempts.
type PaymentAttemptRepository interface {
	// Create persists a new attempt.
	Create(ctx context.Context, attempt *domain.PaymentAttempt) error

	// Complete records the outcome of an attempt.
	// Returns ErrDuplicateSuccess if the order already has a successful attempt.
	Complete(ctx context.Context, attempt *domain.PaymentAttempt) error

	// ListByOrderID retrieves the attempts of an order, oldest first.
	ListByOrderID(ctx context.Context, orderID string) ([]*domain.PaymentAttempt, error)
}
