package repository

import (
	"context"

	"orderdesk/internal/domain"
)

// OrderRepository defines the persistence operations for orders.
type OrderRepository interface {
	// Create persists a new order.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by ID.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// GetAll retrieves all orders, newest first.
	GetAll(ctx context.Context) ([]*domain.Order, error)

	// CompareAndSetStatus moves an order from one status to another.
	// Returns ErrNotFound if the order does not exist and ErrStatusConflict
	// if its current status is not from. The failure reason is stored with
	// the new status. The updated order is returned.
	CompareAndSetStatus(ctx context.Context, id string, from, to domain.OrderStatus, reason domain.FailureReason) (*domain.Order, error)
}
