// Package memory provides in-process repository implementations. They back
// the service when STORE_DRIVER=memory and are used throughout the tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"orderdesk/internal/domain"
	"orderdesk/internal/repository"
)

// OrderRepository is an in-memory implementation of repository.OrderRepository.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	now    func() time.Time
}

// NewOrderRepository creates an empty OrderRepository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]*domain.Order),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *order
	r.orders[order.ID] = &copy
	return nil
}

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *order
	return &copy, nil
}

// GetAll retrieves all orders, newest first.
func (r *OrderRepository) GetAll(ctx context.Context) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		copy := *o
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// CompareAndSetStatus moves an order from one status to another.
func (r *OrderRepository) CompareAndSetStatus(ctx context.Context, id string, from, to domain.OrderStatus, reason domain.FailureReason) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if order.Status != from {
		return nil, repository.ErrStatusConflict
	}

	// Replace rather than mutate so copies handed to readers stay consistent.
	updated := *order
	updated.Status = to
	updated.FailureReason = reason
	updated.UpdatedAt = r.now()
	r.orders[id] = &updated

	copy := updated
	return &copy, nil
}
