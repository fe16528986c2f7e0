package memory

import (
	"context"
	"sort"
	"sync"

	"orderdesk/internal/domain"
	"orderdesk/internal/repository"
)

// PaymentAttemptRepository is an in-memory implementation of repository.PaymentAttemptRepository.
type PaymentAttemptRepository struct {
	mu       sync.RWMutex
	attempts map[string]*domain.PaymentAttempt
}

// NewPaymentAttemptRepository creates an empty PaymentAttemptRepository.
func NewPaymentAttemptRepository() *PaymentAttemptRepository {
	return &PaymentAttemptRepository{
		attempts: make(map[string]*domain.PaymentAttempt),
	}
}

// Create persists a new attempt.
func (r *PaymentAttemptRepository) Create(ctx context.Context, attempt *domain.PaymentAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if attempt.Succeeded() && r.hasSuccessLocked(attempt.OrderID, attempt.ID) {
		return repository.ErrDuplicateSuccess
	}
	copy := *attempt
	r.attempts[attempt.ID] = &copy
	return nil
}

// Complete records the outcome of an attempt.
func (r *PaymentAttemptRepository) Complete(ctx context.Context, attempt *domain.PaymentAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attempts[attempt.ID]; !ok {
		return repository.ErrNotFound
	}
	if attempt.Succeeded() && r.hasSuccessLocked(attempt.OrderID, attempt.ID) {
		return repository.ErrDuplicateSuccess
	}
	copy := *attempt
	r.attempts[attempt.ID] = &copy
	return nil
}

// ListByOrderID retrieves the attempts of an order, oldest first.
func (r *PaymentAttemptRepository) ListByOrderID(ctx context.Context, orderID string) ([]*domain.PaymentAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.PaymentAttempt
	for _, a := range r.attempts {
		if a.OrderID == orderID {
			copy := *a
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// CountSuccessful returns the number of successful attempts for an order.
func (r *PaymentAttemptRepository) CountSuccessful(orderID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, a := range r.attempts {
		if a.OrderID == orderID && a.Succeeded() {
			n++
		}
	}
	return n
}

func (r *PaymentAttemptRepository) hasSuccessLocked(orderID, exceptID string) bool {
	for _, a := range r.attempts {
		if a.OrderID == orderID && a.ID != exceptID && a.Succeeded() {
			return true
		}
	}
	return false
}
