package service

import (
	"context"
	"time"

	"orderdesk/internal/domain"
)

// StatusReport is the read-only view of an order's current status.
type StatusReport struct {
	OrderID       string
	Status        domain.OrderStatus
	FailureReason domain.FailureReason
	LastUpdated   time.Time
}

// StatusReporter answers status queries straight from the order store.
type StatusReporter struct {
	orders *OrderService
}

// NewStatusReporter creates a new StatusReporter.
func NewStatusReporter(orders *OrderService) *StatusReporter {
	return &StatusReporter{orders: orders}
}

// GetStatus returns the current status of an order.
func (r *StatusReporter) GetStatus(ctx context.Context, orderID string) (*StatusReport, error) {
	order, err := r.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &StatusReport{
		OrderID:       order.ID,
		Status:        order.Status,
		FailureReason: order.FailureReason,
		LastUpdated:   order.UpdatedAt,
	}, nil
}
