package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"orderdesk/internal/domain"
)

// Gateway is the interface for an external payment-settlement service.
// Implementations return ErrGatewayDeclined (possibly wrapped) when the
// charge is refused and must honour ctx cancellation.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// ChargeRequest contains the parameters for a single gateway charge.
type ChargeRequest struct {
	OrderID        string
	AttemptID      string
	Amount         decimal.Decimal
	Method         domain.PaymentMethod
	IdempotencyKey string
}

// ChargeResult is a settled charge.
type ChargeResult struct {
	Reference string
}

// MockGateway simulates a gateway. It waits Latency before answering and
// declines amounts above DeclineAbove when set.
type MockGateway struct {
	Latency      time.Duration
	DeclineAbove decimal.NullDecimal
}

// NewMockGateway creates a new mock gateway that always succeeds.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Charge simulates a payment charge.
func (g *MockGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if g.Latency > 0 {
		timer := time.NewTimer(g.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if g.DeclineAbove.Valid && req.Amount.GreaterThan(g.DeclineAbove.Decimal) {
		return nil, fmt.Errorf("%w: amount %s exceeds limit %s", ErrGatewayDeclined, req.Amount, g.DeclineAbove.Decimal)
	}

	return &ChargeResult{Reference: "mock_" + uuid.NewString()}, nil
}
