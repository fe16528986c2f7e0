package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/domain"
)

func TestMockGateway_Succeeds(t *testing.T) {
	t.Parallel()
	result, err := NewMockGateway().Charge(context.Background(), ChargeRequest{
		OrderID: "order-1",
		Amount:  decimal.NewFromInt(100),
		Method:  domain.PaymentMethodCard,
	})
	require.NoError(t, err)
	assert.Contains(t, result.Reference, "mock_")
}

func TestMockGateway_DeclinesAboveLimit(t *testing.T) {
	t.Parallel()
	gw := &MockGateway{DeclineAbove: decimal.NewNullDecimal(decimal.NewFromInt(500))}

	_, err := gw.Charge(context.Background(), ChargeRequest{Amount: decimal.NewFromInt(500)})
	assert.NoError(t, err)

	_, err = gw.Charge(context.Background(), ChargeRequest{Amount: decimal.RequireFromString("500.01")})
	assert.ErrorIs(t, err, ErrGatewayDeclined)
	assert.Equal(t, domain.FailureReasonDeclined, classifyGatewayError(err, context.Background()))
}

func TestMockGateway_HonoursDeadline(t *testing.T) {
	t.Parallel()
	gw := &MockGateway{Latency: time.Minute}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := gw.Charge(ctx, ChargeRequest{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.FailureReasonTimeout, classifyGatewayError(err, ctx))
}
