// Package stripe settles order payments through Stripe PaymentIntents.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"

	"orderdesk/internal/domain"
	"orderdesk/internal/service"
)

// paymentIntents is the subset of the Stripe client used by Gateway.
type paymentIntents interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// Gateway implements service.Gateway with Stripe.
type Gateway struct {
	intents       paymentIntents
	currency      string
	paymentMethod string
	logger        *zap.Logger
}

// Config holds the Stripe gateway settings.
type Config struct {
	SecretKey string
	Currency  string
	// PaymentMethod is the Stripe payment method charged for card orders.
	// Defaults to the "pm_card_visa" test card.
	PaymentMethod string
}

// NewGateway creates a Stripe gateway.
func NewGateway(cfg Config, logger *zap.Logger) (*Gateway, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe: secret key is required")
	}
	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)
	return newGateway(sc.PaymentIntents, cfg, logger), nil
}

func newGateway(intents paymentIntents, cfg Config, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	currency := strings.ToLower(cfg.Currency)
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	paymentMethod := cfg.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "pm_card_visa"
	}
	return &Gateway{
		intents:       intents,
		currency:      currency,
		paymentMethod: paymentMethod,
		logger:        logger,
	}
}

var _ service.Gateway = (*Gateway)(nil)

// Charge creates and confirms a PaymentIntent for the request.
func (g *Gateway) Charge(ctx context.Context, req service.ChargeRequest) (*service.ChargeResult, error) {
	if req.Method != domain.PaymentMethodCard {
		return nil, fmt.Errorf("%w: stripe does not settle %s payments", service.ErrGatewayFailure, req.Method)
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(minorUnits(req.Amount)),
		Currency:           stripe.String(g.currency),
		PaymentMethod:      stripe.String(g.paymentMethod),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	params.AddMetadata("order_id", req.OrderID)
	params.AddMetadata("attempt_id", req.AttemptID)

	pi, err := g.intents.New(params)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return nil, fmt.Errorf("%w: %s", service.ErrGatewayDeclined, stripeErr.Msg)
		}
		return nil, fmt.Errorf("%w: %v", service.ErrGatewayFailure, err)
	}

	g.logger.Debug("stripe payment intent",
		zap.String("order_id", req.OrderID),
		zap.String("payment_intent", pi.ID),
		zap.String("status", string(pi.Status)),
	)

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return &service.ChargeResult{Reference: pi.ID}, nil
	case stripe.PaymentIntentStatusRequiresPaymentMethod, stripe.PaymentIntentStatusCanceled:
		return nil, fmt.Errorf("%w: payment intent %s is %s", service.ErrGatewayDeclined, pi.ID, pi.Status)
	default:
		return nil, fmt.Errorf("%w: payment intent %s is %s", service.ErrGatewayFailure, pi.ID, pi.Status)
	}
}

// minorUnits converts an amount to cents.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
