package app

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"orderdesk/internal/config"
	"orderdesk/internal/gateway/stripe"
	"orderdesk/internal/service"
)

// NewGateway builds the payment gateway selected by cfg.Provider.
func NewGateway(cfg config.GatewayConfig, logger *zap.Logger) (service.Gateway, error) {
	switch cfg.Provider {
	case "", "mock":
		gw := service.NewMockGateway()
		gw.Latency = cfg.MockLatency
		if cfg.MockDeclineAbove != "" {
			limit, err := decimal.NewFromString(cfg.MockDeclineAbove)
			if err != nil {
				return nil, fmt.Errorf("invalid GATEWAY_DECLINE_ABOVE %q: %w", cfg.MockDeclineAbove, err)
			}
			gw.DeclineAbove = decimal.NewNullDecimal(limit)
		}
		return gw, nil

	case "stripe":
		gw, err := stripe.NewGateway(stripe.Config{
			SecretKey:     cfg.StripeSecretKey,
			Currency:      cfg.StripeCurrency,
			PaymentMethod: cfg.StripeMethod,
		}, logger)
		if err != nil {
			return nil, err
		}
		return gw, nil

	default:
		return nil, fmt.Errorf("unknown gateway provider %q", cfg.Provider)
	}
}
