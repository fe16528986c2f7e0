package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentOutcome represents the result of a payment attempt.
type PaymentOutcome string

const (
	PaymentOutcomePending PaymentOutcome = "PENDING"
	PaymentOutcomeSuccess PaymentOutcome = "SUCCESS"
	PaymentOutcomeFailure PaymentOutcome = "FAILURE"
)

// FailureReason explains why a payment attempt failed.
type FailureReason string

const (
	FailureReasonTimeout      FailureReason = "timeout"
	FailureReasonDeclined     FailureReason = "declined"
	FailureReasonGatewayError FailureReason = "gateway_error"
)

// PaymentAttempt represents one execution of the payment flow against an order.
type PaymentAttempt struct {
	ID            string
	OrderID       string
	Amount        decimal.Decimal
	Method        PaymentMethod
	Outcome       PaymentOutcome
	FailureReason FailureReason
	GatewayRef    string
	CreatedAt     time.Time
	CompletedAt   time.Time
}

// Succeeded reports whether the attempt settled.
func (a *PaymentAttempt) Succeeded() bool {
	return a.Outcome == PaymentOutcomeSuccess
}

// ParsePaymentMethod normalizes user input such as "card" or "bank-transfer".
func ParsePaymentMethod(s string) PaymentMethod {
	s = strings.ToUpper(strings.TrimSpace(s))
	return PaymentMethod(strings.ReplaceAll(s, "-", "_"))
}
