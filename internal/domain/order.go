package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the current status of an order.
type OrderStatus string

const (
	OrderStatusCreated        OrderStatus = "CREATED"
	OrderStatusPaymentPending OrderStatus = "PAYMENT_PENDING"
	OrderStatusPaid           OrderStatus = "PAID"
	OrderStatusPaymentFailed  OrderStatus = "PAYMENT_FAILED"
)

// orderTransitions lists the statuses reachable from each status.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:        {OrderStatusPaymentPending},
	OrderStatusPaymentPending: {OrderStatusPaid, OrderStatusPaymentFailed},
	OrderStatusPaymentFailed:  {OrderStatusPaymentPending},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusPaymentPending, OrderStatusPaid, OrderStatusPaymentFailed:
		return true
	}
	return false
}

// Terminal reports whether no payment is in flight for an order in status s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusPaid || s == OrderStatusPaymentFailed
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentMethod represents how an order is paid.
type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodWallet       PaymentMethod = "WALLET"
	PaymentMethodCash         PaymentMethod = "CASH"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodWallet, PaymentMethodCash:
		return true
	}
	return false
}

// Amounts are stored as NUMERIC(12, 2).
const AmountScale = 2

// MaxAmount is the exclusive upper bound of an order amount.
var MaxAmount = decimal.New(1, 10)

// ValidAmount reports whether d is positive, has at most two decimal places
// and fits the amount column.
func ValidAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.LessThan(MaxAmount) && d.Equal(d.Truncate(AmountScale))
}

// Order represents a customer purchase request.
type Order struct {
	ID            string
	UserID        string // Optional
	TotalAmount   decimal.Decimal
	PaymentMethod PaymentMethod
	Status        OrderStatus
	FailureReason FailureReason // Reason of the latest failed attempt, empty otherwise
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
