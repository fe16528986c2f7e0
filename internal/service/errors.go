package service

import (
	"errors"
	"fmt"

	"orderdesk/internal/repository"
)

var (
	// ErrInvalidOrderID is returned when order ID is empty.
	ErrInvalidOrderID = errors.New("invalid order id")

	// ErrInvalidUserID is returned when a referenced user does not exist.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidAmount is returned when an amount is not positive, has more
	// than two decimal places or exceeds domain.MaxAmount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidPaymentMethod is returned when payment method is unknown.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidStatus is returned when a status value is unknown.
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrOrderNotFound is returned when the referenced order does not exist.
	// It wraps repository.ErrNotFound.
	ErrOrderNotFound = fmt.Errorf("order not found: %w", repository.ErrNotFound)

	// ErrInvalidTransition is returned when a status change is outside the order state graph.
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrPaymentMismatch is returned when the payment amount or method differs from the order.
	ErrPaymentMismatch = errors.New("payment does not match order")

	// ErrPaymentInProgress is returned when another payment for the same order holds the lock.
	ErrPaymentInProgress = errors.New("payment already in progress for order")

	// ErrOrderAlreadyPaid is returned when paying an order that is already paid.
	ErrOrderAlreadyPaid = errors.New("order already paid")

	// ErrGatewayDeclined is returned by gateways when the charge is refused.
	ErrGatewayDeclined = errors.New("payment declined by gateway")

	// ErrGatewayFailure is returned by gateways for errors other than a decline.
	ErrGatewayFailure = errors.New("payment gateway failure")
)
