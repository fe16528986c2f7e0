package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"orderdesk/internal/domain"
	"orderdesk/internal/repository"
)

// PaymentOptions bounds payment processing.
type PaymentOptions struct {
	GatewayTimeout time.Duration
	LockTTL        time.Duration
	NotifyTimeout  time.Duration
}

func (o PaymentOptions) withDefaults() PaymentOptions {
	if o.GatewayTimeout <= 0 {
		o.GatewayTimeout = 5 * time.Second
	}
	if o.NotifyTimeout <= 0 {
		o.NotifyTimeout = 10 * time.Second
	}
	if o.LockTTL <= o.GatewayTimeout {
		o.LockTTL = 2*o.GatewayTimeout + time.Second
	}
	return o
}

// PaymentService processes payments against orders.
type PaymentService struct {
	orders       *OrderService
	attemptRepo  repository.PaymentAttemptRepository
	tx           repository.Transactor
	gateway      Gateway
	locker       Locker
	notification *NotificationService
	logger       *zap.Logger
	opts         PaymentOptions
	now          func() time.Time

	notices sync.WaitGroup
}

// PaymentServiceDeps contains the collaborators of a PaymentService.
type PaymentServiceDeps struct {
	Orders       *OrderService
	Attempts     repository.PaymentAttemptRepository
	Transactor   repository.Transactor
	Gateway      Gateway
	Locker       Locker
	Notification *NotificationService // Optional
	Logger       *zap.Logger          // Optional
	Options      PaymentOptions
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(deps PaymentServiceDeps) *PaymentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		orders:       deps.Orders,
		attemptRepo:  deps.Attempts,
		tx:           deps.Transactor,
		gateway:      deps.Gateway,
		locker:       deps.Locker,
		notification: deps.Notification,
		logger:       logger,
		opts:         deps.Options.withDefaults(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ProcessPaymentRequest contains the parameters for processing a payment.
type ProcessPaymentRequest struct {
	OrderID       string
	Amount        decimal.Decimal
	PaymentMethod domain.PaymentMethod
}

// PaymentResult is the outcome of one ProcessPayment call.
// A gateway failure is reported through Attempt.Outcome, not as an error.
type PaymentResult struct {
	Order   *domain.Order
	Attempt *domain.PaymentAttempt
}

// ProcessPayment charges an order through the gateway. Calls for the same
// order are serialized; a call that finds another in flight fails with
// ErrPaymentInProgress. On return with a nil error the order is PAID or
// PAYMENT_FAILED. The customer notice is sent in the background after the
// order lock is released.
func (s *PaymentService) ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (*PaymentResult, error) {
	result, err := s.settle(ctx, req)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, result)
	return result, nil
}

// settle runs one payment attempt under the order lock.
func (s *PaymentService) settle(ctx context.Context, req ProcessPaymentRequest) (*PaymentResult, error) {
	if req.OrderID == "" {
		return nil, ErrInvalidOrderID
	}

	if !domain.ValidAmount(req.Amount) {
		return nil, ErrInvalidAmount
	}

	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	token, err := s.locker.AcquireOrderLock(ctx, req.OrderID, s.opts.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire order lock: %w", err)
	}
	if token == "" {
		return nil, ErrPaymentInProgress
	}
	defer func() {
		if err := s.locker.ReleaseOrderLock(context.WithoutCancel(ctx), req.OrderID, token); err != nil {
			s.logger.Warn("failed to release order lock", zap.String("order_id", req.OrderID), zap.Error(err))
		}
	}()

	order, err := s.orders.GetOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case domain.OrderStatusPaid:
		return nil, ErrOrderAlreadyPaid
	case domain.OrderStatusPaymentPending:
		return nil, ErrPaymentInProgress
	}

	if !req.Amount.Equal(order.TotalAmount) || req.PaymentMethod != order.PaymentMethod {
		s.logger.Info("payment rejected: mismatch",
			zap.String("order_id", order.ID),
			zap.String("amount", req.Amount.String()),
			zap.String("expected_amount", order.TotalAmount.String()),
			zap.String("method", string(req.PaymentMethod)),
			zap.String("expected_method", string(order.PaymentMethod)),
		)
		return nil, ErrPaymentMismatch
	}

	attempt := &domain.PaymentAttempt{
		ID:        uuid.New().String(),
		OrderID:   order.ID,
		Amount:    order.TotalAmount,
		Method:    order.PaymentMethod,
		Outcome:   domain.PaymentOutcomePending,
		CreatedAt: s.now(),
	}

	// Move to PAYMENT_PENDING and record the in-flight attempt together.
	err = s.tx.WithinTx(ctx, func(repos repository.Repos) error {
		if _, err := s.orders.updateStatus(ctx, repos.Orders, order.ID, domain.OrderStatusPaymentPending, ""); err != nil {
			return err
		}
		return repos.Attempts.Create(ctx, attempt)
	})
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrPaymentInProgress
		}
		return nil, err
	}

	s.charge(ctx, attempt)

	// The terminal write must happen even if the caller has gone away.
	finalCtx := context.WithoutCancel(ctx)
	var updated *domain.Order
	err = s.tx.WithinTx(finalCtx, func(repos repository.Repos) error {
		if err := repos.Attempts.Complete(finalCtx, attempt); err != nil {
			return err
		}
		next := domain.OrderStatusPaid
		if !attempt.Succeeded() {
			next = domain.OrderStatusPaymentFailed
		}
		o, err := s.orders.updateStatus(finalCtx, repos.Orders, order.ID, next, attempt.FailureReason)
		updated = o
		return err
	})
	if err != nil {
		s.logger.Error("failed to record payment outcome",
			zap.String("order_id", order.ID),
			zap.String("attempt_id", attempt.ID),
			zap.String("outcome", string(attempt.Outcome)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("record payment outcome: %w", err)
	}

	return &PaymentResult{Order: updated, Attempt: attempt}, nil
}

// notify sends the payment notice on a context detached from the caller
// and bounded by NotifyTimeout.
func (s *PaymentService) notify(ctx context.Context, result *PaymentResult) {
	if s.notification == nil {
		return
	}

	order, attempt := *result.Order, *result.Attempt

	s.notices.Add(1)
	go func() {
		defer s.notices.Done()

		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.NotifyTimeout)
		defer cancel()

		if attempt.Succeeded() {
			s.notification.NotifyPaymentSucceeded(notifyCtx, &order, &attempt)
		} else {
			s.notification.NotifyPaymentFailed(notifyCtx, &order, &attempt)
		}
	}()
}

// Wait blocks until all background payment notices have finished.
func (s *PaymentService) Wait() {
	s.notices.Wait()
}

// charge calls the gateway under the configured timeout and fills in the
// attempt's outcome.
func (s *PaymentService) charge(ctx context.Context, attempt *domain.PaymentAttempt) {
	gatewayCtx, cancel := context.WithTimeout(ctx, s.opts.GatewayTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.gateway.Charge(gatewayCtx, ChargeRequest{
		OrderID:        attempt.OrderID,
		AttemptID:      attempt.ID,
		Amount:         attempt.Amount,
		Method:         attempt.Method,
		IdempotencyKey: fmt.Sprintf("order:%s:attempt:%s", attempt.OrderID, attempt.ID),
	})
	attempt.CompletedAt = s.now()

	if err == nil {
		attempt.Outcome = domain.PaymentOutcomeSuccess
		if result != nil {
			attempt.GatewayRef = result.Reference
		}
		s.logger.Info("payment succeeded",
			zap.String("order_id", attempt.OrderID),
			zap.String("attempt_id", attempt.ID),
			zap.String("gateway_ref", attempt.GatewayRef),
			zap.Duration("latency", time.Since(start)),
		)
		return
	}

	attempt.Outcome = domain.PaymentOutcomeFailure
	attempt.FailureReason = classifyGatewayError(err, gatewayCtx)

	s.logger.Warn("payment failed",
		zap.String("order_id", attempt.OrderID),
		zap.String("attempt_id", attempt.ID),
		zap.String("reason", string(attempt.FailureReason)),
		zap.Duration("latency", time.Since(start)),
		zap.Error(err),
	)
}

func classifyGatewayError(err error, gatewayCtx context.Context) domain.FailureReason {
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(gatewayCtx.Err(), context.DeadlineExceeded):
		return domain.FailureReasonTimeout
	case errors.Is(err, ErrGatewayDeclined):
		return domain.FailureReasonDeclined
	default:
		return domain.FailureReasonGatewayError
	}
}

// ListAttempts retrieves the payment attempts of an order, oldest first.
func (s *PaymentService) ListAttempts(ctx context.Context, orderID string) ([]*domain.PaymentAttempt, error) {
	if _, err := s.orders.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.attemptRepo.ListByOrderID(ctx, orderID)
}
