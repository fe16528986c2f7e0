package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"orderdesk/internal/domain"
	"orderdesk/internal/repository"
)

// OrderService is the source of truth for the order lifecycle.
type OrderService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new OrderService. userRepo may be nil, in which
// case user references are not checked.
func NewOrderService(orderRepo repository.OrderRepository, userRepo repository.UserRepository, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrderRequest contains the parameters for creating an order.
type CreateOrderRequest struct {
	UserID        string // Optional
	TotalAmount   decimal.Decimal
	PaymentMethod domain.PaymentMethod
}

// CreateOrder creates a new order in CREATED state.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	if !domain.ValidAmount(req.TotalAmount) {
		return nil, ErrInvalidAmount
	}

	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	if req.UserID != "" && s.userRepo != nil {
		if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrInvalidUserID
			}
			return nil, err
		}
	}

	now := s.now()
	order := &domain.Order{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		TotalAmount:   req.TotalAmount,
		PaymentMethod: req.PaymentMethod,
		Status:        domain.OrderStatusCreated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("amount", order.TotalAmount.String()),
		zap.String("payment_method", string(order.PaymentMethod)),
	)

	return order, nil
}

// GetOrder retrieves an order by ID.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}

// ListOrders retrieves the order history, newest first.
func (s *OrderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orderRepo.GetAll(ctx)
}

// UpdateStatus moves an order to newStatus if the state graph allows it.
// The state is left unchanged on any error.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, newStatus domain.OrderStatus) (*domain.Order, error) {
	return s.updateStatus(ctx, s.orderRepo, orderID, newStatus, "")
}

// updateStatus validates and applies a transition through repo, which may be
// bound to a transaction.
func (s *OrderService) updateStatus(ctx context.Context, repo repository.OrderRepository, orderID string, newStatus domain.OrderStatus, reason domain.FailureReason) (*domain.Order, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	order, err := repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if !domain.CanTransition(order.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, newStatus)
	}

	updated, err := repo.CompareAndSetStatus(ctx, orderID, order.Status, newStatus, reason)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	s.logger.Debug("order status changed",
		zap.String("order_id", orderID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(newStatus)),
	)

	return updated, nil
}
