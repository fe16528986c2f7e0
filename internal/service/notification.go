package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"orderdesk/internal/domain"
	"orderdesk/internal/repository"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationPaymentSuccess NotificationType = "PAYMENT_SUCCESS"
	NotificationPaymentFailed  NotificationType = "PAYMENT_FAILED"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string // User ID, empty for guest orders
	Title       string
	Message     string
	Data        map[string]any
	CreatedAt   time.Time
}

// Mailer delivers a plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NotificationService logs payment notices and emails them to the order's
// user when a Mailer is configured.
type NotificationService struct {
	userRepo repository.UserRepository
	mailer   Mailer
	receipts *ReceiptService
	logger   *zap.Logger
}

// NewNotificationService creates a new NotificationService. userRepo and
// mailer may be nil, which disables email delivery.
func NewNotificationService(userRepo repository.UserRepository, mailer Mailer, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		userRepo: userRepo,
		mailer:   mailer,
		receipts: NewReceiptService(),
		logger:   logger,
	}
}

// NotifyPaymentSucceeded notifies the customer of a successful payment.
func (s *NotificationService) NotifyPaymentSucceeded(ctx context.Context, order *domain.Order, attempt *domain.PaymentAttempt) {
	notification := Notification{
		Type:        NotificationPaymentSuccess,
		RecipientID: order.UserID,
		Title:       "Payment Successful",
		Message:     fmt.Sprintf("Payment of %s for order %s was successful", attempt.Amount.StringFixed(2), order.ID),
		Data: map[string]any{
			"order_id":   order.ID,
			"attempt_id": attempt.ID,
			"amount":     attempt.Amount.String(),
		},
		CreatedAt: time.Now(),
	}
	s.send(ctx, notification, s.receipts.FormatReceipt(order, attempt))
}

// NotifyPaymentFailed notifies the customer of a failed payment.
func (s *NotificationService) NotifyPaymentFailed(ctx context.Context, order *domain.Order, attempt *domain.PaymentAttempt) {
	notification := Notification{
		Type:        NotificationPaymentFailed,
		RecipientID: order.UserID,
		Title:       "Payment Failed",
		Message:     fmt.Sprintf("Payment of %s for order %s failed (%s). Please try again.", attempt.Amount.StringFixed(2), order.ID, attempt.FailureReason),
		Data: map[string]any{
			"order_id":   order.ID,
			"attempt_id": attempt.ID,
			"amount":     attempt.Amount.String(),
			"reason":     string(attempt.FailureReason),
		},
		CreatedAt: time.Now(),
	}
	s.send(ctx, notification, notification.Message)
}

// send logs the notification and emails it when possible. Delivery
// failures are logged.
func (s *NotificationService) send(ctx context.Context, notification Notification, body string) {
	s.logger.Info("notification",
		zap.String("type", string(notification.Type)),
		zap.String("recipient", notification.RecipientID),
		zap.String("title", notification.Title),
		zap.String("message", notification.Message),
	)

	if s.mailer == nil || s.userRepo == nil || notification.RecipientID == "" {
		return
	}

	user, err := s.userRepo.GetByID(ctx, notification.RecipientID)
	if err != nil {
		s.logger.Warn("notification recipient lookup failed",
			zap.String("recipient", notification.RecipientID),
			zap.Error(err),
		)
		return
	}

	if err := s.mailer.Send(ctx, user.Email, notification.Title, body); err != nil {
		s.logger.Warn("notification email failed",
			zap.String("recipient", notification.RecipientID),
			zap.String("type", string(notification.Type)),
			zap.Error(err),
		)
	}
}
