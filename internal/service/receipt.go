package service

import (
	"strings"

	"orderdesk/internal/domain"
)

// ReceiptService renders payment receipts for email and print.
type ReceiptService struct{}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService() *ReceiptService {
	return &ReceiptService{}
}

// FormatReceipt formats a settled attempt as a plain-text receipt.
func (s *ReceiptService) FormatReceipt(order *domain.Order, attempt *domain.PaymentAttempt) string {
	var b strings.Builder
	b.WriteString("=====================================\n")
	b.WriteString("          PAYMENT RECEIPT\n")
	b.WriteString("=====================================\n")
	b.WriteString("Order ID:   " + order.ID + "\n")
	b.WriteString("Attempt ID: " + attempt.ID + "\n")
	b.WriteString("Date:       " + attempt.CompletedAt.Format("Jan 02, 2006 3:04 PM") + "\n")
	b.WriteString("-------------------------------------\n")
	b.WriteString("Amount:     " + attempt.Amount.StringFixed(2) + "\n")
	b.WriteString("Method:     " + string(attempt.Method) + "\n")
	b.WriteString("Status:     " + string(order.Status) + "\n")
	if attempt.GatewayRef != "" {
		b.WriteString("Reference:  " + attempt.GatewayRef + "\n")
	}
	b.WriteString("=====================================\n")
	b.WriteString("     Thank you for your order!\n")
	b.WriteString("=====================================\n")
	return b.String()
}
