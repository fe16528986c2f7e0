package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"orderdesk/internal/domain"
	"orderdesk/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// ProcessPaymentRequest is the HTTP request body for processing a payment.
type ProcessPaymentRequest struct {
	OrderID       string          `json:"orderId"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
}

// AttemptResponse is the HTTP response for a payment attempt.
type AttemptResponse struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Outcome       string          `json:"outcome"`
	FailureReason string          `json:"failure_reason,omitempty"`
	GatewayRef    string          `json:"gateway_ref,omitempty"`
	CreatedAt     string          `json:"created_at"`
	CompletedAt   string          `json:"completed_at,omitempty"`
}

// PaymentResponse is the HTTP response for a processed payment.
type PaymentResponse struct {
	Order   OrderResponse   `json:"order"`
	Attempt AttemptResponse `json:"attempt"`
}

// ProcessPayment handles POST /payments/process
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	var req ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.OrderID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "orderId is required"})
		return
	}

	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "amount must be positive"})
		return
	}

	result, err := h.paymentService.ProcessPayment(c.Request.Context(), service.ProcessPaymentRequest{
		OrderID:       req.OrderID,
		Amount:        req.Amount,
		PaymentMethod: domain.ParsePaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, paymentStatusCode(result.Attempt), PaymentResponse{
		Order:   toOrderResponse(result.Order),
		Attempt: toAttemptResponse(result.Attempt),
	})
}

// GetAttempts handles GET /orders/:id/payments
func (h *PaymentHandler) GetAttempts(c *gin.Context) {
	attempts, err := h.paymentService.ListAttempts(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]AttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		response = append(response, toAttemptResponse(a))
	}

	respondJSON(c, http.StatusOK, response)
}

// paymentStatusCode maps an attempt outcome to an HTTP status code.
func paymentStatusCode(attempt *domain.PaymentAttempt) int {
	switch {
	case attempt.Succeeded():
		return http.StatusOK
	case attempt.FailureReason == domain.FailureReasonTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusPaymentRequired
	}
}

func toAttemptResponse(attempt *domain.PaymentAttempt) AttemptResponse {
	resp := AttemptResponse{
		ID:            attempt.ID,
		OrderID:       attempt.OrderID,
		Amount:        attempt.Amount,
		Method:        string(attempt.Method),
		Outcome:       string(attempt.Outcome),
		FailureReason: string(attempt.FailureReason),
		GatewayRef:    attempt.GatewayRef,
		CreatedAt:     attempt.CreatedAt.Format(timeFormat),
	}
	if !attempt.CompletedAt.IsZero() {
		resp.CompletedAt = attempt.CompletedAt.Format(timeFormat)
	}
	return resp
}
