package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"orderdesk/internal/domain"
	"orderdesk/internal/service"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderService   *service.OrderService
	statusReporter *service.StatusReporter
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *service.OrderService, statusReporter *service.StatusReporter) *OrderHandler {
	return &OrderHandler{orderService: orderService, statusReporter: statusReporter}
}

// CreateOrderRequest is the HTTP request body for creating an order.
type CreateOrderRequest struct {
	UserID        string          `json:"user_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
}

// OrderResponse is the HTTP response for order operations.
type OrderResponse struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CreatedAt     string          `json:"created_at"`
	LastUpdated   string          `json:"last_updated"`
}

// StatusResponse is the HTTP response for status queries.
type StatusResponse struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	FailureReason string `json:"failure_reason,omitempty"`
	LastUpdated   string `json:"last_updated"`
}

// CreateOrder handles POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if !req.TotalAmount.IsPositive() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "total_amount must be positive"})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), service.CreateOrderRequest{
		UserID:        req.UserID,
		TotalAmount:   req.TotalAmount,
		PaymentMethod: domain.ParsePaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toOrderResponse(order))
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toOrderResponse(order))
}

// GetAll handles GET /orders
func (h *OrderHandler) GetAll(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}

	respondJSON(c, http.StatusOK, response)
}

// GetStatus handles GET /orders/:id/status
func (h *OrderHandler) GetStatus(c *gin.Context) {
	report, err := h.statusReporter.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, StatusResponse{
		OrderID:       report.OrderID,
		Status:        string(report.Status),
		FailureReason: string(report.FailureReason),
		LastUpdated:   report.LastUpdated.Format(timeFormat),
	})
}

func toOrderResponse(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:            order.ID,
		UserID:        order.UserID,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: string(order.PaymentMethod),
		Status:        string(order.Status),
		FailureReason: string(order.FailureReason),
		CreatedAt:     order.CreatedAt.Format(timeFormat),
		LastUpdated:   order.UpdatedAt.Format(timeFormat),
	}
}
