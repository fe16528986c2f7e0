package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/repository"
	"orderdesk/internal/repository/memory"
	"orderdesk/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type gatewayFunc func(ctx context.Context, req service.ChargeRequest) (*service.ChargeResult, error)

func (f gatewayFunc) Charge(ctx context.Context, req service.ChargeRequest) (*service.ChargeResult, error) {
	return f(ctx, req)
}

func newTestRouter(t *testing.T, gw service.Gateway) *gin.Engine {
	t.Helper()

	orderRepo := memory.NewOrderRepository()
	attemptRepo := memory.NewPaymentAttemptRepository()
	userRepo := memory.NewUserRepository()

	orderService := service.NewOrderService(orderRepo, userRepo, nil)
	paymentService := service.NewPaymentService(service.PaymentServiceDeps{
		Orders:     orderService,
		Attempts:   attemptRepo,
		Transactor: memory.NewTransactor(orderRepo, attemptRepo),
		Gateway:    gw,
		Locker:     service.NewLocalLocker(),
		Options:    service.PaymentOptions{GatewayTimeout: 50 * time.Millisecond},
	})

	orders := NewOrderHandler(orderService, service.NewStatusReporter(orderService))
	payments := NewPaymentHandler(paymentService)
	users := NewUserHandler(userRepo)

	r := gin.New()
	r.POST("/orders", orders.CreateOrder)
	r.GET("/orders", orders.GetAll)
	r.GET("/orders/:id", orders.GetOrder)
	r.GET("/orders/:id/status", orders.GetStatus)
	r.GET("/orders/:id/payments", payments.GetAttempts)
	r.POST("/payments/process", payments.ProcessPayment)
	r.POST("/users/register", users.Register)
	r.GET("/users", users.GetAll)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createOrder(t *testing.T, r http.Handler) OrderResponse {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/orders", `{"total_amount": 100, "payment_method": "card"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[OrderResponse](t, w)
}

func TestCreateAndGetOrder(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t, service.NewMockGateway())

	created := createOrder(t, r)
	assert.Equal(t, "CREATED", created.Status)
	assert.Equal(t, "CARD", created.PaymentMethod)
	assert.Equal(t, "100", created.TotalAmount.String())

	w := doJSON(t, r, http.MethodGet, "/orders/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[OrderResponse](t, w)
	assert.Equal(t, created.ID, got.ID)
	assert.NotEmpty(t, got.LastUpdated)

	w = doJSON(t, r, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]OrderResponse](t, w), 1)
}

func TestCreateOrder_BadRequests(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t, service.NewMockGateway())

	testCases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"total_amount":`},
		{"zero amount", `{"total_amount": 0, "payment_method": "card"}`},
		{"negative amount", `{"total_amount": -1, "payment_method": "card"}`},
		{"unknown method", `{"total_amount": 10, "payment_method": "cheque"}`},
		{"unknown user", `{"user_id": "ghost", "total_amount": 10, "payment_method": "card"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/orders", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t, service.NewMockGateway())

	w := doJSON(t, r, http.MethodGet, "/orders/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, decode[ErrorResponse](t, w).Error)

	w = doJSON(t, r, http.MethodGet, "/orders/missing/status", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProcessPayment_Paid(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t, service.NewMockGateway())
	order := createOrder(t, r)

	w := doJSON(t, r, http.MethodPost, "/payments/process",
		`{"orderId": "`+order.ID+`", "amount": "100.00", "paymentMethod": "card"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[PaymentResponse](t, w)
	assert.Equal(t, "PAID", resp.Order.Status)
	assert.Equal(t, "SUCCESS", resp.Attempt.Outcome)

	w = doJSON(t, r, http.MethodGet, "/orders/"+order.ID+"/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[StatusResponse](t, w)
	assert.Equal(t, "PAID", status.Status)
	assert.NotEmpty(t, status.LastUpdated)

	w = doJSON(t, r, http.MethodPost, "/payments/process",
		`{"orderId": "`+order.ID+`", "amount": 100, "paymentMethod": "CARD"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodGet, "/orders/"+order.ID+"/payments", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]AttemptResponse](t, w), 1)
}

func TestProcessPayment_Mismatch(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t, service.NewMockGateway())
	order := createOrder(t, r)

	w := doJSON(t, r, http.MethodPost, "/payments/process",
		`{"orderId": "`+order.ID+`", "amount": 50, "paymentMethod": "card"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, r, http.MethodGet, "/orders/"+order.ID+"/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CREATED", decode[StatusResponse](t, w).Status)
}

func TestProcessPayment_GatewayOutcomes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		gw       service.Gateway
		wantCode int
		reason   string
	}{
		{
			name: "declined",
			gw: gatewayFunc(func(ctx context.Context, req service.ChargeRequest) (*service.ChargeResult, error) {
				return nil, service.ErrGatewayDeclined
			}),
			wantCode: http.StatusPaymentRequired,
			reason:   "declined",
		},
		{
			name: "timeout",
			gw: gatewayFunc(func(ctx context.Context, req service.ChargeRequest) (*service.ChargeResult, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}),
			wantCode: http.StatusGatewayTimeout,
			reason:   "timeout",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(t, tc.gw)
			order := createOrder(t, r)

			w := doJSON(t, r, http.MethodPost, "/payments/process",
				`{"orderId": "`+order.ID+`", "amount": 100, "paymentMethod": "card"}`)
			require.Equal(t, tc.wantCode, w.Code, w.Body.String())
			resp := decode[PaymentResponse](t, w)
			assert.Equal(t, "PAYMENT_FAILED", resp.Order.Status)
			assert.Equal(t, "FAILURE", resp.Attempt.Outcome)
			assert.Equal(t, tc.reason, resp.Attempt.FailureReason)
		})
	}
}

func TestProcessPayment_BadRequests(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t, service.NewMockGateway())

	for _, body := range []string{
		`not json`,
		`{"amount": 10, "paymentMethod": "card"}`,
		`{"orderId": "x", "amount": 0, "paymentMethod": "card"}`,
		`{"orderId": "x", "amount": 10, "paymentMethod": "barter"}`,
	} {
		w := doJSON(t, r, http.MethodPost, "/payments/process", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	w := doJSON(t, r, http.MethodPost, "/payments/process", `{"orderId": "missing", "amount": 10, "paymentMethod": "card"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterUser(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t, service.NewMockGateway())

	w := doJSON(t, r, http.MethodPost, "/users/register", `{"name": "Ana", "email": "ana@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[UserResponse](t, w)
	assert.Equal(t, "ana@example.com", user.Email)

	w = doJSON(t, r, http.MethodPost, "/users/register", `{"name": "Ana", "email": "ana@example.com"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/users/register", `{"name": "Bo", "email": "not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/users/register", `{"name": "   ", "email": "bo@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]UserResponse](t, w), 1)

	w = doJSON(t, r, http.MethodPost, "/orders", `{"user_id": "`+user.ID+`", "total_amount": 5, "payment_method": "cash"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		err  error
		want int
	}{
		{service.ErrOrderNotFound, http.StatusNotFound},
		{repository.ErrNotFound, http.StatusNotFound},
		{service.ErrInvalidAmount, http.StatusBadRequest},
		{service.ErrInvalidPaymentMethod, http.StatusBadRequest},
		{service.ErrPaymentMismatch, http.StatusUnprocessableEntity},
		{service.ErrPaymentInProgress, http.StatusConflict},
		{service.ErrOrderAlreadyPaid, http.StatusConflict},
		{errors.Join(service.ErrInvalidTransition, errors.New("CREATED -> PAID")), http.StatusConflict},
		{repository.ErrDuplicateSuccess, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, mapErrorToHTTPStatus(tc.err), tc.err.Error())
	}
}
