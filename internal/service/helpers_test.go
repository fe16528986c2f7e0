package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/domain"
	"orderdesk/internal/repository/memory"
)

// gatewayFunc adapts a function to the Gateway interface.
type gatewayFunc func(ctx context.Context, req ChargeRequest) (*ChargeResult, error)

func (f gatewayFunc) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	return f(ctx, req)
}

// fakeMailer records sent emails. With block set, Send waits for ctx to be
// done and records the context error.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	err     error
	block   bool
	ctxErrs []error
}

type sentMail struct {
	to, subject, body string
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.block {
		<-ctx.Done()
		m.mu.Lock()
		m.ctxErrs = append(m.ctxErrs, ctx.Err())
		m.mu.Unlock()
		return ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *fakeMailer) CtxErrs() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]error(nil), m.ctxErrs...)
}

func (m *fakeMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type testEnv struct {
	orderRepo   *memory.OrderRepository
	attemptRepo *memory.PaymentAttemptRepository
	userRepo    *memory.UserRepository
	locker      *LocalLocker
	mailer      *fakeMailer
	orders      *OrderService
	payments    *PaymentService
	gatewayHits atomic.Int32
}

func newTestEnv(t *testing.T, gw Gateway, opts PaymentOptions) *testEnv {
	t.Helper()

	env := &testEnv{
		orderRepo:   memory.NewOrderRepository(),
		attemptRepo: memory.NewPaymentAttemptRepository(),
		userRepo:    memory.NewUserRepository(),
		locker:      NewLocalLocker(),
		mailer:      &fakeMailer{},
	}
	if gw == nil {
		gw = NewMockGateway()
	}
	counted := gatewayFunc(func(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
		env.gatewayHits.Add(1)
		return gw.Charge(ctx, req)
	})

	env.orders = NewOrderService(env.orderRepo, env.userRepo, nil)
	env.payments = NewPaymentService(PaymentServiceDeps{
		Orders:       env.orders,
		Attempts:     env.attemptRepo,
		Transactor:   memory.NewTransactor(env.orderRepo, env.attemptRepo),
		Gateway:      counted,
		Locker:       env.locker,
		Notification: NewNotificationService(env.userRepo, env.mailer, nil),
		Options:      opts,
	})
	return env
}

func (env *testEnv) createOrder(t *testing.T, amount int64, method domain.PaymentMethod) *domain.Order {
	t.Helper()
	order, err := env.orders.CreateOrder(context.Background(), CreateOrderRequest{
		TotalAmount:   decimal.NewFromInt(amount),
		PaymentMethod: method,
	})
	require.NoError(t, err)
	return order
}

func (env *testEnv) status(t *testing.T, orderID string) domain.OrderStatus {
	t.Helper()
	order, err := env.orderRepo.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	return order.Status
}

// blockingGateway succeeds only after release is closed.
func blockingGateway(entered chan<- struct{}, release <-chan struct{}) Gateway {
	var once sync.Once
	return gatewayFunc(func(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
		once.Do(func() { close(entered) })
		select {
		case <-release:
			return &ChargeResult{Reference: "ref-" + req.AttemptID}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Second):
			return nil, ErrGatewayFailure
		}
	})
}
