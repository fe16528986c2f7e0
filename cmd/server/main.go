package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"orderdesk/internal/app"
	"orderdesk/internal/config"
	"orderdesk/internal/handler"
	"orderdesk/internal/mail"
	internalRedis "orderdesk/internal/redis"
	"orderdesk/internal/repository"
	"orderdesk/internal/repository/memory"
	"orderdesk/internal/repository/postgres"
	"orderdesk/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	logger := app.NewLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}

	logger.Info("server exited")
}

// stores groups the repositories selected by the store driver.
type stores struct {
	orders     repository.OrderRepository
	attempts   repository.PaymentAttemptRepository
	users      repository.UserRepository
	transactor repository.Transactor
	close      func() error
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		var err error
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.Warn("failed to initialize New Relic", zap.Error(err))
		} else {
			logger.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	st, err := openStores(startupCtx, cfg, nrApp, logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.close() }()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = app.NewRedisClient(startupCtx, cfg.Redis, nrApp)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	server, payments, err := wireServer(cfg, st, redisClient, nrApp, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		// Let in-flight payment notices finish; each is bounded by its own timeout.
		payments.Wait()
		return nil
	})

	return g.Wait()
}

// openStores opens the repositories for the configured store driver.
func openStores(ctx context.Context, cfg *config.Config, nrApp *newrelic.Application, logger *zap.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case "memory":
		orders := memory.NewOrderRepository()
		attempts := memory.NewPaymentAttemptRepository()
		logger.Info("using in-memory store")
		return &stores{
			orders:     orders,
			attempts:   attempts,
			users:      memory.NewUserRepository(),
			transactor: memory.NewTransactor(orders, attempts),
			close:      func() error { return nil },
		}, nil

	case "postgres":
		db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info("connected to PostgreSQL", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))
		return &stores{
			orders:     postgres.NewOrderRepository(db),
			attempts:   postgres.NewPaymentAttemptRepository(db),
			users:      postgres.NewUserRepository(db),
			transactor: postgres.NewTransactor(db),
			close:      db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// wireServer wires all dependencies and returns the HTTP server together
// with the payment service, whose background notices are drained on shutdown.
func wireServer(cfg *config.Config, st *stores, redisClient *redis.Client, nrApp *newrelic.Application, logger *zap.Logger) (*http.Server, *service.PaymentService, error) {
	// Order locks: Redis when available, in-process otherwise.
	var locker service.Locker = service.NewLocalLocker()
	if redisClient != nil {
		locker = internalRedis.NewLockStore(redisClient)
	}

	gateway, err := app.NewGateway(cfg.Gateway, logger)
	if err != nil {
		return nil, nil, err
	}

	// Payment notices are emailed only when SMTP credentials are configured.
	var mailer service.Mailer
	if sender, err := mail.NewSender(cfg.Email, nil); err == nil {
		mailer = sender
	} else {
		logger.Info("payment emails disabled", zap.Error(err))
	}

	// Initialize services.
	notificationService := service.NewNotificationService(st.users, mailer, logger)
	orderService := service.NewOrderService(st.orders, st.users, logger)
	statusReporter := service.NewStatusReporter(orderService)
	paymentService := service.NewPaymentService(service.PaymentServiceDeps{
		Orders:       orderService,
		Attempts:     st.attempts,
		Transactor:   st.transactor,
		Gateway:      gateway,
		Locker:       locker,
		Notification: notificationService,
		Logger:       logger,
		Options: service.PaymentOptions{
			GatewayTimeout: cfg.Payment.GatewayTimeout,
			LockTTL:        cfg.Payment.LockTTL,
			NotifyTimeout:  cfg.Payment.NotifyTimeout,
		},
	})

	deps := app.RouterDeps{
		OrderHandler:   handler.NewOrderHandler(orderService, statusReporter),
		PaymentHandler: handler.NewPaymentHandler(paymentService),
		UserHandler:    handler.NewUserHandler(st.users),
		NewRelicApp:    nrApp,
		Logger:         logger,
	}
	if redisClient != nil {
		deps.RedisClient = redisClient
	}

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, paymentService, nil
}
