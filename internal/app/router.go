package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"orderdesk/internal/handler"
	"orderdesk/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	OrderHandler   *handler.OrderHandler
	PaymentHandler *handler.PaymentHandler
	UserHandler    *handler.UserHandler
	RedisClient    redis.Cmdable         // Optional: enables Idempotency-Key support
	NewRelicApp    *newrelic.Application // Optional
	Logger         *zap.Logger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Order routes.
	orders := router.Group("/orders")
	{
		orders.POST("", deps.OrderHandler.CreateOrder)
		orders.GET("", deps.OrderHandler.GetAll)
		orders.GET("/:id", deps.OrderHandler.GetOrder)
		orders.GET("/:id/status", deps.OrderHandler.GetStatus)
		orders.GET("/:id/payments", deps.PaymentHandler.GetAttempts)
	}

	// Payment routes.
	payments := router.Group("/payments")
	{
		payments.POST("/process", deps.PaymentHandler.ProcessPayment)
	}

	// User routes.
	users := router.Group("/users")
	{
		users.POST("/register", deps.UserHandler.Register)
		users.GET("", deps.UserHandler.GetAll)
	}

	return router
}
