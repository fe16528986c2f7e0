package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Payment  PaymentConfig
	Gateway  GatewayConfig
	Email    EmailConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string // "postgres" or "memory"
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig holds Redis configuration.
// When disabled, order locks fall back to in-process locks and the
// idempotency middleware is not installed.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// PaymentConfig holds payment processing limits.
type PaymentConfig struct {
	GatewayTimeout time.Duration
	LockTTL        time.Duration
	NotifyTimeout  time.Duration
}

// GatewayConfig selects and configures the payment gateway.
type GatewayConfig struct {
	Provider         string // "mock" or "stripe"
	MockLatency      time.Duration
	MockDeclineAbove string // Decimal amount; empty disables declines
	StripeSecretKey  string
	StripeCurrency   string
	StripeMethod     string // Stripe payment method charged for card orders
}

// EmailConfig holds SMTP credentials used for verification and notices.
type EmailConfig struct {
	User        string
	AppPassword string
	SMTPHost    string
	SMTPPort    int
	From        string
}

// Missing returns the names of required email variables that are unset.
func (c EmailConfig) Missing() []string {
	var missing []string
	if c.User == "" {
		missing = append(missing, "EMAIL_USER")
	}
	if c.AppPassword == "" {
		missing = append(missing, "EMAIL_APP_PASSWORD")
	}
	return missing
}

// Sender returns the From address, defaulting to the SMTP user.
func (c EmailConfig) Sender() string {
	if c.From != "" {
		return c.From
	}
	return c.User
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", "postgres"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "orderdesk"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 25),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", true),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "orderdesk"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Payment: PaymentConfig{
			GatewayTimeout: getDurationEnv("PAYMENT_GATEWAY_TIMEOUT", 5*time.Second),
			LockTTL:        getDurationEnv("PAYMENT_LOCK_TTL", 30*time.Second),
			NotifyTimeout:  getDurationEnv("PAYMENT_NOTIFY_TIMEOUT", 10*time.Second),
		},
		Gateway: GatewayConfig{
			Provider:         getEnv("GATEWAY_PROVIDER", "mock"),
			MockLatency:      getDurationEnv("GATEWAY_LATENCY", 0),
			MockDeclineAbove: getEnv("GATEWAY_DECLINE_ABOVE", ""),
			StripeSecretKey:  getEnv("STRIPE_SECRET_KEY", ""),
			StripeCurrency:   getEnv("STRIPE_CURRENCY", "usd"),
			StripeMethod:     getEnv("STRIPE_PAYMENT_METHOD", ""),
		},
		Email: LoadEmail(),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// LoadEmail loads only the email configuration. Credentials have no defaults.
func LoadEmail() EmailConfig {
	return EmailConfig{
		User:        os.Getenv("EMAIL_USER"),
		AppPassword: os.Getenv("EMAIL_APP_PASSWORD"),
		SMTPHost:    getEnv("EMAIL_SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:    getIntEnv("EMAIL_SMTP_PORT", 587),
		From:        getEnv("EMAIL_FROM", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
