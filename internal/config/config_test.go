package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "STORE_DRIVER", "REDIS_ENABLED", "PAYMENT_GATEWAY_TIMEOUT", "PAYMENT_NOTIFY_TIMEOUT", "GATEWAY_PROVIDER", "EMAIL_SMTP_PORT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Store.Driver != "postgres" {
		t.Errorf("expected postgres store, got %s", cfg.Store.Driver)
	}
	if !cfg.Redis.Enabled {
		t.Error("expected redis enabled by default")
	}
	if cfg.Payment.GatewayTimeout != 5*time.Second {
		t.Errorf("expected 5s gateway timeout, got %s", cfg.Payment.GatewayTimeout)
	}
	if cfg.Payment.NotifyTimeout != 10*time.Second {
		t.Errorf("expected 10s notify timeout, got %s", cfg.Payment.NotifyTimeout)
	}
	if cfg.Gateway.Provider != "mock" {
		t.Errorf("expected mock gateway, got %s", cfg.Gateway.Provider)
	}
	if cfg.Email.SMTPHost != "smtp.gmail.com" || cfg.Email.SMTPPort != 587 {
		t.Errorf("unexpected smtp server %s:%d", cfg.Email.SMTPHost, cfg.Email.SMTPPort)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected info log level, got %s", cfg.Log.Level)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("PAYMENT_GATEWAY_TIMEOUT", "250ms")
	t.Setenv("PAYMENT_LOCK_TTL", "not-a-duration")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")

	cfg := Load()

	if cfg.Store.Driver != "memory" {
		t.Errorf("expected memory store, got %s", cfg.Store.Driver)
	}
	if cfg.Redis.Enabled {
		t.Error("expected redis disabled")
	}
	if cfg.Payment.GatewayTimeout != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %s", cfg.Payment.GatewayTimeout)
	}
	if cfg.Payment.LockTTL != 30*time.Second {
		t.Errorf("expected invalid duration to fall back to 30s, got %s", cfg.Payment.LockTTL)
	}
	if cfg.Database.MaxOpenConns != 7 {
		t.Errorf("expected 7 open conns, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestEmailConfig_Missing(t *testing.T) {
	t.Setenv("EMAIL_USER", "")
	t.Setenv("EMAIL_APP_PASSWORD", "")

	cfg := LoadEmail()
	missing := cfg.Missing()
	if len(missing) != 2 || missing[0] != "EMAIL_USER" || missing[1] != "EMAIL_APP_PASSWORD" {
		t.Errorf("unexpected missing list %v", missing)
	}

	t.Setenv("EMAIL_USER", "shop@example.com")
	t.Setenv("EMAIL_APP_PASSWORD", "secret")
	cfg = LoadEmail()
	if len(cfg.Missing()) != 0 {
		t.Errorf("expected complete config, missing %v", cfg.Missing())
	}
	if cfg.Sender() != "shop@example.com" {
		t.Errorf("expected sender to default to user, got %s", cfg.Sender())
	}

	cfg.From = "orders@example.com"
	if cfg.Sender() != "orders@example.com" {
		t.Errorf("expected explicit sender, got %s", cfg.Sender())
	}
}
