// Package mail sends email and verifies SMTP credentials over gomail.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"orderdesk/internal/config"
)

// ErrConfigMissing is returned when required SMTP credentials are not set.
var ErrConfigMissing = errors.New("email configuration missing")

// Dialer opens an authenticated SMTP session. *gomail.Dialer satisfies it.
type Dialer interface {
	Dial() (gomail.SendCloser, error)
	DialAndSend(m ...*gomail.Message) error
}

// NewDialer builds a gomail dialer from cfg.
func NewDialer(cfg config.EmailConfig) Dialer {
	return gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.User, cfg.AppPassword)
}

// CheckConfig returns ErrConfigMissing, naming the unset variables, if cfg
// lacks credentials.
func CheckConfig(cfg config.EmailConfig) error {
	if missing := cfg.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigMissing, strings.Join(missing, ", "))
	}
	return nil
}

// Verifier checks that SMTP credentials are accepted by the server.
type Verifier struct {
	cfg    config.EmailConfig
	dialer Dialer
}

// NewVerifier creates a Verifier. A nil dialer uses NewDialer(cfg).
func NewVerifier(cfg config.EmailConfig, dialer Dialer) *Verifier {
	if dialer == nil {
		dialer = NewDialer(cfg)
	}
	return &Verifier{cfg: cfg, dialer: dialer}
}

// Verify performs an SMTP handshake and authentication, then hangs up.
// No connection is attempted when credentials are missing.
func (v *Verifier) Verify(ctx context.Context) error {
	if err := CheckConfig(v.cfg); err != nil {
		return err
	}

	type result struct {
		conn gomail.SendCloser
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := v.dialer.Dial()
		done <- result{conn: conn, err: err}
	}()

	select {
	case <-ctx.Done():
		// Close the session once the dial returns.
		go func() {
			if r := <-done; r.err == nil {
				_ = r.conn.Close()
			}
		}()
		return fmt.Errorf("smtp verification: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			return fmt.Errorf("smtp verification against %s:%d: %w", v.cfg.SMTPHost, v.cfg.SMTPPort, r.err)
		}
		return r.conn.Close()
	}
}

// Sender delivers plain-text notices.
type Sender struct {
	from   string
	dialer Dialer
}

// NewSender creates a Sender. A nil dialer uses NewDialer(cfg).
func NewSender(cfg config.EmailConfig, dialer Dialer) (*Sender, error) {
	if err := CheckConfig(cfg); err != nil {
		return nil, err
	}
	if dialer == nil {
		dialer = NewDialer(cfg)
	}
	return &Sender{from: cfg.Sender(), dialer: dialer}, nil
}

// Send emails body to the given address. It returns when ctx is done even
// if the SMTP exchange is still running.
func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("send email to %s: %w", to, ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email to %s: %w", to, err)
		}
		return nil
	}
}
