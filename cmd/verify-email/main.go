// Command verify-email checks that the configured SMTP credentials are
// accepted by the mail server. It exits 0 on success and 1 when the
// credentials are missing or rejected.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"orderdesk/internal/config"
	"orderdesk/internal/mail"
)

const verifyTimeout = 30 * time.Second

func main() {
	cfg := config.LoadEmail()

	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	os.Exit(run(ctx, cfg, nil, os.Stdout, os.Stderr))
}

// run verifies cfg and returns the process exit code. A nil dialer dials
// the configured server.
func run(ctx context.Context, cfg config.EmailConfig, dialer mail.Dialer, stdout, stderr io.Writer) int {
	fmt.Fprintf(stdout, "Verifying SMTP credentials for %q on %s:%d\n", cfg.User, cfg.SMTPHost, cfg.SMTPPort)

	if err := mail.CheckConfig(cfg); err != nil {
		fmt.Fprintf(stderr, "Email configuration error: %v\n", err)
		return 1
	}

	err := mail.NewVerifier(cfg, dialer).Verify(ctx)
	switch {
	case err == nil:
		fmt.Fprintln(stdout, "Email configuration verified: server accepted the credentials")
		return 0
	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(stderr, "Email verification timed out: %v\n", err)
		return 1
	default:
		fmt.Fprintf(stderr, "Email verification failed: %v\n", err)
		return 1
	}
}
