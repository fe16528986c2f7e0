package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"orderdesk/internal/domain"
	"orderdesk/internal/repository"
)

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// PaymentAttemptRepository is a PostgreSQL implementation of repository.PaymentAttemptRepository.
type PaymentAttemptRepository struct {
	q Querier
}

// NewPaymentAttemptRepository creates a new PostgreSQL payment attempt repository.
func NewPaymentAttemptRepository(db *sql.DB) *PaymentAttemptRepository {
	return &PaymentAttemptRepository{q: db}
}

// NewPaymentAttemptRepositoryWithTx creates a payment attempt repository using a transaction.
func NewPaymentAttemptRepositoryWithTx(tx *sql.Tx) *PaymentAttemptRepository {
	return &PaymentAttemptRepository{q: tx}
}

// Create persists a new attempt.
func (r *PaymentAttemptRepository) Create(ctx context.Context, attempt *domain.PaymentAttempt) error {
	query := `
		INSERT INTO payment_attempts (id, order_id, amount, method, outcome, failure_reason, gateway_ref, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		attempt.ID,
		attempt.OrderID,
		attempt.Amount,
		attempt.Method,
		attempt.Outcome,
		nullString(string(attempt.FailureReason)),
		nullString(attempt.GatewayRef),
		attempt.CreatedAt,
		nullTime(attempt.CompletedAt),
	)

	return mapUniqueViolation(err)
}

// Complete records the outcome of an attempt.
func (r *PaymentAttemptRepository) Complete(ctx context.Context, attempt *domain.PaymentAttempt) error {
	query := `
		UPDATE payment_attempts SET outcome = $1, failure_reason = $2, gateway_ref = $3, completed_at = $4
		WHERE id = $5
	`

	result, err := r.q.ExecContext(ctx, query,
		attempt.Outcome,
		nullString(string(attempt.FailureReason)),
		nullString(attempt.GatewayRef),
		nullTime(attempt.CompletedAt),
		attempt.ID,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListByOrderID retrieves the attempts of an order, oldest first.
func (r *PaymentAttemptRepository) ListByOrderID(ctx context.Context, orderID string) ([]*domain.PaymentAttempt, error) {
	query := `
		SELECT id, order_id, amount, method, outcome, failure_reason, gateway_ref, created_at, completed_at
		FROM payment_attempts WHERE order_id = $1 ORDER BY created_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*domain.PaymentAttempt
	for rows.Next() {
		var attempt domain.PaymentAttempt
		var failureReason, gatewayRef sql.NullString
		var completedAt sql.NullTime

		if err := rows.Scan(
			&attempt.ID,
			&attempt.OrderID,
			&attempt.Amount,
			&attempt.Method,
			&attempt.Outcome,
			&failureReason,
			&gatewayRef,
			&attempt.CreatedAt,
			&completedAt,
		); err != nil {
			return nil, err
		}

		attempt.FailureReason = domain.FailureReason(failureReason.String)
		attempt.GatewayRef = gatewayRef.String
		attempt.CompletedAt = completedAt.Time
		attempts = append(attempts, &attempt)
	}
	return attempts, rows.Err()
}

// mapUniqueViolation turns the one-success-per-order index violation into ErrDuplicateSuccess.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return repository.ErrDuplicateSuccess
	}
	return err
}
