package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"orderdesk/internal/domain"
	"orderdesk/internal/repository"
)

const orderColumns = `id, user_id, total_amount, payment_method, status, failure_reason, created_at, updated_at`

// OrderRepository is a PostgreSQL implementation of repository.OrderRepository.
type OrderRepository struct {
	q Querier
}

// NewOrderRepository creates a new PostgreSQL order repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{q: db}
}

// NewOrderRepositoryWithTx creates an order repository using a transaction.
func NewOrderRepositoryWithTx(tx *sql.Tx) *OrderRepository {
	return &OrderRepository{q: tx}
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		order.ID,
		nullString(order.UserID),
		order.TotalAmount,
		order.PaymentMethod,
		order.Status,
		nullString(string(order.FailureReason)),
		order.CreatedAt,
		order.UpdatedAt,
	)

	return err
}

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return order, nil
}

// GetAll retrieves all orders, newest first.
func (r *OrderRepository) GetAll(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// CompareAndSetStatus moves an order from one status to another in a single statement.
func (r *OrderRepository) CompareAndSetStatus(ctx context.Context, id string, from, to domain.OrderStatus, reason domain.FailureReason) (*domain.Order, error) {
	query := `
		UPDATE orders SET status = $1, failure_reason = $2, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING ` + orderColumns

	order, err := scanOrder(r.q.QueryRowContext(ctx, query,
		to,
		nullString(string(reason)),
		time.Now().UTC(),
		id,
		from,
	))
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Nothing updated: either the order is missing or its status moved.
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, repository.ErrStatusConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var userID sql.NullString
	var failureReason sql.NullString

	err := row.Scan(
		&order.ID,
		&userID,
		&order.TotalAmount,
		&order.PaymentMethod,
		&order.Status,
		&failureReason,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.UserID = userID.String
	order.FailureReason = domain.FailureReason(failureReason.String)
	return &order, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
