package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"orderdesk/internal/domain"
	"orderdesk/internal/repository"
)

type fakeRow struct {
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) != len(r.values) {
		return fmt.Errorf("expected %d columns, got %d", len(r.values), len(dest))
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *domain.OrderStatus:
			*d = domain.OrderStatus(v.(string))
		case *domain.PaymentMethod:
			*d = domain.PaymentMethod(v.(string))
		case *decimal.Decimal:
			if err := d.Scan(v); err != nil {
				return err
			}
		case *time.Time:
			*d = v.(time.Time)
		case interface{ Scan(any) error }:
			if err := d.Scan(v); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported destination %T", d)
		}
	}
	return nil
}

func TestScanOrder_NullableColumns(t *testing.T) {
	now := time.Now().UTC()

	order, err := scanOrder(fakeRow{values: []any{"order-1", nil, "100.00", "CARD", "CREATED", nil, now, now}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.UserID != "" || order.FailureReason != "" {
		t.Errorf("expected empty optional fields, got %q / %q", order.UserID, order.FailureReason)
	}
	if !order.TotalAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected 100, got %s", order.TotalAmount)
	}

	order, err = scanOrder(fakeRow{values: []any{"order-2", "u1", "9.99", "WALLET", "PAYMENT_FAILED", "declined", now, now}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.UserID != "u1" || order.FailureReason != domain.FailureReasonDeclined {
		t.Errorf("unexpected optional fields %q / %q", order.UserID, order.FailureReason)
	}
}

func TestMapUniqueViolation(t *testing.T) {
	err := mapUniqueViolation(&pq.Error{Code: uniqueViolation})
	if !errors.Is(err, repository.ErrDuplicateSuccess) {
		t.Errorf("expected ErrDuplicateSuccess, got %v", err)
	}

	other := &pq.Error{Code: "23503"}
	if got := mapUniqueViolation(other); got != other {
		t.Errorf("expected error to pass through, got %v", got)
	}
}

func TestNullHelpers(t *testing.T) {
	if nullString("").Valid {
		t.Error("empty string should be NULL")
	}
	if !nullString("x").Valid {
		t.Error("non-empty string should be valid")
	}
	if nullTime(time.Time{}).Valid {
		t.Error("zero time should be NULL")
	}
	if !nullTime(time.Now()).Valid {
		t.Error("non-zero time should be valid")
	}
}
