package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Locker serializes payment processing per order.
// AcquireOrderLock returns an empty token when the lock is already held.
type Locker interface {
	AcquireOrderLock(ctx context.Context, orderID string, ttl time.Duration) (string, error)
	ReleaseOrderLock(ctx context.Context, orderID, token string) error
}

// LocalLocker is an in-process Locker for single-instance deployments and tests.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]localLock
	now   func() time.Time
}

type localLock struct {
	token     string
	expiresAt time.Time
}

// NewLocalLocker creates a new LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		locks: make(map[string]localLock),
		now:   time.Now,
	}
}

// AcquireOrderLock attempts to acquire the lock for orderID.
func (l *LocalLocker) AcquireOrderLock(ctx context.Context, orderID string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if held, ok := l.locks[orderID]; ok && now.Before(held.expiresAt) {
		return "", nil
	}

	token := uuid.NewString()
	l.locks[orderID] = localLock{token: token, expiresAt: now.Add(ttl)}
	return token, nil
}

// ReleaseOrderLock releases the lock if token still owns it.
func (l *LocalLocker) ReleaseOrderLock(ctx context.Context, orderID, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, ok := l.locks[orderID]; ok && held.token == token {
		delete(l.locks, orderID)
	}
	return nil
}
