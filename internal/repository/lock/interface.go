// File: internal/repository/lock/interface.go
package lock

import (
	"context"
	"errors"

	"github.com/quailbyte/go-accountsvc/internal/domain"
)

// ErrLockNotFound is returned when no lock exists for the given id.
var ErrLockNotFound = errors.New("secret lock not found")

// LockRepository handles SecretLock persistence. Lock records are mutated
// only through these operations; no other component writes the hash or the
// failure counter directly.
type LockRepository interface {
	Create(ctx context.Context, lock *domain.SecretLock) error
	FindByID(ctx context.Context, id string) (*domain.SecretLock, error)

	// IncrementFailure atomically bumps the failure counter and records the
	// attempter, but only while the counter is still below maxFailures
	// (increment-if-below-threshold). It returns false when the ceiling was
	// already reached and nothing was written.
	IncrementFailure(ctx context.Context, id, attemptedBy string, maxFailures int) (bool, error)

	// ResetFailures zeroes the failure counter after a successful unlock.
	ResetFailures(ctx context.Context, id string) error

	// ReplaceSecret swaps in a new secret hash and zeroes the failure counter,
	// preserving the lock's identity.
	ReplaceSecret(ctx context.Context, id, newHash string) error

	Delete(ctx context.Context, id string) error
	DeleteByIDs(ctx context.Context, ids []string) error
}
