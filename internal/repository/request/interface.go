// File: internal/repository/request/interface.go
package request

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/quailbyte/go-accountsvc/internal/domain"
)

// RequestRepository handles ProtectedActionRequest persistence. Status
// transitions go through CancelAllPending and Update only; handlers and other
// services never write status fields directly.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.ProtectedActionRequest) error

	// FindLatestPending returns the most recently created pending request for
	// the (user, action) pair, or nil when none exists. The creation-time
	// tie-break tolerates transient duplicate-pending states left by
	// concurrent creates.
	FindLatestPending(ctx context.Context, userID uint, action domain.ProtectedAction) (*domain.ProtectedActionRequest, error)

	// FindAllForUserAction returns every request for the pair, newest first.
	FindAllForUserAction(ctx context.Context, userID uint, action domain.ProtectedAction) ([]domain.ProtectedActionRequest, error)

	// CancelAllPending transitions every pending request for the pair to
	// cancelled in a single update-many statement. Returns the number of
	// requests cancelled; zero matches is a no-op, not an error.
	CancelAllPending(ctx context.Context, userID uint, action domain.ProtectedAction, reason string, now time.Time) (int64, error)

	Update(ctx context.Context, req *domain.ProtectedActionRequest) error

	// DeleteCreatedBefore purges requests older than the retention cutoff
	// regardless of status and returns the lock ids they owned so the caller
	// can purge those too.
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) ([]string, error)
}

// ScopeByStatuses builds a reusable status filter. It returns a new scope
// rather than mutating a caller-owned query.
func ScopeByStatuses(statuses ...domain.RequestStatus) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status_value IN ?", statuses)
	}
}
