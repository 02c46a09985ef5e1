// File: internal/repository/request/gorm_request_repository.go
package request

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/quailbyte/go-accountsvc/internal/domain"
)

type gormRequestRepository struct {
	db *gorm.DB
}

// NewGormRequestRepository creates a new protected request repository backed by GORM.
func NewGormRequestRepository(db *gorm.DB) RequestRepository {
	return &gormRequestRepository{db: db}
}

func (r *gormRequestRepository) Create(ctx context.Context, req *domain.ProtectedActionRequest) error {
	if req.UserID == 0 {
		return errors.New("request user id is required")
	}
	if !req.Action.IsValid() {
		return fmt.Errorf("unsupported protected action: %q", req.Action)
	}
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		log.Printf("[RequestRepository] Database error during request creation: %v", err)
		return fmt.Errorf("database error creating request: %w", err)
	}
	return nil
}

func (r *gormRequestRepository) FindLatestPending(ctx context.Context, userID uint, action domain.ProtectedAction) (*domain.ProtectedActionRequest, error) {
	var req domain.ProtectedActionRequest
	err := r.db.WithContext(ctx).
		Scopes(ScopeByStatuses(domain.RequestStatusPending)).
		Where("user_id = ? AND action = ?", userID, action).
		Order("created_at DESC").
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("database error finding pending request: %w", err)
	}
	return &req, nil
}

func (r *gormRequestRepository) FindAllForUserAction(ctx context.Context, userID uint, action domain.ProtectedAction) ([]domain.ProtectedActionRequest, error) {
	var reqs []domain.ProtectedActionRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND action = ?", userID, action).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("database error listing requests: %w", err)
	}
	return reqs, nil
}

// CancelAllPending is a single update-many; it deliberately bypasses
// per-record load/save round trips.
func (r *gormRequestRepository) CancelAllPending(ctx context.Context, userID uint, action domain.ProtectedAction, reason string, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.ProtectedActionRequest{}).
		Scopes(ScopeByStatuses(domain.RequestStatusPending)).
		Where("user_id = ? AND action = ?", userID, action).
		Updates(map[string]interface{}{
			"status_value":      domain.RequestStatusCancelled,
			"status_reason":     reason,
			"status_updated_at": now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("database error cancelling pending requests: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormRequestRepository) Update(ctx context.Context, req *domain.ProtectedActionRequest) error {
	if req.ID == 0 {
		return errors.New("invalid request ID")
	}
	if err := r.db.WithContext(ctx).Save(req).Error; err != nil {
		log.Printf("[RequestRepository] Database error during request update for ID %d: %v", req.ID, err)
		return fmt.Errorf("database error updating request: %w", err)
	}
	return nil
}

// DeleteCreatedBefore is the storage-hygiene sweep. It is independent of the
// expires_at business deadline; fulfilled and cancelled records are purged
// the same as stale pending ones.
func (r *gormRequestRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	var lockIDs []string
	err := r.db.WithContext(ctx).
		Model(&domain.ProtectedActionRequest{}).
		Where("created_at < ?", cutoff).
		Pluck("lock_id", &lockIDs).Error
	if err != nil {
		return nil, fmt.Errorf("database error collecting expired requests: %w", err)
	}
	if len(lockIDs) == 0 {
		return nil, nil
	}
	err = r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&domain.ProtectedActionRequest{}).Error
	if err != nil {
		return nil, fmt.Errorf("database error purging expired requests: %w", err)
	}
	return lockIDs, nil
}
