// File: internal/repository/lock/gorm_lock_repository.go
package lock

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/quailbyte/go-accountsvc/internal/domain"
)

type gormLockRepository struct {
	db *gorm.DB
}

// NewGormLockRepository creates a new lock repository backed by GORM.
func NewGormLockRepository(db *gorm.DB) LockRepository {
	return &gormLockRepository{db: db}
}

func (r *gormLockRepository) Create(ctx context.Context, lock *domain.SecretLock) error {
	if lock.ID == "" {
		return errors.New("lock id is required")
	}
	if lock.SecretHash == "" {
		return errors.New("lock secret hash is required")
	}
	if err := r.db.WithContext(ctx).Create(lock).Error; err != nil {
		log.Printf("[LockRepository] Database error during lock creation: %v", err)
		return fmt.Errorf("database error creating lock: %w", err)
	}
	return nil
}

func (r *gormLockRepository) FindByID(ctx context.Context, id string) (*domain.SecretLock, error) {
	if id == "" {
		return nil, ErrLockNotFound
	}
	var lock domain.SecretLock
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&lock).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLockNotFound
		}
		return nil, fmt.Errorf("database error finding lock: %w", err)
	}
	return &lock, nil
}

// IncrementFailure uses a conditional update so concurrent failed attempts
// never push the counter past the ceiling and never lose an increment.
func (r *gormLockRepository) IncrementFailure(ctx context.Context, id, attemptedBy string, maxFailures int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.SecretLock{}).
		Where("id = ? AND failure_count < ?", id, maxFailures).
		Updates(map[string]interface{}{
			"failure_count":             gorm.Expr("failure_count + 1"),
			"last_failure_attempted_by": attemptedBy,
		})
	if result.Error != nil {
		return false, fmt.Errorf("database error recording lock failure: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *gormLockRepository) ResetFailures(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).
		Model(&domain.SecretLock{}).
		Where("id = ?", id).
		Update("failure_count", 0).Error
	if err != nil {
		return fmt.Errorf("database error resetting lock failures: %w", err)
	}
	return nil
}

func (r *gormLockRepository) ReplaceSecret(ctx context.Context, id, newHash string) error {
	if newHash == "" {
		return errors.New("lock secret hash is required")
	}
	result := r.db.WithContext(ctx).
		Model(&domain.SecretLock{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"secret_hash":   newHash,
			"failure_count": 0,
		})
	if result.Error != nil {
		return fmt.Errorf("database error replacing lock secret: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLockNotFound
	}
	return nil
}

func (r *gormLockRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.SecretLock{}).Error
	if err != nil {
		return fmt.Errorf("database error deleting lock: %w", err)
	}
	return nil
}

// DeleteByIDs removes a batch of locks, used by the retention sweep after
// their owning requests are purged.
func (r *gormLockRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.SecretLock{}).Error
	if err != nil {
		return fmt.Errorf("database error deleting locks: %w", err)
	}
	return nil
}
