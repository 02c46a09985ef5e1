// File: internal/repository/request/gorm_request_repository_test.go
package request

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quailbyte/go-accountsvc/internal/domain"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access underlying database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&domain.ProtectedActionRequest{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedRequest(t *testing.T, repo RequestRepository, userID uint, action domain.ProtectedAction, lockID string, createdAt time.Time) *domain.ProtectedActionRequest {
	t.Helper()

	req := &domain.ProtectedActionRequest{
		UserID:    userID,
		Action:    action,
		LockID:    lockID,
		ExpiresAt: createdAt.Add(24 * time.Hour),
		CreatedAt: createdAt,
	}
	req.SetStatus(domain.RequestStatusPending, "", createdAt)
	if err := repo.Create(context.Background(), req); err != nil {
		t.Fatalf("seed create failed: %v", err)
	}
	return req
}

func TestFindLatestPendingPicksNewest(t *testing.T) {
	repo := NewGormRequestRepository(openTestDB(t))
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	seedRequest(t, repo, 1, domain.ActionVerifyAccountEmail, "lock-old", base)
	seedRequest(t, repo, 1, domain.ActionVerifyAccountEmail, "lock-new", base.Add(time.Minute))
	// Other users and actions must not bleed in.
	seedRequest(t, repo, 2, domain.ActionVerifyAccountEmail, "lock-other-user", base.Add(2*time.Minute))
	seedRequest(t, repo, 1, domain.ActionResetPassword, "lock-other-action", base.Add(3*time.Minute))

	latest, err := repo.FindLatestPending(ctx, 1, domain.ActionVerifyAccountEmail)
	if err != nil {
		t.Fatalf("FindLatestPending failed: %v", err)
	}
	if latest == nil || latest.LockID != "lock-new" {
		t.Fatalf("expected lock-new, got %+v", latest)
	}
}

func TestFindLatestPendingReturnsNilWhenNone(t *testing.T) {
	repo := NewGormRequestRepository(openTestDB(t))

	latest, err := repo.FindLatestPending(context.Background(), 1, domain.ActionVerifyAccountEmail)
	if err != nil {
		t.Fatalf("FindLatestPending failed: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil for empty table, got %+v", latest)
	}
}

func TestCancelAllPendingIsBulkAndScoped(t *testing.T) {
	repo := NewGormRequestRepository(openTestDB(t))
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	seedRequest(t, repo, 1, domain.ActionVerifyAccountEmail, "lock-a", base)
	seedRequest(t, repo, 1, domain.ActionVerifyAccountEmail, "lock-b", base.Add(time.Minute))
	fulfilled := seedRequest(t, repo, 1, domain.ActionVerifyAccountEmail, "lock-c", base.Add(2*time.Minute))
	fulfilled.SetStatus(domain.RequestStatusFulfilled, domain.ReasonVerificationSuccessful, time.Now())
	if err := repo.Update(ctx, fulfilled); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	seedRequest(t, repo, 2, domain.ActionVerifyAccountEmail, "lock-d", base)

	now := time.Now()
	cancelled, err := repo.CancelAllPending(ctx, 1, domain.ActionVerifyAccountEmail, domain.ReasonNewRequestMade, now)
	if err != nil {
		t.Fatalf("CancelAllPending failed: %v", err)
	}
	if cancelled != 2 {
		t.Fatalf("expected 2 cancelled, got %d", cancelled)
	}

	all, err := repo.FindAllForUserAction(ctx, 1, domain.ActionVerifyAccountEmail)
	if err != nil {
		t.Fatalf("FindAllForUserAction failed: %v", err)
	}
	for _, r := range all {
		switch r.LockID {
		case "lock-a", "lock-b":
			if r.StatusValue != domain.RequestStatusCancelled || r.StatusReason != domain.ReasonNewRequestMade {
				t.Fatalf("request %s: expected cancelled/NewRequestMade, got %s/%s", r.LockID, r.StatusValue, r.StatusReason)
			}
		case "lock-c":
			// Terminal status untouched by the bulk cancel.
			if r.StatusValue != domain.RequestStatusFulfilled {
				t.Fatalf("fulfilled request mutated to %s", r.StatusValue)
			}
		}
	}

	other, err := repo.FindLatestPending(ctx, 2, domain.ActionVerifyAccountEmail)
	if err != nil {
		t.Fatalf("FindLatestPending failed: %v", err)
	}
	if other == nil {
		t.Fatal("other user's pending request should be untouched")
	}

	// Zero matches is a no-op, not an error.
	cancelled, err = repo.CancelAllPending(ctx, 1, domain.ActionVerifyAccountEmail, domain.ReasonNewRequestMade, now)
	if err != nil {
		t.Fatalf("second CancelAllPending failed: %v", err)
	}
	if cancelled != 0 {
		t.Fatalf("expected 0 cancelled on repeat, got %d", cancelled)
	}
}

func TestDeleteCreatedBeforeReturnsLockIDs(t *testing.T) {
	repo := NewGormRequestRepository(openTestDB(t))
	ctx := context.Background()

	old := time.Now().AddDate(0, 0, -40)
	fresh := time.Now().Add(-time.Hour)
	seedRequest(t, repo, 1, domain.ActionVerifyAccountEmail, "lock-stale", old)
	seedRequest(t, repo, 1, domain.ActionResetPassword, "lock-fresh", fresh)

	cutoff := time.Now().AddDate(0, 0, -30)
	lockIDs, err := repo.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		t.Fatalf("DeleteCreatedBefore failed: %v", err)
	}
	if len(lockIDs) != 1 || lockIDs[0] != "lock-stale" {
		t.Fatalf("expected [lock-stale], got %v", lockIDs)
	}

	remaining, err := repo.FindAllForUserAction(ctx, 1, domain.ActionResetPassword)
	if err != nil {
		t.Fatalf("FindAllForUserAction failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("fresh request should survive the sweep, got %d rows", len(remaining))
	}
	gone, err := repo.FindAllForUserAction(ctx, 1, domain.ActionVerifyAccountEmail)
	if err != nil {
		t.Fatalf("FindAllForUserAction failed: %v", err)
	}
	if len(gone) != 0 {
		t.Fatalf("stale request should be purged, got %d rows", len(gone))
	}
}

func TestCreateRejectsUnsupportedAction(t *testing.T) {
	repo := NewGormRequestRepository(openTestDB(t))

	err := repo.Create(context.Background(), &domain.ProtectedActionRequest{
		UserID: 1,
		Action: "launch_missiles",
		LockID: "lock-x",
	})
	if err == nil {
		t.Fatal("expected error for unsupported action")
	}
}
