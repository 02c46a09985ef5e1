// File: internal/services/user_services/verification_service_test.go
package user_services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quailbyte/go-accountsvc/internal/domain"
)

func newPendingUser(t *testing.T, stack *testStack, username, email string) *domain.User {
	t.Helper()

	lockID, err := stack.locks.Create(context.Background(), "Password123", LockOptions{Kind: domain.LockKindPassword})
	if err != nil {
		t.Fatalf("failed to create password lock: %v", err)
	}
	u, err := stack.userRepo.Create(context.Background(), &domain.User{
		Username:       username,
		Email:          email,
		PasswordLockID: lockID,
		Status:         domain.UserStatusPending,
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return u
}

func TestEmailVerificationFlow(t *testing.T) {
	stack := newTestStack(t, LockConfig{MaxFailures: 3})
	notifier := newChanNotifier()
	svc := NewVerificationService(stack.userRepo, stack.requests, notifier, noopLogger{})
	ctx := context.Background()

	u := newPendingUser(t, stack, "alice", "alice@example.com")

	if err := svc.RequestEmailVerification(ctx, "alice@example.com"); err != nil {
		t.Fatalf("RequestEmailVerification failed: %v", err)
	}
	code := waitForCode(t, notifier.verification)

	if err := svc.ConfirmEmailVerification(ctx, "alice@example.com", code); err != nil {
		t.Fatalf("ConfirmEmailVerification failed: %v", err)
	}

	refreshed, err := stack.userRepo.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if !refreshed.IsVerified() {
		t.Fatalf("expected account active after verification, got %s", refreshed.Status)
	}
	if refreshed.VerifiedAt == nil {
		t.Fatal("expected VerifiedAt recorded")
	}
}

func TestRequestVerificationIsEnumerationSafe(t *testing.T) {
	stack := newTestStack(t, LockConfig{MaxFailures: 3})
	notifier := newChanNotifier()
	svc := NewVerificationService(stack.userRepo, stack.requests, notifier, noopLogger{})

	if err := svc.RequestEmailVerification(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("expected generic success for unknown email, got %v", err)
	}
	select {
	case code := <-notifier.verification:
		t.Fatalf("no code should be sent for unknown email, got %q", code)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRequestVerificationSkipsVerifiedAccount(t *testing.T) {
	stack := newTestStack(t, LockConfig{MaxFailures: 3})
	notifier := newChanNotifier()
	svc := NewVerificationService(stack.userRepo, stack.requests, notifier, noopLogger{})
	ctx := context.Background()

	u := newPendingUser(t, stack, "bob", "bob@example.com")
	if err := stack.userRepo.UpdateStatus(ctx, u.ID, domain.UserStatusActive); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	if err := svc.RequestEmailVerification(ctx, "bob@example.com"); err != nil {
		t.Fatalf("expected generic success for verified account, got %v", err)
	}
	if got := pendingCount(t, stack, u.ID, domain.ActionVerifyAccountEmail); got != 0 {
		t.Fatalf("expected no request for verified account, got %d pending", got)
	}
}

func TestConfirmVerificationUnknownEmail(t *testing.T) {
	stack := newTestStack(t, LockConfig{MaxFailures: 3})
	svc := NewVerificationService(stack.userRepo, stack.requests, newChanNotifier(), noopLogger{})

	err := svc.ConfirmEmailVerification(context.Background(), "ghost@example.com", "ABCDEFG")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestReRequestSupersedesVerificationCode(t *testing.T) {
	stack := newTestStack(t, LockConfig{MaxFailures: 3})
	notifier := newChanNotifier()
	svc := NewVerificationService(stack.userRepo, stack.requests, notifier, noopLogger{})
	ctx := context.Background()

	newPendingUser(t, stack, "carol", "carol@example.com")

	if err := svc.RequestEmailVerification(ctx, "carol@example.com"); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	firstCode := waitForCode(t, notifier.verification)

	if err := svc.RequestEmailVerification(ctx, "carol@example.com"); err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	secondCode := waitForCode(t, notifier.verification)

	if err := svc.ConfirmEmailVerification(ctx, "carol@example.com", firstCode); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected superseded code rejected, got %v", err)
	}
	if err := svc.ConfirmEmailVerification(ctx, "carol@example.com", secondCode); err != nil {
		t.Fatalf("expected latest code accepted, got %v", err)
	}
}
