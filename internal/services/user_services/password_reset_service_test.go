// File: internal/services/user_services/password_reset_service_test.go
package user_services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPasswordResetFlow(t *testing.T) {
	stack := newTestStack(t, LockConfig{MaxFailures: 3})
	notifier := newChanNotifier()
	svc := NewPasswordResetService(stack.userRepo, stack.requests, stack.locks, notifier, 0, noopLogger{})
	ctx := context.Background()

	u := newPendingUser(t, stack, "dave", "dave@example.com")
	originalLockID := u.PasswordLockID

	if err := svc.RequestPasswordReset(ctx, "dave@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	code := waitForCode(t, notifier.reset)

	if err := svc.ConfirmPasswordReset(ctx, "dave@example.com", code, "BrandNewPass1"); err != nil {
		t.Fatalf("ConfirmPasswordReset failed: %v", err)
	}

	// The lock keeps its identity; only the secret behind it changed.
	refreshed, err := stack.userRepo.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if refreshed.PasswordLockID != originalLockID {
		t.Fatalf("expected password lock id unchanged, got %q -> %q", originalLockID, refreshed.PasswordLockID)
	}

	if err := stack.locks.Unlock(ctx, originalLockID, "Password123", "tester"); !errors.Is(err, ErrInvalidSecret) {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if err := stack.locks.Unlock(ctx, originalLockID, "BrandNewPass1", "tester"); err != nil {
		t.Fatalf("expected new password accepted, got %v", err)
	}
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	stack := newTestStack(t, LockConfig{MaxFailures: 3})
	notifier := newChanNotifier()
	svc := NewPasswordResetService(stack.userRepo, stack.requests, stack.locks, notifier, 0, noopLogger{})

	if err := svc.RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("expected generic success for unknown email, got %v", err)
	}
	select {
	case code := <-notifier.reset:
		t.Fatalf("no reset code should be sent for unknown email, got %q", code)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPasswordResetRejectsWeakPassword(t *testing.T) {
	stack := newTestStack(t, LockConfig{MaxFailures: 3})
	svc := NewPasswordResetService(stack.userRepo, stack.requests, stack.locks, newChanNotifier(), 0, noopLogger{})

	var optionErr *OptionError
	err := svc.ConfirmPasswordReset(context.Background(), "dave@example.com", "ABCDEFG", "short")
	if !errors.As(err, &optionErr) {
		t.Fatalf("expected OptionError for weak password, got %v", err)
	}
}

func TestPasswordResetWrongCodeLeavesPasswordIntact(t *testing.T) {
	stack := newTestStack(t, LockConfig{MaxFailures: 3})
	notifier := newChanNotifier()
	svc := NewPasswordResetService(stack.userRepo, stack.requests, stack.locks, notifier, 0, noopLogger{})
	ctx := context.Background()

	u := newPendingUser(t, stack, "erin", "erin@example.com")

	if err := svc.RequestPasswordReset(ctx, "erin@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	waitForCode(t, notifier.reset)

	err := svc.ConfirmPasswordReset(ctx, "erin@example.com", "WRONG99", "AnotherPass1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := stack.locks.Unlock(ctx, u.PasswordLockID, "Password123", "tester"); err != nil {
		t.Fatalf("expected original password still valid, got %v", err)
	}
}
