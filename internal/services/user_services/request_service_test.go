// File: internal/services/user_services/request_service_test.go
package user_services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quailbyte/go-accountsvc/internal/domain"
)

func pendingCount(t *testing.T, stack *testStack, userID uint, action domain.ProtectedAction) int {
	t.Helper()
	all, err := stack.requestRepo.FindAllForUserAction(context.Background(), userID, action)
	if err != nil {
		t.Fatalf("FindAllForUserAction failed: %v", err)
	}
	n := 0
	for _, r := range all {
		if r.IsPending() {
			n++
		}
	}
	return n
}

func TestCreateSupersedesOlderPendingRequests(t *testing.T) {
	stack := newTestStack(t, LockConfig{MaxFailures: 3})
	ctx := context.Background()

	oldCode, err := stack.requests.Create(ctx, 1, domain.ActionVerifyAccountEmail, CreateOptions{})
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	newCode, err := stack.requests.Create(ctx, 1, domain.ActionVerifyAccountEmail, CreateOptions{})
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}

	if got := pendingCount(t, stack, 1, domain.ActionVerifyAccountEmail); got != 1 {
		t.Fatalf("expected exactly one pending request, got %d", got)
	}

	all, err := stack.requestRepo.FindAllForUserAction(ctx, 1, domain.ActionVerifyAccountEmail)
	if err != nil {
		t.Fatalf("FindAllForUserAction failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 requests on record, got %d", len(all))
	}
	// Newest first: all[1] is the superseded one.
	superseded := all[1]
	if superseded.StatusValue != domain.RequestStatusCancelled {
		t.Fatalf("expected old request cancelled, got %s", superseded.StatusValue)
	}
	if superseded.StatusReason != domain.ReasonNewRequestMade {
		t.Fatalf("expected reason %q, got %q", domain.ReasonNewRequestMade, superseded.StatusReason)
	}

	// The superseded code must be dead; the new one must work.
	if err := stack.requests.VerifyRequestConfirmationCode(ctx, 1, domain.ActionVerifyAccountEmail, oldCode); !errors.Is(err, ErrInvalidCredentials) {
		// A colliding code would pass, but 7-char codes make that effectively impossible.
		t.Fatalf("expected superseded code rejected, got %v", err)
	}
	if err := stack.requests.VerifyRequestConfirmationCode(ctx, 1, domain.ActionVerifyAccountEmail, newCode); err != nil {
		t.Fatalf("expected latest code accepted, got %v", err)
	}
}

func TestVerifyFulfillsRequestOnce(t *testing.T) {
	stack := newTestStack(t, LockConfig{MaxFailures: 3})
	ctx := context.Background()

	code, err := stack.requests.Create(ctx, 7, domain.ActionResetPassword, CreateOptions{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := stack.requests.VerifyRequestConfirmationCode(ctx, 7, domain.ActionResetPassword, code); err != nil {
		t.Fatalf("expected verification to succeed, got %v", err)
	}

	all, err := stack.requestRepo.FindAllForUserAction(ctx, 7, domain.ActionResetPassword)
	if err != nil {
		t.Fatalf("FindAllForUserAction failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 request, got %d", len(all))
	}
	if all[0].StatusValue != domain.RequestStatusFulfilled {
		t.Fatalf("expected fulfilled, got %s", all[0].StatusValue)
	}
	if all[0].StatusReason != domain.ReasonVerificationSuccessful {
		t.Fatalf("expected reason %q, got %q", domain.ReasonVerificationSuccessful, all[0].StatusReason)
	}

	// No pending request remains; replaying the code must fail.
	if err := stack.requests.VerifyRequestConfirmationCode(ctx, 7, domain.ActionResetPassword, code); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected replay rejected, got %v", err)
	}
}

func TestVerifyExpiredRequestFailsBeforeComparing(t *testing.T) {
	stack := newTestStack(t, LockConfig{MaxFailures: 3})
	ctx := context.Background()

	code, err := stack.requests.Create(ctx, 2, domain.ActionVerifyAccountEmail, CreateOptions{ExpiresIn: time.Minute})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stack.requests.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	if err := stack.requests.VerifyRequestConfirmationCode(ctx, 2, domain.ActionVerifyAccountEmail, code); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected expired request rejected, got %v", err)
	}
	var credErr *CredentialsError
	err = stack.requests.VerifyRequestConfirmationCode(ctx, 2, domain.ActionVerifyAccountEmail, code)
	if !errors.As(err, &credErr) || credErr.Detail != DetailCredentialsExpired {
		t.Fatalf("expected expiry detail, got %v", err)
	}

	// Expiry short-circuits before the lock, so no attempts were burned.
	all, err := stack.requestRepo.FindAllForUserAction(ctx, 2, domain.ActionVerifyAccountEmail)
	if err != nil {
		t.Fatalf("FindAllForUserAction failed: %v", err)
	}
	stored, err := stack.lockRepo.FindByID(ctx, all[0].LockID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if stored.FailureCount != 0 {
		t.Fatalf("expected no attempts burned on expired request, got %d", stored.FailureCount)
	}
}

func TestVerifyWrongCodeExhaustsAttempts(t *testing.T) {
	stack := newTestStack(t, LockConfig{MaxFailures: 3})
	ctx := context.Background()

	code, err := stack.requests.Create(ctx, 3, domain.ActionVerifyAccountEmail, CreateOptions{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := stack.requests.VerifyRequestConfirmationCode(ctx, 3, domain.ActionVerifyAccountEmail, "WRONG99"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// Ceiling reached: even the real code fails, with the same outward error.
	if err := stack.requests.VerifyRequestConfirmationCode(ctx, 3, domain.ActionVerifyAccountEmail, code); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected correct code rejected after exhaustion, got %v", err)
	}
}

func TestVerifyWithoutPendingRequest(t *testing.T) {
	stack := newTestStack(t, LockConfig{MaxFailures: 3})

	err := stack.requests.VerifyRequestConfirmationCode(context.Background(), 99, domain.ActionVerifyAccountEmail, "ABCDEFG")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCancelUserRequests(t *testing.T) {
	stack := newTestStack(t, LockConfig{MaxFailures: 3})
	ctx := context.Background()

	code, err := stack.requests.Create(ctx, 4, domain.ActionResetPassword, CreateOptions{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := stack.requests.CancelUserRequests(ctx, 4, domain.ActionResetPassword, domain.ReasonUserRequested); err != nil {
		t.Fatalf("CancelUserRequests failed: %v", err)
	}

	all, err := stack.requestRepo.FindAllForUserAction(ctx, 4, domain.ActionResetPassword)
	if err != nil {
		t.Fatalf("FindAllForUserAction failed: %v", err)
	}
	if all[0].StatusValue != domain.RequestStatusCancelled || all[0].StatusReason != domain.ReasonUserRequested {
		t.Fatalf("expected user-requested cancellation, got %s/%s", all[0].StatusValue, all[0].StatusReason)
	}

	if err := stack.requests.VerifyRequestConfirmationCode(ctx, 4, domain.ActionResetPassword, code); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected cancelled code rejected, got %v", err)
	}
}

func TestCancelUserRequestsRecordsCallerReason(t *testing.T) {
	stack := newTestStack(t, LockConfig{MaxFailures: 3})
	ctx := context.Background()

	if _, err := stack.requests.Create(ctx, 5, domain.ActionVerifyAccountEmail, CreateOptions{}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := stack.requests.CancelUserRequests(ctx, 5, domain.ActionVerifyAccountEmail, domain.ReasonAccountDeleted); err != nil {
		t.Fatalf("CancelUserRequests failed: %v", err)
	}

	all, err := stack.requestRepo.FindAllForUserAction(ctx, 5, domain.ActionVerifyAccountEmail)
	if err != nil {
		t.Fatalf("FindAllForUserAction failed: %v", err)
	}
	if all[0].StatusReason != domain.ReasonAccountDeleted {
		t.Fatalf("expected caller reason recorded, got %q", all[0].StatusReason)
	}

	var optionErr *OptionError
	if err := stack.requests.CancelUserRequests(ctx, 5, domain.ActionVerifyAccountEmail, ""); !errors.As(err, &optionErr) {
		t.Fatalf("expected OptionError for empty reason, got %v", err)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	stack := newTestStack(t, LockConfig{MaxFailures: 3})
	ctx := context.Background()

	var optionErr *OptionError
	if _, err := stack.requests.Create(ctx, 0, domain.ActionVerifyAccountEmail, CreateOptions{}); !errors.As(err, &optionErr) {
		t.Fatalf("expected OptionError for zero user, got %v", err)
	}
	if _, err := stack.requests.Create(ctx, 1, "", CreateOptions{}); !errors.As(err, &optionErr) {
		t.Fatalf("expected OptionError for empty action, got %v", err)
	}
	if _, err := stack.requests.Create(ctx, 1, "delete_everything", CreateOptions{}); !errors.As(err, &optionErr) {
		t.Fatalf("expected OptionError for unsupported action, got %v", err)
	}
	if _, err := stack.requests.Create(ctx, 1, domain.ActionVerifyAccountEmail, CreateOptions{CodeLength: -1}); !errors.As(err, &optionErr) {
		t.Fatalf("expected OptionError for negative code length, got %v", err)
	}
}

func TestPurgeOldRequestsRemovesRequestsAndLocks(t *testing.T) {
	stack := newTestStack(t, LockConfig{MaxFailures: 3})
	ctx := context.Background()

	if _, err := stack.requests.Create(ctx, 5, domain.ActionVerifyAccountEmail, CreateOptions{}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	all, err := stack.requestRepo.FindAllForUserAction(ctx, 5, domain.ActionVerifyAccountEmail)
	if err != nil {
		t.Fatalf("FindAllForUserAction failed: %v", err)
	}
	lockID := all[0].LockID

	// A cutoff in the future sweeps everything, regardless of status.
	purged, err := stack.requests.PurgeOldRequests(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("PurgeOldRequests failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged request, got %d", purged)
	}

	remaining, err := stack.requestRepo.FindAllForUserAction(ctx, 5, domain.ActionVerifyAccountEmail)
	if err != nil {
		t.Fatalf("FindAllForUserAction failed after purge: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no requests after purge, got %d", len(remaining))
	}
	if _, err := stack.lockRepo.FindByID(ctx, lockID); err == nil {
		t.Fatal("expected request lock purged with the request")
	}
}
