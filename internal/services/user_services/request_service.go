// File: internal/services/user_services/request_service.go
package user_services

import (
	"context"
	"errors"
	"time"

	"github.com/quailbyte/go-accountsvc/internal/domain"
	"github.com/quailbyte/go-accountsvc/internal/repository/lock"
	"github.com/quailbyte/go-accountsvc/internal/repository/request"
)

// attempterVerification tags lock failures caused by code verification so the
// lock's last_failure_attempted_by column distinguishes engine-driven
// attempts from direct ones (password logins record the user id instead).
const attempterVerification = "par-verification"

// CreateOptions tunes a single request creation. Zero values take defaults.
type CreateOptions struct {
	// CodeLength overrides the confirmation code length (default 7).
	CodeLength int
	// ExpiresIn overrides the business deadline (default 24h).
	ExpiresIn time.Duration
}

const defaultRequestTTL = 24 * time.Hour

// RequestService is the protected-action-request engine. It owns the request
// lifecycle: creation supersedes older pending requests for the same (user,
// action) pair, verification consumes the one pending request, and explicit
// cancellation retires it. Confirmation codes never live here in plaintext;
// each request delegates secret custody to a one-shot lock.
type RequestService struct {
	requestRepo request.RequestRepository
	lockService *LockService
	defaults    CreateOptions
	logger      Logger
	now         func() time.Time
}

// NewRequestService creates a new protected-action-request service. Zero
// fields in defaults fall back to the package defaults.
func NewRequestService(requestRepo request.RequestRepository, lockService *LockService, defaults CreateOptions, logger Logger) *RequestService {
	return &RequestService{
		requestRepo: requestRepo,
		lockService: lockService,
		defaults:    defaults,
		logger:      logger,
		now:         time.Now,
	}
}

// Create generates a confirmation code, stores it behind a fresh one-shot
// lock, and records a pending request for the (user, action) pair. Any older
// pending requests for the pair are cancelled first, so at most one request
// is pending at a time. The plaintext code is returned exactly once, for the
// caller to deliver; it is never persisted or logged.
func (s *RequestService) Create(ctx context.Context, userID uint, action domain.ProtectedAction, opts CreateOptions) (string, error) {
	if userID == 0 {
		return "", NewOptionError("userId", OptionRequired)
	}
	if action == "" {
		return "", NewOptionError("action", OptionRequired)
	}
	if !action.IsValid() {
		return "", NewOptionError("action", OptionUnsupported)
	}
	if opts.CodeLength < 0 {
		return "", NewOptionError("codeLength", OptionInvalid)
	}
	if opts.ExpiresIn < 0 {
		return "", NewOptionError("expiresIn", OptionInvalid)
	}
	if opts.CodeLength == 0 {
		opts.CodeLength = s.defaults.CodeLength
	}
	if opts.CodeLength == 0 {
		opts.CodeLength = DefaultCodeLength
	}
	if opts.ExpiresIn == 0 {
		opts.ExpiresIn = s.defaults.ExpiresIn
	}
	if opts.ExpiresIn == 0 {
		opts.ExpiresIn = defaultRequestTTL
	}

	now := s.now()

	cancelled, err := s.requestRepo.CancelAllPending(ctx, userID, action, domain.ReasonNewRequestMade, now)
	if err != nil {
		s.logger.Error("failed to cancel superseded requests",
			"error", err, "user_id", userID, "action", action)
		return "", err
	}
	if cancelled > 0 {
		s.logger.Info("superseded older pending requests",
			"user_id", userID, "action", action, "cancelled", cancelled)
	}

	code, err := GenerateConfirmationCode(opts.CodeLength, "")
	if err != nil {
		s.logger.Error("failed to generate confirmation code", "error", err)
		return "", err
	}

	lockID, err := s.lockService.Create(ctx, code, LockOptions{
		Kind:               domain.LockKindCode,
		DiscardAfterUnlock: true,
	})
	if err != nil {
		return "", err
	}

	req := &domain.ProtectedActionRequest{
		UserID:    userID,
		Action:    action,
		LockID:    lockID,
		ExpiresAt: now.Add(opts.ExpiresIn),
	}
	req.SetStatus(domain.RequestStatusPending, domain.ReasonUserRequested, now)

	if err := s.requestRepo.Create(ctx, req); err != nil {
		s.logger.Error("failed to persist request",
			"error", err, "user_id", userID, "action", action)
		return "", err
	}

	s.logger.Info("protected action request created",
		"request_id", req.ID,
		"user_id", userID,
		"action", action,
		"expires_at", req.ExpiresAt.Format(time.RFC3339))
	return code, nil
}

// CancelUserRequests retires every pending request the user holds for the
// action, stamping each cancellation with the caller's audit reason. Zero
// pending requests is a successful no-op.
func (s *RequestService) CancelUserRequests(ctx context.Context, userID uint, action domain.ProtectedAction, reason string) error {
	if userID == 0 {
		return NewOptionError("userId", OptionRequired)
	}
	if !action.IsValid() {
		return NewOptionError("action", OptionUnsupported)
	}
	if reason == "" {
		return NewOptionError("reason", OptionRequired)
	}

	cancelled, err := s.requestRepo.CancelAllPending(ctx, userID, action, reason, s.now())
	if err != nil {
		s.logger.Error("failed to cancel user requests",
			"error", err, "user_id", userID, "action", action)
		return err
	}
	s.logger.Info("user cancelled pending requests",
		"user_id", userID, "action", action, "cancelled", cancelled)
	return nil
}

// VerifyRequestConfirmationCode checks a candidate code against the user's
// pending request for the action. On success the request is marked fulfilled
// and its one-shot lock is gone. Every failure mode surfaces as
// ErrInvalidCredentials; the wrapped detail is for logs only.
func (s *RequestService) VerifyRequestConfirmationCode(ctx context.Context, userID uint, action domain.ProtectedAction, code string) error {
	if userID == 0 {
		return NewOptionError("userId", OptionRequired)
	}
	if !action.IsValid() {
		return NewOptionError("action", OptionUnsupported)
	}
	if code == "" {
		return NewOptionError("code", OptionRequired)
	}

	now := s.now()

	req, err := s.requestRepo.FindLatestPending(ctx, userID, action)
	if err != nil {
		s.logger.Error("failed to look up pending request",
			"error", err, "user_id", userID, "action", action)
		return err
	}
	if req == nil {
		s.logger.Info("verification failed - no pending request",
			"user_id", userID, "action", action)
		return newCredentialsError(DetailRequestNotFound)
	}

	// Expiry is checked before the code is even compared, so an expired
	// request cannot burn lock attempts or succeed with a correct code.
	if req.IsExpired(now) {
		s.logger.Info("verification failed - request expired",
			"request_id", req.ID,
			"user_id", userID,
			"action", action,
			"expired_at", req.ExpiresAt.Format(time.RFC3339))
		return newCredentialsError(DetailCredentialsExpired)
	}

	if err := s.lockService.Unlock(ctx, req.LockID, code, attempterVerification); err != nil {
		return s.translateUnlockError(err, req)
	}

	req.SetStatus(domain.RequestStatusFulfilled, domain.ReasonVerificationSuccessful, now)
	if err := s.requestRepo.Update(ctx, req); err != nil {
		s.logger.Error("failed to mark request fulfilled",
			"error", err, "request_id", req.ID)
		return err
	}

	s.logger.Info("protected action request fulfilled",
		"request_id", req.ID, "user_id", userID, "action", action)
	return nil
}

// RequestHistory returns every request for the pair, newest first, for audit
// and support tooling.
func (s *RequestService) RequestHistory(ctx context.Context, userID uint, action domain.ProtectedAction) ([]domain.ProtectedActionRequest, error) {
	if userID == 0 {
		return nil, NewOptionError("userId", OptionRequired)
	}
	if !action.IsValid() {
		return nil, NewOptionError("action", OptionUnsupported)
	}
	return s.requestRepo.FindAllForUserAction(ctx, userID, action)
}

// PurgeOldRequests deletes requests created before the cutoff regardless of
// status, along with the locks they own. Retention cleanup only; it is
// independent of business expiry, which is checked on read.
func (s *RequestService) PurgeOldRequests(ctx context.Context, cutoff time.Time) (int, error) {
	lockIDs, err := s.requestRepo.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to purge old requests", "error", err)
		return 0, err
	}
	if len(lockIDs) == 0 {
		return 0, nil
	}
	if err := s.lockService.lockRepo.DeleteByIDs(ctx, lockIDs); err != nil {
		s.logger.Error("failed to purge locks of old requests",
			"error", err, "lock_count", len(lockIDs))
		return len(lockIDs), err
	}
	s.logger.Info("purged old requests", "count", len(lockIDs),
		"cutoff", cutoff.Format(time.RFC3339))
	return len(lockIDs), nil
}

// translateUnlockError collapses every lock failure into the single
// caller-facing credentials error so responses cannot be used as an oracle
// for code existence, wrongness, or lockout state.
func (s *RequestService) translateUnlockError(err error, req *domain.ProtectedActionRequest) error {
	switch {
	case errors.Is(err, ErrInvalidSecret):
		s.logger.Info("verification failed - code mismatch",
			"request_id", req.ID, "user_id", req.UserID, "action", req.Action)
		return newCredentialsError(DetailSecretMismatch)
	case errors.Is(err, ErrLockedOut):
		s.logger.Warn("verification failed - attempt limit reached",
			"request_id", req.ID, "user_id", req.UserID, "action", req.Action)
		return newCredentialsError(DetailAttemptsExceeded)
	case errors.Is(err, lock.ErrLockNotFound):
		// The one-shot lock is gone, likely consumed by a concurrent
		// verification. Treat as not found rather than leaking state.
		s.logger.Warn("verification failed - request lock missing",
			"request_id", req.ID, "lock_id", req.LockID)
		return newCredentialsError(DetailRequestNotFound)
	default:
		s.logger.Error("verification failed - unexpected lock error",
			"error", err, "request_id", req.ID)
		return err
	}
}
