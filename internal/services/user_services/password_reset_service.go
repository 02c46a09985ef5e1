// File: internal/services/user_services/password_reset_service.go
package user_services

import (
	"context"
	"errors"
	"time"

	"github.com/quailbyte/go-accountsvc/internal/domain"
	"github.com/quailbyte/go-accountsvc/internal/repository/user"
)

// passwordResetTTL is deliberately shorter than the verification default;
// reset codes grant account takeover on success.
const passwordResetTTL = 1 * time.Hour

const minPasswordLength = 8

// PasswordResetService drives the forgot-password flow. Each reset attempt is
// a protected action request; consuming it replaces the secret behind the
// user's password lock without changing the lock's id.
type PasswordResetService struct {
	userRepo       user.UserRepository
	requestService *RequestService
	lockService    *LockService
	notifier       NotificationSender
	resetTTL       time.Duration
	logger         Logger
}

// NewPasswordResetService creates a new password reset service. A zero
// resetTTL falls back to the one-hour default.
func NewPasswordResetService(userRepo user.UserRepository, requestService *RequestService, lockService *LockService, notifier NotificationSender, resetTTL time.Duration, logger Logger) *PasswordResetService {
	if resetTTL <= 0 {
		resetTTL = passwordResetTTL
	}
	return &PasswordResetService{
		userRepo:       userRepo,
		requestService: requestService,
		lockService:    lockService,
		notifier:       notifier,
		resetTTL:       resetTTL,
		logger:         logger,
	}
}

// RequestPasswordReset creates a reset request for the account behind the
// email and mails the code. Unknown emails return nil without side effects.
func (s *PasswordResetService) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return NewOptionError("email", OptionRequired)
	}

	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.logger.Info("password reset requested for unknown email",
				"email", maskIdentifier(email))
			return nil
		}
		return err
	}

	code, err := s.requestService.Create(ctx, u.ID, domain.ActionResetPassword, CreateOptions{
		ExpiresIn: s.resetTTL,
	})
	if err != nil {
		return err
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.SendPasswordResetCode(sendCtx, u.Email, u.Username, code); err != nil {
			s.logger.Error("failed to deliver password reset code",
				"error", err, "user_id", u.ID, "email", maskIdentifier(u.Email))
		}
	}()
	return nil
}

// ConfirmPasswordReset consumes the pending reset request and replaces the
// account password. The code is verified before the new password is set, and
// the password lock keeps its id so the user record is untouched.
func (s *PasswordResetService) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	if email == "" {
		return NewOptionError("email", OptionRequired)
	}
	if code == "" {
		return NewOptionError("code", OptionRequired)
	}
	if len(newPassword) < minPasswordLength {
		return NewOptionError("newPassword", OptionInvalid)
	}

	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.logger.Info("password reset confirm for unknown email",
				"email", maskIdentifier(email))
			return newCredentialsError(DetailAccountNotFound)
		}
		return err
	}
	if u.PasswordLockID == "" {
		s.logger.Error("account has no password lock", "user_id", u.ID)
		return newCredentialsError(DetailPasswordLockMissing)
	}

	if err := s.requestService.VerifyRequestConfirmationCode(ctx, u.ID, domain.ActionResetPassword, code); err != nil {
		return err
	}

	if err := s.lockService.Reset(ctx, u.PasswordLockID, newPassword); err != nil {
		s.logger.Error("failed to replace password after reset",
			"error", err, "user_id", u.ID)
		return err
	}

	s.logger.Info("password reset completed", "user_id", u.ID)
	return nil
}
