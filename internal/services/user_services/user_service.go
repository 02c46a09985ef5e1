// File: internal/services/user_services/user_service.go
package user_services

import (
	"context"
	"errors"

	"github.com/quailbyte/go-accountsvc/internal/domain"
	"github.com/quailbyte/go-accountsvc/internal/repository/lock"
	"github.com/quailbyte/go-accountsvc/internal/repository/user"
)

// UserService composes the account-management sub-services behind one
// facade so handlers depend on a single type.
type UserService struct {
	Auth          *AuthService
	Verification  *VerificationService
	PasswordReset *PasswordResetService
	Requests      *RequestService

	userRepo    user.UserRepository
	lockService *LockService
	logger      Logger
}

// NewUserService wires the account-management facade.
func NewUserService(
	authService *AuthService,
	verificationService *VerificationService,
	passwordResetService *PasswordResetService,
	requestService *RequestService,
	userRepo user.UserRepository,
	lockService *LockService,
	logger Logger,
) *UserService {
	return &UserService{
		Auth:          authService,
		Verification:  verificationService,
		PasswordReset: passwordResetService,
		Requests:      requestService,
		userRepo:      userRepo,
		lockService:   lockService,
		logger:        logger,
	}
}

// GetProfile returns the account record for the authenticated user.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*domain.User, error) {
	if userID == 0 {
		return nil, NewOptionError("userId", OptionRequired)
	}
	return s.userRepo.FindByID(ctx, userID)
}

// UpdateUsername renames the account. The new name must pass the same shape
// rules as registration and must not collide with another account.
func (s *UserService) UpdateUsername(ctx context.Context, userID uint, newUsername string) (*domain.User, error) {
	if userID == 0 {
		return nil, NewOptionError("userId", OptionRequired)
	}
	if newUsername == "" {
		return nil, NewOptionError("username", OptionRequired)
	}

	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Username == newUsername {
		return u, nil
	}

	if existing, err := s.userRepo.FindByUsername(ctx, newUsername); err == nil && existing.ID != userID {
		return nil, ErrUsernameTaken
	} else if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return nil, err
	}

	previous := u.Username
	u.Username = newUsername
	if err := u.IsValid(); err != nil {
		return nil, NewOptionError("username", OptionInvalid)
	}
	if err := s.userRepo.Update(ctx, u); err != nil {
		s.logger.Error("failed to update username", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("username changed",
		"user_id", userID,
		"from", maskIdentifier(previous),
		"to", maskIdentifier(newUsername))
	return u, nil
}

// DeleteAccount removes the user, their password lock, and retires any
// pending requests they hold. Request history stays until retention cleanup
// purges it.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	if userID == 0 {
		return NewOptionError("userId", OptionRequired)
	}

	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	for _, action := range []domain.ProtectedAction{domain.ActionVerifyAccountEmail, domain.ActionResetPassword} {
		if err := s.Requests.CancelUserRequests(ctx, userID, action, domain.ReasonAccountDeleted); err != nil {
			return err
		}
	}

	if u.PasswordLockID != "" {
		if err := s.lockService.lockRepo.Delete(ctx, u.PasswordLockID); err != nil && !errors.Is(err, lock.ErrLockNotFound) {
			s.logger.Error("failed to delete password lock",
				"error", err, "user_id", userID)
			return err
		}
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", userID)
		return err
	}

	s.logger.Info("account deleted", "user_id", userID, "username", u.Username)
	return nil
}
