// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"

	"github.com/quailbyte/go-accountsvc/internal/auth"
	"github.com/quailbyte/go-accountsvc/internal/domain"
	"github.com/quailbyte/go-accountsvc/internal/repository/lock"
	"github.com/quailbyte/go-accountsvc/internal/repository/user"
)

// AuthService handles registration, login, and password changes. Passwords
// live behind reusable SecretLocks; this service never sees a stored hash.
type AuthService struct {
	userRepo            user.UserRepository
	lockService         *LockService
	verificationService *VerificationService
	jwtSecret           string
	logger              Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo user.UserRepository, lockService *LockService, verificationService *VerificationService, jwtSecret string, logger Logger) *AuthService {
	return &AuthService{
		userRepo:            userRepo,
		lockService:         lockService,
		verificationService: verificationService,
		jwtSecret:           jwtSecret,
		logger:              logger,
	}
}

// Register creates a pending account guarded by a fresh password lock and
// kicks off email verification.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	if username == "" {
		return nil, NewOptionError("username", OptionRequired)
	}
	if email == "" {
		return nil, NewOptionError("email", OptionRequired)
	}
	if len(password) < minPasswordLength {
		return nil, NewOptionError("password", OptionInvalid)
	}

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return nil, err
	}

	lockID, err := s.lockService.Create(ctx, password, LockOptions{
		Kind: domain.LockKindPassword,
	})
	if err != nil {
		return nil, err
	}

	newUser := &domain.User{
		Username:       username,
		Email:          email,
		PasswordLockID: lockID,
		Status:         domain.UserStatusPending,
	}
	if err := newUser.IsValid(); err != nil {
		return nil, NewOptionError("username", OptionInvalid)
	}

	created, err := s.userRepo.Create(ctx, newUser)
	if err != nil {
		s.logger.Error("failed to create user",
			"error", err, "username", maskIdentifier(username))
		return nil, err
	}

	s.logger.Info("user registered",
		"user_id", created.ID, "username", created.Username)

	if err := s.verificationService.RequestEmailVerification(ctx, created.Email); err != nil {
		// Registration already succeeded; the user can re-request a code.
		s.logger.Error("failed to start email verification after registration",
			"error", err, "user_id", created.ID)
	}
	return created, nil
}

// Login authenticates by username and password and returns a signed JWT.
// Wrong username, wrong password, and locked-out accounts all fail with the
// same credentials error.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" {
		return "", nil, NewOptionError("username", OptionRequired)
	}
	if password == "" {
		return "", nil, NewOptionError("password", OptionRequired)
	}

	u, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.logger.Info("login failed - unknown username",
				"username", maskIdentifier(username))
			return "", nil, newCredentialsError(DetailAccountNotFound)
		}
		return "", nil, err
	}

	attempter := fmt.Sprintf("user-%d", u.ID)
	if err := s.lockService.Unlock(ctx, u.PasswordLockID, password, attempter); err != nil {
		return "", nil, s.translateLoginError(err, u)
	}

	if !u.IsVerified() {
		s.logger.Info("login blocked - account unverified", "user_id", u.ID)
		return "", nil, ErrAccountUnverified
	}

	token, err := auth.GenerateToken(u.ID, u.Username, u.IsAdmin, s.jwtSecret)
	if err != nil {
		s.logger.Error("failed to sign token", "error", err, "user_id", u.ID)
		return "", nil, err
	}

	s.logger.Info("user logged in", "user_id", u.ID, "username", u.Username)
	return token, u, nil
}

// ChangePassword replaces the password of an authenticated user after
// checking the current one. The failed-check counter on the password lock
// applies here exactly as it does on login.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	if userID == 0 {
		return NewOptionError("userId", OptionRequired)
	}
	if currentPassword == "" {
		return NewOptionError("currentPassword", OptionRequired)
	}
	if len(newPassword) < minPasswordLength {
		return NewOptionError("newPassword", OptionInvalid)
	}

	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.PasswordLockID == "" {
		s.logger.Error("account has no password lock", "user_id", u.ID)
		return newCredentialsError(DetailPasswordLockMissing)
	}

	attempter := fmt.Sprintf("user-%d", u.ID)
	if err := s.lockService.Unlock(ctx, u.PasswordLockID, currentPassword, attempter); err != nil {
		return s.translateLoginError(err, u)
	}

	if err := s.lockService.Reset(ctx, u.PasswordLockID, newPassword); err != nil {
		s.logger.Error("failed to replace password", "error", err, "user_id", u.ID)
		return err
	}

	s.logger.Info("password changed", "user_id", u.ID)
	return nil
}

func (s *AuthService) translateLoginError(err error, u *domain.User) error {
	switch {
	case errors.Is(err, ErrInvalidSecret):
		s.logger.Info("password check failed - mismatch", "user_id", u.ID)
		return newCredentialsError(DetailSecretMismatch)
	case errors.Is(err, ErrLockedOut):
		s.logger.Warn("password check failed - lock attempt limit reached",
			"user_id", u.ID)
		return newCredentialsError(DetailAttemptsExceeded)
	case errors.Is(err, lock.ErrLockNotFound):
		s.logger.Error("password lock missing",
			"user_id", u.ID, "lock_id", u.PasswordLockID)
		return newCredentialsError(DetailPasswordLockMissing)
	default:
		return err
	}
}
