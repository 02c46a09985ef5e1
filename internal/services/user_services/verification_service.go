// File: internal/services/user_services/verification_service.go
package user_services

import (
	"context"
	"errors"
	"time"

	"github.com/quailbyte/go-accountsvc/internal/domain"
	"github.com/quailbyte/go-accountsvc/internal/repository/user"
)

// NotificationSender delivers confirmation codes out of band. Implementations
// must not persist or log the plaintext code.
type NotificationSender interface {
	SendVerificationCode(ctx context.Context, email, username, code string) error
	SendPasswordResetCode(ctx context.Context, email, username, code string) error
}

// notifyTimeout bounds the detached delivery goroutine so a stuck SMTP
// connection cannot pile up goroutines.
const notifyTimeout = 30 * time.Second

// VerificationService drives the email verification flow: one protected
// action request per attempt, delivered by email, consumed on confirmation.
type VerificationService struct {
	userRepo       user.UserRepository
	requestService *RequestService
	notifier       NotificationSender
	logger         Logger
}

// NewVerificationService creates a new email verification service.
func NewVerificationService(userRepo user.UserRepository, requestService *RequestService, notifier NotificationSender, logger Logger) *VerificationService {
	return &VerificationService{
		userRepo:       userRepo,
		requestService: requestService,
		notifier:       notifier,
		logger:         logger,
	}
}

// RequestEmailVerification creates a verification request for the account
// behind the email and mails the code. Unknown and already-verified emails
// return nil without side effects, so the endpoint cannot be used to probe
// which addresses have accounts.
func (s *VerificationService) RequestEmailVerification(ctx context.Context, email string) error {
	if email == "" {
		return NewOptionError("email", OptionRequired)
	}

	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.logger.Info("verification requested for unknown email",
				"email", maskIdentifier(email))
			return nil
		}
		return err
	}
	if u.IsVerified() {
		s.logger.Info("verification requested for already verified account",
			"user_id", u.ID)
		return nil
	}

	code, err := s.requestService.Create(ctx, u.ID, domain.ActionVerifyAccountEmail, CreateOptions{})
	if err != nil {
		return err
	}

	s.deliver(u, code, s.notifier.SendVerificationCode)
	return nil
}

// ConfirmEmailVerification consumes the pending verification request and
// activates the account. Unknown emails fail with the same credentials error
// as a wrong code.
func (s *VerificationService) ConfirmEmailVerification(ctx context.Context, email, code string) error {
	if email == "" {
		return NewOptionError("email", OptionRequired)
	}
	if code == "" {
		return NewOptionError("code", OptionRequired)
	}

	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.logger.Info("verification confirm for unknown email",
				"email", maskIdentifier(email))
			return newCredentialsError(DetailAccountNotFound)
		}
		return err
	}

	if err := s.requestService.VerifyRequestConfirmationCode(ctx, u.ID, domain.ActionVerifyAccountEmail, code); err != nil {
		return err
	}

	if err := s.userRepo.UpdateStatus(ctx, u.ID, domain.UserStatusActive); err != nil {
		s.logger.Error("failed to activate account after verification",
			"error", err, "user_id", u.ID)
		return err
	}

	s.logger.Info("account verified", "user_id", u.ID, "username", u.Username)
	return nil
}

// deliver mails the code on a detached goroutine. The request is already
// persisted; delivery failure is logged, not surfaced, and the user can
// re-request a code.
func (s *VerificationService) deliver(u *domain.User, code string, send func(ctx context.Context, email, username, code string) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := send(ctx, u.Email, u.Username, code); err != nil {
			s.logger.Error("failed to deliver confirmation code",
				"error", err, "user_id", u.ID, "email", maskIdentifier(u.Email))
		}
	}()
}
