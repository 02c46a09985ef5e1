// File: internal/services/mail_service.go
package services

import (
	"context"

	"github.com/quailbyte/go-accountsvc/internal/services/mail"
)

// MailService renders confirmation-code emails and delivers them through a
// mail.Provider with retry. It satisfies the notification interface the
// account flows depend on; the plaintext code passes through and is never
// stored or logged here.
type MailService struct {
	provider mail.Provider
	renderer *mail.Renderer
	retry    *mail.RetryConfig
	logger   Logger
}

// NewMailService creates a mail service over the given provider.
func NewMailService(provider mail.Provider, logger Logger) (*MailService, error) {
	renderer, err := mail.NewRenderer()
	if err != nil {
		return nil, err
	}
	return &MailService{
		provider: provider,
		renderer: renderer,
		retry:    mail.DefaultRetryConfig(),
		logger:   logger,
	}, nil
}

// SendVerificationCode mails an email-verification code.
func (s *MailService) SendVerificationCode(ctx context.Context, email, username, code string) error {
	htmlBody, textBody, err := s.renderer.RenderVerification(username, code, "24 hours")
	if err != nil {
		s.logger.Error("failed to render verification email", "error", err)
		return err
	}
	return s.send(ctx, &mail.Message{
		To:       email,
		Subject:  "Confirm your email address",
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
}

// SendPasswordResetCode mails a password-reset code.
func (s *MailService) SendPasswordResetCode(ctx context.Context, email, username, code string) error {
	htmlBody, textBody, err := s.renderer.RenderPasswordReset(username, code, "1 hour")
	if err != nil {
		s.logger.Error("failed to render password reset email", "error", err)
		return err
	}
	return s.send(ctx, &mail.Message{
		To:       email,
		Subject:  "Password reset code",
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
}

func (s *MailService) send(ctx context.Context, msg *mail.Message) error {
	err := mail.RetryWithBackoff(ctx, s.retry, func(ctx context.Context) error {
		return s.provider.Send(ctx, msg)
	})
	if err != nil {
		s.logger.Error("failed to deliver email", "error", err, "subject", msg.Subject)
		return err
	}
	s.logger.Debug("email delivered", "subject", msg.Subject)
	return nil
}
