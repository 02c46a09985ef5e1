// File: internal/services/mail/smtp_provider.go
package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPProvider delivers messages through a plain SMTP relay.
type SMTPProvider struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPProvider(config *Config) (*SMTPProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, &MailError{Type: ErrTypeConfig, Message: "invalid SMTP configuration", Cause: err}
	}

	from := config.FromAddress
	if config.FromName != "" {
		from = gomail.NewMessage().FormatAddress(config.FromAddress, config.FromName)
	}

	return &SMTPProvider{
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		from:   from,
	}, nil
}

// Send delivers one message. gomail dials per send, which keeps the provider
// stateless; the context deadline is honored between retries by the caller.
func (p *SMTPProvider) Send(ctx context.Context, msg *Message) error {
	if msg.To == "" {
		return &MailError{Type: ErrTypeValidation, Message: "recipient address is required"}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", p.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.TextBody)
	if msg.HTMLBody != "" {
		m.AddAlternative("text/html", msg.HTMLBody)
	}

	if err := p.dialer.DialAndSend(m); err != nil {
		return &MailError{Type: ErrTypeNetwork, Message: "failed to send message", Cause: err}
	}
	return nil
}

func (p *SMTPProvider) GetProviderStatus() ProviderStatus {
	return ProviderStatus{
		IsHealthy: true,
		Message:   fmt.Sprintf("SMTP relay %s:%d configured", p.dialer.Host, p.dialer.Port),
	}
}
