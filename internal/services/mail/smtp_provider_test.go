// File: internal/services/mail/smtp_provider_test.go
package mail

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testConfig() *Config {
	return &Config{
		Host:        "smtp.example.com",
		Port:        587,
		Username:    "mailer",
		Password:    "secret",
		FromAddress: "noreply@example.com",
		FromName:    "Account Service",
		Timeout:     5 * time.Second,
	}
}

func TestNewSMTPProviderRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Host = ""

	_, err := NewSMTPProvider(cfg)
	var mailErr *MailError
	if !errors.As(err, &mailErr) || mailErr.Type != ErrTypeConfig {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestGetProviderStatusReportsRelay(t *testing.T) {
	p, err := NewSMTPProvider(testConfig())
	if err != nil {
		t.Fatalf("NewSMTPProvider failed: %v", err)
	}

	status := p.GetProviderStatus()
	if !status.IsHealthy {
		t.Fatal("expected configured provider to report healthy")
	}
	if !strings.Contains(status.Message, "smtp.example.com:587") {
		t.Fatalf("expected relay address in status message, got %q", status.Message)
	}

	// Compile-time check that SMTPProvider satisfies the transport interface.
	var _ Provider = p
}
