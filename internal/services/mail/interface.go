// File: internal/services/mail/interface.go
package mail

import "context"

// Message is a fully rendered outbound email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Provider delivers rendered messages over a concrete transport.
type Provider interface {
	Send(ctx context.Context, msg *Message) error
	GetProviderStatus() ProviderStatus
}

// ProviderStatus reports transport health for diagnostics endpoints.
type ProviderStatus struct {
	IsHealthy bool
	Message   string
}
