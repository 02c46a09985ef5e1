// File: internal/services/mail/config.go
package mail

import (
	"fmt"
	"time"
)

type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
	Timeout     time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}

func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("SMTP_HOST is required")
	}
	if c.Port == 0 {
		return fmt.Errorf("SMTP_PORT is required")
	}
	if c.FromAddress == "" {
		return fmt.Errorf("SMTP_FROM_ADDRESS is required")
	}
	return nil
}
