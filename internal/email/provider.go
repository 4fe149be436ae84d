package email

import (
	"fmt"
	"strings"
)

type Config struct {
	Provider     string // smtp, resend, mock
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	UseTLS       bool
	ResendAPIKey string
	FromEmail    string
	FromName     string
}

// NewProvider picks the configured backend. An unset provider falls back to the mock.
func NewProvider(cfg Config) (Provider, error) {
	sender := Sender{FromEmail: cfg.FromEmail, FromName: cfg.FromName}

	switch strings.ToLower(cfg.Provider) {
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("email: smtp host is required")
		}
		return NewSMTPProvider(cfg, sender), nil
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("email: resend api key is required")
		}
		return NewResendProvider(cfg.ResendAPIKey, sender), nil
	case "", "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("email: unsupported provider %q", cfg.Provider)
	}
}
