package email

import (
	"context"
	"crypto/tls"
	"fmt"

	"gopkg.in/gomail.v2"
)

type SMTPProvider struct {
	dialer *gomail.Dialer
	sender Sender
}

func NewSMTPProvider(cfg Config, sender Sender) *SMTPProvider {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	// port 465 is implicit TLS, anything else negotiates STARTTLS
	d.SSL = cfg.UseTLS && cfg.SMTPPort == 465
	d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost}

	return &SMTPProvider{dialer: d, sender: sender}
}

func (p *SMTPProvider) Name() string { return "smtp" }

func (p *SMTPProvider) Send(ctx context.Context, email *Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(email.To) == 0 {
		return fmt.Errorf("email: no recipients")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", p.sender.Address())
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)
	if email.Body != "" {
		m.SetBody("text/plain", email.Body)
		if email.HTMLBody != "" {
			m.AddAlternative("text/html", email.HTMLBody)
		}
	} else {
		m.SetBody("text/html", email.HTMLBody)
	}

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via smtp: %w", err)
	}
	return nil
}
