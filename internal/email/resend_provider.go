package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

type ResendProvider struct {
	client *resend.Client
	sender Sender
}

func NewResendProvider(apiKey string, sender Sender) *ResendProvider {
	return &ResendProvider{
		client: resend.NewClient(apiKey),
		sender: sender,
	}
}

func (p *ResendProvider) Name() string { return "resend" }

func (p *ResendProvider) Send(ctx context.Context, email *Email) error {
	params := &resend.SendEmailRequest{
		From:    p.sender.Address(),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.Body,
	}

	if _, err := p.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email via resend: %w", err)
	}
	return nil
}
