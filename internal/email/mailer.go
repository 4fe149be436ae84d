package email

import (
	"context"

	"github.com/pkg/errors"
)

// Mailer renders the product emails and hands them to a Provider.
type Mailer struct {
	provider    Provider
	templates   *TemplateManager
	frontendURL string
}

func NewMailer(provider Provider, frontendURL string) (*Mailer, error) {
	tm, err := NewTemplateManager()
	if err != nil {
		return nil, err
	}
	return &Mailer{provider: provider, templates: tm, frontendURL: frontendURL}, nil
}

func (m *Mailer) Provider() Provider { return m.provider }

func (m *Mailer) SendWelcome(ctx context.Context, to, name string) error {
	html, err := m.templates.Render(TemplateWelcome, TemplateData{
		"Name":        name,
		"FrontendURL": m.frontendURL,
	})
	if err != nil {
		return errors.Wrap(err, "render welcome email")
	}
	return m.provider.Send(ctx, &Email{
		To:       []string{to},
		Subject:  "Welcome to Simbi!",
		Body:     "Welcome to Simbi, " + name + "! Your account is ready.",
		HTMLBody: html,
	})
}

// SendNotification mirrors an in-app notification by email.
func (m *Mailer) SendNotification(ctx context.Context, to, name, title, content, actionURL string) error {
	if actionURL != "" && actionURL[0] == '/' {
		actionURL = m.frontendURL + actionURL
	}
	html, err := m.templates.Render(TemplateNotification, TemplateData{
		"Name":      name,
		"Title":     title,
		"Content":   content,
		"ActionURL": actionURL,
	})
	if err != nil {
		return errors.Wrapf(err, "render notification email %q", title)
	}
	return m.provider.Send(ctx, &Email{
		To:       []string{to},
		Subject:  title,
		Body:     content,
		HTMLBody: html,
	})
}
