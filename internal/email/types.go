package email

import "context"

// Email is a rendered message ready for a provider.
type Email struct {
	To       []string
	Subject  string
	Body     string // plain text alternative
	HTMLBody string
}

// TemplateData is passed to html templates.
type TemplateData map[string]interface{}

type Provider interface {
	Send(ctx context.Context, email *Email) error
	Name() string
}

// Sender identity shared by all providers.
type Sender struct {
	FromEmail string
	FromName  string
}

func (s Sender) Address() string {
	if s.FromName == "" {
		return s.FromEmail
	}
	return s.FromName + " <" + s.FromEmail + ">"
}
