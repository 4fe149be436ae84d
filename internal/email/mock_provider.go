package email

import (
	"context"
	"sync"

	"simbi_backend/internal/logger"
)

// MockProvider logs instead of sending and keeps everything it was given.
type MockProvider struct {
	mu   sync.Mutex
	sent []Email
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Name() string { return "mock" }

func (p *MockProvider) Send(ctx context.Context, email *Email) error {
	p.mu.Lock()
	p.sent = append(p.sent, *email)
	p.mu.Unlock()

	logger.CtxDebug(ctx, "Mock email sent", "to", email.To, "subject", email.Subject)
	return nil
}

func (p *MockProvider) Sent() []Email {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Email, len(p.sent))
	copy(out, p.sent)
	return out
}
