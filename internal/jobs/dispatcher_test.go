package jobs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simbi_backend/internal/email"
)

func newInline(t *testing.T) (*InlineDispatcher, *email.MockProvider) {
	t.Helper()
	mock := email.NewMockProvider()
	mailer, err := email.NewMailer(mock, "https://simbi.test")
	require.NoError(t, err)
	return NewInlineDispatcher(NewHandlers(mailer)), mock
}

func TestInlineDispatcher_SendsEmails(t *testing.T) {
	d, mock := newInline(t)

	require.NoError(t, d.EnqueueWelcomeEmail(context.Background(), WelcomeEmailPayload{To: "a@example.com", Name: "Ann"}))
	require.NoError(t, d.EnqueueNotificationEmail(context.Background(), NotificationEmailPayload{
		To: "b@example.com", Name: "Bob", Title: "New message", Content: "hi",
	}))
	require.NoError(t, d.Close())

	sent := mock.Sent()
	require.Len(t, sent, 2)
	subjects := []string{sent[0].Subject, sent[1].Subject}
	assert.ElementsMatch(t, []string{"Welcome to Simbi!", "New message"}, subjects)
}

func TestInlineDispatcher_SurvivesCancelledRequestContext(t *testing.T) {
	d, mock := newInline(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.EnqueueWelcomeEmail(ctx, WelcomeEmailPayload{To: "a@example.com", Name: "Ann"}))
	d.Wait()

	assert.Len(t, mock.Sent(), 1)
}

func TestTasks_Payloads(t *testing.T) {
	task, err := NewWelcomeEmailTask(WelcomeEmailPayload{To: "a@example.com", Name: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, TaskWelcomeEmail, task.Type())

	var p WelcomeEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, "Ann", p.Name)

	task, err = NewNotificationEmailTask(NotificationEmailPayload{To: "b@example.com", Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, TaskNotificationEmail, task.Type())
}
