package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"simbi_backend/internal/email"
	"simbi_backend/internal/logger"
)

// Handlers execute email tasks regardless of how they were dispatched.
type Handlers struct {
	mailer *email.Mailer
}

func NewHandlers(mailer *email.Mailer) *Handlers {
	return &Handlers{mailer: mailer}
}

func (h *Handlers) Welcome(ctx context.Context, p WelcomeEmailPayload) error {
	err := h.mailer.SendWelcome(ctx, p.To, p.Name)
	logger.WorkerLog(TaskWelcomeEmail, "send", err)
	return err
}

func (h *Handlers) Notification(ctx context.Context, p NotificationEmailPayload) error {
	err := h.mailer.SendNotification(ctx, p.To, p.Name, p.Title, p.Content, p.ActionURL)
	logger.WorkerLog(TaskNotificationEmail, "send", err)
	return err
}

// Mux routes asynq task types to the handlers above.
func (h *Handlers) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcomeEmail, func(ctx context.Context, t *asynq.Task) error {
		var p WelcomeEmailPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("failed to unmarshal welcome email payload: %w: %w", err, asynq.SkipRetry)
		}
		return h.Welcome(ctx, p)
	})
	mux.HandleFunc(TaskNotificationEmail, func(ctx context.Context, t *asynq.Task) error {
		var p NotificationEmailPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("failed to unmarshal notification email payload: %w: %w", err, asynq.SkipRetry)
		}
		return h.Notification(ctx, p)
	})
	return mux
}
