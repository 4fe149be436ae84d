package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskWelcomeEmail      = "email:welcome"
	TaskNotificationEmail = "email:notification"
)

type WelcomeEmailPayload struct {
	To   string `json:"to"`
	Name string `json:"name"`
}

type NotificationEmailPayload struct {
	To        string `json:"to"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	ActionURL string `json:"action_url,omitempty"`
}

func NewWelcomeEmailTask(p WelcomeEmailPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWelcomeEmail, payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}

// Notification emails are nice to have, so they go to the low queue.
func NewNotificationEmailTask(p NotificationEmailPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationEmail, payload,
		asynq.MaxRetry(2),
		asynq.Queue("low"),
		asynq.Timeout(30*time.Second),
	), nil
}
