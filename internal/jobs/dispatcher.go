package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/hibiken/asynq"

	"simbi_backend/internal/logger"
)

// Dispatcher hands background work off the request path.
type Dispatcher interface {
	EnqueueWelcomeEmail(ctx context.Context, p WelcomeEmailPayload) error
	EnqueueNotificationEmail(ctx context.Context, p NotificationEmailPayload) error
	Close() error
}

// AsynqDispatcher enqueues into Redis; a JobServer processes the tasks.
type AsynqDispatcher struct {
	client *asynq.Client
}

func NewAsynqDispatcher(redisOpt asynq.RedisClientOpt) *AsynqDispatcher {
	return &AsynqDispatcher{client: asynq.NewClient(redisOpt)}
}

func (d *AsynqDispatcher) EnqueueWelcomeEmail(ctx context.Context, p WelcomeEmailPayload) error {
	task, err := NewWelcomeEmailTask(p)
	if err != nil {
		return err
	}
	return d.enqueue(ctx, task)
}

func (d *AsynqDispatcher) EnqueueNotificationEmail(ctx context.Context, p NotificationEmailPayload) error {
	task, err := NewNotificationEmailTask(p)
	if err != nil {
		return err
	}
	return d.enqueue(ctx, task)
}

func (d *AsynqDispatcher) enqueue(ctx context.Context, task *asynq.Task) error {
	info, err := d.client.EnqueueContext(ctx, task)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to enqueue task", err, "type", task.Type())
		return err
	}
	logger.CtxDebug(ctx, "Task enqueued", "type", task.Type(), "id", info.ID, "queue", info.Queue)
	return nil
}

func (d *AsynqDispatcher) Close() error {
	return d.client.Close()
}

// InlineDispatcher runs tasks in goroutines in-process. Used when Redis is not configured.
type InlineDispatcher struct {
	handlers *Handlers
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewInlineDispatcher(handlers *Handlers) *InlineDispatcher {
	return &InlineDispatcher{handlers: handlers, timeout: 30 * time.Second}
}

func (d *InlineDispatcher) EnqueueWelcomeEmail(_ context.Context, p WelcomeEmailPayload) error {
	d.run(func(ctx context.Context) error { return d.handlers.Welcome(ctx, p) })
	return nil
}

func (d *InlineDispatcher) EnqueueNotificationEmail(_ context.Context, p NotificationEmailPayload) error {
	d.run(func(ctx context.Context) error { return d.handlers.Notification(ctx, p) })
	return nil
}

// run detaches from the request context, which is cancelled once the response is written.
func (d *InlineDispatcher) run(fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		_ = fn(ctx)
	}()
}

// Wait blocks until every dispatched task finished.
func (d *InlineDispatcher) Wait() {
	d.wg.Wait()
}

func (d *InlineDispatcher) Close() error {
	d.Wait()
	return nil
}
