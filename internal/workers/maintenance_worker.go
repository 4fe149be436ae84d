package workers

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"simbi_backend/internal/logger"
	"simbi_backend/internal/repositories"
)

// Schedule holds cron specs; empty specs disable a job.
type Schedule struct {
	TokenCleanup          string
	NotificationCleanup   string
	NotificationRetention time.Duration
}

// MaintenanceWorker prunes expired refresh tokens and old read notifications.
type MaintenanceWorker struct {
	db               *gorm.DB
	cron             *cron.Cron
	schedule         Schedule
	refreshTokenRepo repositories.RefreshTokenRepository
	notificationRepo repositories.NotificationRepository
	now              func() time.Time
}

func NewMaintenanceWorker(
	db *gorm.DB,
	schedule Schedule,
	refreshTokenRepo repositories.RefreshTokenRepository,
	notificationRepo repositories.NotificationRepository,
) *MaintenanceWorker {
	if schedule.NotificationRetention <= 0 {
		schedule.NotificationRetention = 90 * 24 * time.Hour
	}
	return &MaintenanceWorker{
		db:               db,
		cron:             cron.New(cron.WithChain(cron.Recover(cronLogger{}))),
		schedule:         schedule,
		refreshTokenRepo: refreshTokenRepo,
		notificationRepo: notificationRepo,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the jobs and runs the scheduler until ctx is done.
func (w *MaintenanceWorker) Start(ctx context.Context) error {
	if w.schedule.TokenCleanup != "" {
		if _, err := w.cron.AddFunc(w.schedule.TokenCleanup, func() { w.CleanupExpiredTokens(ctx) }); err != nil {
			return err
		}
	}
	if w.schedule.NotificationCleanup != "" {
		if _, err := w.cron.AddFunc(w.schedule.NotificationCleanup, func() { w.CleanupOldNotifications(ctx) }); err != nil {
			return err
		}
	}

	w.cron.Start()
	logger.Info("Maintenance worker started", "jobs", len(w.cron.Entries()))

	<-ctx.Done()
	stopped := w.cron.Stop()
	<-stopped.Done()
	logger.Info("Maintenance worker stopped")
	return nil
}

func (w *MaintenanceWorker) CleanupExpiredTokens(ctx context.Context) int64 {
	n, err := w.refreshTokenRepo.DeleteExpired(w.db.WithContext(ctx), w.now())
	logger.WorkerLog("maintenance", "cleanup_refresh_tokens", err)
	if err == nil && n > 0 {
		logger.Info("Expired refresh tokens removed", "count", n)
	}
	return n
}

func (w *MaintenanceWorker) CleanupOldNotifications(ctx context.Context) int64 {
	cutoff := w.now().Add(-w.schedule.NotificationRetention)
	n, err := w.notificationRepo.DeleteReadOlderThan(w.db.WithContext(ctx), cutoff)
	logger.WorkerLog("maintenance", "cleanup_notifications", err)
	if err == nil && n > 0 {
		logger.Info("Old notifications removed", "count", n)
	}
	return n
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
