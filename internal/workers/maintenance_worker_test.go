package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simbi_backend/internal/models"
	"simbi_backend/internal/repositories"
	"simbi_backend/internal/testutil"
)

func newWorker(t *testing.T, schedule Schedule) (*MaintenanceWorker, *models.User) {
	t.Helper()
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, &models.User{Email: "worker@example.com", Username: "worker"}, "")

	w := NewMaintenanceWorker(db, schedule, repositories.NewRefreshTokenRepository(), repositories.NewNotificationRepository())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }
	return w, user
}

func TestCleanupExpiredTokens(t *testing.T) {
	w, user := newWorker(t, Schedule{})
	now := w.now()

	require.NoError(t, w.db.Create(&models.RefreshToken{UserID: user.ID, TokenHash: "expired", ExpiresAt: now.Add(-time.Hour)}).Error)
	require.NoError(t, w.db.Create(&models.RefreshToken{UserID: user.ID, TokenHash: "valid", ExpiresAt: now.Add(time.Hour)}).Error)

	assert.Equal(t, int64(1), w.CleanupExpiredTokens(context.Background()))
	assert.Equal(t, int64(0), w.CleanupExpiredTokens(context.Background()))

	var left []models.RefreshToken
	require.NoError(t, w.db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "valid", left[0].TokenHash)
}

func TestCleanupOldNotifications(t *testing.T) {
	w, user := newWorker(t, Schedule{NotificationRetention: 30 * 24 * time.Hour})
	now := w.now()
	old := now.Add(-60 * 24 * time.Hour)

	seed := []models.Notification{
		{BaseModel: models.BaseModel{CreatedAt: old}, UserID: user.ID, Type: models.NotificationSystem, Title: "old read", IsRead: true},
		{BaseModel: models.BaseModel{CreatedAt: old}, UserID: user.ID, Type: models.NotificationSystem, Title: "old unread"},
		{BaseModel: models.BaseModel{CreatedAt: now.Add(-time.Hour)}, UserID: user.ID, Type: models.NotificationSystem, Title: "new read", IsRead: true},
	}
	for i := range seed {
		require.NoError(t, w.db.Create(&seed[i]).Error)
	}

	assert.Equal(t, int64(1), w.CleanupOldNotifications(context.Background()))

	var titles []string
	require.NoError(t, w.db.Model(&models.Notification{}).Order("title").Pluck("title", &titles).Error)
	assert.Equal(t, []string{"new read", "old unread"}, titles)
}

func TestNewMaintenanceWorker_DefaultRetention(t *testing.T) {
	w := NewMaintenanceWorker(nil, Schedule{}, nil, nil)
	assert.Equal(t, 90*24*time.Hour, w.schedule.NotificationRetention)
}

func TestStart_InvalidSchedule(t *testing.T) {
	w, _ := newWorker(t, Schedule{TokenCleanup: "not a cron spec"})
	err := w.Start(context.Background())
	assert.Error(t, err)
}

func TestStart_StopsOnCancel(t *testing.T) {
	w, _ := newWorker(t, Schedule{TokenCleanup: "@hourly", NotificationCleanup: "0 3 * * *"})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
