package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"simbi_backend/internal/auth"
	"simbi_backend/internal/database"
	"simbi_backend/internal/models"
)

// NewTestDB opens a private in-memory sqlite database with every table migrated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(0)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared in-memory db alive and serialises writers
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser inserts an active user with an account. Password defaults to "password123".
func CreateUser(t *testing.T, db *gorm.DB, user *models.User, password string) *models.User {
	t.Helper()

	if password == "" {
		password = "password123"
	}
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	user.PasswordHash = hash

	if user.Email == "" {
		user.Email = uuid.NewString()[:8] + "@example.com"
	}
	if user.Username == "" {
		user.Username = "user_" + uuid.NewString()[:8]
	}
	if user.Role == "" {
		user.Role = models.UserRoleUser
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	if user.ProfileVisibility == "" {
		user.ProfileVisibility = models.VisibilityPublic
	}
	user.EmailNotifications = true

	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.Account{UserID: user.ID, SimbiBalance: 100}).Error)
	return user
}

// CreateService inserts an active listing owned by userID.
func CreateService(t *testing.T, db *gorm.DB, userID, title string) *models.Service {
	t.Helper()

	now := time.Now().UTC()
	price := 10
	svc := &models.Service{
		UserID:      userID,
		Title:       title,
		Description: "A service described well enough",
		Kind:        models.ServiceKindOffer,
		TradingType: models.TradingTypeSimbi,
		SimbiPrice:  &price,
		State:       models.ServiceStateActive,
		PublishedAt: &now,
	}
	require.NoError(t, db.Create(svc).Error)
	return svc
}
