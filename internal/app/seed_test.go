package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simbi_backend/internal/config"
	"simbi_backend/internal/models"
	"simbi_backend/internal/testutil"
)

func TestSeedFirstAdmin_PicksFreeUsername(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateUser(t, db, &models.User{Username: "admin", Email: "someone@example.com"}, "")

	cfg := config.Defaults()
	cfg.Admin.Email = "admin@simbi.test"
	cfg.Admin.Password = "admin-password-1"

	require.NoError(t, seedFirstAdmin(db, cfg))

	var admin models.User
	require.NoError(t, db.Where("email = ?", cfg.Admin.Email).First(&admin).Error)
	assert.Equal(t, "admin1", admin.Username)
	assert.Equal(t, models.UserRoleAdmin, admin.Role)

	var accounts int64
	require.NoError(t, db.Model(&models.Account{}).Where("user_id = ?", admin.ID).Count(&accounts).Error)
	assert.EqualValues(t, 1, accounts)

	// a second run leaves the existing admin alone
	require.NoError(t, seedFirstAdmin(db, cfg))
	var admins int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&admins).Error)
	assert.EqualValues(t, 1, admins)
}

func TestSeedFirstAdmin_SkipsWithoutCredentials(t *testing.T) {
	db := testutil.NewTestDB(t)
	cfg := config.Defaults()
	cfg.Admin.Email = ""

	require.NoError(t, seedFirstAdmin(db, cfg))

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}
