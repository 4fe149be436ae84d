package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simbi_backend/internal/models"
	"simbi_backend/internal/services"
	"simbi_backend/internal/services/dto"
	"simbi_backend/internal/testutil"
	"simbi_backend/pkg/apperrors"
)

func TestBanUser_RevokesSessionsAndAudits(t *testing.T) {
	f := newFixture(t)
	admin := testutil.CreateUser(t, f.db, &models.User{Role: models.UserRoleAdmin}, "")
	target := testutil.CreateUser(t, f.db, &models.User{}, "password123")

	_, err := f.svc.AuthService.Login(f.db, &dto.LoginRequest{Email: target.Email, Password: "password123"}, testClient)
	require.NoError(t, err)

	_, err = f.svc.AdminService.BanUser(f.db, admin.ID, admin.ID, &dto.BanUserRequest{Reason: "self"})
	assert.ErrorIs(t, err, apperrors.ErrCannotModifySelf)

	days := 7
	banned, err := f.svc.AdminService.BanUser(f.db, admin.ID, target.ID, &dto.BanUserRequest{Reason: "spam links", Duration: &days})
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusBanned, banned.Status)

	var sessions int64
	require.NoError(t, f.db.Model(&models.RefreshToken{}).Where("user_id = ?", target.ID).Count(&sessions).Error)
	assert.Zero(t, sessions)

	_, err = f.svc.AuthService.Login(f.db, &dto.LoginRequest{Email: target.Email, Password: "password123"}, testClient)
	assert.ErrorIs(t, err, apperrors.ErrAccountBanned)

	unbanned, err := f.svc.AdminService.UnbanUser(f.db, admin.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, unbanned.Status)

	_, err = f.svc.AdminService.UnbanUser(f.db, admin.ID, target.ID)
	assert.Error(t, err)

	activity, err := f.svc.AdminService.GetActivity(f.db)
	require.NoError(t, err)
	require.Len(t, activity, 2)
	actions := []string{activity[0].Action, activity[1].Action}
	assert.ElementsMatch(t, []string{services.AuditBanUser, services.AuditUnbanUser}, actions)
}

func TestResolveFlag_RemovedDeletesService(t *testing.T) {
	f := newFixture(t)
	admin := testutil.CreateUser(t, f.db, &models.User{Role: models.UserRoleAdmin}, "")
	owner := testutil.CreateUser(t, f.db, &models.User{}, "")
	reporter := testutil.CreateUser(t, f.db, &models.User{}, "")
	service := testutil.CreateService(t, f.db, owner.ID, "Fake tickets")

	flag, err := f.svc.MarketplaceService.FlagService(f.db, reporter.ID, service.ID, &dto.FlagServiceRequest{Reason: "scam"})
	require.NoError(t, err)

	open, err := f.svc.AdminService.ListFlags(f.db, false, 1, 20)
	require.NoError(t, err)
	require.Len(t, open.Flags, 1)

	resolved, err := f.svc.AdminService.ResolveFlag(f.db, admin.ID, flag.ID, &dto.ResolveFlagRequest{
		Action: services.FlagActionRemoved, Notes: "confirmed scam",
	})
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, admin.ID, *resolved.ResolvedBy)

	_, err = f.svc.MarketplaceService.GetService(f.db, service.ID)
	assert.ErrorIs(t, err, apperrors.ErrServiceNotFound)

	_, err = f.svc.AdminService.ResolveFlag(f.db, admin.ID, flag.ID, &dto.ResolveFlagRequest{Action: services.FlagActionDismissed})
	assert.Error(t, err, "already resolved")

	open, err = f.svc.AdminService.ListFlags(f.db, false, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, open.Flags)

	all, err := f.svc.AdminService.ListFlags(f.db, true, 1, 20)
	require.NoError(t, err)
	assert.Len(t, all.Flags, 1)
}

func TestModerateService_HideAndRestore(t *testing.T) {
	f := newFixture(t)
	admin := testutil.CreateUser(t, f.db, &models.User{Role: models.UserRoleAdmin}, "")
	owner := testutil.CreateUser(t, f.db, &models.User{}, "")
	service := testutil.CreateService(t, f.db, owner.ID, "Borderline listing")

	hidden, err := f.svc.AdminService.ModerateService(f.db, admin.ID, service.ID, &dto.ModerateContentRequest{Action: "hide"})
	require.NoError(t, err)
	assert.Equal(t, models.ServiceStateHidden, hidden.State)

	list, err := f.svc.MarketplaceService.ListServices(f.db, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	restored, err := f.svc.AdminService.ModerateService(f.db, admin.ID, service.ID, &dto.ModerateContentRequest{Action: "restore"})
	require.NoError(t, err)
	assert.Equal(t, models.ServiceStateActive, restored.State)
}

func TestUpdateUserRoleAndStats(t *testing.T) {
	f := newFixture(t)
	admin := testutil.CreateUser(t, f.db, &models.User{Role: models.UserRoleAdmin}, "")
	user := testutil.CreateUser(t, f.db, &models.User{}, "")
	testutil.CreateService(t, f.db, user.ID, "Listing")
	f.realtime.online[user.ID] = true

	promoted, err := f.svc.AdminService.UpdateUserRole(f.db, admin.ID, user.ID, &dto.UpdateUserRoleRequest{Role: "moderator"})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleModerator, promoted.Role)

	_, err = f.svc.AdminService.UpdateUserRole(f.db, admin.ID, admin.ID, &dto.UpdateUserRoleRequest{Role: "user"})
	assert.ErrorIs(t, err, apperrors.ErrCannotModifySelf)

	stats, err := f.svc.AdminService.GetStats(f.db)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Users.Total)
	assert.EqualValues(t, 2, stats.Users.Active)
	assert.EqualValues(t, 1, stats.Services.Active)
	assert.Equal(t, 1, stats.OnlineUsers)

	users, err := f.svc.AdminService.ListUsers(f.db, &dto.AdminUserQuery{Role: "moderator"}, 1, 20)
	require.NoError(t, err)
	require.Len(t, users.Users, 1)
	assert.Equal(t, user.ID, users.Users[0].ID)
}
