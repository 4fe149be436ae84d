package app_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simbi_backend/internal/models"
	"simbi_backend/internal/services/dto"
)

func TestServicesFlow(t *testing.T) {
	ts := newTestServer(t)
	owner, ownerToken := ts.createUser(t, models.UserRoleUser)
	_, fanToken := ts.createUser(t, models.UserRoleUser)

	price := 25
	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/services", ownerToken, dto.CreateServiceRequest{
		Title:       "Guitar lessons",
		Description: "Beginner friendly acoustic guitar lessons",
		Kind:        string(models.ServiceKindOffer),
		TradingType: string(models.TradingTypeSimbi),
		SimbiPrice:  &price,
		Tags:        []string{"music"},
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))

	var created dto.ServiceResponse
	decode(t, body, &created)
	assert.Equal(t, owner.ID, created.UserID)
	assert.Equal(t, models.ServiceStateDraft, created.State)

	var list dto.ServiceListResponse
	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/services/search?q=guitar", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))
	decode(t, body, &list)
	assert.Zero(t, list.Total, "drafts are not listed")

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/services/"+created.ID+"/publish", fanToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode, string(body))

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/services/"+created.ID+"/publish", ownerToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/services/search?q=GUITAR", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	decode(t, body, &list)
	require.EqualValues(t, 1, list.Total)
	assert.Equal(t, created.ID, list.Services[0].ID)

	var like dto.LikeResponse
	for i := 0; i < 2; i++ {
		res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/services/"+created.ID+"/like", fanToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, string(body))
		decode(t, body, &like)
		assert.True(t, like.Liked)
		assert.Equal(t, 1, like.LikeCount, "liking twice counts once")
	}

	res, body = ts.SendRequest(t, http.MethodDelete, "/api/v1/services/"+created.ID+"/unlike", fanToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))
	decode(t, body, &like)
	assert.False(t, like.Liked)
	assert.Zero(t, like.LikeCount)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/services/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var fetched dto.ServiceResponse
	decode(t, body, &fetched)
	assert.Equal(t, 1, fetched.ViewCount)

	res, _ = ts.SendRequest(t, http.MethodDelete, "/api/v1/services/"+created.ID, fanToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodDelete, "/api/v1/services/"+created.ID, ownerToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/services/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestNotificationsFlow(t *testing.T) {
	ts := newTestServer(t)
	alice, aliceToken := ts.createUser(t, models.UserRoleUser)
	_, bobToken := ts.createUser(t, models.UserRoleUser)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/users/"+alice.ID+"/follow", bobToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/notifications/unread-count", aliceToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var unread dto.UnreadCountResponse
	decode(t, body, &unread)
	assert.EqualValues(t, 1, unread.Count)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/notifications", aliceToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var list dto.NotificationListResponse
	decode(t, body, &list)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, models.NotificationNewFollower, list.Notifications[0].Type)
	assert.False(t, list.Notifications[0].IsRead)

	var marked dto.MarkAllReadResponse
	for _, want := range []int64{1, 0} {
		res, body = ts.SendRequest(t, http.MethodPut, "/api/v1/notifications/read-all", aliceToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, string(body))
		decode(t, body, &marked)
		assert.EqualValues(t, want, marked.Updated)
	}

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/users/"+alice.ID+"/follow", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// another user's notification is invisible
	res, _ = ts.SendRequest(t, http.MethodDelete, "/api/v1/notifications/"+list.Notifications[0].ID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestPaymentsWithoutGateway(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.createUser(t, models.UserRoleUser)

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/payments/intent", token, map[string]interface{}{"amount": 10})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/payments/intent", token, map[string]interface{}{"amount": 100})
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode, string(body))

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/payments/transactions", token, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestAdminRequiresRole(t *testing.T) {
	ts := newTestServer(t)
	target, userToken := ts.createUser(t, models.UserRoleUser)
	_, moderatorToken := ts.createUser(t, models.UserRoleModerator)
	_, adminToken := ts.createUser(t, models.UserRoleAdmin)

	cases := []struct {
		token string
		path  string
		want  int
	}{
		{userToken, "/api/v1/admin/stats", http.StatusForbidden},
		{moderatorToken, "/api/v1/admin/stats", http.StatusForbidden},
		{adminToken, "/api/v1/admin/stats", http.StatusOK},
		{userToken, "/api/v1/admin/flags", http.StatusForbidden},
		{moderatorToken, "/api/v1/admin/flags", http.StatusOK},
		{"", "/api/v1/admin/flags", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		res, body := ts.SendRequest(t, http.MethodGet, tc.path, tc.token, nil)
		assert.Equal(t, tc.want, res.StatusCode, fmt.Sprintf("%s: %s", tc.path, body))
	}

	res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/admin/users/"+target.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode, string(body))
}

func TestAdmin_StaleTokenAfterDemotionOrBan(t *testing.T) {
	ts := newTestServer(t)
	demoted, demotedToken := ts.createUser(t, models.UserRoleAdmin)
	banned, bannedToken := ts.createUser(t, models.UserRoleAdmin)

	res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/admin/stats", demotedToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	require.NoError(t, ts.DB.Model(&models.User{}).Where("id = ?", demoted.ID).Update("role", models.UserRoleUser).Error)
	require.NoError(t, ts.DB.Model(&models.User{}).Where("id = ?", banned.ID).Update("status", models.UserStatusBanned).Error)

	res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/admin/stats", demotedToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode, string(body))

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/admin/users", bannedToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode, string(body))
	assert.Contains(t, string(body), "banned")
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	res, body := ts.SendRequest(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var health map[string]interface{}
	decode(t, body, &health)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "ok", health["database"])
	assert.EqualValues(t, 0, health["websocket_connections"])
	assert.NotContains(t, health, "redis")
}
