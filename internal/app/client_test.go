package app_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simbi_backend/internal/models"
	"simbi_backend/pkg/client"
)

func TestClientStoresAgainstServer(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	partner, _ := ts.createUser(t, models.UserRoleUser)

	c := client.New(ts.Server.URL + "/api/v1")
	authStore := client.NewAuthStore(c)

	assert.False(t, authStore.Login(ctx, client.LoginCredentials{Email: "ghost@example.com", Password: "password123"}))
	assert.False(t, authStore.IsAuthenticated())
	assert.NotEmpty(t, authStore.Error())

	require.True(t, authStore.Register(ctx, client.RegisterData{
		Email:    "lee@example.com",
		Password: "password123",
		Username: "lee_trades",
	}), authStore.Error())
	require.NoError(t, authStore.FetchUser(ctx))
	assert.Equal(t, "lee_trades", authStore.User().Username)

	services := client.NewServicesStore(c)
	price := 10
	created, err := services.CreateService(ctx, client.CreateServiceData{
		Title:       "Spanish tutoring",
		Description: "Conversational Spanish for travellers",
		Kind:        "offer",
		TradingType: "simbi",
		SimbiPrice:  &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "draft", created.State)

	_, err = services.FetchService(ctx, "does-not-exist")
	assert.True(t, client.IsStatus(err, http.StatusNotFound))

	talks := client.NewTalksStore(c)
	talk, err := talks.CreateTalk(ctx, client.CreateTalkData{
		ReceiverID:     partner.ID,
		ServiceID:      &created.ID,
		Subject:        "Lessons",
		InitialMessage: "Hi! Interested?",
	})
	require.NoError(t, err)

	_, err = talks.FetchTalk(ctx, talk.ID)
	require.NoError(t, err)
	before := len(talks.Current().Messages)

	_, err = talks.SendMessage(ctx, talk.ID, client.SendMessageData{Content: "Tuesdays work for me"})
	require.NoError(t, err)
	assert.Len(t, talks.Current().Messages, before+1)

	amount := 15
	offer, err := talks.CreateOffer(ctx, talk.ID, client.CreateOfferData{Description: "Two lessons", SimbiAmount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "pending", offer.Status)

	require.NoError(t, talks.FetchTalks(ctx))
	assert.Len(t, talks.Talks(), 1)

	authStore.Logout()
	assert.False(t, authStore.IsAuthenticated())
	assert.True(t, client.IsUnauthorized(talks.FetchTalks(ctx)))
}
