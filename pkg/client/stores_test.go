package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthStore_LoginFailureLeavesStoreSignedOut(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"error":   map[string]string{"code": "INVALID_CREDENTIALS", "message": "Invalid email or password"},
			"message": "Invalid email or password",
		})
	})
	store := NewAuthStore(c)

	ok := store.Login(context.Background(), LoginCredentials{Email: "a@b.c", Password: "nope"})
	assert.False(t, ok)
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, "Invalid email or password", store.Error())
	assert.False(t, store.Loading())
	assert.Empty(t, c.Tokens().Get())
}

func TestAuthStore_RegisterFallbackMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	store := NewAuthStore(c)

	assert.False(t, store.Register(context.Background(), RegisterData{Email: "a@b.c", Password: "password1"}))
	assert.Equal(t, "Registration failed", store.Error())
}

func TestAuthStore_LoginFetchLogout(t *testing.T) {
	meCalls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			var creds LoginCredentials
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "maya@example.com", creds.Email)
			writeJSON(w, http.StatusOK, AuthResponse{
				User:        &User{ID: "u1", Email: creds.Email},
				AccessToken: "tok",
			})
		case "/api/v1/auth/me":
			meCalls++
			if meCalls > 1 {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "expired"})
				return
			}
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, User{ID: "u1", Email: "maya@example.com", Username: "maya"})
		default:
			http.NotFound(w, r)
		}
	})
	store := NewAuthStore(c)
	ctx := context.Background()

	require.True(t, store.Login(ctx, LoginCredentials{Email: "maya@example.com", Password: "pw123456"}))
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "tok", store.Token())
	assert.Empty(t, store.Error())

	require.NoError(t, store.FetchUser(ctx))
	assert.Equal(t, "maya", store.User().Username)

	require.Error(t, store.FetchUser(ctx))
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.Token())

	// nothing to fetch without a token
	require.NoError(t, store.FetchUser(ctx))
	assert.Equal(t, 2, meCalls)
}

func TestServicesStore(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/services":
			assert.Equal(t, "guitar", r.URL.Query().Get("q"))
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Empty(t, r.URL.Query().Get("kind"))
			writeJSON(w, http.StatusOK, ServiceList{
				Services: []*Service{{ID: "s1", Title: "Guitar"}, {ID: "s2", Title: "Bass"}},
				Total:    12,
				Page:     2,
				Pages:    2,
			})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/services/s1":
			writeJSON(w, http.StatusOK, Service{ID: "s1", Title: "Guitar", LikeCount: 3})
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/services/s1/like":
			writeJSON(w, http.StatusOK, LikeResult{Liked: true, LikeCount: 4})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/services/s1/unlike":
			writeJSON(w, http.StatusOK, LikeResult{Liked: false, LikeCount: 3})
		default:
			http.NotFound(w, r)
		}
	})
	store := NewServicesStore(c)
	ctx := context.Background()

	require.NoError(t, store.FetchServices(ctx, SearchServicesParams{Query: "guitar", Page: 2}))
	want := []*Service{{ID: "s1", Title: "Guitar"}, {ID: "s2", Title: "Bass"}}
	if diff := cmp.Diff(want, store.Services()); diff != "" {
		t.Errorf("services mismatch (-want +got):\n%s", diff)
	}
	assert.EqualValues(t, 12, store.Total())
	page, pages := store.Page()
	assert.Equal(t, 2, page)
	assert.Equal(t, 2, pages)

	svc, err := store.FetchService(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Guitar", svc.Title)
	assert.Same(t, svc, store.Current())

	res, err := store.LikeService(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, 4, store.Current().LikeCount)
	assert.Equal(t, 4, store.Services()[0].LikeCount)

	_, err = store.UnlikeService(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, store.Current().LikeCount)

	_, err = store.FetchService(ctx, "missing")
	assert.True(t, IsStatus(err, http.StatusNotFound))
}

func TestTalksStore_SendMessageAppendsToCurrent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/talks":
			writeJSON(w, http.StatusOK, map[string]interface{}{"talks": []*Talk{{ID: "t1"}, {ID: "t2"}}})
		case "/api/v1/talks/t1":
			writeJSON(w, http.StatusOK, Talk{ID: "t1", Messages: []*Message{{ID: "m1", Content: "hi"}}})
		case "/api/v1/talks/t1/message", "/api/v1/talks/t2/message":
			var data SendMessageData
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&data))
			writeJSON(w, http.StatusCreated, Message{ID: "m-new", Content: data.Content})
		case "/api/v1/talks/t1/offer":
			writeJSON(w, http.StatusCreated, Offer{ID: "o1", TalkID: "t1", Status: "pending"})
		default:
			http.NotFound(w, r)
		}
	})
	store := NewTalksStore(c)
	ctx := context.Background()

	require.NoError(t, store.FetchTalks(ctx))
	assert.Len(t, store.Talks(), 2)

	_, err := store.FetchTalk(ctx, "t1")
	require.NoError(t, err)

	msg, err := store.SendMessage(ctx, "t1", SendMessageData{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	require.Len(t, store.Current().Messages, 2)
	assert.Equal(t, "m-new", store.Current().Messages[1].ID)

	_, err = store.SendMessage(ctx, "t2", SendMessageData{Content: "elsewhere"})
	require.NoError(t, err)
	assert.Len(t, store.Current().Messages, 2, "other talks do not touch Current")

	offer, err := store.CreateOffer(ctx, "t1", CreateOfferData{Description: "one lesson"})
	require.NoError(t, err)
	assert.Equal(t, "pending", offer.Status)
}
