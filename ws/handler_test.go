package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"simbi_backend/internal/auth"
	"simbi_backend/internal/middleware"
	"simbi_backend/internal/models"
	"simbi_backend/internal/services"
	"simbi_backend/internal/services/dto"
	"simbi_backend/internal/testutil"
	"simbi_backend/internal/validator"
)

type gateway struct {
	hub   *Hub
	db    *gorm.DB
	talks services.TalkService
	url   string
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.Configure("ws-test-secret", time.Hour, "simbi-test")

	db := testutil.NewTestDB(t)
	hub := startHub(t)
	repos := services.NewRepositories()
	container := services.NewServiceContainer(repos, services.Dependencies{Realtime: hub})

	handler := NewWebSocketHandler(hub, db, container.TalkService, repos.User, validator.New(), nil)
	router := gin.New()
	router.GET("/ws", middleware.WSAuthMiddleware(), handler.ServeWS)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &gateway{
		hub:   hub,
		db:    db,
		talks: container.TalkService,
		url:   "ws" + strings.TrimPrefix(server.URL, "http") + "/ws",
	}
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (g *gateway) dial(t *testing.T, user *models.User) *websocket.Conn {
	t.Helper()
	token, err := auth.GenerateToken(user.ID, string(user.Role))
	require.NoError(t, err)

	conn, resp, err := websocket.DefaultDialer.Dial(g.url+"?token="+token, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })

	connected := readEvent(t, conn, EventConnected)
	assert.Contains(t, string(connected.Data), user.ID)
	return conn
}

// readEvent skips frames until one named event arrives.
func readEvent(t *testing.T, conn *websocket.Conn, event string) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var f frame
		require.NoError(t, conn.ReadJSON(&f), "waiting for %q", event)
		if f.Event == event {
			return f
		}
	}
}

// readEventSkipping is readEvent that also reports the names of the frames it skipped.
func readEventSkipping(t *testing.T, conn *websocket.Conn, event string) (frame, []string) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var skipped []string
	for {
		var f frame
		require.NoError(t, conn.ReadJSON(&f), "waiting for %q", event)
		if f.Event == event {
			return f, skipped
		}
		skipped = append(skipped, f.Event)
	}
}

func send(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"event": event, "data": data}))
}

func TestServeWS_RejectsMissingToken(t *testing.T) {
	g := newGateway(t)

	_, resp, err := websocket.DefaultDialer.Dial(g.url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(g.url+"?token=garbage", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWS_ConversationFlow(t *testing.T) {
	g := newGateway(t)
	alice := testutil.CreateUser(t, g.db, &models.User{FirstName: "Alice"}, "")
	bob := testutil.CreateUser(t, g.db, &models.User{FirstName: "Bob"}, "")

	talk, err := g.talks.CreateTalk(g.db, alice.ID, &dto.CreateTalkRequest{ReceiverID: bob.ID, Subject: "Guitar lessons"})
	require.NoError(t, err)

	aliceConn := g.dial(t, alice)
	bobConn := g.dial(t, bob)
	assert.True(t, g.hub.IsUserOnline(alice.ID))

	var reloaded models.User
	require.NoError(t, g.db.First(&reloaded, "id = ?", alice.ID).Error)
	assert.NotNil(t, reloaded.LastSeenAt)

	send(t, aliceConn, EventJoinConversation, map[string]string{"conversationId": talk.ID})
	ack := readEvent(t, aliceConn, EventAck)
	assert.Contains(t, string(ack.Data), `"success":true`)

	send(t, bobConn, EventJoinConversation, map[string]string{"conversationId": talk.ID})
	readEvent(t, bobConn, EventAck)
	joined := readEvent(t, aliceConn, EventUserJoined)
	assert.Contains(t, string(joined.Data), bob.ID)

	send(t, aliceConn, EventTyping, map[string]interface{}{"conversationId": talk.ID, "isTyping": true})
	typing := readEvent(t, bobConn, EventTyping)
	assert.Contains(t, string(typing.Data), `"isTyping":true`)

	send(t, bobConn, EventMessage, map[string]string{"conversationId": talk.ID, "content": "Hi Alice"})
	msg := readEvent(t, aliceConn, EventMessage)
	assert.Contains(t, string(msg.Data), "Hi Alice")
	readEvent(t, aliceConn, services.EventNewMessage)

	var count int64
	require.NoError(t, g.db.Model(&models.TalkMessage{}).Where("talk_id = ?", talk.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	send(t, aliceConn, EventRead, map[string]string{"conversationId": talk.ID})
	read := readEvent(t, bobConn, EventRead)
	assert.Contains(t, string(read.Data), alice.ID)

	// The reader gets no echo of their own receipt.
	send(t, bobConn, EventTyping, map[string]interface{}{"conversationId": talk.ID, "isTyping": false})
	_, skipped := readEventSkipping(t, aliceConn, EventTyping)
	assert.NotContains(t, skipped, EventRead)

	offer, err := g.talks.CreateOffer(g.db, alice.ID, talk.ID, &dto.CreateOfferRequest{Description: "Four lessons"})
	require.NoError(t, err)

	send(t, aliceConn, EventOfferUpdate, map[string]string{"conversationId": talk.ID, "offerId": offer.ID, "status": "pending"})
	update := readEvent(t, bobConn, EventOfferUpdate)
	assert.Contains(t, string(update.Data), "Four lessons")
	notice := readEvent(t, bobConn, EventOfferNotification)
	assert.Contains(t, string(notice.Data), offer.ID)

	send(t, bobConn, EventLeaveConversation, map[string]string{"conversationId": talk.ID})
	left := readEvent(t, aliceConn, EventUserLeft)
	assert.Contains(t, string(left.Data), bob.ID)
}

func TestServeWS_JoinRequiresParticipant(t *testing.T) {
	g := newGateway(t)
	alice := testutil.CreateUser(t, g.db, &models.User{}, "")
	bob := testutil.CreateUser(t, g.db, &models.User{}, "")
	mallory := testutil.CreateUser(t, g.db, &models.User{}, "")

	talk, err := g.talks.CreateTalk(g.db, alice.ID, &dto.CreateTalkRequest{ReceiverID: bob.ID})
	require.NoError(t, err)

	conn := g.dial(t, mallory)
	send(t, conn, EventJoinConversation, map[string]string{"conversationId": talk.ID})

	errFrame := readEvent(t, conn, EventError)
	assert.Contains(t, string(errFrame.Data), `"success":false`)

	send(t, conn, EventTyping, map[string]interface{}{"conversationId": talk.ID, "isTyping": true})
	readEvent(t, conn, EventError)

	send(t, conn, "bogus", map[string]string{})
	unknown := readEvent(t, conn, EventError)
	assert.Contains(t, string(unknown.Data), "unknown event")
}

func TestServeWS_OfferUpdateRejectsForeignOffer(t *testing.T) {
	g := newGateway(t)
	alice := testutil.CreateUser(t, g.db, &models.User{}, "")
	bob := testutil.CreateUser(t, g.db, &models.User{}, "")
	carol := testutil.CreateUser(t, g.db, &models.User{}, "")

	aliceBob, err := g.talks.CreateTalk(g.db, alice.ID, &dto.CreateTalkRequest{ReceiverID: bob.ID})
	require.NoError(t, err)
	carolBob, err := g.talks.CreateTalk(g.db, carol.ID, &dto.CreateTalkRequest{ReceiverID: bob.ID})
	require.NoError(t, err)
	carolOffer, err := g.talks.CreateOffer(g.db, carol.ID, carolBob.ID, &dto.CreateOfferRequest{Description: "Carol's deal"})
	require.NoError(t, err)

	aliceConn := g.dial(t, alice)
	bobConn := g.dial(t, bob)
	send(t, bobConn, EventJoinConversation, map[string]string{"conversationId": aliceBob.ID})
	readEvent(t, bobConn, EventAck)

	send(t, aliceConn, EventOfferUpdate, map[string]string{"conversationId": aliceBob.ID, "offerId": carolOffer.ID, "status": "accepted"})
	errFrame := readEvent(t, aliceConn, EventError)
	assert.Contains(t, string(errFrame.Data), "Offer not found")

	send(t, aliceConn, EventOfferUpdate, map[string]string{"conversationId": carolBob.ID, "offerId": carolOffer.ID, "status": "accepted"})
	readEvent(t, aliceConn, EventError)

	// Bob saw neither update: his next frame is Alice typing.
	send(t, aliceConn, EventJoinConversation, map[string]string{"conversationId": aliceBob.ID})
	readEvent(t, aliceConn, EventAck)
	send(t, aliceConn, EventTyping, map[string]interface{}{"conversationId": aliceBob.ID, "isTyping": true})
	_, skipped := readEventSkipping(t, bobConn, EventTyping)
	assert.NotContains(t, skipped, EventOfferUpdate)
	assert.NotContains(t, skipped, EventOfferNotification)
}
