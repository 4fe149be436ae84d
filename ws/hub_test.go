package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = hub.Shutdown(ctx)
	})
	return hub
}

// fakeClient has no connection; tests read its send channel directly.
func fakeClient(t *testing.T, hub *Hub, userID string, buffer int) *Client {
	t.Helper()
	c := &Client{ID: uuid.NewString(), UserID: userID, hub: hub, send: make(chan []byte, buffer)}
	require.NoError(t, hub.Register(c))
	return c
}

func receive(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
	}
	return Envelope{}
}

func assertEmpty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("unexpected frame: %s", raw)
	default:
	}
}

func TestHub_PresenceTracksMultipleConnections(t *testing.T) {
	hub := startHub(t)

	a1 := fakeClient(t, hub, "alice", 4)
	fakeClient(t, hub, "alice", 4)
	fakeClient(t, hub, "bob", 4)

	assert.True(t, hub.IsUserOnline("alice"))
	assert.Equal(t, 3, hub.ConnectionCount())
	assert.Equal(t, []string{"alice", "bob"}, hub.GetActiveUsers())

	hub.Unregister(a1)
	require.Eventually(t, func() bool { return hub.ConnectionCount() == 2 }, time.Second, 5*time.Millisecond)
	assert.True(t, hub.IsUserOnline("alice"), "second connection keeps alice online")
	assert.False(t, hub.IsUserOnline("carol"))
}

func TestHub_SendToUserReachesEveryConnection(t *testing.T) {
	hub := startHub(t)

	a1 := fakeClient(t, hub, "alice", 4)
	a2 := fakeClient(t, hub, "alice", 4)
	b := fakeClient(t, hub, "bob", 4)

	hub.SendToUser("alice", "notification", map[string]string{"title": "hi"})

	assert.Equal(t, "notification", receive(t, a1).Event)
	assert.Equal(t, "notification", receive(t, a2).Event)
	assertEmpty(t, b)
}

func TestHub_BroadcastToConversationSkipsExceptedUser(t *testing.T) {
	hub := startHub(t)

	a := fakeClient(t, hub, "alice", 4)
	b := fakeClient(t, hub, "bob", 4)
	outsider := fakeClient(t, hub, "carol", 4)

	hub.Join(a, "conversation:t1")
	hub.Join(b, "conversation:t1")
	assert.True(t, hub.InRoom(a, "conversation:t1"))
	assert.False(t, hub.InRoom(outsider, "conversation:t1"))

	hub.BroadcastToConversation("t1", "typing", map[string]bool{"isTyping": true}, "alice")

	env := receive(t, b)
	assert.Equal(t, "typing", env.Event)
	assertEmpty(t, a)
	assertEmpty(t, outsider)

	hub.Leave(b, "conversation:t1")
	hub.BroadcastToConversation("t1", "message", "x", "")
	assert.Equal(t, "message", receive(t, a).Event)
	assertEmpty(t, b)
}

func TestHub_FullBufferDropsClient(t *testing.T) {
	hub := startHub(t)

	slow := fakeClient(t, hub, "slow", 1)

	hub.SendToUser("slow", "one", nil)
	hub.SendToUser("slow", "two", nil)

	require.Eventually(t, func() bool { return !hub.IsUserOnline("slow") }, time.Second, 5*time.Millisecond)

	// the buffered frame is still readable, then the channel is closed
	<-slow.send
	_, ok := <-slow.send
	assert.False(t, ok)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := fakeClient(t, hub, "alice", 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, hub.Shutdown(ctx))
	require.NoError(t, hub.Shutdown(ctx), "shutdown is idempotent")

	_, ok := <-c.send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ConnectionCount())
	assert.ErrorIs(t, hub.Register(&Client{UserID: "late", send: make(chan []byte)}), ErrHubClosed)
}
