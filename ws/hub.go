package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"simbi_backend/internal/logger"
	"simbi_backend/internal/services"
)

var ErrHubClosed = errors.New("ws: hub is closed")

// Hub tracks connected clients, per-user presence and conversation rooms.
// Run owns registration; the maps are guarded by mu so services can
// broadcast from any goroutine.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopped    chan struct{}
	stopOnce   sync.Once

	mu      sync.RWMutex
	users   map[string]map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
	clients int
}

var _ services.RealtimePublisher = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		users:      make(map[string]map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Shutdown stops Run and closes every client. It waits for Run to exit or ctx to end.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.stopOnce.Do(func() { close(h.done) })
	select {
	case <-h.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Register returns once c is visible to broadcasts.
func (h *Hub) Register(c *Client) error {
	c.ready = make(chan struct{})
	select {
	case h.register <- c:
		<-c.ready
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	defer close(c.ready)

	conns, ok := h.users[c.UserID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.users[c.UserID] = conns
	}
	conns[c] = struct{}{}
	h.clients++
	logger.Debug("ws client registered", "user_id", c.UserID, "conn_id", c.ID, "total", h.clients)
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	conns, ok := h.users[c.UserID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}

	delete(conns, c)
	if len(conns) == 0 {
		delete(h.users, c.UserID)
	}
	for room := range c.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	c.rooms = nil
	h.clients--
	close(c.send)
	logger.Debug("ws client unregistered", "user_id", c.UserID, "conn_id", c.ID, "total", h.clients)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.users {
		for c := range conns {
			h.removeLocked(c)
		}
	}
}

// Join adds c to room.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.users[c.UserID][c]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	if c.rooms == nil {
		c.rooms = make(map[string]struct{})
	}
	c.rooms[room] = struct{}{}
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(c.rooms, room)
}

func (h *Hub) InRoom(c *Client, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[room][c]
	return ok
}

// BroadcastToConversation sends to every connection in the talk's room,
// skipping all connections of exceptUserID.
func (h *Hub) BroadcastToConversation(conversationID, event string, data interface{}, exceptUserID string) {
	h.BroadcastToRoom(services.ConversationRoom(conversationID), event, data, exceptUserID)
}

func (h *Hub) BroadcastToRoom(room, event string, data interface{}, exceptUserID string) {
	payload, err := encode(event, data)
	if err != nil {
		logger.Error("ws encode failed", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		if exceptUserID != "" && c.UserID == exceptUserID {
			continue
		}
		h.deliver(c, payload)
	}
}

func (h *Hub) SendToUser(userID, event string, data interface{}) {
	payload, err := encode(event, data)
	if err != nil {
		logger.Error("ws encode failed", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.users[userID] {
		h.deliver(c, payload)
	}
}

// Send delivers to a single connection.
func (h *Hub) Send(c *Client, event string, data interface{}) {
	payload, err := encode(event, data)
	if err != nil {
		logger.Error("ws encode failed", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.users[c.UserID][c]; ok {
		h.deliver(c, payload)
	}
}

// deliver must be called with mu held. A client whose buffer is full is dropped.
func (h *Hub) deliver(c *Client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		if c.dropping.CompareAndSwap(false, true) {
			logger.Warn("ws send buffer full, dropping client", "user_id", c.UserID, "conn_id", c.ID)
			go h.Unregister(c)
		}
	}
}

func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}

func (h *Hub) GetActiveUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.users))
	for id := range h.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients
}

func encode(event string, data interface{}) ([]byte, error) {
	return json.Marshal(Envelope{Event: event, Data: data})
}
