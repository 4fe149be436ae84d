package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"simbi_backend/internal/logger"
	"simbi_backend/internal/middleware"
	"simbi_backend/internal/repositories"
	"simbi_backend/internal/services"
	"simbi_backend/internal/services/dto"
	"simbi_backend/internal/validator"
	"simbi_backend/pkg/apperrors"
)

const opTimeout = 10 * time.Second

// WebSocketHandler upgrades authenticated requests and routes client events.
type WebSocketHandler struct {
	hub         *Hub
	db          *gorm.DB
	talkService services.TalkService
	userRepo    repositories.UserRepository
	validator   *validator.Validator
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler builds the gateway. An empty allowedOrigins accepts any origin.
func NewWebSocketHandler(
	hub *Hub,
	db *gorm.DB,
	talkService services.TalkService,
	userRepo repositories.UserRepository,
	v *validator.Validator,
	allowedOrigins []string,
) *WebSocketHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &WebSocketHandler{
		hub:         hub,
		db:          db,
		talkService: talkService,
		userRepo:    userRepo,
		validator:   v,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins["*"] || origins[origin]
			},
		},
	}
}

// ServeWS must run behind middleware.WSAuthMiddleware.
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "ws upgrade failed", "error", err)
		return
	}

	client := newClient(h.hub, conn, userID)
	if err := h.hub.Register(client); err != nil {
		client.cancel()
		_ = conn.Close()
		return
	}

	ctx, cancel := context.WithTimeout(client.ctx, opTimeout)
	if err := h.userRepo.TouchLastSeen(h.db.WithContext(ctx), userID, time.Now().UTC()); err != nil {
		logger.CtxWithError(ctx, "Failed to update last seen", err)
	}
	cancel()

	h.hub.Send(client, EventConnected, gin.H{"userId": userID})
	logger.CtxInfo(client.ctx, "ws client connected", "conn_id", client.ID)

	go client.writePump()
	go client.readPump(h.dispatch)
}

func (h *WebSocketHandler) dispatch(c *Client, msg inbound) {
	ctx, cancel := context.WithTimeout(c.ctx, opTimeout)
	defer cancel()
	db := h.db.WithContext(ctx)

	var err error
	switch msg.Event {
	case EventJoinConversation:
		err = h.joinConversation(db, c, msg.Data)
	case EventLeaveConversation:
		err = h.leaveConversation(c, msg.Data)
	case EventMessage:
		err = h.sendMessage(db, c, msg.Data)
	case EventTyping:
		err = h.typing(c, msg.Data)
	case EventRead:
		err = h.markRead(db, c, msg.Data)
	case EventOfferUpdate:
		err = h.offerUpdate(db, c, msg.Data)
	default:
		err = apperrors.NewBadRequestError("unknown event: " + msg.Event)
	}

	if err != nil {
		h.sendError(c, msg.Event, err)
	}
}

func (h *WebSocketHandler) joinConversation(db *gorm.DB, c *Client, raw json.RawMessage) error {
	var p conversationPayload
	if err := h.decode(raw, &p); err != nil {
		return err
	}
	if _, err := h.talkService.CheckParticipant(db, c.UserID, p.ConversationID); err != nil {
		return err
	}

	room := services.ConversationRoom(p.ConversationID)
	h.hub.Join(c, room)
	h.hub.BroadcastToRoom(room, EventUserJoined, gin.H{
		"userId":         c.UserID,
		"conversationId": p.ConversationID,
	}, c.UserID)
	h.hub.Send(c, EventAck, gin.H{"success": true, "event": EventJoinConversation, "conversationId": p.ConversationID})
	return nil
}

func (h *WebSocketHandler) leaveConversation(c *Client, raw json.RawMessage) error {
	var p conversationPayload
	if err := h.decode(raw, &p); err != nil {
		return err
	}

	room := services.ConversationRoom(p.ConversationID)
	if !h.hub.InRoom(c, room) {
		return nil
	}
	h.hub.Leave(c, room)
	h.hub.BroadcastToRoom(room, EventUserLeft, gin.H{
		"userId":         c.UserID,
		"conversationId": p.ConversationID,
	}, c.UserID)
	return nil
}

// sendMessage persists through the talk service, which does the broadcasting.
func (h *WebSocketHandler) sendMessage(db *gorm.DB, c *Client, raw json.RawMessage) error {
	var p messagePayload
	if err := h.decode(raw, &p); err != nil {
		return err
	}

	msg, err := h.talkService.SendMessage(db, c.UserID, p.ConversationID, &dto.SendMessageRequest{
		Content:     p.Content,
		Attachments: p.Attachments,
	})
	if err != nil {
		return err
	}
	h.hub.Send(c, EventAck, gin.H{"success": true, "event": EventMessage, "message": msg})
	return nil
}

func (h *WebSocketHandler) typing(c *Client, raw json.RawMessage) error {
	var p typingPayload
	if err := h.decode(raw, &p); err != nil {
		return err
	}

	room := services.ConversationRoom(p.ConversationID)
	if !h.hub.InRoom(c, room) {
		return apperrors.ErrTalkAccessDenied
	}
	h.hub.BroadcastToRoom(room, EventTyping, gin.H{
		"userId":         c.UserID,
		"conversationId": p.ConversationID,
		"isTyping":       p.IsTyping,
	}, c.UserID)
	return nil
}

func (h *WebSocketHandler) markRead(db *gorm.DB, c *Client, raw json.RawMessage) error {
	var p conversationPayload
	if err := h.decode(raw, &p); err != nil {
		return err
	}

	readAt, err := h.talkService.MarkRead(db, c.UserID, p.ConversationID)
	if err != nil {
		return err
	}
	h.hub.BroadcastToConversation(p.ConversationID, EventRead, gin.H{
		"userId":         c.UserID,
		"conversationId": p.ConversationID,
		"readAt":         readAt,
	}, c.UserID)
	return nil
}

func (h *WebSocketHandler) offerUpdate(db *gorm.DB, c *Client, raw json.RawMessage) error {
	var p offerUpdatePayload
	if err := h.decode(raw, &p); err != nil {
		return err
	}

	offer, err := h.talkService.FindOfferInTalk(db, c.UserID, p.ConversationID, p.OfferID)
	if err != nil {
		return err
	}

	data := gin.H{
		"conversationId": p.ConversationID,
		"offerId":        offer.ID,
		"status":         p.Status,
		"userId":         c.UserID,
		"offer":          dto.NewOfferResponse(offer),
	}
	other := offer.ReceiverID
	if other == c.UserID {
		other = offer.SenderID
	}
	h.hub.BroadcastToConversation(p.ConversationID, EventOfferUpdate, data, "")
	h.hub.SendToUser(other, EventOfferNotification, data)
	return nil
}

func (h *WebSocketHandler) decode(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return apperrors.NewBadRequestError("missing data")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.NewBadRequestError("invalid data")
	}
	if err := h.validator.Validate(dst); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			return apperrors.ValidationError(vErr.Errors)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (h *WebSocketHandler) sendError(c *Client, event string, err error) {
	message := "internal error"
	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		message = appErr.Message
		if appErr.HTTPCode >= 500 {
			logger.CtxWithError(c.ctx, "ws event failed", err, "event", event)
		}
	} else {
		logger.CtxWithError(c.ctx, "ws event failed", err, "event", event)
	}
	h.hub.Send(c, EventError, errorData{Success: false, Message: message})
}
