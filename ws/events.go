package ws

import "encoding/json"

// Client to server events.
const (
	EventJoinConversation  = "join-conversation"
	EventLeaveConversation = "leave-conversation"
	EventMessage           = "message"
	EventTyping            = "typing"
	EventRead              = "read"
	EventOfferUpdate       = "offer-update"
)

// Server to client events. message, read and offer-update are echoed under the same names.
const (
	EventConnected         = "connected"
	EventAck               = "ack"
	EventError             = "error"
	EventUserJoined        = "user-joined"
	EventUserLeft          = "user-left"
	EventOfferNotification = "offer-notification"
)

// Envelope is the frame written to clients.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type conversationPayload struct {
	ConversationID string `json:"conversationId" validate:"required"`
}

type messagePayload struct {
	ConversationID string   `json:"conversationId" validate:"required"`
	Content        string   `json:"content" validate:"required,min=1,max=5000"`
	Attachments    []string `json:"attachments,omitempty" validate:"omitempty,max=10,dive,max=500"`
}

type typingPayload struct {
	ConversationID string `json:"conversationId" validate:"required"`
	IsTyping       bool   `json:"isTyping"`
}

type offerUpdatePayload struct {
	ConversationID string `json:"conversationId" validate:"required"`
	OfferID        string `json:"offerId" validate:"required"`
	Status         string `json:"status" validate:"required,oneof=pending accepted declined cancelled"`
}

type errorData struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
