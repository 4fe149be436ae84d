package dto

import (
	"time"

	"simbi_backend/internal/models"
)

type CreateTalkRequest struct {
	ReceiverID     string  `json:"receiverId" validate:"required"`
	ServiceID      *string `json:"serviceId,omitempty"`
	Subject        string  `json:"subject,omitempty" validate:"omitempty,max=200"`
	InitialMessage string  `json:"initialMessage,omitempty" validate:"omitempty,max=5000"`
}

type SendMessageRequest struct {
	Content     string   `json:"content" validate:"required,min=1,max=5000"`
	Attachments []string `json:"attachments,omitempty" validate:"omitempty,max=10,dive,max=500"`
}

type CreateOfferRequest struct {
	Description    string   `json:"description" validate:"required,min=1,max=2000"`
	SimbiAmount    *int     `json:"simbiAmount,omitempty" validate:"omitempty,gte=0,lte=1000000"`
	ServiceOffered string   `json:"serviceOffered,omitempty" validate:"omitempty,max=200"`
	Hours          *float64 `json:"hours,omitempty" validate:"omitempty,gt=0,lte=1000"`
}

type TalkParticipant struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Avatar     string     `json:"avatar"`
	IsOnline   bool       `json:"isOnline"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
}

func NewTalkParticipant(u *models.User, online bool) *TalkParticipant {
	if u == nil {
		return nil
	}
	return &TalkParticipant{
		ID:         u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Avatar:     u.Avatar,
		IsOnline:   online,
		LastSeenAt: u.LastSeenAt,
	}
}

type MessageResponse struct {
	ID          string           `json:"id"`
	TalkID      string           `json:"talkId"`
	SenderID    string           `json:"senderId"`
	Content     string           `json:"content"`
	Attachments []string         `json:"attachments"`
	CreatedAt   time.Time        `json:"createdAt"`
	Sender      *TalkParticipant `json:"sender,omitempty"`
}

func NewMessageResponse(m *models.TalkMessage) *MessageResponse {
	resp := &MessageResponse{
		ID:          m.ID,
		TalkID:      m.TalkID,
		SenderID:    m.SenderID,
		Content:     m.Content,
		Attachments: nonNilStrings(m.Attachments),
		CreatedAt:   m.CreatedAt,
	}
	if m.Sender != nil {
		resp.Sender = NewTalkParticipant(m.Sender, false)
	}
	return resp
}

type OfferResponse struct {
	ID             string             `json:"id"`
	TalkID         string             `json:"talkId"`
	SenderID       string             `json:"senderId"`
	ReceiverID     string             `json:"receiverId"`
	Description    string             `json:"description"`
	SimbiAmount    *int               `json:"simbiAmount,omitempty"`
	ServiceOffered string             `json:"serviceOffered,omitempty"`
	Hours          *float64           `json:"hours,omitempty"`
	Status         models.OfferStatus `json:"status"`
	AcceptedAt     *time.Time         `json:"acceptedAt,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

func NewOfferResponse(o *models.Offer) *OfferResponse {
	return &OfferResponse{
		ID:             o.ID,
		TalkID:         o.TalkID,
		SenderID:       o.SenderID,
		ReceiverID:     o.ReceiverID,
		Description:    o.Description,
		SimbiAmount:    o.SimbiAmount,
		ServiceOffered: o.ServiceOffered,
		Hours:          o.Hours,
		Status:         o.Status,
		AcceptedAt:     o.AcceptedAt,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

type TalkResponse struct {
	ID            string             `json:"id"`
	SenderID      string             `json:"senderId"`
	ReceiverID    string             `json:"receiverId"`
	ServiceID     *string            `json:"serviceId,omitempty"`
	Subject       string             `json:"subject"`
	Status        models.TalkStatus  `json:"status"`
	IsRead        bool               `json:"isRead"`
	LastMessageAt *time.Time         `json:"lastMessageAt,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
	OtherUser     *TalkParticipant   `json:"otherUser,omitempty"`
	Service       *ServiceResponse   `json:"service,omitempty"`
	LastMessage   *MessageResponse   `json:"lastMessage,omitempty"`
	Messages      []*MessageResponse `json:"messages,omitempty"`
	Offers        []*OfferResponse   `json:"offers,omitempty"`
}

// NewTalkResponse renders t from viewerID's point of view.
func NewTalkResponse(t *models.Talk, viewerID string) *TalkResponse {
	resp := &TalkResponse{
		ID:            t.ID,
		SenderID:      t.SenderID,
		ReceiverID:    t.ReceiverID,
		ServiceID:     t.ServiceID,
		Subject:       t.Subject,
		Status:        t.Status,
		LastMessageAt: t.LastMessageAt,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if viewerID == t.SenderID {
		resp.IsRead = t.SenderRead
		resp.OtherUser = NewTalkParticipant(t.Receiver, false)
	} else {
		resp.IsRead = t.ReceiverRead
		resp.OtherUser = NewTalkParticipant(t.Sender, false)
	}
	if t.Service != nil {
		resp.Service = NewServiceResponse(t.Service)
	}
	return resp
}
