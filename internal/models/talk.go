package models

import (
	"time"

	"gorm.io/datatypes"
)

// Talk is a two-party conversation, optionally about a service.
type Talk struct {
	BaseModel
	SenderID         string     `gorm:"type:varchar(36);not null;index" json:"senderId"`
	ReceiverID       string     `gorm:"type:varchar(36);not null;index" json:"receiverId"`
	ServiceID        *string    `gorm:"type:varchar(36);index" json:"serviceId,omitempty"`
	Subject          string     `json:"subject"`
	Status           TalkStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	SenderRead       bool       `gorm:"not null;default:true" json:"senderRead"`
	ReceiverRead     bool       `gorm:"not null;default:false" json:"receiverRead"`
	SenderArchived   bool       `gorm:"not null;default:false" json:"senderArchived"`
	ReceiverArchived bool       `gorm:"not null;default:false" json:"receiverArchived"`
	LastMessageAt    *time.Time `json:"lastMessageAt,omitempty"`

	Sender   *User         `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver *User         `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	Service  *Service      `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Messages []TalkMessage `gorm:"foreignKey:TalkID" json:"messages,omitempty"`
	Offers   []Offer       `gorm:"foreignKey:TalkID" json:"offers,omitempty"`
}

func (t *Talk) IsParticipant(userID string) bool {
	return t.SenderID == userID || t.ReceiverID == userID
}

// OtherParty returns the participant that is not userID.
func (t *Talk) OtherParty(userID string) string {
	if t.SenderID == userID {
		return t.ReceiverID
	}
	return t.SenderID
}

type TalkMessage struct {
	BaseModel
	TalkID      string                      `gorm:"type:varchar(36);not null;index" json:"talkId"`
	SenderID    string                      `gorm:"type:varchar(36);not null" json:"senderId"`
	Content     string                      `gorm:"type:text;not null" json:"content"`
	Attachments datatypes.JSONSlice[string] `json:"attachments"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

// Offer is a proposed trade inside a talk.
type Offer struct {
	BaseModel
	TalkID         string      `gorm:"type:varchar(36);not null;index" json:"talkId"`
	SenderID       string      `gorm:"type:varchar(36);not null" json:"senderId"`
	ReceiverID     string      `gorm:"type:varchar(36);not null;index" json:"receiverId"`
	Description    string      `gorm:"type:text;not null" json:"description"`
	SimbiAmount    *int        `json:"simbiAmount,omitempty"`
	ServiceOffered string      `json:"serviceOffered,omitempty"`
	Hours          *float64    `json:"hours,omitempty"`
	Status         OfferStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	AcceptedAt     *time.Time  `json:"acceptedAt,omitempty"`
}
