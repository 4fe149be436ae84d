package models

import "time"

// PaymentTransaction mirrors one gateway payment intent.
type PaymentTransaction struct {
	BaseModel
	UserID          string        `gorm:"type:varchar(36);not null;index" json:"userId"`
	PaymentIntentID string        `gorm:"type:varchar(100);uniqueIndex;not null" json:"paymentIntentId"`
	Amount          int64         `gorm:"not null" json:"amount"`
	Currency        string        `gorm:"type:varchar(3);not null" json:"currency"`
	Description     string        `json:"description,omitempty"`
	Status          PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
}

type PaymentSubscription struct {
	BaseModel
	UserID                string     `gorm:"type:varchar(36);not null;index" json:"userId"`
	GatewaySubscriptionID string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"subscriptionId"`
	PriceID               string     `gorm:"type:varchar(100);not null" json:"priceId"`
	Status                string     `gorm:"type:varchar(30);not null" json:"status"`
	CurrentPeriodStart    *time.Time `json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd      *time.Time `json:"currentPeriodEnd,omitempty"`
	CanceledAt            *time.Time `json:"canceledAt,omitempty"`
}
