package dto

import (
	"time"

	"simbi_backend/internal/models"
)

// Payment amount bounds in minor currency units.
const (
	MinPaymentAmount = 50
	MaxPaymentAmount = 99999999
)

type CreatePaymentIntentRequest struct {
	Amount      int64  `json:"amount" validate:"required,min=50,max=99999999"`
	Currency    string `json:"currency,omitempty" validate:"omitempty,currency"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
}

type CreateSubscriptionRequest struct {
	PriceID         string `json:"priceId" validate:"required,max=100"`
	PaymentMethodID string `json:"paymentMethodId,omitempty" validate:"omitempty,max=100"`
}

type AddPaymentMethodRequest struct {
	PaymentMethodID string `json:"paymentMethodId" validate:"required,max=100"`
}

type PaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
}

type SetupIntentResponse struct {
	ClientSecret  string `json:"clientSecret"`
	SetupIntentID string `json:"setupIntentId"`
}

type PaymentMethodResponse struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int64  `json:"expMonth"`
	ExpYear  int64  `json:"expYear"`
}

type SubscriptionResponse struct {
	ID                 string     `json:"id"`
	SubscriptionID     string     `json:"subscriptionId"`
	PriceID            string     `json:"priceId"`
	Status             string     `json:"status"`
	ClientSecret       string     `json:"clientSecret,omitempty"`
	CurrentPeriodStart *time.Time `json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"currentPeriodEnd,omitempty"`
	CanceledAt         *time.Time `json:"canceledAt,omitempty"`
}

func NewSubscriptionResponse(s *models.PaymentSubscription) *SubscriptionResponse {
	return &SubscriptionResponse{
		ID:                 s.ID,
		SubscriptionID:     s.GatewaySubscriptionID,
		PriceID:            s.PriceID,
		Status:             s.Status,
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		CanceledAt:         s.CanceledAt,
	}
}

type TransactionListResponse struct {
	Transactions []models.PaymentTransaction `json:"transactions"`
	Pagination
}
