// Package payment wraps the card gateway used by the payment endpoints.
package payment

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrDisabled is returned by every call on a gateway without credentials.
var ErrDisabled = errors.New("payment gateway disabled")

type Customer struct {
	Email  string
	Name   string
	UserID string
}

type IntentParams struct {
	CustomerID  string
	Amount      int64
	Currency    string
	Description string
	Metadata    map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
}

type SetupIntent struct {
	ID           string
	ClientSecret string
}

type Method struct {
	ID       string
	Brand    string
	Last4    string
	ExpMonth int64
	ExpYear  int64
}

type Subscription struct {
	ID                 string
	PriceID            string
	Status             string
	ClientSecret       string
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CanceledAt         *time.Time
}

// Gateway is the subset of the card processor API the platform uses.
type Gateway interface {
	Enabled() bool
	CreateCustomer(ctx context.Context, customer Customer) (string, error)
	CreatePaymentIntent(ctx context.Context, params IntentParams) (*Intent, error)
	CreateSetupIntent(ctx context.Context, customerID string) (*SetupIntent, error)
	ListPaymentMethods(ctx context.Context, customerID string) ([]Method, error)
	AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*Method, error)
	CreateSubscription(ctx context.Context, customerID, priceID string) (*Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
}

// IsPlaceholderKey reports keys that ship in sample configs.
func IsPlaceholderKey(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return true
	}
	lower := strings.ToLower(key)
	if strings.Contains(lower, "placeholder") {
		return true
	}
	return strings.HasPrefix(lower, "sk_") && strings.HasSuffix(lower, "xxx")
}
