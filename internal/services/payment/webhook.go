package payment

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Payment intent events the platform reacts to.
const (
	EventIntentSucceeded = string(stripe.EventTypePaymentIntentSucceeded)
	EventIntentFailed    = string(stripe.EventTypePaymentIntentPaymentFailed)
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// WebhookEvent is the part of a gateway event the platform reads.
type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
}

// ParseWebhook verifies the Stripe-Signature header against secret and decodes
// the event. PaymentIntentID is set for payment_intent.* events only.
func ParseWebhook(payload []byte, signature, secret string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return out, nil
	}
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded, stripe.EventTypePaymentIntentPaymentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, errors.Wrap(err, "stripe: decode payment intent")
		}
		out.PaymentIntentID = intent.ID
	}
	return out, nil
}
