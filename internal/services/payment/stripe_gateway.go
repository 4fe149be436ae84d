package payment

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"simbi_backend/internal/logger"
)

// StripeGateway talks to Stripe through a per-instance API client.
type StripeGateway struct {
	api     *client.API
	enabled bool
}

// NewStripeGateway returns a disabled gateway for empty or placeholder keys.
func NewStripeGateway(secretKey string) *StripeGateway {
	if IsPlaceholderKey(secretKey) {
		logger.Warn("Stripe secret key not configured, payments disabled")
		return &StripeGateway{}
	}
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, enabled: true}
}

func (g *StripeGateway) Enabled() bool {
	return g.enabled
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, customer Customer) (string, error) {
	if !g.enabled {
		return "", ErrDisabled
	}
	params := &stripe.CustomerParams{
		Email:    stripe.String(customer.Email),
		Name:     stripe.String(customer.Name),
		Metadata: map[string]string{"userId": customer.UserID},
	}
	params.Context = ctx

	c, err := g.api.Customers.New(params)
	if err != nil {
		return "", errors.Wrap(err, "stripe: create customer")
	}
	return c.ID, nil
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, p IntentParams) (*Intent, error) {
	if !g.enabled {
		return nil, ErrDisabled
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.Amount),
		Currency: stripe.String(p.Currency),
		Customer: stripe.String(p.CustomerID),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: p.Metadata,
	}
	if p.Description != "" {
		params.Description = stripe.String(p.Description)
	}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "stripe: create payment intent")
	}
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}, nil
}

func (g *StripeGateway) CreateSetupIntent(ctx context.Context, customerID string) (*SetupIntent, error) {
	if !g.enabled {
		return nil, ErrDisabled
	}
	params := &stripe.SetupIntentParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	si, err := g.api.SetupIntents.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "stripe: create setup intent")
	}
	return &SetupIntent{ID: si.ID, ClientSecret: si.ClientSecret}, nil
}

func (g *StripeGateway) ListPaymentMethods(ctx context.Context, customerID string) ([]Method, error) {
	if !g.enabled {
		return nil, ErrDisabled
	}
	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String(string(stripe.PaymentMethodTypeCard)),
	}
	params.Context = ctx

	methods := []Method{}
	iter := g.api.PaymentMethods.List(params)
	for iter.Next() {
		methods = append(methods, toMethod(iter.PaymentMethod()))
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "stripe: list payment methods")
	}
	return methods, nil
}

// AttachPaymentMethod also makes the method the customer's invoice default.
func (g *StripeGateway) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*Method, error) {
	if !g.enabled {
		return nil, ErrDisabled
	}
	params := &stripe.PaymentMethodAttachParams{Customer: stripe.String(customerID)}
	params.Context = ctx

	pm, err := g.api.PaymentMethods.Attach(paymentMethodID, params)
	if err != nil {
		return nil, errors.Wrap(err, "stripe: attach payment method")
	}

	update := &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(pm.ID),
		},
	}
	update.Context = ctx
	if _, err := g.api.Customers.Update(customerID, update); err != nil {
		return nil, errors.Wrap(err, "stripe: set default payment method")
	}

	m := toMethod(pm)
	return &m, nil
}

func (g *StripeGateway) CreateSubscription(ctx context.Context, customerID, priceID string) (*Subscription, error) {
	if !g.enabled {
		return nil, ErrDisabled
	}
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
	}
	params.AddExpand("latest_invoice.payment_intent")
	params.Context = ctx

	sub, err := g.api.Subscriptions.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "stripe: create subscription")
	}
	out := toSubscription(sub)
	out.PriceID = priceID
	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		out.ClientSecret = sub.LatestInvoice.PaymentIntent.ClientSecret
	}
	return out, nil
}

func (g *StripeGateway) CancelSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	if !g.enabled {
		return nil, ErrDisabled
	}
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	sub, err := g.api.Subscriptions.Cancel(subscriptionID, params)
	if err != nil {
		return nil, errors.Wrap(err, "stripe: cancel subscription")
	}
	return toSubscription(sub), nil
}

func toMethod(pm *stripe.PaymentMethod) Method {
	m := Method{ID: pm.ID}
	if pm.Card != nil {
		m.Brand = string(pm.Card.Brand)
		m.Last4 = pm.Card.Last4
		m.ExpMonth = pm.Card.ExpMonth
		m.ExpYear = pm.Card.ExpYear
	}
	return m
}

func toSubscription(sub *stripe.Subscription) *Subscription {
	out := &Subscription{
		ID:                 sub.ID,
		Status:             string(sub.Status),
		CurrentPeriodStart: unixTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:   unixTime(sub.CurrentPeriodEnd),
		CanceledAt:         unixTime(sub.CanceledAt),
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		out.PriceID = sub.Items.Data[0].Price.ID
	}
	return out
}

func unixTime(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
