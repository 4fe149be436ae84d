package payment

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// FakeGateway is an in-memory Gateway for tests and local development.
type FakeGateway struct {
	mu            sync.Mutex
	seq           int
	Customers     map[string]Customer
	Methods       map[string][]Method
	Subscriptions map[string]*Subscription
	Err           error
	Disabled      bool
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		Customers:     map[string]Customer{},
		Methods:       map[string][]Method{},
		Subscriptions: map[string]*Subscription{},
	}
}

func (f *FakeGateway) Enabled() bool {
	return !f.Disabled
}

func (f *FakeGateway) next(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s_%d", prefix, f.seq)
}

func (f *FakeGateway) check() error {
	if f.Disabled {
		return ErrDisabled
	}
	return f.Err
}

func (f *FakeGateway) CreateCustomer(_ context.Context, customer Customer) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return "", err
	}
	id := f.next("cus")
	f.Customers[id] = customer
	return id, nil
}

func (f *FakeGateway) CreatePaymentIntent(_ context.Context, p IntentParams) (*Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	id := f.next("pi")
	return &Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Amount:       p.Amount,
		Currency:     p.Currency,
		Status:       "requires_payment_method",
	}, nil
}

func (f *FakeGateway) CreateSetupIntent(_ context.Context, _ string) (*SetupIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	id := f.next("seti")
	return &SetupIntent{ID: id, ClientSecret: id + "_secret"}, nil
}

func (f *FakeGateway) ListPaymentMethods(_ context.Context, customerID string) ([]Method, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	return append([]Method{}, f.Methods[customerID]...), nil
}

func (f *FakeGateway) AttachPaymentMethod(_ context.Context, customerID, paymentMethodID string) (*Method, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	m := Method{ID: paymentMethodID, Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: 2030}
	f.Methods[customerID] = append(f.Methods[customerID], m)
	return &m, nil
}

func (f *FakeGateway) CreateSubscription(_ context.Context, _ string, priceID string) (*Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	end := now.AddDate(0, 1, 0)
	sub := &Subscription{
		ID:                 f.next("sub"),
		PriceID:            priceID,
		Status:             "incomplete",
		CurrentPeriodStart: &now,
		CurrentPeriodEnd:   &end,
	}
	f.Subscriptions[sub.ID] = sub
	copied := *sub
	return &copied, nil
}

func (f *FakeGateway) CancelSubscription(_ context.Context, subscriptionID string) (*Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	sub, ok := f.Subscriptions[subscriptionID]
	if !ok {
		return nil, fmt.Errorf("no such subscription: %s", subscriptionID)
	}
	now := time.Now().UTC()
	sub.Status = "canceled"
	sub.CanceledAt = &now
	copied := *sub
	return &copied, nil
}
