package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"gorm.io/gorm"

	"simbi_backend/internal/jobs"
	"simbi_backend/internal/services"
	"simbi_backend/internal/services/payment"
	"simbi_backend/internal/testutil"
)

type publishedEvent struct {
	Target string
	Event  string
	Data   interface{}
}

// recordingPublisher stands in for the WebSocket hub.
type recordingPublisher struct {
	mu         sync.Mutex
	online     map[string]bool
	broadcasts []publishedEvent
	direct     []publishedEvent
}

func newRecordingPublisher(online ...string) *recordingPublisher {
	p := &recordingPublisher{online: map[string]bool{}}
	for _, id := range online {
		p.online[id] = true
	}
	return p
}

func (p *recordingPublisher) BroadcastToConversation(conversationID, event string, data interface{}, _ string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.broadcasts = append(p.broadcasts, publishedEvent{Target: conversationID, Event: event, Data: data})
}

func (p *recordingPublisher) SendToUser(userID, event string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.direct = append(p.direct, publishedEvent{Target: userID, Event: event, Data: data})
}

func (p *recordingPublisher) IsUserOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online[userID]
}

func (p *recordingPublisher) GetActiveUsers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.online))
	for id := range p.online {
		out = append(out, id)
	}
	return out
}

func (p *recordingPublisher) sentTo(userID, event string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.direct {
		if e.Target == userID && e.Event == event {
			n++
		}
	}
	return n
}

func (p *recordingPublisher) broadcastEvents() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.broadcasts))
	for _, e := range p.broadcasts {
		out = append(out, e.Event)
	}
	return out
}

type recordingDispatcher struct {
	mu            sync.Mutex
	welcome       []jobs.WelcomeEmailPayload
	notifications []jobs.NotificationEmailPayload
}

func (d *recordingDispatcher) EnqueueWelcomeEmail(_ context.Context, p jobs.WelcomeEmailPayload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.welcome = append(d.welcome, p)
	return nil
}

func (d *recordingDispatcher) EnqueueNotificationEmail(_ context.Context, p jobs.NotificationEmailPayload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifications = append(d.notifications, p)
	return nil
}

func (d *recordingDispatcher) Close() error { return nil }

func (d *recordingDispatcher) notificationEmails() []jobs.NotificationEmailPayload {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]jobs.NotificationEmailPayload(nil), d.notifications...)
}

// fakeGateway records calls and hands out sequential ids.
type fakeGateway struct {
	mu        sync.Mutex
	disabled  bool
	fail      error
	customers int
	intents   []payment.IntentParams
	seq       int
}

func (g *fakeGateway) next(prefix string) string {
	g.seq++
	return fmt.Sprintf("%s_%d", prefix, g.seq)
}

func (g *fakeGateway) Enabled() bool { return !g.disabled }

func (g *fakeGateway) CreateCustomer(_ context.Context, _ payment.Customer) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return "", g.fail
	}
	g.customers++
	return g.next("cus"), nil
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, params payment.IntentParams) (*payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return nil, g.fail
	}
	g.intents = append(g.intents, params)
	id := g.next("pi")
	return &payment.Intent{ID: id, ClientSecret: id + "_secret", Amount: params.Amount, Currency: params.Currency, Status: "requires_payment_method"}, nil
}

func (g *fakeGateway) CreateSetupIntent(_ context.Context, _ string) (*payment.SetupIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.next("seti")
	return &payment.SetupIntent{ID: id, ClientSecret: id + "_secret"}, nil
}

func (g *fakeGateway) ListPaymentMethods(_ context.Context, _ string) ([]payment.Method, error) {
	return []payment.Method{{ID: "pm_1", Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: 2030}}, nil
}

func (g *fakeGateway) AttachPaymentMethod(_ context.Context, _, paymentMethodID string) (*payment.Method, error) {
	return &payment.Method{ID: paymentMethodID, Brand: "visa", Last4: "4242"}, nil
}

func (g *fakeGateway) CreateSubscription(_ context.Context, _, priceID string) (*payment.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return &payment.Subscription{ID: g.next("sub"), PriceID: priceID, Status: "active"}, nil
}

func (g *fakeGateway) CancelSubscription(_ context.Context, subscriptionID string) (*payment.Subscription, error) {
	return &payment.Subscription{ID: subscriptionID, Status: "canceled"}, nil
}

const testWebhookSecret = "whsec_test_secret"

type fixture struct {
	db         *gorm.DB
	svc        *services.ServiceContainer
	realtime   *recordingPublisher
	dispatcher *recordingDispatcher
	gateway    *fakeGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:         testutil.NewTestDB(t),
		realtime:   newRecordingPublisher(),
		dispatcher: &recordingDispatcher{},
		gateway:    &fakeGateway{},
	}
	f.svc = services.NewServiceContainer(services.NewRepositories(), services.Dependencies{
		Realtime:      f.realtime,
		Dispatcher:    f.dispatcher,
		Gateway:       f.gateway,
		Currency:      "usd",
		WebhookSecret: testWebhookSecret,
	})
	return f
}
