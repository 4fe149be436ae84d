package services_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"

	"simbi_backend/internal/models"
	"simbi_backend/internal/services"
	"simbi_backend/internal/services/dto"
	"simbi_backend/internal/services/payment"
	"simbi_backend/internal/testutil"
	"simbi_backend/pkg/apperrors"
)

func TestCreatePaymentIntent_AmountBounds(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, &models.User{}, "")

	cases := []struct {
		amount int64
		ok     bool
	}{
		{49, false},
		{50, true},
		{99999999, true},
		{100000000, false},
	}
	for _, tc := range cases {
		resp, err := f.svc.PaymentService.CreatePaymentIntent(f.db, user.ID, &dto.CreatePaymentIntentRequest{Amount: tc.amount})
		if !tc.ok {
			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr), "amount %d", tc.amount)
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
			continue
		}
		require.NoError(t, err, "amount %d", tc.amount)
		assert.Equal(t, tc.amount, resp.Amount)
		assert.Equal(t, "usd", resp.Currency)
		assert.NotEmpty(t, resp.ClientSecret)
	}

	assert.Equal(t, 1, f.gateway.customers, "customer is created once and reused")

	list, err := f.svc.PaymentService.GetTransactions(f.db, user.ID, 1, 0)
	require.NoError(t, err)
	assert.Len(t, list.Transactions, 2)
	for _, tx := range list.Transactions {
		assert.Equal(t, models.PaymentStatusPending, tx.Status)
	}
}

func TestCreatePaymentIntent_CurrencyLowercased(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, &models.User{}, "")

	resp, err := f.svc.PaymentService.CreatePaymentIntent(f.db, user.ID, &dto.CreatePaymentIntentRequest{Amount: 500, Currency: "EUR"})
	require.NoError(t, err)
	assert.Equal(t, "eur", resp.Currency)
	require.Len(t, f.gateway.intents, 1)
	assert.Equal(t, user.ID, f.gateway.intents[0].Metadata["userId"])
}

func TestPayments_GatewayDisabled(t *testing.T) {
	f := newFixture(t)
	f.gateway.disabled = true
	user := testutil.CreateUser(t, f.db, &models.User{}, "")

	_, err := f.svc.PaymentService.CreatePaymentIntent(f.db, user.ID, &dto.CreatePaymentIntentRequest{Amount: 100})
	assert.ErrorIs(t, err, apperrors.ErrPaymentGatewayDisabled)

	_, err = f.svc.PaymentService.GetPaymentMethods(f.db, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrPaymentGatewayDisabled)

	_, err = f.svc.PaymentService.CreateSubscription(f.db, user.ID, &dto.CreateSubscriptionRequest{PriceID: "price_1"})
	assert.ErrorIs(t, err, apperrors.ErrPaymentGatewayDisabled)
}

func TestPayments_ProviderFailure(t *testing.T) {
	f := newFixture(t)
	f.gateway.fail = errors.New("card network down")
	user := testutil.CreateUser(t, f.db, &models.User{}, "")

	_, err := f.svc.PaymentService.CreatePaymentIntent(f.db, user.ID, &dto.CreatePaymentIntentRequest{Amount: 100})
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadGateway, appErr.HTTPCode)
}

func TestGetPaymentMethods_NoCustomerYet(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, &models.User{}, "")

	methods, err := f.svc.PaymentService.GetPaymentMethods(f.db, user.ID)
	require.NoError(t, err)
	assert.Empty(t, methods)
	assert.Zero(t, f.gateway.customers)
}

func TestSubscriptions_CancelOnlyOwn(t *testing.T) {
	f := newFixture(t)
	owner := testutil.CreateUser(t, f.db, &models.User{}, "")
	other := testutil.CreateUser(t, f.db, &models.User{}, "")

	sub, err := f.svc.PaymentService.CreateSubscription(f.db, owner.ID, &dto.CreateSubscriptionRequest{
		PriceID: "price_pro", PaymentMethodID: "pm_1",
	})
	require.NoError(t, err)
	assert.Equal(t, "active", sub.Status)

	_, err = f.svc.PaymentService.CancelSubscription(f.db, other.ID, sub.SubscriptionID)
	assert.ErrorIs(t, err, apperrors.ErrSubscriptionNotFound)

	canceled, err := f.svc.PaymentService.CancelSubscription(f.db, owner.ID, sub.SubscriptionID)
	require.NoError(t, err)
	assert.Equal(t, "canceled", canceled.Status)
}

func signedEvent(t *testing.T, eventType, intentID string) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":     "evt_" + intentID,
		"object": "event",
		"type":   eventType,
		"data": map[string]interface{}{
			"object": map[string]interface{}{"id": intentID, "object": "payment_intent", "status": "succeeded"},
		},
	})
	require.NoError(t, err)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: testWebhookSecret})
	return payload, signed.Header
}

func TestHandleWebhook_SettlesTransaction(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, &models.User{EmailNotifications: true}, "")
	intent, err := f.svc.PaymentService.CreatePaymentIntent(f.db, user.ID, &dto.CreatePaymentIntentRequest{Amount: 1250})
	require.NoError(t, err)

	payload, sig := signedEvent(t, payment.EventIntentSucceeded, intent.PaymentIntentID)
	require.NoError(t, f.svc.PaymentService.HandleWebhook(f.db, payload, sig))

	list, err := f.svc.PaymentService.GetTransactions(f.db, user.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, list.Transactions, 1)
	assert.Equal(t, models.PaymentStatusSucceeded, list.Transactions[0].Status)

	var notes []models.Notification
	require.NoError(t, f.db.Where("user_id = ?", user.ID).Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationPaymentSucceeded, notes[0].Type)
	assert.Contains(t, notes[0].Content, "12.50 USD")

	// a redelivery and a late failure leave the settled payment alone
	require.NoError(t, f.svc.PaymentService.HandleWebhook(f.db, payload, sig))
	payload, sig = signedEvent(t, payment.EventIntentFailed, intent.PaymentIntentID)
	require.NoError(t, f.svc.PaymentService.HandleWebhook(f.db, payload, sig))

	list, err = f.svc.PaymentService.GetTransactions(f.db, user.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSucceeded, list.Transactions[0].Status)
	var count int64
	require.NoError(t, f.db.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestHandleWebhook_PaymentFailed(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, &models.User{}, "")
	intent, err := f.svc.PaymentService.CreatePaymentIntent(f.db, user.ID, &dto.CreatePaymentIntentRequest{Amount: 500})
	require.NoError(t, err)

	payload, sig := signedEvent(t, payment.EventIntentFailed, intent.PaymentIntentID)
	require.NoError(t, f.svc.PaymentService.HandleWebhook(f.db, payload, sig))

	list, err := f.svc.PaymentService.GetTransactions(f.db, user.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, list.Transactions[0].Status)

	var count int64
	require.NoError(t, f.db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHandleWebhook_Rejections(t *testing.T) {
	f := newFixture(t)

	payload, sig := signedEvent(t, payment.EventIntentSucceeded, "pi_unknown")
	assert.NoError(t, f.svc.PaymentService.HandleWebhook(f.db, payload, sig), "unknown intents are acknowledged")

	err := f.svc.PaymentService.HandleWebhook(f.db, payload, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, apperrors.ErrInvalidWebhookSignature)

	tampered := []byte(strings.Replace(string(payload), "pi_unknown", "pi_other", 1))
	err = f.svc.PaymentService.HandleWebhook(f.db, tampered, sig)
	assert.ErrorIs(t, err, apperrors.ErrInvalidWebhookSignature)

	other, otherSig := signedEvent(t, "customer.created", "cus_1")
	assert.NoError(t, f.svc.PaymentService.HandleWebhook(f.db, other, otherSig))

	unconfigured := services.NewPaymentService(f.gateway, services.NewRepositories().Payment,
		services.NewRepositories().User, nil, "usd", "")
	err = unconfigured.HandleWebhook(f.db, payload, sig)
	assert.ErrorIs(t, err, apperrors.ErrPaymentGatewayDisabled)
}
