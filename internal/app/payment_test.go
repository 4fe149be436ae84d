package app_test

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"

	"simbi_backend/internal/config"
	"simbi_backend/internal/models"
)

func postWebhook(t *testing.T, ts *testServer, payload []byte, signature string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/api/v1/payments/webhook", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signature)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestPaymentWebhook(t *testing.T) {
	const secret = "whsec_integration"
	ts := newTestServer(t, func(cfg *config.Config) { cfg.Stripe.WebhookSecret = secret })
	user, token := ts.createUser(t, models.UserRoleUser)
	require.NoError(t, ts.DB.Create(&models.PaymentTransaction{
		UserID: user.ID, PaymentIntentID: "pi_live_1", Amount: 900, Currency: "usd", Status: models.PaymentStatusPending,
	}).Error)

	payload := []byte(`{"id":"evt_9","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_live_1","object":"payment_intent"}}}`)

	status, _ := postWebhook(t, ts, payload, "t=1,v1=00")
	assert.Equal(t, http.StatusBadRequest, status)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: secret})
	status, body := postWebhook(t, ts, payload, signed.Header)
	require.Equal(t, http.StatusOK, status, body)

	res, raw := ts.SendRequest(t, http.MethodGet, "/api/v1/payments/transactions", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var list struct {
		Transactions []models.PaymentTransaction `json:"transactions"`
	}
	decode(t, raw, &list)
	require.Len(t, list.Transactions, 1)
	assert.Equal(t, models.PaymentStatusSucceeded, list.Transactions[0].Status)
}

func TestPaymentWebhook_NotConfigured(t *testing.T) {
	ts := newTestServer(t)
	status, _ := postWebhook(t, ts, []byte(`{}`), "t=1,v1=00")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}
