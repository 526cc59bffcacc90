// internal/clients/stripe/client_test.go
package stripe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
)

func newTestStripe(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(Config{
		BaseURL:       server.URL,
		SecretKey:     "sk_test_123",
		WebhookSecret: "whsec_test",
		SuccessURL:    "https://example.com/success",
		CancelURL:     "https://example.com/cancel",
		Timeout:       2 * time.Second,
	}, logger.NewTestLogger(t))
}

func TestClient_CreateCheckoutSession(t *testing.T) {
	var gotForm map[string][]string

	client := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(Session{ID: "cs_123", URL: "https://checkout.stripe.com/pay/cs_123"})
	})

	session, err := client.CreateCheckoutSession(context.Background(), SessionParams{
		AmountCents:       4900,
		Currency:          "nzd",
		ProductName:       "Premium Property Report",
		CustomerEmail:     "jo@example.com",
		ClientReferenceID: "purchase-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "cs_123", session.ID)
	assert.NotEmpty(t, session.URL)

	assert.Equal(t, []string{"payment"}, gotForm["mode"])
	assert.Equal(t, []string{"4900"}, gotForm["line_items[0][price_data][unit_amount]"])
	assert.Equal(t, []string{"nzd"}, gotForm["line_items[0][price_data][currency]"])
	assert.Equal(t, []string{"purchase-1"}, gotForm["client_reference_id"])
}

func TestClient_CreateCheckoutSessionRejectsMissingURL(t *testing.T) {
	client := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Session{ID: "cs_123"})
	})

	_, err := client.CreateCheckoutSession(context.Background(), SessionParams{
		AmountCents: 4900,
		Currency:    "nzd",
	})
	require.Error(t, err)

	stdErr, ok := err.(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeCheckoutSessionFailed, stdErr.Code)
}

func TestClient_CreateCheckoutSessionUpstreamError(t *testing.T) {
	client := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error": {"message": "card declined"}}`))
	})

	_, err := client.CreateCheckoutSession(context.Background(), SessionParams{
		AmountCents: 4900,
		Currency:    "nzd",
	})
	require.Error(t, err)
}

func TestVerifyWebhook(t *testing.T) {
	client := newTestStripe(t, nil)

	payload := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_123", "client_reference_id": "purchase-1", "payment_status": "paid"}}
	}`)
	now := time.Now()

	event, err := client.VerifyWebhook(payload, SignPayload("whsec_test", payload, now), now)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, "checkout.session.completed", event.Type)
	assert.Equal(t, "purchase-1", event.Data.Object.ClientReferenceID)
}

func TestVerifyWebhook_BadSignature(t *testing.T) {
	client := newTestStripe(t, nil)

	payload := []byte(`{"id": "evt_1"}`)
	now := time.Now()

	_, err := client.VerifyWebhook(payload, SignPayload("whsec_wrong", payload, now), now)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = client.VerifyWebhook(payload, "not-a-header", now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhook_StaleTimestamp(t *testing.T) {
	client := newTestStripe(t, nil)

	payload := []byte(`{"id": "evt_1"}`)
	signed := time.Now().Add(-time.Hour)

	_, err := client.VerifyWebhook(payload, SignPayload("whsec_test", payload, signed), time.Now())
	assert.ErrorIs(t, err, ErrStaleTimestamp)
}
