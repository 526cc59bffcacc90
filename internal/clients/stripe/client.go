// Package stripe is a minimal client for the two Stripe surfaces the
// checkout flow uses: hosted checkout sessions and webhook verification.
package stripe

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/httpx"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/common/metrics"
)

type Config struct {
	BaseURL       string
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	Timeout       time.Duration
}

type Client struct {
	http          *httpx.Client
	baseURL       string
	secretKey     string
	webhookSecret string
	successURL    string
	cancelURL     string
	logger        logger.Logger
}

func New(cfg Config, log logger.Logger) *Client {
	return &Client{
		// Session creation is not retried: a retry could mint a duplicate
		// session for the same purchase.
		http:          httpx.NewClient(cfg.Timeout, 0),
		baseURL:       cfg.BaseURL,
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		logger: log.With(map[string]interface{}{
			"client": "stripe",
		}),
	}
}

// SessionParams describes one hosted checkout session.
type SessionParams struct {
	AmountCents   int64
	Currency      string
	ProductName   string
	CustomerEmail string
	// ClientReferenceID ties the session back to our purchase record.
	ClientReferenceID string
}

// Session is the subset of the Stripe session object the flow reads.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckoutSession creates a hosted checkout session and returns its
// redirect URL. The caller must not respond with a navigation target unless
// this succeeds.
func (c *Client) CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error) {
	start := time.Now()

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", c.successURL)
	form.Set("cancel_url", c.cancelURL)
	form.Set("client_reference_id", params.ClientReferenceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", params.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", params.ProductName)
	if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}

	var session Session
	err := c.http.PostForm(ctx, c.baseURL+"/checkout/sessions", map[string]string{
		"Authorization": "Bearer " + c.secretKey,
	}, form, &session)

	metrics.UpstreamCallDuration.WithLabelValues("stripe").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("stripe", "error").Inc()
		c.logger.Error("checkout session creation failed", map[string]interface{}{
			"purchaseId": params.ClientReferenceID,
			"error":      err.Error(),
		})
		return nil, apperrors.NewCheckoutSessionFailedError(err)
	}

	if session.URL == "" {
		return nil, apperrors.NewCheckoutSessionFailedError(
			errors.New("session response carried no redirect url"))
	}

	metrics.UpstreamCallsTotal.WithLabelValues("stripe", "success").Inc()
	return &session, nil
}
