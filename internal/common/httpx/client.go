// internal/common/httpx/client.go
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrUpstreamTimeout is returned when the call deadline expires before a
	// successful response arrives.
	ErrUpstreamTimeout = errors.New("UPSTREAM_TIMEOUT")
	// ErrUpstreamFailed is returned for non-timeout upstream failures after
	// retries are exhausted.
	ErrUpstreamFailed = errors.New("UPSTREAM_FAILED")
)

// Client is a thin wrapper over net/http with retry and backoff for the
// external APIs the service delegates to.
type Client struct {
	httpClient *http.Client
	maxRetries int
}

func NewClient(timeout time.Duration, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: maxRetries,
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}

// PostJSON sends payload as JSON and decodes the response body into out.
// Non-2xx statuses are retried with exponential backoff up to maxRetries.
func (c *Client) PostJSON(ctx context.Context, rawURL string, headers map[string]string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshal request: %v", ErrUpstreamFailed, err)
	}

	build := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewBuffer(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	}

	return c.doWithRetries(ctx, build, out)
}

// GetJSON issues a GET with query parameters and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, headers map[string]string, out interface{}) error {
	full := rawURL
	if len(params) > 0 {
		if strings.Contains(rawURL, "?") {
			full = rawURL + "&" + params.Encode()
		} else {
			full = rawURL + "?" + params.Encode()
		}
	}

	build := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	}

	return c.doWithRetries(ctx, build, out)
}

// PostForm sends form-encoded data (the Stripe API shape) and decodes the
// JSON response into out.
func (c *Client) PostForm(ctx context.Context, rawURL string, headers map[string]string, form url.Values, out interface{}) error {
	encoded := form.Encode()

	build := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	}

	return c.doWithRetries(ctx, build, out)
}

// doWithRetries rebuilds the request each attempt so the body is re-readable.
func (c *Client) doWithRetries(ctx context.Context, build func() (*http.Request, error), out interface{}) error {
	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ErrUpstreamTimeout
			}
		}

		req, err := build()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
		}

		resp, lastErr = c.httpClient.Do(req)

		// If the context expired during the request, return timeout immediately.
		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return ErrUpstreamTimeout
		}

		if lastErr == nil {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				break
			}
			// Client errors are not retryable; surface them with the body.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
				resp.Body.Close()
				return fmt.Errorf("%w: status %d: %s", ErrUpstreamFailed, resp.StatusCode, string(body))
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ErrUpstreamTimeout
		}
		return fmt.Errorf("%w: %v", ErrUpstreamFailed, lastErr)
	}

	if resp == nil {
		return fmt.Errorf("%w: no successful response after retries", ErrUpstreamFailed)
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode error: %v", ErrUpstreamFailed, err)
	}
	return nil
}
