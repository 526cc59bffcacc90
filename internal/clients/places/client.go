// Package places wraps the Google Places autocomplete API used for address
// suggestions in the intake form.
package places

import (
	"context"
	"net/url"
	"time"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/httpx"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/common/metrics"
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	http    *httpx.Client
	baseURL string
	apiKey  string
	logger  logger.Logger
}

func New(cfg Config, log logger.Logger) *Client {
	return &Client{
		// Autocomplete is interactive; a failed call is not worth retrying.
		http:    httpx.NewClient(cfg.Timeout, 0),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger: log.With(map[string]interface{}{
			"client": "places",
		}),
	}
}

// Suggestion is one autocomplete candidate.
type Suggestion struct {
	Description string `json:"description"`
	PlaceID     string `json:"placeId"`
}

type autocompleteResponse struct {
	Predictions []struct {
		Description string `json:"description"`
		PlaceID     string `json:"place_id"`
	} `json:"predictions"`
	Status string `json:"status"`
}

// Autocomplete returns NZ-restricted address suggestions for a partial input.
func (c *Client) Autocomplete(ctx context.Context, input string) ([]Suggestion, error) {
	start := time.Now()

	params := url.Values{}
	params.Set("input", input)
	params.Set("components", "country:nz")
	params.Set("types", "address")
	params.Set("key", c.apiKey)

	var resp autocompleteResponse
	err := c.http.GetJSON(ctx, c.baseURL+"/autocomplete/json", params, nil, &resp)

	metrics.UpstreamCallDuration.WithLabelValues("places").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("places", "error").Inc()
		return nil, apperrors.NewGeocodeFailedError(err)
	}

	metrics.UpstreamCallsTotal.WithLabelValues("places", "success").Inc()

	suggestions := make([]Suggestion, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		suggestions = append(suggestions, Suggestion{
			Description: p.Description,
			PlaceID:     p.PlaceID,
		})
	}
	return suggestions, nil
}
