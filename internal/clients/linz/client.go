// Package linz wraps the LINZ address search API used for geocoding.
package linz

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
	"canibuildit/internal/models"
)

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

type Client struct {
	http    *httpx.Client
	baseURL string
	apiKey  string
	logger  logger.Logger
}

func New(cfg Config, log logger.Logger) *Client {
	return &Client{
		http:    httpx.NewClient(cfg.Timeout, cfg.MaxRetries),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger: log.With(map[string]interface{}{
			"client": "linz",
		}),
	}
}

// Address is one geocoded match.
type Address struct {
	FullAddress string             `json:"fullAddress"`
	Coordinates models.Coordinates `json:"coordinates"`
}

type searchResponse struct {
	Addresses []struct {
		FullAddress string  `json:"full_address"`
		Lat         float64 `json:"lat"`
		Lon         float64 `json:"lon"`
	} `json:"addresses"`
}

// Search geocodes a free-text address query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Address, error) {
	start := time.Now()

	params := url.Values{}
	params.Set("q", query)
	params.Set("max", strconv.Itoa(limit))

	var resp searchResponse
	err := c.http.GetJSON(ctx, c.baseURL+"/addresses", params, map[string]string{
		"Authorization": "key " + c.apiKey,
	}, &resp)

	metrics.UpstreamCallDuration.WithLabelValues("linz").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("linz", "error").Inc()
		c.logger.Warn("address search failed", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		if errors.Is(err, httpx.ErrUpstreamTimeout) {
			return nil, apperrors.NewGeocodeTimeoutError()
		}
		return nil, apperrors.NewGeocodeFailedError(err)
	}

	metrics.UpstreamCallsTotal.WithLabelValues("linz", "success").Inc()

	addresses := make([]Address, 0, len(resp.Addresses))
	for _, a := range resp.Addresses {
		addresses = append(addresses, Address{
			FullAddress: a.FullAddress,
			Coordinates: models.Coordinates{Lat: a.Lat, Lng: a.Lon},
		})
	}
	return addresses, nil
}
