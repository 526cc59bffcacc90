// Package geomaps wraps the Auckland Council GeoMaps services used for
// zoning, overlay and hazard lookups.
package geomaps

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/httpx"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/common/metrics"
	"canibuildit/internal/models"
)

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

type Client struct {
	http    *httpx.Client
	baseURL string
	logger  logger.Logger
}

func New(cfg Config, log logger.Logger) *Client {
	return &Client{
		http:    httpx.NewClient(cfg.Timeout, cfg.MaxRetries),
		baseURL: cfg.BaseURL,
		logger: log.With(map[string]interface{}{
			"client": "geomaps",
		}),
	}
}

// PlanningSummary is the council planning picture for one point.
type PlanningSummary struct {
	Zoning           string   `json:"zoning"`
	ZoneDescription  string   `json:"zoneDescription"`
	Overlays         []string `json:"overlays"`
	Hazards          []string `json:"hazards"`
	FloodProne       bool     `json:"floodProne"`
	CoastalErosion   bool     `json:"coastalErosion"`
	HeritageListed   bool     `json:"heritageListed"`
	WaterConnected   bool     `json:"waterConnected"`
	WastewaterNearby bool     `json:"wastewaterNearby"`
	StormwaterNearby bool     `json:"stormwaterNearby"`
	ParcelID         string   `json:"parcelId"`
}

type planningResponse struct {
	Zone struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"zone"`
	Overlays []struct {
		Name string `json:"name"`
	} `json:"overlays"`
	Hazards []struct {
		Type string `json:"type"`
	} `json:"hazards"`
	Infrastructure struct {
		Water      bool `json:"water"`
		Wastewater bool `json:"wastewater"`
		Stormwater bool `json:"stormwater"`
	} `json:"infrastructure"`
	Parcel struct {
		ID string `json:"id"`
	} `json:"parcel"`
}

// hazard types that map onto the report's boolean flags
const (
	hazardFlood          = "flooding"
	hazardCoastalErosion = "coastal_erosion"
	overlayHeritage      = "heritage"
)

// Lookup returns the planning summary for a coordinate pair.
func (c *Client) Lookup(ctx context.Context, coords models.Coordinates) (*PlanningSummary, error) {
	start := time.Now()

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", coords.Lat))
	params.Set("lng", fmt.Sprintf("%f", coords.Lng))

	var resp planningResponse
	err := c.http.GetJSON(ctx, c.baseURL+"/planning/summary", params, nil, &resp)

	metrics.UpstreamCallDuration.WithLabelValues("geomaps").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("geomaps", "error").Inc()
		c.logger.Warn("planning lookup failed", map[string]interface{}{
			"lat":   coords.Lat,
			"lng":   coords.Lng,
			"error": err.Error(),
		})
		if errors.Is(err, httpx.ErrUpstreamTimeout) {
			return nil, apperrors.NewZoningTimeoutError()
		}
		return nil, apperrors.NewZoningLookupFailedError(err)
	}

	metrics.UpstreamCallsTotal.WithLabelValues("geomaps", "success").Inc()

	summary := &PlanningSummary{
		Zoning:           resp.Zone.Code,
		ZoneDescription:  resp.Zone.Description,
		Overlays:         make([]string, 0, len(resp.Overlays)),
		Hazards:          make([]string, 0, len(resp.Hazards)),
		WaterConnected:   resp.Infrastructure.Water,
		WastewaterNearby: resp.Infrastructure.Wastewater,
		StormwaterNearby: resp.Infrastructure.Stormwater,
		ParcelID:         resp.Parcel.ID,
	}

	for _, o := range resp.Overlays {
		summary.Overlays = append(summary.Overlays, o.Name)
		if o.Name == overlayHeritage {
			summary.HeritageListed = true
		}
	}
	for _, hz := range resp.Hazards {
		summary.Hazards = append(summary.Hazards, hz.Type)
		switch hz.Type {
		case hazardFlood:
			summary.FloodProne = true
		case hazardCoastalErosion:
			summary.CoastalErosion = true
		}
	}
	return summary, nil
}
