// internal/report/analysis.go
package report

import (
	"context"

	"canibuildit/internal/clients/geomaps"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/geocode"
	"canibuildit/internal/models"
)

// Geocoder resolves a free-text address to coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, query string) (*geocode.Response, error)
}

// CouncilLookup fetches the planning summary for a point.
type CouncilLookup interface {
	Lookup(ctx context.Context, coords models.Coordinates) (*geomaps.PlanningSummary, error)
}

// Analyzer aggregates geocoding and council planning data into the flat
// PropertyReportData bag the report and analysis endpoints serve.
type Analyzer struct {
	geocoder Geocoder
	council  CouncilLookup
	logger   logger.Logger
}

func NewAnalyzer(geocoder Geocoder, council CouncilLookup, log logger.Logger) *Analyzer {
	return &Analyzer{
		geocoder: geocoder,
		council:  council,
		logger: log.With(map[string]interface{}{
			"component": "analysis",
		}),
	}
}

// Analyze resolves the address and assembles the planning picture.
func (a *Analyzer) Analyze(ctx context.Context, address string) (*models.PropertyReportData, error) {
	resolved, err := a.geocoder.Resolve(ctx, address)
	if err != nil {
		return nil, err
	}

	best := resolved.Results[0]
	summary, err := a.council.Lookup(ctx, best.Coordinates)
	if err != nil {
		return nil, err
	}

	data := &models.PropertyReportData{
		Address:          best.Address,
		Zoning:           summary.Zoning,
		ZoneDescription:  summary.ZoneDescription,
		Overlays:         summary.Overlays,
		Hazards:          summary.Hazards,
		ClimateZone:      climateZoneFor(best.Coordinates.Lat),
		WindZone:         windZoneFor(summary),
		FloodProne:       summary.FloodProne,
		CoastalErosion:   summary.CoastalErosion,
		HeritageListed:   summary.HeritageListed,
		WaterConnected:   summary.WaterConnected,
		WastewaterNearby: summary.WastewaterNearby,
		StormwaterNearby: summary.StormwaterNearby,
		ParcelID:         summary.ParcelID,
	}

	a.logger.Info("property analysis completed", map[string]interface{}{
		"address": best.Address,
		"zoning":  summary.Zoning,
		"source":  resolved.Source,
	})
	return data, nil
}

// climateZoneFor maps latitude to the NZS 3604 climate zone bands.
func climateZoneFor(lat float64) string {
	switch {
	case lat > -38.0:
		return "Zone 1"
	case lat > -42.0:
		return "Zone 2"
	default:
		return "Zone 3"
	}
}

// windZoneFor is a coarse default; exposed coastal sites rate higher.
func windZoneFor(summary *geomaps.PlanningSummary) string {
	if summary.CoastalErosion {
		return "Very High"
	}
	return "High"
}
