// internal/geocode/service.go
package geocode

import (
	"context"

	"canibuildit/internal/clients/linz"
	"canibuildit/internal/clients/places"
	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/common/metrics"
	"canibuildit/internal/models"
)

// Source identifies where a geocode result came from.
const (
	SourceLINZ     = "linz"
	SourceFallback = "fallback"
)

const maxResults = 5

// Searcher is the primary geocoder.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]linz.Address, error)
}

// Suggester provides address autocomplete.
type Suggester interface {
	Autocomplete(ctx context.Context, input string) ([]places.Suggestion, error)
}

// Result is one resolved address with its provenance.
type Result struct {
	Address     string             `json:"address"`
	Coordinates models.Coordinates `json:"coordinates"`
}

// Response is the geocode endpoint payload. Source is "fallback" when the
// static list served the request, so callers can see degraded results.
type Response struct {
	Results []Result `json:"results"`
	Source  string   `json:"source"`
}

type Service struct {
	searcher  Searcher
	suggester Suggester
	logger    logger.Logger
}

func NewService(searcher Searcher, suggester Suggester, log logger.Logger) *Service {
	return &Service{
		searcher:  searcher,
		suggester: suggester,
		logger: log.With(map[string]interface{}{
			"component": "geocode",
		}),
	}
}

// Resolve geocodes a query via LINZ, falling back to the static address list
// when the upstream fails. Fallback use is logged and flagged, never silent.
func (s *Service) Resolve(ctx context.Context, query string) (*Response, error) {
	addresses, err := s.searcher.Search(ctx, query, maxResults)
	if err != nil {
		return s.resolveFallback(query, err)
	}

	if len(addresses) == 0 {
		return nil, apperrors.NewAddressNotFoundError(query)
	}

	results := make([]Result, 0, len(addresses))
	for _, a := range addresses {
		results = append(results, Result{
			Address:     a.FullAddress,
			Coordinates: a.Coordinates,
		})
	}
	return &Response{Results: results, Source: SourceLINZ}, nil
}

func (s *Service) resolveFallback(query string, upstreamErr error) (*Response, error) {
	matches := matchFallback(query)
	if len(matches) == 0 {
		// Nothing to degrade to; surface the upstream error.
		return nil, upstreamErr
	}

	metrics.GeocodeFallbacks.Inc()
	s.logger.Warn("serving geocode from static fallback list", map[string]interface{}{
		"query":   query,
		"matches": len(matches),
		"error":   upstreamErr.Error(),
	})

	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, Result{
			Address:     m.Address,
			Coordinates: m.Coordinates,
		})
	}
	return &Response{Results: results, Source: SourceFallback}, nil
}

// Suggest proxies address autocomplete. Suggestion failures degrade to an
// empty list; the intake form works without autocomplete.
func (s *Service) Suggest(ctx context.Context, input string) ([]places.Suggestion, error) {
	suggestions, err := s.suggester.Autocomplete(ctx, input)
	if err != nil {
		s.logger.Warn("autocomplete unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		return []places.Suggestion{}, nil
	}
	return suggestions, nil
}
