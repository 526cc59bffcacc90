// internal/geocode/service_test.go
package geocode

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canibuildit/internal/clients/linz"
	"canibuildit/internal/clients/places"
	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/models"
)

type fakeSearcher struct {
	addresses []linz.Address
	err       error
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ int) ([]linz.Address, error) {
	return f.addresses, f.err
}

type fakeSuggester struct {
	suggestions []places.Suggestion
	err         error
}

func (f *fakeSuggester) Autocomplete(_ context.Context, _ string) ([]places.Suggestion, error) {
	return f.suggestions, f.err
}

func TestService_ResolveUpstream(t *testing.T) {
	svc := NewService(&fakeSearcher{
		addresses: []linz.Address{
			{FullAddress: "12 Ponsonby Road, Ponsonby, Auckland", Coordinates: models.Coordinates{Lat: -36.85, Lng: 174.74}},
		},
	}, &fakeSuggester{}, logger.NewTestLogger(t))

	resp, err := svc.Resolve(context.Background(), "12 Ponsonby")
	require.NoError(t, err)
	assert.Equal(t, SourceLINZ, resp.Source)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "12 Ponsonby Road, Ponsonby, Auckland", resp.Results[0].Address)
}

func TestService_ResolveNoMatchIsNotFound(t *testing.T) {
	svc := NewService(&fakeSearcher{addresses: []linz.Address{}}, &fakeSuggester{}, logger.NewTestLogger(t))

	_, err := svc.Resolve(context.Background(), "nowhere at all")
	require.Error(t, err)

	stdErr, ok := err.(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeAddressNotFound, stdErr.Code)
}

func TestService_ResolveFallbackOnUpstreamFailure(t *testing.T) {
	svc := NewService(&fakeSearcher{
		err: apperrors.NewGeocodeFailedError(fmt.Errorf("connection refused")),
	}, &fakeSuggester{}, logger.NewTestLogger(t))

	resp, err := svc.Resolve(context.Background(), "Queen Street")
	require.NoError(t, err)

	// Degraded results are flagged, never silent.
	assert.Equal(t, SourceFallback, resp.Source)
	require.NotEmpty(t, resp.Results)
	assert.Contains(t, resp.Results[0].Address, "Queen Street")
}

func TestService_ResolveFallbackMiss(t *testing.T) {
	upstreamErr := apperrors.NewGeocodeTimeoutError()
	svc := NewService(&fakeSearcher{err: upstreamErr}, &fakeSuggester{}, logger.NewTestLogger(t))

	_, err := svc.Resolve(context.Background(), "zzzzqqq")
	require.Error(t, err)

	// The original upstream error surfaces when the fallback has no match.
	stdErr, ok := err.(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeGeocodeTimeout, stdErr.Code)
}

func TestService_SuggestDegradesToEmpty(t *testing.T) {
	svc := NewService(&fakeSearcher{}, &fakeSuggester{
		err: apperrors.NewGeocodeFailedError(fmt.Errorf("quota exceeded")),
	}, logger.NewTestLogger(t))

	suggestions, err := svc.Suggest(context.Background(), "12 Pons")
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestService_Suggest(t *testing.T) {
	svc := NewService(&fakeSearcher{}, &fakeSuggester{
		suggestions: []places.Suggestion{
			{Description: "12 Ponsonby Road, Auckland", PlaceID: "abc"},
		},
	}, logger.NewTestLogger(t))

	suggestions, err := svc.Suggest(context.Background(), "12 Pons")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "abc", suggestions[0].PlaceID)
}

func TestMatchFallback(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		matched bool
	}{
		{"city token", "Wellington", true},
		{"street token", "lambton quay", true},
		{"case insensitive", "CATHEDRAL square", true},
		{"no match", "zzzzqqq", false},
		{"empty query", "", false},
		{"short tokens ignored", "at of in", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := matchFallback(tt.query)
			assert.Equal(t, tt.matched, len(matches) > 0)
		})
	}
}
