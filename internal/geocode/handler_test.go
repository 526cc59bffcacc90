// internal/geocode/handler_test.go
package geocode

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canibuildit/internal/clients/linz"
	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/models"
)

func newTestGeocodeRouter(t *testing.T, searcher Searcher, suggester Suggester) *mux.Router {
	t.Helper()

	log := logger.NewTestLogger(t)
	handler := NewHandler(NewService(searcher, suggester, log), apperrors.NewHTTPResponder(log), log)

	r := mux.NewRouter()
	r.HandleFunc("/api/geocode", handler.Resolve).Methods(http.MethodGet)
	r.HandleFunc("/api/geocode/suggest", handler.Suggest).Methods(http.MethodGet)
	return r
}

func TestHandler_Resolve(t *testing.T) {
	r := newTestGeocodeRouter(t, &fakeSearcher{
		addresses: []linz.Address{
			{FullAddress: "1 Queen Street, Auckland", Coordinates: models.Coordinates{Lat: -36.84, Lng: 174.76}},
		},
	}, &fakeSuggester{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/geocode?q=1+Queen+Street", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, SourceLINZ, resp.Source)
	require.Len(t, resp.Results, 1)
}

func TestHandler_ResolveMissingQuery(t *testing.T) {
	r := newTestGeocodeRouter(t, &fakeSearcher{}, &fakeSuggester{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/geocode", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_ResolveFallbackFlagged(t *testing.T) {
	r := newTestGeocodeRouter(t, &fakeSearcher{
		err: apperrors.NewGeocodeFailedError(fmt.Errorf("linz down")),
	}, &fakeSuggester{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/geocode?q=Wellington", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, SourceFallback, resp.Source)
}

func TestHandler_ResolveUnknownAddressIs404(t *testing.T) {
	r := newTestGeocodeRouter(t, &fakeSearcher{addresses: []linz.Address{}}, &fakeSuggester{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/geocode?q=zzzzqqq", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_SuggestEmptyInput(t *testing.T) {
	r := newTestGeocodeRouter(t, &fakeSearcher{}, &fakeSuggester{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/geocode/suggest", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}
