// internal/scraper/handler_test.go
package scraper

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()

	svc, mock, _ := newScraperFixture(t)
	log := logger.NewTestLogger(t)
	return NewHandler(svc, apperrors.NewHTTPResponder(log), log), mock
}

func postJSON(h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestHandler_CreateSourceRejectsBadPayloads(t *testing.T) {
	h, mock := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing url", `{"name": "Auckland Council"}`},
		{"non-http url", `{"name": "Auckland Council", "url": "ftp://example.com"}`},
		{"empty name", `{"name": "", "url": "https://example.com"}`},
		{"name wrong type", `{"name": 42, "url": "https://example.com"}`},
		{"not JSON", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(h.CreateSource, "/api/data-sources", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		})
	}

	// No INSERT reached the store.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_CreateSourceAcceptsValidPayload(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectExec("INSERT INTO data_sources").WillReturnResult(sqlmock.NewResult(0, 1))

	w := postJSON(h.CreateSource, "/api/data-sources",
		`{"name": "Auckland Council", "url": "https://example.com/props", "kind": "council", "enabled": true}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_CreateRecordRejectsBadPayloads(t *testing.T) {
	h, mock := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing address", `{"suburb": "Ponsonby"}`},
		{"short address", `{"address": "1"}`},
		{"negative land area", `{"address": "12 Ponsonby Road", "landArea": -5}`},
		{"attributes not an object", `{"address": "12 Ponsonby Road", "attributes": "x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(h.CreateRecord, "/api/property-records", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_CreateRecordAcceptsValidPayload(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectExec("INSERT INTO property_records").WillReturnResult(sqlmock.NewResult(0, 1))

	w := postJSON(h.CreateRecord, "/api/property-records",
		`{"address": "12 Ponsonby Road", "suburb": "Ponsonby", "landArea": 420.5, "capitalValue": 1850000}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
