// internal/chat/handler_test.go
package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/models"
	"canibuildit/internal/server/session"
)

func newTestChatRouter(t *testing.T, completer Completer) *mux.Router {
	t.Helper()

	svc, _ := newTestChatService(t, completer)
	log := logger.NewTestLogger(t)
	handler := NewHandler(svc, apperrors.NewHTTPResponder(log), log)

	r := mux.NewRouter()
	r.HandleFunc("/api/chat", handler.Send).Methods(http.MethodPost)
	r.HandleFunc("/api/chat", handler.History).Methods(http.MethodGet)
	r.HandleFunc("/api/assess-property", handler.Assess).Methods(http.MethodPost)
	return r
}

func doChat(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(session.HeaderName, "sess-http")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_SendAndHistory(t *testing.T) {
	r := newTestChatRouter(t, &fakeCompleter{reply: "kia ora"})

	w := doChat(t, r, http.MethodPost, "/api/chat", messageRequest{Message: "hello"})
	require.Equal(t, http.StatusOK, w.Code)

	var exchange Exchange
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exchange))
	assert.Equal(t, "kia ora", exchange.Reply)
	assert.Equal(t, 2, exchange.Entries)

	w = doChat(t, r, http.MethodGet, "/api/chat", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var conv models.Conversation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conv))
	assert.Len(t, conv.Entries, 2)
}

func TestHandler_EmptyMessageIs422(t *testing.T) {
	r := newTestChatRouter(t, &fakeCompleter{reply: "unused"})

	w := doChat(t, r, http.MethodPost, "/api/chat", messageRequest{Message: "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_UpstreamTimeoutIs504(t *testing.T) {
	r := newTestChatRouter(t, &fakeCompleter{err: apperrors.NewChatTimeoutError()})

	w := doChat(t, r, http.MethodPost, "/api/chat", messageRequest{Message: "hello"})
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestHandler_AssessAcceptsEmptyBody(t *testing.T) {
	r := newTestChatRouter(t, &fakeCompleter{reply: "assessment"})

	w := doChat(t, r, http.MethodPost, "/api/assess-property", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var exchange Exchange
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exchange))
	assert.Equal(t, models.IntentPropertyAssessment, exchange.Intent.Intent)
}
