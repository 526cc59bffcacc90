// internal/chat/handler.go
package chat

import (
	"encoding/json"
	"net/http"
	"strings"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/server/session"
)

type Handler struct {
	service   *Service
	responder *apperrors.HTTPResponder
	logger    logger.Logger
}

func NewHandler(service *Service, responder *apperrors.HTTPResponder, log logger.Logger) *Handler {
	return &Handler{
		service:   service,
		responder: responder,
		logger: log.With(map[string]interface{}{
			"handler": "chat",
		}),
	}
}

type messageRequest struct {
	Message string `json:"message"`
}

// Send handles POST /api/chat.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.WriteError(w, r, apperrors.NewValidationFailedError("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		h.responder.WriteError(w, r, apperrors.NewValidationFailedError("message is required"))
		return
	}

	exchange, err := h.service.Send(r.Context(), session.FromRequest(r), req.Message)
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exchange)
}

// Assess handles POST /api/assess-property. The message is optional; the
// property context comes from the session's intake hand-off.
func (h *Handler) Assess(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if r.Body != nil {
		// An empty body is a valid assess request.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	exchange, err := h.service.Assess(r.Context(), session.FromRequest(r), strings.TrimSpace(req.Message))
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exchange)
}

// History handles GET /api/chat.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	conv, err := h.service.History(r.Context(), session.FromRequest(r))
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
