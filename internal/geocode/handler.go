// internal/geocode/handler.go
package geocode

import (
	"encoding/json"
	"net/http"
	"strings"

	"canibuildit/internal/clients/places"
	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
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
			"handler": "geocode",
		}),
	}
}

// Resolve handles GET /api/geocode?q=...
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.responder.WriteError(w, r, apperrors.NewValidationFailedError("query parameter q is required"))
		return
	}

	resp, err := h.service.Resolve(r.Context(), query)
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Suggest handles GET /api/geocode/suggest?q=...
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	input := strings.TrimSpace(r.URL.Query().Get("q"))
	if input == "" {
		writeJSON(w, http.StatusOK, []places.Suggestion{})
		return
	}

	suggestions, err := h.service.Suggest(r.Context(), input)
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
