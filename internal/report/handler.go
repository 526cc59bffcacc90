// internal/report/handler.go
package report

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
)

type Handler struct {
	service   *Service
	analyzer  *Analyzer
	responder *apperrors.HTTPResponder
	logger    logger.Logger
}

func NewHandler(service *Service, analyzer *Analyzer, responder *apperrors.HTTPResponder, log logger.Logger) *Handler {
	return &Handler{
		service:   service,
		analyzer:  analyzer,
		responder: responder,
		logger: log.With(map[string]interface{}{
			"handler": "report",
		}),
	}
}

type analysisRequest struct {
	Address string `json:"address"`
}

// Analyze handles POST /api/comprehensive-property-analysis.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.WriteError(w, r, apperrors.NewValidationFailedError("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Address) == "" {
		h.responder.WriteError(w, r, apperrors.NewValidationFailedError("address is required"))
		return
	}

	data, err := h.analyzer.Analyze(r.Context(), req.Address)
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// Get handles GET /api/premium-report/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Retry handles POST /api/premium-report/{id}/retry.
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Retry(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
