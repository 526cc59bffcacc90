// internal/intake/handler.go
package intake

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/models"
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
			"handler": "intake",
		}),
	}
}

// stepRequest is the body of PUT /api/intake/{id}/step/{n}.
type stepRequest struct {
	Direction Direction                 `json:"direction"`
	Data      models.PropertyIntakeData `json:"data"`
}

// Start handles POST /api/intake.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.Start(r.Context(), session.FromRequest(r))
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

// Get handles GET /api/intake/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// Step handles PUT /api/intake/{id}/step/{n}.
func (h *Handler) Step(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	stepNum, err := strconv.Atoi(vars["n"])
	if err != nil || stepNum < int(models.StepPersonalInfo) || stepNum > int(models.StepReview) {
		h.responder.WriteError(w, r, apperrors.NewValidationFailedError("step must be 1, 2 or 3"))
		return
	}

	var req stepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.WriteError(w, r, apperrors.NewValidationFailedError("invalid JSON body"))
		return
	}
	if req.Direction == "" {
		req.Direction = DirectionNext
	}

	draft, err := h.service.Advance(r.Context(), vars["id"], models.WizardStep(stepNum), req.Direction, req.Data)
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// Submit handles POST /api/intake/{id}/submit.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.Submit(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
