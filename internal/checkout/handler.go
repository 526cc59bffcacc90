// internal/checkout/handler.go
package checkout

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"canibuildit/internal/clients/stripe"
	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/server/session"
)

// eventCheckoutCompleted is the only webhook event type the flow acts on.
const eventCheckoutCompleted = "checkout.session.completed"

// WebhookVerifier checks and decodes a signed webhook payload.
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, sigHeader string, now time.Time) (*stripe.Event, error)
}

type Handler struct {
	service   *Service
	verifier  WebhookVerifier
	responder *apperrors.HTTPResponder
	logger    logger.Logger
}

func NewHandler(service *Service, verifier WebhookVerifier, responder *apperrors.HTTPResponder, log logger.Logger) *Handler {
	return &Handler{
		service:   service,
		verifier:  verifier,
		responder: responder,
		logger: log.With(map[string]interface{}{
			"handler": "checkout",
		}),
	}
}

// Plans handles GET /api/plans.
func (h *Handler) Plans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Plans())
}

type checkoutRequest struct {
	PlanID string `json:"planId"`
	Email  string `json:"email"`
}

// Start handles POST /api/checkout.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.WriteError(w, r, apperrors.NewValidationFailedError("invalid JSON body"))
		return
	}
	if req.PlanID == "" {
		h.responder.WriteError(w, r, apperrors.NewValidationFailedError("planId is required"))
		return
	}

	outcome, err := h.service.Start(r.Context(), session.FromRequest(r), req.PlanID, req.Email)
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// Webhook handles POST /api/checkout/webhook. Unverifiable payloads are
// rejected; verified but irrelevant event types are acknowledged without
// action so Stripe stops redelivering them.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.responder.WriteError(w, r, apperrors.NewValidationFailedError("unreadable payload"))
		return
	}

	event, err := h.verifier.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"), time.Now())
	if err != nil {
		h.logger.Warn("webhook rejected", map[string]interface{}{
			"error": err.Error(),
		})
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if event.Type != eventCheckoutCompleted {
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.service.CompletePayment(r.Context(), event); err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetPurchase handles GET /api/checkout/{id}.
func (h *Handler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	purchase, err := h.service.GetPurchase(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, purchase)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
