// internal/scraper/handler.go
package scraper

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/common/validation"
	"canibuildit/internal/models"
)

// Schemas gating the dashboard write payloads.
const sourceSchemaJSON = `{
	"type": "object",
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"url": {"type": "string", "pattern": "^https?://"},
		"kind": {"type": "string"},
		"enabled": {"type": "boolean"}
	},
	"required": ["name", "url"],
	"additionalProperties": true
}`

const recordSchemaJSON = `{
	"type": "object",
	"properties": {
		"address": {"type": "string", "minLength": 3},
		"suburb": {"type": "string"},
		"zoning": {"type": "string"},
		"sourceId": {"type": "string"},
		"landArea": {"type": "number", "minimum": 0},
		"capitalValue": {"type": "number", "minimum": 0},
		"attributes": {"type": "object"}
	},
	"required": ["address"],
	"additionalProperties": true
}`

var (
	sourceSchema = mustSchema(sourceSchemaJSON)
	recordSchema = mustSchema(recordSchemaJSON)
)

func mustSchema(raw string) validation.JSONSchema {
	schema, err := validation.GetSchemaFromJSON(raw)
	if err != nil {
		panic(err)
	}
	return schema
}

// decodeValidated reads the body once, checks it against the schema and then
// unmarshals the same bytes into the target struct.
func decodeValidated(r *http.Request, schema validation.JSONSchema, target interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return apperrors.NewValidationFailedError("unreadable request body")
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return apperrors.NewValidationFailedError("invalid JSON body")
	}
	if result := validation.ValidateInput(raw, schema); !result.Valid {
		return apperrors.NewValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
	}

	if err := json.Unmarshal(body, target); err != nil {
		return apperrors.NewValidationFailedError("invalid JSON body")
	}
	return nil
}

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
			"handler": "scraper",
		}),
	}
}

// --- Jobs ---

type startJobRequest struct {
	SourceID string `json:"sourceId"`
}

// StartJob handles POST /api/scraping-jobs.
func (h *Handler) StartJob(w http.ResponseWriter, r *http.Request) {
	var req startJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SourceID == "" {
		h.responder.WriteError(w, r, apperrors.NewValidationFailedError("sourceId is required"))
		return
	}

	job, err := h.service.StartJob(r.Context(), req.SourceID)
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

// ListJobs handles GET /api/scraping-jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.service.ListJobs(r.Context())
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// GetJob handles GET /api/scraping-jobs/{id}; the dashboard polls it.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.GetJob(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// CancelJob handles POST /api/scraping-jobs/{id}/cancel.
func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.CancelJob(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// --- Sources ---

// CreateSource handles POST /api/data-sources.
func (h *Handler) CreateSource(w http.ResponseWriter, r *http.Request) {
	var source models.DataSource
	if err := decodeValidated(r, sourceSchema, &source); err != nil {
		h.responder.WriteError(w, r, err)
		return
	}

	created, err := h.service.CreateSource(r.Context(), &source)
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListSources handles GET /api/data-sources.
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.service.ListSources(r.Context())
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

// GetSource handles GET /api/data-sources/{id}.
func (h *Handler) GetSource(w http.ResponseWriter, r *http.Request) {
	source, err := h.service.GetSource(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, source)
}

// UpdateSource handles PUT /api/data-sources/{id}.
func (h *Handler) UpdateSource(w http.ResponseWriter, r *http.Request) {
	var source models.DataSource
	if err := decodeValidated(r, sourceSchema, &source); err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	source.ID = mux.Vars(r)["id"]

	updated, err := h.service.UpdateSource(r.Context(), &source)
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteSource handles DELETE /api/data-sources/{id}.
func (h *Handler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSource(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Records ---

// CreateRecord handles POST /api/property-records.
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var record models.PropertyRecord
	if err := decodeValidated(r, recordSchema, &record); err != nil {
		h.responder.WriteError(w, r, err)
		return
	}

	created, err := h.service.CreateRecord(r.Context(), &record)
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListRecords handles GET /api/property-records. With ?q= the list is served
// from the search index instead of Postgres.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	if query := strings.TrimSpace(r.URL.Query().Get("q")); query != "" {
		records, err := h.service.SearchRecords(r.Context(), query)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
		return
	}

	records, err := h.service.ListRecords(r.Context())
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// GetRecord handles GET /api/property-records/{id}.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.GetRecord(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.responder.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
