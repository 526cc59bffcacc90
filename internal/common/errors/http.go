// internal/common/errors/http.go
package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// HTTPResponder converts application errors to JSON error responses. It is
// the HTTP-facing counterpart of the constructors in this package.
type HTTPResponder struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewHTTPResponder(logger Logger) *HTTPResponder {
	return &HTTPResponder{logger: logger}
}

// errorBody is the wire shape of every error response.
type errorBody struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Details   string `json:"details,omitempty"`
		Retryable bool   `json:"retryable"`
	} `json:"error"`
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeWizardStepBlocked, ErrCodeHandoffSchemaInvalid:
		return http.StatusUnprocessableEntity
	case ErrCodeWizardNotFound, ErrCodeHandoffNotFound, ErrCodeAddressNotFound,
		ErrCodePlanNotFound, ErrCodeReportNotFound, ErrCodeResourceNotFound:
		return http.StatusNotFound
	case ErrCodeWizardAlreadySubmitted:
		return http.StatusConflict
	case ErrCodePaymentRequired:
		return http.StatusPaymentRequired
	case ErrCodeGeocodeTimeout, ErrCodeZoningTimeout, ErrCodeChatTimeout, ErrCodeSearchTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeGeocodeFailed, ErrCodeZoningLookupFailed, ErrCodeChatUpstreamFailed,
		ErrCodeCheckoutSessionFailed:
		return http.StatusBadGateway
	case ErrCodeHandoffDecodeFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteError normalizes err, logs it, and writes the JSON error response.
func (h *HTTPResponder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := h.normalizeError(err)
	status := StatusFor(stdErr.Code)

	h.logger.Error("request failed", map[string]interface{}{
		"method":    r.Method,
		"path":      r.URL.Path,
		"errorCode": string(stdErr.Code),
		"category":  GetErrorCategory(stdErr.Code),
		"retryable": stdErr.Retryable,
		"status":    status,
		"details":   stdErr.Details,
	})

	var body errorBody
	body.Error.Code = string(stdErr.Code)
	body.Error.Message = stdErr.Message
	body.Error.Details = stdErr.Details
	body.Error.Retryable = stdErr.Retryable

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// normalizeError ensures we always have a StandardError
func (h *HTTPResponder) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
