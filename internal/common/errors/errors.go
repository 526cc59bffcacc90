// Package errors provides standardized error handling across the API surface.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeWizardNotFound         ErrorCode = "WIZARD_NOT_FOUND"
	ErrCodeWizardStepBlocked      ErrorCode = "WIZARD_STEP_BLOCKED"
	ErrCodeWizardAlreadySubmitted ErrorCode = "WIZARD_ALREADY_SUBMITTED"

	ErrCodeHandoffNotFound      ErrorCode = "HANDOFF_NOT_FOUND"
	ErrCodeHandoffDecodeFailed  ErrorCode = "HANDOFF_DECODE_FAILED"
	ErrCodeHandoffSchemaInvalid ErrorCode = "HANDOFF_SCHEMA_INVALID"

	ErrCodeGeocodeFailed   ErrorCode = "GEOCODE_FAILED"
	ErrCodeGeocodeTimeout  ErrorCode = "GEOCODE_TIMEOUT"
	ErrCodeAddressNotFound ErrorCode = "ADDRESS_NOT_FOUND"

	ErrCodeZoningLookupFailed ErrorCode = "ZONING_LOOKUP_FAILED"
	ErrCodeZoningTimeout      ErrorCode = "ZONING_TIMEOUT"

	ErrCodeChatUpstreamFailed ErrorCode = "CHAT_UPSTREAM_FAILED"
	ErrCodeChatTimeout        ErrorCode = "CHAT_TIMEOUT"

	ErrCodePlanNotFound          ErrorCode = "PLAN_NOT_FOUND"
	ErrCodeCheckoutSessionFailed ErrorCode = "CHECKOUT_SESSION_FAILED"
	ErrCodePaymentRequired       ErrorCode = "PAYMENT_REQUIRED"

	ErrCodeReportNotFound         ErrorCode = "REPORT_NOT_FOUND"
	ErrCodeReportGenerationFailed ErrorCode = "REPORT_GENERATION_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout     ErrorCode = "SEARCH_TIMEOUT"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable request validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWizardNotFoundError creates a non-retryable missing-wizard error.
func NewWizardNotFoundError(intakeID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeWizardNotFound,
		Message:   "Intake wizard not found or expired",
		Details:   fmt.Sprintf("intakeId: %s", intakeID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWizardStepBlockedError creates a non-retryable step-gating error.
func NewWizardStepBlockedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeWizardStepBlocked,
		Message:   "Required fields missing for this step",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWizardAlreadySubmittedError creates a non-retryable double-submit error.
func NewWizardAlreadySubmittedError(intakeID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeWizardAlreadySubmitted,
		Message:   "Intake wizard has already been submitted",
		Details:   fmt.Sprintf("intakeId: %s", intakeID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewHandoffNotFoundError creates a non-retryable hand-off miss error.
func NewHandoffNotFoundError(kind string) *StandardError {
	return &StandardError{
		Code:      ErrCodeHandoffNotFound,
		Message:   "Hand-off record not found or expired",
		Details:   fmt.Sprintf("kind: %s", kind),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewHandoffDecodeFailedError creates a non-retryable hand-off decode error.
func NewHandoffDecodeFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHandoffDecodeFailed,
		Message:   "Hand-off record could not be decoded",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewHandoffSchemaInvalidError creates a non-retryable hand-off schema error.
func NewHandoffSchemaInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeHandoffSchemaInvalid,
		Message:   "Hand-off payload failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGeocodeFailedError creates a retryable geocoding error.
func NewGeocodeFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGeocodeFailed,
		Message:   "Address geocoding failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGeocodeTimeoutError creates a retryable geocoding timeout error.
func NewGeocodeTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGeocodeTimeout,
		Message:   "Geocoding API timeout",
		Details:   "API call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAddressNotFoundError creates a non-retryable unknown-address error.
func NewAddressNotFoundError(query string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAddressNotFound,
		Message:   "No address matched the query",
		Details:   fmt.Sprintf("query: %s", query),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewZoningLookupFailedError creates a retryable zoning lookup error.
func NewZoningLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeZoningLookupFailed,
		Message:   "Council zoning lookup failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewZoningTimeoutError creates a retryable zoning lookup timeout error.
func NewZoningTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeZoningTimeout,
		Message:   "Council zoning lookup timeout",
		Details:   "API call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewChatUpstreamFailedError creates a retryable chat upstream error.
func NewChatUpstreamFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeChatUpstreamFailed,
		Message:   "Chat upstream API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewChatTimeoutError creates a retryable chat timeout error.
func NewChatTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeChatTimeout,
		Message:   "Chat upstream timeout",
		Details:   "API call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPlanNotFoundError creates a non-retryable unknown-plan error.
func NewPlanNotFoundError(planID string) *StandardError {
	return &StandardError{
		Code:      ErrCodePlanNotFound,
		Message:   "Pricing plan not found",
		Details:   fmt.Sprintf("planId: %s", planID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCheckoutSessionFailedError creates a retryable checkout session error.
func NewCheckoutSessionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCheckoutSessionFailed,
		Message:   "Stripe checkout session creation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPaymentRequiredError creates a non-retryable payment gate error.
func NewPaymentRequiredError(reportID string) *StandardError {
	return &StandardError{
		Code:      ErrCodePaymentRequired,
		Message:   "Report requires completed payment",
		Details:   fmt.Sprintf("reportId: %s", reportID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportNotFoundError creates a non-retryable missing-report error.
func NewReportNotFoundError(reportID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportNotFound,
		Message:   "Report not found",
		Details:   fmt.Sprintf("reportId: %s", reportID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportGenerationFailedError creates a retryable report generation error.
func NewReportGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportGenerationFailed,
		Message:   "Report generation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(entity string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("entity: %s, error: %s", entity, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError(index string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Elasticsearch query timeout",
		Details:   fmt.Sprintf("index: %s", index),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(entity, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResourceNotFound,
		Message:   fmt.Sprintf("Resource not found: %s", entity),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Retry Policy
// ==========================

// GetRetryCount returns the recommended upstream retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeGeocodeFailed,
		ErrCodeZoningLookupFailed,
		ErrCodeChatUpstreamFailed,
		ErrCodeCheckoutSessionFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeReportGenerationFailed:
		return 3 // Retryable technical errors

	case ErrCodeGeocodeTimeout,
		ErrCodeZoningTimeout,
		ErrCodeSearchTimeout:
		return 2 // Partial retry for timeouts

	case ErrCodeChatTimeout:
		return 1

	default:
		return 0 // Business errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "WIZARD") || strings.Contains(codeStr, "HANDOFF"):
		return "FLOW_STATE"
	case strings.Contains(codeStr, "GEOCODE") || strings.Contains(codeStr, "ADDRESS") || strings.Contains(codeStr, "ZONING"):
		return "GEODATA"
	case strings.Contains(codeStr, "CHAT"):
		return "AI"
	case strings.Contains(codeStr, "PLAN") || strings.Contains(codeStr, "CHECKOUT") || strings.Contains(codeStr, "PAYMENT"):
		return "BILLING"
	case strings.Contains(codeStr, "REPORT"):
		return "REPORT"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
