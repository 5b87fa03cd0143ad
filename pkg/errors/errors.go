// Package errors defines the structured error types used across the AirOps engine.
// Every error carries a machine-readable code, an HTTP status for the interface
// layer, and optional metadata for logging and error responses.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/turtacn/airops/pkg/constants"
)

// ================================================================================
// AppError
// ================================================================================

// AppError is the structured error type returned by repositories, services and
// collaborators. It supports error chains via Unwrap.
type AppError struct {
	code       constants.ErrorCode
	httpStatus int
	message    string
	cause      error
	metadata   map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the machine-readable error code.
func (e *AppError) Code() constants.ErrorCode {
	return e.code
}

// HTTPStatus returns the HTTP status code the interface layer should respond with.
func (e *AppError) HTTPStatus() int {
	return e.httpStatus
}

// Unwrap returns the underlying cause, if any.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying error to the chain.
func (e *AppError) WithCause(cause error) *AppError {
	e.cause = cause
	return e
}

// WithMetadata attaches a key-value pair of context metadata.
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

// Metadata returns all attached metadata.
func (e *AppError) Metadata() map[string]interface{} {
	return e.metadata
}

// New creates an AppError with an explicit code, HTTP status and message.
func New(code constants.ErrorCode, httpStatus int, message string) *AppError {
	return &AppError{
		code:       code,
		httpStatus: httpStatus,
		message:    message,
	}
}

// Wrap converts a generic error into an AppError, preserving it as the cause.
func Wrap(err error, code constants.ErrorCode, message string) *AppError {
	return New(code, httpStatusFor(code), message).WithCause(err)
}

func httpStatusFor(code constants.ErrorCode) int {
	switch code {
	case constants.ErrCodeInvalidRequest, constants.ErrCodeInsufficientData:
		return http.StatusBadRequest
	case constants.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case constants.ErrCodeUnknownTenant, constants.ErrCodeNotFound:
		return http.StatusNotFound
	case constants.ErrCodeConflict, constants.ErrCodeEvaluationBusy:
		return http.StatusConflict
	case constants.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ================================================================================
// Engine Taxonomy Constructors
// ================================================================================

// ErrUnknownTenant indicates the tenant identifier is absent from configuration.
// Fatal to the request; the caller must handle it.
func ErrUnknownTenant(tenantID string) *AppError {
	return New(constants.ErrCodeUnknownTenant, http.StatusNotFound,
		fmt.Sprintf("unknown tenant: %s", tenantID)).
		WithMetadata("tenant_id", tenantID)
}

// ErrInsufficientData indicates a mandatory identifying field is missing for a
// single entity. Fatal to that entity's scoring only; batch runs skip and continue.
func ErrInsufficientData(entityRef string, missing string) *AppError {
	return New(constants.ErrCodeInsufficientData, http.StatusBadRequest,
		fmt.Sprintf("insufficient data for %s: missing %s", entityRef, missing)).
		WithMetadata("entity_ref", entityRef).
		WithMetadata("missing_field", missing)
}

// ErrAlertPersistenceFailed indicates an alert write failed after the single retry.
// The engine state is unchanged; no partial alert is visible.
func ErrAlertPersistenceFailed(cause error) *AppError {
	return New(constants.ErrCodeAlertPersistenceFailed, http.StatusInternalServerError,
		"alert persistence failed after retry").WithCause(cause)
}

// ErrDeliveryFailed indicates a best-effort notification could not be delivered.
// Logged by the caller, never propagated past the alert engine.
func ErrDeliveryFailed(cause error) *AppError {
	return New(constants.ErrCodeDeliveryFailed, http.StatusInternalServerError,
		"alert delivery failed").WithCause(cause)
}

// ErrEvaluationBusy indicates another evaluation run already holds the tenant lock.
func ErrEvaluationBusy(tenantID string) *AppError {
	return New(constants.ErrCodeEvaluationBusy, http.StatusConflict,
		fmt.Sprintf("evaluation already in progress for tenant %s", tenantID)).
		WithMetadata("tenant_id", tenantID)
}

// ErrInvalidRequest indicates a malformed or incomplete request.
func ErrInvalidRequest(message string) *AppError {
	return New(constants.ErrCodeInvalidRequest, http.StatusBadRequest, message)
}

// ErrNotFound indicates a requested resource does not exist.
func ErrNotFound(resource string, id string) *AppError {
	return New(constants.ErrCodeNotFound, http.StatusNotFound,
		fmt.Sprintf("%s not found: %s", resource, id)).
		WithMetadata("id", id)
}

// ErrUnauthorized indicates missing or invalid caller credentials.
func ErrUnauthorized(message string) *AppError {
	return New(constants.ErrCodeUnauthorized, http.StatusUnauthorized, message)
}

// ErrConflict indicates the request conflicts with current resource state.
func ErrConflict(message string) *AppError {
	return New(constants.ErrCodeConflict, http.StatusConflict, message)
}

// ErrStorage wraps a data-store failure.
func ErrStorage(op string, cause error) *AppError {
	return New(constants.ErrCodeInternal, http.StatusInternalServerError,
		fmt.Sprintf("storage operation failed: %s", op)).WithCause(cause)
}

// ErrCache wraps a cache failure. Cache failures are soft; callers fall back to the
// underlying store.
func ErrCache(op string, cause error) *AppError {
	return New(constants.ErrCodeUnavailable, http.StatusServiceUnavailable,
		fmt.Sprintf("cache operation failed: %s", op)).WithCause(cause)
}

// ================================================================================
// Classification Helpers
// ================================================================================

// As attempts to interpret err as an *AppError anywhere in its chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func hasCode(err error, code constants.ErrorCode) bool {
	if appErr, ok := As(err); ok {
		return appErr.Code() == code
	}
	return false
}

// IsUnknownTenant reports whether err is an unknown-tenant error.
func IsUnknownTenant(err error) bool {
	return hasCode(err, constants.ErrCodeUnknownTenant)
}

// IsInsufficientData reports whether err is an insufficient-data error.
func IsInsufficientData(err error) bool {
	return hasCode(err, constants.ErrCodeInsufficientData)
}

// IsNotFound reports whether err is a not-found error of any resource.
func IsNotFound(err error) bool {
	return hasCode(err, constants.ErrCodeNotFound) || hasCode(err, constants.ErrCodeUnknownTenant)
}

// IsEvaluationBusy reports whether err means the tenant lock was already held.
func IsEvaluationBusy(err error) bool {
	return hasCode(err, constants.ErrCodeEvaluationBusy)
}

// IsAlertPersistenceFailed reports whether err is a surfaced alert write failure.
func IsAlertPersistenceFailed(err error) bool {
	return hasCode(err, constants.ErrCodeAlertPersistenceFailed)
}

// ================================================================================
// Error Response Builder
// ================================================================================

// ErrorResponse is the JSON shape of error bodies produced by the HTTP layer.
type ErrorResponse struct {
	Error    string                 `json:"error"`
	Message  string                 `json:"message"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts any error into an ErrorResponse, collapsing non-AppError
// values into a generic internal error.
func ToErrorResponse(err error) *ErrorResponse {
	if appErr, ok := As(err); ok {
		return &ErrorResponse{
			Error:    string(appErr.Code()),
			Message:  appErr.message,
			Metadata: appErr.Metadata(),
		}
	}
	return &ErrorResponse{
		Error:   string(constants.ErrCodeInternal),
		Message: "an unexpected error occurred",
	}
}
