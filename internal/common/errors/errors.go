// internal/common/errors/errors.go

// Package errors provides standardized error handling for the match core.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Request boundary errors, surfaced verbatim to the caller.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeUnknownTask      ErrorCode = "UNKNOWN_TASK"

	// Retrieval errors terminate the request; detail stays server-side.
	ErrCodeRetrievalFailed ErrorCode = "RETRIEVAL_FAILED"
	ErrCodeSearchTimeout   ErrorCode = "SEARCH_TIMEOUT"

	// Degraded sub-scores: scoring proceeds without the contribution.
	ErrCodeScoringDegraded     ErrorCode = "SCORING_DEGRADED"
	ErrCodeCacheUnavailable    ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeSemanticUnavailable ErrorCode = "SEMANTIC_INDEX_UNAVAILABLE"

	// Side-effect errors are logged and swallowed, never propagated.
	ErrCodeAnalyticsWriteFailed ErrorCode = "ANALYTICS_WRITE_FAILED"
	ErrCodeEventPublishFailed   ErrorCode = "EVENT_PUBLISH_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
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

// HTTPStatus maps an error code to the HTTP status the boundary returns.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeUnknownTask:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// SafeMessage returns the message a caller may see. Validation errors are
// surfaced verbatim; everything else is sanitized and the detail stays in
// the server-side log.
func (e *StandardError) SafeMessage() string {
	switch e.Code {
	case ErrCodeValidationFailed, ErrCodeUnknownTask:
		return e.Message
	default:
		return "internal error, please retry"
	}
}

// Normalize ensures we always have a StandardError to report.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return NewInternalError(err)
}

// NewValidationError creates a non-retryable request validation error.
// Message names the offending field so the caller can fix the payload.
func NewValidationError(field, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   fmt.Sprintf("invalid field %q: %s", field, reason),
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownTaskError creates a non-retryable dispatch error.
func NewUnknownTaskError(task string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownTask,
		Message:   fmt.Sprintf("Unknown task: %s", task),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRetrievalFailedError creates a retryable persistence error.
func NewRetrievalFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRetrievalFailed,
		Message:   "Candidate retrieval failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable retrieval timeout error.
func NewSearchTimeoutError(op string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Search timed out",
		Details:   fmt.Sprintf("operation: %s", op),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewScoringDegradedError marks a missing optional sub-score input. It is
// logged at warn level and never fails the request.
func NewScoringDegradedError(input string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScoringDegraded,
		Message:   fmt.Sprintf("Optional scoring input unavailable: %s", input),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSemanticUnavailableError marks a failed semantic-index pass. Retrieval
// falls back to the keyword filter, so it is logged and never propagated.
func NewSemanticUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSemanticUnavailable,
		Message:   "Semantic index unavailable, falling back to keyword search",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError marks an unreachable result cache. The caller
// recomputes, so the request still succeeds.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Result cache unavailable",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalyticsWriteFailedError marks a failed best-effort analytics write.
func NewAnalyticsWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalyticsWriteFailed,
		Message:   "Failed to record search analytics",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEventPublishFailedError marks a failed fire-and-forget event publish.
func NewEventPublishFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventPublishFailed,
		Message:   "Failed to publish match event",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError creates a generic non-retryable internal error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
