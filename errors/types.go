package errors

import (
	"net/http"
)

// NewError creates a new GatewayError with the given parameters.
// It is a general-purpose constructor that allows full control over
// the error's fields. For most cases, you should use one of the
// specialized constructors below.
//
// Example:
//
//	err := NewError(ServerError, "upstream unreachable", 500, "req_123", nil, netErr)
func NewError(errType ErrorType, message string, code int, requestID string, details map[string]interface{}, err error) *GatewayError {
	return &GatewayError{
		Type:      errType,
		Message:   message,
		Code:      code,
		RequestID: requestID,
		Details:   details,
		err:       err,
	}
}

// NewBadRequest creates a validation error with appropriate defaults.
// Use this for any request validation failures, such as:
//   - Missing required fields
//   - Malformed request bodies
//   - Value constraint violations
//
// The message should aggregate every violated constraint, not just the
// first one, so callers can fix their request in one round trip.
//
// Example:
//
//	err := NewBadRequest("req_123", "role is required; prompt is required", nil)
func NewBadRequest(requestID, message string, details map[string]interface{}) *GatewayError {
	return &GatewayError{
		Type:      BadRequest,
		Message:   message,
		Code:      http.StatusBadRequest,
		RequestID: requestID,
		Details:   details,
	}
}

// NewRateLimitError creates a rate limit error with appropriate defaults.
// Use this when a client has exceeded its per-window request quota.
//
// Example:
//
//	err := NewRateLimitError("req_123", 60)
func NewRateLimitError(requestID string, retryAfter int) *GatewayError {
	return &GatewayError{
		Type:      RateLimited,
		Message:   "Rate limit exceeded",
		Code:      http.StatusTooManyRequests,
		RequestID: requestID,
		Details: map[string]interface{}{
			"retry_after": retryAfter,
		},
	}
}

// NewInternalError creates an internal server error with appropriate defaults.
// The client-facing message is fixed; the underlying error is kept for
// logging only and never leaks into the response.
//
// Example:
//
//	err := NewInternalError("req_123", panicErr)
func NewInternalError(requestID string, err error) *GatewayError {
	return &GatewayError{
		Type:      ServerError,
		Message:   "Internal server error",
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		err:       err,
	}
}
