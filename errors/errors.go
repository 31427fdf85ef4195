// Package errors provides the error handling system for the promptgate gateway.
// It includes structured error types, the JSON error envelope returned to
// clients, request ID tracking, and integrated logging with Uber's zap logger.
//
// Every error response the gateway emits has the shape:
//
//	{"ok": false, "error": {"type": "...", "message": "..."}}
//
// Basic usage:
//
//	errors.ErrorWithType(w, "route not found", errors.NotFound, http.StatusNotFound)
//
// For more control, use the constructors in types.go:
//
//	err := errors.NewBadRequest(requestID, "role is required; prompt is required", nil)
//	errors.WriteError(w, err)
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// DefaultLogger is the default zap logger instance used throughout the package.
// It is initialized to a production configuration but can be overridden using SetLogger.
var DefaultLogger *zap.Logger

func init() {
	var err error
	DefaultLogger, err = zap.NewProduction()
	if err != nil {
		DefaultLogger = zap.NewNop()
	}
}

// SetLogger allows setting a custom zap logger instance.
// If nil is provided, the function will do nothing to prevent
// accidentally disabling logging.
func SetLogger(logger *zap.Logger) {
	if logger != nil {
		DefaultLogger = logger
	}
}

// ErrorType categorizes errors for client handling. The type string is
// surfaced verbatim in the error envelope.
type ErrorType string

const (
	// BadRequest represents request validation failures
	BadRequest ErrorType = "BadRequest"

	// ServerError represents unexpected internal failures
	ServerError ErrorType = "ServerError"

	// RateLimited represents rate limiting rejections
	RateLimited ErrorType = "RateLimited"

	// NotFound represents unknown routes
	NotFound ErrorType = "NotFound"
)

// GatewayError is the gateway's error type. It implements the error
// interface and carries everything needed to render the JSON envelope
// while keeping internal context for logging.
type GatewayError struct {
	// Type categorizes the error for client handling
	Type ErrorType `json:"type"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Code is the HTTP status code (not exposed in JSON)
	Code int `json:"-"`

	// RequestID links the error to a specific request
	RequestID string `json:"request_id,omitempty"`

	// Details contains additional error context
	Details map[string]interface{} `json:"details,omitempty"`

	// err is the underlying error (not exposed in JSON)
	err error
}

// Error implements the error interface. It returns a string that
// combines the error type, message, and underlying error (if any).
func (e *GatewayError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error, implementing the unwrap
// interface for error chains.
func (e *GatewayError) Unwrap() error {
	return e.err
}

// Is implements error matching for errors.Is, allowing type-based
// error matching while ignoring other fields.
func (e *GatewayError) Is(target error) bool {
	t, ok := target.(*GatewayError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WriteError renders a GatewayError as the JSON error envelope.
// It sets the content type and status code, then writes the body.
func WriteError(w http.ResponseWriter, err *GatewayError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	if encodeErr := json.NewEncoder(w).Encode(Envelope{OK: false, Error: err}); encodeErr != nil {
		DefaultLogger.Error("failed to encode error response", zap.Error(encodeErr))
	}
}

// ErrorWithType is a drop-in replacement for http.Error that creates and
// writes a GatewayError of the given type. It automatically includes the
// request ID from the response headers if available.
func ErrorWithType(w http.ResponseWriter, message string, errType ErrorType, code int) {
	requestID := w.Header().Get("X-Request-ID")
	err := &GatewayError{
		Type:      errType,
		Message:   message,
		Code:      code,
		RequestID: requestID,
	}
	WriteError(w, err)
}
