package errors

import (
	"errors"

	"go.uber.org/zap"
)

// Envelope is the top-level JSON body of every error response.
// The ok field is always false for errors; successful responses are
// rendered by their handlers and never pass through this package.
type Envelope struct {
	OK    bool          `json:"ok"`
	Error *GatewayError `json:"error"`
}

// As is a wrapper around errors.As for better error type assertion
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// LogError logs an error with its request context. GatewayErrors are
// logged with their full structure; anything else falls back to a
// generic entry.
func LogError(logger *zap.Logger, err error, requestID string) {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		logger.Error("request error",
			zap.String("error_type", string(gwErr.Type)),
			zap.String("message", gwErr.Message),
			zap.Int("code", gwErr.Code),
			zap.String("request_id", requestID),
			zap.Any("details", gwErr.Details),
		)
		return
	}
	logger.Error("unexpected error",
		zap.Error(err),
		zap.String("request_id", requestID),
	)
}
