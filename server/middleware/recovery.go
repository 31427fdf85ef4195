package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/promptgate/promptgate/errors"
	"go.uber.org/zap"
)

// Recovery middleware recovers from panics anywhere in the handler chain,
// logs the stack, and converts the failure into a generic 500 response
// with no detail leaked to the caller.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					stack := debug.Stack()
					requestID := GetRequestID(r.Context())
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("request_id", requestID),
						zap.ByteString("stack", stack),
					)

					errors.WriteError(w, errors.NewInternalError(
						requestID,
						fmt.Errorf("panic: %v", err),
					))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
