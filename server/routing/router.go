// Package routing wires the gateway's routes and middleware stack.
package routing

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/promptgate/promptgate/config"
	"github.com/promptgate/promptgate/errors"
	"github.com/promptgate/promptgate/server/metrics"
	"github.com/promptgate/promptgate/server/middleware"
	"go.uber.org/zap"
)

// Router handles HTTP routing for the gateway. The health and metrics
// endpoints are always available; the chat endpoint sits behind the rate
// limiter so rejected requests never reach the completion service.
type Router struct {
	router chi.Router
}

// NewRouter creates the gateway router with the full middleware stack.
func NewRouter(cfg *config.Config, chat http.Handler, m *metrics.Metrics, limiter *middleware.RateLimiter, logger *zap.Logger) *Router {
	r := chi.NewRouter()

	// Global middleware stack, outermost first.
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTimer)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.PrometheusMetrics(m))

	r.Get("/health", healthHandler)
	r.Handle("/metrics", m.Handler())

	r.Group(func(g chi.Router) {
		g.Use(limiter.Middleware)
		g.Post("/v1/chat", chat.ServeHTTP)
	})

	// RequestID middleware has already stamped the response header, so
	// ErrorWithType picks the ID up from there.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		errors.ErrorWithType(w, "route not found", errors.NotFound, http.StatusNotFound)
	})

	return &Router{router: r}
}

// healthHandler reports liveness. It is independent of upstream
// availability and never fails.
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
