// Package handler wires the commentbox HTTP routes.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/njchilds90/allowhtml"
	"github.com/njchilds90/allowhtml/internal/middleware"
	"go.uber.org/zap"
)

// RouterDeps holds what NewRouter needs.
type RouterDeps struct {
	Service CommentService
	// Policy is the policy Service sanitizes with. Nil means DefaultPolicy.
	Policy *allowhtml.Policy
	Logger *zap.Logger

	// RateLimiter limits POST routes. Nil disables rate limiting.
	RateLimiter *middleware.RateLimiter
	// CORSAllowedOrigins applies to /api routes only.
	CORSAllowedOrigins []string
	// Metrics serves /metrics. Nil leaves the route out.
	Metrics http.Handler
}

// NewRouter returns the commentbox router.
//
// Middleware order:
//
//	RequestID → RealIP → Logger → Recoverer → SecurityHeaders
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)

	h := NewCommentHandler(deps.Service, deps.Policy, logger)

	limit := func(next http.Handler) http.Handler { return next }
	if deps.RateLimiter != nil {
		limit = deps.RateLimiter.Middleware
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Get("/comment", h.Page)
	r.With(limit).Post("/comment", h.SubmitForm)
	r.Delete("/comments", h.Clear)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: deps.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))

		r.Get("/comments", h.ListJSON)
		r.With(limit).Post("/comments", h.SubmitJSON)
		r.With(limit).Post("/sanitize", h.Sanitize)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
