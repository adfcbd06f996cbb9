// Package httptransport assembles the public API surface.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vetblood/internal/auth"
	"vetblood/internal/platform/metrics"
	"vetblood/internal/platform/middleware"
	"vetblood/internal/transport/http/shared"
	dErrors "vetblood/pkg/domain-errors"
)

// ResourceHandler registers a resource's routes on the authenticated /api
// subtree. Implemented by every domain handler.
type ResourceHandler interface {
	Register(r chi.Router)
}

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Config struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Auth           *auth.Service
	RequestTimeout time.Duration
	Resources      []ResourceHandler
	HealthChecks   map[string]HealthChecker
}

// NewRouter wires middleware and all resource handlers. Everything under
// /api requires authentication; /health and /metrics stay open.
func NewRouter(cfg Config) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Latency(cfg.Metrics))

	r.Get("/health", handleHealth(cfg.HealthChecks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
		api.Use(middleware.ContentTypeJSON)
		api.Use(middleware.RequireAuth(cfg.Auth, cfg.Logger))

		api.Post("/auth/session", handleMintSession(cfg.Auth))
		for _, h := range cfg.Resources {
			h.Register(api)
		}
	})

	return r
}

// handleMintSession exchanges verified init data for a short-lived bearer
// token, so the mini-app does not resend the full payload on every call.
func handleMintSession(authSvc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := middleware.GetIdentity(r.Context())
		if !ok {
			shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
			return
		}
		token, err := authSvc.MintSession(ident)
		if err != nil {
			shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint session"))
			return
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		out := make(map[string]string, len(checks)+1)
		out["status"] = "ok"
		for name, c := range checks {
			if err := c.Health(ctx); err != nil {
				status = http.StatusServiceUnavailable
				out[name] = err.Error()
				out["status"] = "degraded"
				continue
			}
			out[name] = "ok"
		}
		shared.WriteJSON(w, status, out)
	}
}
