// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

// Package api exposes the engine over a loopback HTTP API using the Chi
// router. The UI talks to these endpoints; the websocket feed pushes
// state changes back.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/movierec/internal/middleware"
)

// Config holds HTTP API configuration.
type Config struct {
	// ListenAddr is the bind address. Loopback by default; the engine
	// is a per-user sidecar, not a public service.
	ListenAddr string `koanf:"listen_addr"`

	// CORSAllowedOrigins lists UI origins allowed to call the API.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// RateLimitRequests per RateLimitWindow per client IP.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr:        "127.0.0.1:8480",
		RateLimitRequests: 300,
		RateLimitWindow:   time.Minute,
	}
}

// Router builds the HTTP handler tree.
type Router struct {
	cfg     Config
	handler *Handler
}

// NewRouter creates a router over the given handler set.
func NewRouter(cfg Config, handler *Handler) *Router {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:8480"
	}
	if cfg.RateLimitRequests <= 0 {
		cfg.RateLimitRequests = 300
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}
	return &Router{cfg: cfg, handler: handler}
}

// Setup wires the full route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))

	r.Get("/healthz", router.handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.Limit(
			router.cfg.RateLimitRequests,
			router.cfg.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
		))
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.BearerToken)

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", router.handler.GetPreferences)
			r.Post("/", router.handler.SavePreferences)
			r.Delete("/", router.handler.DeletePreferences)
			r.Get("/completed", router.handler.GetCompleted)
			r.Post("/sync", router.handler.PostSync)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Get("/status", router.handler.GetSyncStatus)
			r.Get("/queue", router.handler.GetSyncQueue)
			r.Post("/drain", router.handler.PostSyncDrain)
		})

		r.Route("/connectivity", func(r chi.Router) {
			r.Get("/", router.handler.GetConnectivity)
			r.Post("/check", router.handler.PostConnectivityCheck)
			r.Post("/signal", router.handler.PostConnectivitySignal)
		})

		r.Get("/ws", router.handler.WebSocket)
	})

	return r
}

// ListenAddr returns the configured bind address.
func (router *Router) ListenAddr() string {
	return router.cfg.ListenAddr
}
