// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api exposes the dispatcher over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/bonitasoft/bonita-engine-sub001/internal/api/middleware"
	"github.com/bonitasoft/bonita-engine-sub001/internal/dispatch"
	"github.com/bonitasoft/bonita-engine-sub001/internal/health"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds invoke request bodies.
const maxBodyBytes = 4 << 20

// Invoker runs one dispatched call.
type Invoker interface {
	Invoke(ctx context.Context, opts dispatch.Options, api, method string, paramTypes []string, args []any) (any, error)
}

// Config configures the HTTP surface.
type Config struct {
	Service      string // tracing service name; empty disables tracing
	RateLimitRPS int
}

// Server is the HTTP front of the dispatcher.
type Server struct {
	invoker Invoker
	health  *health.Manager
	cfg     Config
	router  chi.Router
}

// New creates a Server. hm serves the probes; nil means no component checks.
func New(cfg Config, invoker Invoker, hm *health.Manager) *Server {
	if invoker == nil {
		panic("api: invoker is required")
	}
	if hm == nil {
		hm = health.NewManager("")
	}
	s := &Server{
		invoker: invoker,
		health:  hm,
		cfg:     cfg,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableMetrics:  true,
		TracingService: s.cfg.Service,
		EnableLogging:  true,
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.cfg.RateLimitRPS > 0 {
			r.Use(middleware.APIRateLimit(s.cfg.RateLimitRPS))
		}
		r.Post(InvokePath, s.handleInvoke)
	})
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}
