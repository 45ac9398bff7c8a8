// SPDX-License-Identifier: MIT

// Package api exposes the pipeline over HTTP: job control, product
// catalog queries, health endpoints, and Prometheus metrics.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rinman24/arcobs/internal/catalog"
	"github.com/rinman24/arcobs/internal/obs"
)

// Server routes HTTP requests to the observation manager and catalog.
type Server struct {
	manager *obs.Manager
	catalog *catalog.Catalog

	requestsPerMinute int
}

// Option adjusts server behaviour.
type Option func(*Server)

// WithRequestsPerMinute caps per-client request rate on /api routes.
// Zero disables the limiter.
func WithRequestsPerMinute(n int) Option {
	return func(s *Server) { s.requestsPerMinute = n }
}

// New builds a server over the manager and catalog.
func New(manager *obs.Manager, cat *catalog.Catalog, opts ...Option) *Server {
	s := &Server{
		manager:           manager,
		catalog:           cat,
		requestsPerMinute: 120,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router assembles the middleware stack and route table.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(recoverer)
	r.Use(requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if s.requestsPerMinute > 0 {
			r.Use(httprate.LimitByIP(s.requestsPerMinute, time.Minute))
		}
		r.Post("/jobs/daily", s.handleDailyFiles)
		r.Post("/jobs/masks", s.handleDailyMasks)
		r.Post("/rename", s.handleRename)
		r.Get("/jobs", s.handleJobs)
		r.Get("/jobs/{id}", s.handleJob)
		r.Get("/products/{observatory}", s.handleProductsByDate)
		r.Get("/products/{observatory}/{instrument}", s.handleProductsByMonth)
		r.Get("/summaries/{observatory}/{instrument}", s.handleMaskSummaries)
	})
	return r
}
