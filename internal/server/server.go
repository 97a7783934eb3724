// Package server is the HTTP API for the public site forms and the
// loan-officer admin console.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brightpath-mortgage/intake-api/internal/config"
	"github.com/brightpath-mortgage/intake-api/internal/extract"
	"github.com/brightpath-mortgage/intake-api/internal/store"
)

// Server bundles the handlers and their dependencies.
type Server struct {
	store     store.Store
	pipeline  *extract.Pipeline
	maxUpload int64
	now       func() time.Time // injected for snapshot tests
}

// New creates a Server. pipeline may be nil, which disables PDF uploads.
func New(st store.Store, pipeline *extract.Pipeline, uploadMax int64) *Server {
	if uploadMax <= 0 {
		uploadMax = 15 << 20
	}
	return &Server{
		store:     st,
		pipeline:  pipeline,
		maxUpload: uploadMax,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Router assembles the chi router with middleware and all routes.
func (s *Server) Router(cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(requestLogger)

	limiter := newSubmitLimiter(cfg.SubmitRPS, cfg.SubmitBurst)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Public form submissions, rate limited per client IP.
		r.Group(func(r chi.Router) {
			r.Use(limiter.middleware)
			r.Post("/contact", s.handleContact)
			r.Post("/schedule-call", s.handleScheduleCall)
			r.Post("/rate-tracker", s.handleRateTracker)
			r.Post("/pre-approval", s.handlePreApproval)
		})

		r.Post("/pdf/upload", s.handlePDFUpload)
		r.Get("/pdf/documents", s.handleListDocuments)
		r.Get("/pdf/documents/{id}", s.handleGetDocument)
		r.Delete("/pdf/documents/{id}", s.handleDeleteDocument)

		// Admin console.
		r.Post("/login", s.handleLogin)
		r.Get("/leads", s.handleListLeads)
		r.Get("/pre-approvals", s.handleListPreApprovals)
		r.Get("/vault/snapshot", s.handleVaultSnapshot)
		r.Get("/vault/export", s.handleVaultExport)
		r.Post("/vault/attachments", s.handleCreateAttachment)
		r.Get("/vault/attachments", s.handleListAttachments)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "store unreachable")
		return
	}
	respondOK(w)
}
