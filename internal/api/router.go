package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pnab-cultura/engine/internal/api/handlers"
	mw "github.com/pnab-cultura/engine/internal/api/middleware"
	"github.com/pnab-cultura/engine/internal/models"
)

type Dependencies struct {
	HMACSecret     []byte
	RateLimitRPS   float64
	RateLimitBurst int

	HealthHandler      *handlers.HealthHandler
	AuthHandler        *handlers.AuthHandler
	ProponentsHandler  *handlers.ProponentsHandler
	NoticesHandler     *handlers.NoticesHandler
	ProjectsHandler    *handlers.ProjectsHandler
	EvaluationsHandler *handlers.EvaluationsHandler
	DocumentsHandler   *handlers.DocumentsHandler
}

// NewRouter builds the HTTP API. ctx bounds background work owned by the
// middleware stack.
func NewRouter(ctx context.Context, dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	if dep.RateLimitRPS > 0 {
		r.Use(mw.RateLimit(ctx, dep.RateLimitRPS, dep.RateLimitBurst))
	}
	r.Use(chimid.Compress(5))

	// Health endpoints
	hh := dep.HealthHandler
	if hh == nil {
		hh = handlers.NewHealthHandler(nil)
	}
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	adminOnly := mw.RequireRole(models.RoleAdmin)

	r.Route("/api/v1", func(api chi.Router) {
		// Auth routes (public)
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", dep.AuthHandler.Register)
			ar.Post("/login", dep.AuthHandler.Login)
		})

		// Protected routes
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.HMACSecret))

			protected.Route("/proponents", func(pr chi.Router) {
				pr.Use(mw.RequireRole(models.RoleProponent, models.RoleAdmin))
				pr.Get("/", dep.ProponentsHandler.List)
				pr.Post("/", dep.ProponentsHandler.Create)
				pr.Get("/{id}", dep.ProponentsHandler.Get)
				pr.Put("/{id}", dep.ProponentsHandler.Update)
			})

			protected.Route("/notices", func(nr chi.Router) {
				nr.Get("/", dep.NoticesHandler.List)
				nr.Get("/{id}", dep.NoticesHandler.Get)
				nr.With(adminOnly).Post("/", dep.NoticesHandler.Create)
			})

			protected.Route("/projects", func(pr chi.Router) {
				pr.Get("/", dep.ProjectsHandler.List)
				pr.Post("/", dep.ProjectsHandler.Create)
				pr.Route("/{id}", func(p chi.Router) {
					p.Get("/", dep.ProjectsHandler.Get)
					p.Put("/", dep.ProjectsHandler.Update)
					p.Delete("/", dep.ProjectsHandler.Delete)
					p.Post("/validate", dep.ProjectsHandler.Validate)
					p.Post("/submit", dep.ProjectsHandler.Submit)

					p.Get("/evaluations", dep.ProjectsHandler.ListEvaluations)
					p.Get("/documents", dep.ProjectsHandler.ListDocuments)

					p.Group(func(admin chi.Router) {
						admin.Use(adminOnly)
						admin.Post("/evaluations", dep.ProjectsHandler.AssignEvaluator)
						admin.Post("/aggregate", dep.ProjectsHandler.Aggregate)
						admin.Post("/decision", dep.ProjectsHandler.Decide)
						admin.Post("/pendencies", dep.ProjectsHandler.FlagPendencies)
						admin.Delete("/pendencies", dep.ProjectsHandler.ResolvePendencies)
						admin.Post("/execution", dep.ProjectsHandler.StartExecution)
						admin.Post("/completion", dep.ProjectsHandler.Complete)
						admin.Post("/documents", dep.ProjectsHandler.AddDocument)
						admin.Post("/documents/checklist", dep.ProjectsHandler.GenerateChecklist)
					})
				})
			})

			protected.Route("/evaluations", func(er chi.Router) {
				er.Use(mw.RequireRole(models.RoleEvaluator))
				er.Get("/", dep.EvaluationsHandler.ListAssigned)
				er.Post("/{id}/start", dep.EvaluationsHandler.Start)
				er.Post("/{id}/record", dep.EvaluationsHandler.Record)
			})

			protected.With(mw.RequireRole(models.RoleProponent, models.RoleAdmin)).
				Patch("/documents/{id}", dep.DocumentsHandler.Update)
		})
	})

	return r
}
