package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
	"github.com/frahmantamala/resource-dashboard/internal/dashboard"
	"github.com/frahmantamala/resource-dashboard/internal/guard"
	"github.com/frahmantamala/resource-dashboard/internal/transport/middleware"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Routes carries everything the navigation surface is built from. Metrics
// may be nil.
type Routes struct {
	Dashboard   *dashboard.Handler
	Guard       *guard.Guard
	Supersede   *middleware.Supersede
	Health      *HealthHandler
	Metrics     http.Handler
	MetricsPath string
	Logger      *slog.Logger
}

// NewRouter builds the route table shared by the local HTTP server and the
// open command.
func NewRouter(routes Routes) *chi.Mux {
	router := chi.NewRouter()
	RegisterAllRoutes(router, routes)
	return router
}

func RegisterAllRoutes(router *chi.Mux, routes Routes) {
	h := routes.Dashboard

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(routes.Logger))
	router.Use(middleware.Logging(routes.Logger))
	router.Use(chiMiddleware.StripSlashes)

	if routes.Health != nil {
		router.Get("/healthz", routes.Health.healthCheckHandler)
		router.Get("/ping", routes.Health.pingHandler)
	}
	if routes.Metrics != nil && routes.MetricsPath != "" {
		router.Handle(routes.MetricsPath, routes.Metrics)
	}

	// Public
	router.Get(identity.LoginPath, h.LoginPage)
	router.Post(identity.LoginPath, h.Login)
	router.Post("/logout", h.Logout)
	router.Get("/session", h.Session)

	// Views
	router.Group(func(r chi.Router) {
		if routes.Supersede != nil {
			r.Use(routes.Supersede.Middleware)
		}

		r.With(routes.Guard.Require(identity.Manager), middleware.UserContext).
			Get(identity.ManagerHomePath, h.Manager)
		r.With(routes.Guard.Require(identity.Engineer), middleware.UserContext).
			Get(identity.EngineerHomePath, h.Engineer)

		r.Route("/projects", func(pr chi.Router) {
			pr.Use(routes.Guard.Require(identity.Manager))
			pr.Use(middleware.UserContext)
			pr.Get("/", h.Projects)
			pr.Post("/", h.CreateProject)
			pr.Get("/{id}", h.ProjectDetails)
			pr.Put("/{id}", h.UpdateProject)
		})

		r.Route("/assignments", func(ar chi.Router) {
			ar.Use(routes.Guard.Require())
			ar.Use(middleware.UserContext)
			ar.Get("/", h.Assignments)
			ar.Post("/", h.CreateAssignment)
			ar.Put("/{id}", h.UpdateAssignment)
			ar.Delete("/{id}", h.DeleteAssignment)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, identity.LoginPath, http.StatusSeeOther)
	})
}
