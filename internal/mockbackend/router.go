package mockbackend

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/resource-dashboard/api"
	"github.com/frahmantamala/resource-dashboard/internal/transport/middleware"
	"github.com/frahmantamala/resource-dashboard/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// APIPrefix is where the REST contract is mounted.
const APIPrefix = "/api"

// NewRouter serves the contract under /api, plus the contract itself and a
// swagger UI for it.
func NewRouter(h *Handler, logger *slog.Logger) (*chi.Mux, error) {
	validator, err := NewRequestValidator(api.BackendSpec, APIPrefix, h.BaseHandler)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.Logging(logger))
	router.Use(chiMiddleware.StripSlashes)

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.BackendSpec)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route(APIPrefix, func(r chi.Router) {
		r.Group(func(pub chi.Router) {
			pub.Use(validator.Middleware)
			pub.Post("/auth/login", h.Login)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Authenticate)
			pr.Use(validator.Middleware)

			pr.Get("/projects", h.ListProjects)
			pr.Get("/projects/{id}", h.GetProject)
			pr.Get("/projects/{id}/skill-gap", h.GetSkillGap)

			pr.Get("/engineers", h.ListEngineers)
			pr.Get("/engineers/{id}", h.GetEngineer)
			pr.Get("/engineers/{id}/capacity", h.GetCapacity)
			pr.Get("/engineers/{id}/availability", h.GetAvailability)

			pr.Get("/assignments", h.ListAssignments)

			pr.Group(func(mr chi.Router) {
				mr.Use(h.RequireManager)
				mr.Post("/projects", h.CreateProject)
				mr.Put("/projects/{id}", h.UpdateProject)
				mr.Post("/assignments", h.CreateAssignment)
				mr.Put("/assignments/{id}", h.UpdateAssignment)
				mr.Delete("/assignments/{id}", h.DeleteAssignment)
			})
		})
	})

	return router, nil
}

// New builds a ready-to-serve backend, seeded when seed is true.
func New(store *Store, tokens *TokenIssuer, bcryptCost int, seed bool, logger *slog.Logger) (http.Handler, *Service, error) {
	svc := NewService(store, tokens, bcryptCost, logger)
	if seed {
		if err := svc.Seed(); err != nil {
			return nil, nil, err
		}
	}
	router, err := NewRouter(NewHandler(svc, logger), logger)
	if err != nil {
		return nil, nil, err
	}
	return router, svc, nil
}
