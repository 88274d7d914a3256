package mockbackend

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/resource-dashboard/internal"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/assignment"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/auth"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/project"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
	"github.com/frahmantamala/resource-dashboard/internal/transport"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	resp, err := h.Service.Login(req)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller in the request context.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}
		user, err := h.Service.Authenticate(token)
		if err != nil {
			h.WriteAppError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(internal.ContextWithIdentity(r.Context(), user)))
	})
}

// RequireManager must run after Authenticate.
func (h *Handler) RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := internal.IdentityFromContext(r.Context())
		if !ok || user.Role != identity.Manager {
			h.WriteAppError(w, internal.ErrUnauthorizedAccess)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.Projects())
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Project(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var payload project.Payload
	if !h.DecodeJSON(w, r, &payload) {
		return
	}
	manager, _ := internal.IdentityFromContext(r.Context())
	p, err := h.Service.CreateProject(manager, payload)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var payload project.Payload
	if !h.DecodeJSON(w, r, &payload) {
		return
	}
	p, err := h.Service.UpdateProject(chi.URLParam(r, "id"), payload)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) GetSkillGap(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	gap, err := h.Service.SkillGap(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, gap.Response(id))
}

func (h *Handler) ListEngineers(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.Engineers())
}

func (h *Handler) GetEngineer(w http.ResponseWriter, r *http.Request) {
	e, err := h.Service.Engineer(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) GetCapacity(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.Capacity(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	a, err := h.Service.Availability(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.Assignments())
}

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var payload assignment.Payload
	if !h.DecodeJSON(w, r, &payload) {
		return
	}
	a, err := h.Service.CreateAssignment(payload)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	var payload assignment.Payload
	if !h.DecodeJSON(w, r, &payload) {
		return
	}
	a, err := h.Service.UpdateAssignment(chi.URLParam(r, "id"), payload)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteAssignment(chi.URLParam(r, "id")); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
