package dashboard

import (
	"net/http"

	"github.com/frahmantamala/resource-dashboard/internal"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
	"github.com/frahmantamala/resource-dashboard/internal/transport"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Auth  *Auth
	Views *Service
}

func NewHandler(authSvc *Auth, views *Service, base *transport.BaseHandler) *Handler {
	return &Handler{BaseHandler: base, Auth: authSvc, Views: views}
}

type loginView struct {
	View    string      `json:"view"`
	Session SessionInfo `json:"session"`
	Notices []Notice    `json:"notices"`
}

// viewer is set by the access guard on every gated route.
func (h *Handler) viewer(w http.ResponseWriter, r *http.Request) (identity.Identity, bool) {
	user, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, identity.LoginPath, http.StatusSeeOther)
		return identity.Identity{}, false
	}
	return user, true
}

// writeResult answers with the view and the status of err, if any.
func (h *Handler) writeResult(w http.ResponseWriter, view interface{}, err error) {
	status := http.StatusOK
	if err != nil {
		status = http.StatusInternalServerError
		if appErr, ok := internal.IsAppError(err); ok {
			status = appErr.StatusCode
		}
	}
	h.WriteJSON(w, status, view)
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, loginView{View: "login", Session: h.Auth.WhoAmI(), Notices: []Notice{}})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if !h.DecodeJSON(w, r, &creds) {
		return
	}
	result, err := h.Auth.Login(r.Context(), creds)
	h.writeResult(w, result, err)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	result, err := h.Auth.Logout(r.Context())
	h.writeResult(w, result, err)
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Auth.WhoAmI())
}

func (h *Handler) Manager(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, h.Views.ManagerDashboard(r.Context(), viewer, r.URL.Query().Get("skill")))
}

func (h *Handler) Engineer(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, h.Views.EngineerDashboard(r.Context(), viewer))
}

func (h *Handler) Projects(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, h.Views.Projects(r.Context(), viewer, r.URL.Query().Get("status")))
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var form ProjectForm
	if !h.DecodeJSON(w, r, &form) {
		return
	}
	view, err := h.Views.CreateProject(r.Context(), viewer, form)
	h.writeResult(w, view, err)
}

func (h *Handler) ProjectDetails(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, h.Views.ProjectDetails(r.Context(), viewer, chi.URLParam(r, "id")))
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var form ProjectForm
	if !h.DecodeJSON(w, r, &form) {
		return
	}
	view, err := h.Views.UpdateProject(r.Context(), viewer, chi.URLParam(r, "id"), form)
	h.writeResult(w, view, err)
}

func (h *Handler) Assignments(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, h.Views.Assignments(r.Context(), viewer))
}

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var form AssignmentForm
	if !h.DecodeJSON(w, r, &form) {
		return
	}
	view, err := h.Views.CreateAssignment(r.Context(), viewer, form)
	h.writeResult(w, view, err)
}

func (h *Handler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var form AssignmentForm
	if !h.DecodeJSON(w, r, &form) {
		return
	}
	view, err := h.Views.UpdateAssignment(r.Context(), viewer, chi.URLParam(r, "id"), form)
	h.writeResult(w, view, err)
}

func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	view, err := h.Views.DeleteAssignment(r.Context(), viewer, chi.URLParam(r, "id"))
	h.writeResult(w, view, err)
}
