// Package dashboard assembles the views of the resource dashboard from the
// backend's answers. Views never fail: a failed fetch degrades the affected
// section and adds a notice.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/resource-dashboard/internal"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/assignment"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/auth"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/engineer"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/project"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/skillgap"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
	"github.com/frahmantamala/resource-dashboard/internal/gateway"
	"github.com/frahmantamala/resource-dashboard/internal/session"
)

// Backend is the part of the REST gateway the views use.
type Backend interface {
	Login(ctx context.Context, email, password string) (*auth.LoginResponse, error)

	ListProjects(ctx context.Context) ([]project.Project, error)
	GetProject(ctx context.Context, id string) (*project.Project, error)
	CreateProject(ctx context.Context, payload project.Payload) (*project.Project, error)
	UpdateProject(ctx context.Context, id string, payload project.Payload) (*project.Project, error)
	GetSkillGap(ctx context.Context, projectID string) (*skillgap.Response, error)

	ListEngineers(ctx context.Context) ([]engineer.Engineer, error)
	GetEngineer(ctx context.Context, id string) (*engineer.Engineer, error)
	GetCapacity(ctx context.Context, engineerID string) (*engineer.Capacity, error)
	FetchLoads(ctx context.Context, engineers []engineer.Engineer, now time.Time) ([]gateway.Load, error)

	ListAssignments(ctx context.Context) ([]assignment.Assignment, error)
	CreateAssignment(ctx context.Context, payload assignment.Payload) (*assignment.Assignment, error)
	UpdateAssignment(ctx context.Context, id string, payload assignment.Payload) (*assignment.Assignment, error)
	DeleteAssignment(ctx context.Context, id string) error
}

// Sessions is satisfied by *session.Store.
type Sessions interface {
	Current() session.Session
	SetAuth(ctx context.Context, token string, user identity.Identity) error
	ClearAuth(ctx context.Context) error
}

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient, non-blocking message attached to a view.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

func success(message string) Notice {
	return Notice{Level: NoticeSuccess, Message: message}
}

func failure(message string) Notice {
	return Notice{Level: NoticeError, Message: message}
}

// messageOr prefers what the backend said about err; fallback covers errors
// that never reached it.
func messageOr(err error, fallback string) string {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		return fallback
	}
	if appErr.Type == internal.ErrorTypeExternal || appErr.Type == internal.ErrorTypeInternal {
		return fallback
	}
	if msg := appErr.GetDetailedMessage(); msg != "" {
		return msg
	}
	return fallback
}

// Service builds views for the signed-in viewer.
type Service struct {
	backend Backend
	now     func() time.Time
	logger  *slog.Logger
}

func NewService(backend Backend, logger *slog.Logger) *Service {
	return &Service{backend: backend, now: time.Now, logger: logger}
}

func requireManager(viewer identity.Identity) error {
	if viewer.Role != identity.Manager {
		return internal.ErrUnauthorizedAccess
	}
	return nil
}

func (s *Service) logFetch(ctx context.Context, what string, err error) {
	if errors.Is(err, context.Canceled) {
		s.logger.DebugContext(ctx, "fetch cancelled", "what", what)
		return
	}
	s.logger.WarnContext(ctx, "fetch failed", "what", what, "error", err)
}
