package dashboard

import (
	"context"
	"strings"

	"github.com/frahmantamala/resource-dashboard/internal/core/common/validation"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/assignment"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/project"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
	"github.com/frahmantamala/resource-dashboard/internal/visibility"
	"golang.org/x/sync/errgroup"
)

// ProjectForm is the project editor's input. RequiredSkills is a comma
// separated list.
type ProjectForm struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	RequiredSkills string `json:"requiredSkills"`
	TeamSize       int    `json:"teamSize"`
	Status         string `json:"status"`
}

func (f ProjectForm) Payload() project.Payload {
	status := project.Status(strings.TrimSpace(f.Status))
	if status == "" {
		status = project.StatusPlanning
	}
	teamSize := f.TeamSize
	if teamSize == 0 {
		teamSize = 1
	}
	return project.Payload{
		Name:           strings.TrimSpace(f.Name),
		Description:    strings.TrimSpace(f.Description),
		StartDate:      strings.TrimSpace(f.StartDate),
		EndDate:        strings.TrimSpace(f.EndDate),
		RequiredSkills: visibility.ParseSkills(f.RequiredSkills),
		TeamSize:       teamSize,
		Status:         status,
	}
}

// FormFromProject pre-fills the editor with p.
func FormFromProject(p project.Project) ProjectForm {
	return ProjectForm{
		Name:           p.Name,
		Description:    p.Description,
		StartDate:      p.StartDate.Format(validation.DateLayout),
		EndDate:        p.EndDate.Format(validation.DateLayout),
		RequiredSkills: strings.Join(p.RequiredSkills, ", "),
		TeamSize:       p.TeamSize,
		Status:         string(p.Status),
	}
}

type ProjectsView struct {
	View         string            `json:"view"`
	Viewer       identity.Identity `json:"viewer"`
	StatusFilter string            `json:"statusFilter"`
	Projects     []project.Project `json:"projects"`
	Notices      []Notice          `json:"notices"`
}

func (s *Service) Projects(ctx context.Context, viewer identity.Identity, statusFilter string) ProjectsView {
	if statusFilter == "" {
		statusFilter = visibility.StatusAll
	}
	view := ProjectsView{
		View:         "projects",
		Viewer:       viewer,
		StatusFilter: statusFilter,
		Projects:     []project.Project{},
		Notices:      []Notice{},
	}

	projects, err := s.backend.ListProjects(ctx)
	if err != nil {
		s.logFetch(ctx, "projects", err)
		view.Notices = append(view.Notices, failure("Failed to load projects."))
		return view
	}
	view.Projects = visibility.FilterProjectsByStatus(projects, statusFilter)
	return view
}

// CreateProject submits the form and returns the refreshed project list. The
// error is non-nil when nothing was created.
func (s *Service) CreateProject(ctx context.Context, viewer identity.Identity, form ProjectForm) (ProjectsView, error) {
	notice, err := s.createProject(ctx, viewer, form)
	view := s.Projects(ctx, viewer, visibility.StatusAll)
	view.Notices = append([]Notice{notice}, view.Notices...)
	return view, err
}

func (s *Service) createProject(ctx context.Context, viewer identity.Identity, form ProjectForm) (Notice, error) {
	if err := requireManager(viewer); err != nil {
		return failure(messageOr(err, "Creation failed")), err
	}
	payload := form.Payload()
	if err := validation.ValidateProjectPayload(payload); err != nil {
		return failure(err.GetDetailedMessage()), err
	}
	created, err := s.backend.CreateProject(ctx, payload)
	if err != nil {
		s.logger.WarnContext(ctx, "project creation failed", "error", err)
		return failure(messageOr(err, "Creation failed")), err
	}
	s.logger.InfoContext(ctx, "project created", "project_id", created.ID)
	return success("Project created successfully"), nil
}

type ProjectDetailsView struct {
	View        string                  `json:"view"`
	Viewer      identity.Identity       `json:"viewer"`
	ProjectID   string                  `json:"projectId"`
	Project     *project.Project        `json:"project"`
	Form        *ProjectForm            `json:"form,omitempty"`
	Assignments []assignment.Assignment `json:"assignments"`
	SkillGap    *visibility.SkillGap    `json:"skillGap"`
	Coverage    visibility.Coverage     `json:"coverage"`
	Notices     []Notice                `json:"notices"`
}

// ProjectDetails loads the project, its assignments and its skill gap
// concurrently. A missing project leaves Project nil.
func (s *Service) ProjectDetails(ctx context.Context, viewer identity.Identity, id string) ProjectDetailsView {
	view := ProjectDetailsView{
		View:        "project",
		Viewer:      viewer,
		ProjectID:   id,
		Assignments: []assignment.Assignment{},
		Notices:     []Notice{},
	}

	var (
		p          *project.Project
		projectErr error
		all        []assignment.Assignment
		assignErr  error
		gap        visibility.SkillGap
	)

	var g errgroup.Group
	g.Go(func() error {
		p, projectErr = s.backend.GetProject(ctx, id)
		return nil
	})
	g.Go(func() error {
		all, assignErr = s.backend.ListAssignments(ctx)
		return nil
	})
	g.Go(func() error {
		resp, err := s.backend.GetSkillGap(ctx, id)
		if err != nil {
			s.logFetch(ctx, "skill gap", err)
			return nil
		}
		gap = visibility.FromResponse(*resp)
		return nil
	})
	_ = g.Wait()

	if projectErr != nil {
		s.logFetch(ctx, "project", projectErr)
		view.Notices = append(view.Notices, failure("Failed to load project details."))
	} else {
		view.Project = p
		form := FormFromProject(*p)
		view.Form = &form
	}

	if assignErr != nil {
		s.logFetch(ctx, "assignments", assignErr)
		view.Notices = append(view.Notices, failure("Failed to load assignments for this project."))
	} else {
		view.Assignments = visibility.ProjectAssignments(visibility.VisibleAssignments(all, viewer), id)
	}

	if gap.Status == visibility.Computed {
		view.SkillGap = &gap
	}
	view.Coverage = gap.Coverage()
	return view
}

// UpdateProject submits the editor and reloads the details.
func (s *Service) UpdateProject(ctx context.Context, viewer identity.Identity, id string, form ProjectForm) (ProjectDetailsView, error) {
	notice, err := s.updateProject(ctx, viewer, id, form)
	view := s.ProjectDetails(ctx, viewer, id)
	view.Notices = append([]Notice{notice}, view.Notices...)
	return view, err
}

func (s *Service) updateProject(ctx context.Context, viewer identity.Identity, id string, form ProjectForm) (Notice, error) {
	if err := requireManager(viewer); err != nil {
		return failure(messageOr(err, "Update failed")), err
	}
	payload := form.Payload()
	if err := validation.ValidateProjectPayload(payload); err != nil {
		return failure(err.GetDetailedMessage()), err
	}
	if _, err := s.backend.UpdateProject(ctx, id, payload); err != nil {
		s.logger.WarnContext(ctx, "project update failed", "project_id", id, "error", err)
		return failure(messageOr(err, "Update failed")), err
	}
	return success("Project updated successfully"), nil
}
