package dashboard

import (
	"context"
	"strings"

	"github.com/frahmantamala/resource-dashboard/internal/core/common/validation"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/assignment"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/engineer"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/project"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
	"github.com/frahmantamala/resource-dashboard/internal/visibility"
	"golang.org/x/sync/errgroup"
)

type AssignmentForm struct {
	EngineerID           string `json:"engineerId"`
	ProjectID            string `json:"projectId"`
	AllocationPercentage int    `json:"allocationPercentage"`
	StartDate            string `json:"startDate"`
	EndDate              string `json:"endDate"`
	Role                 string `json:"role"`
}

func (f AssignmentForm) Payload() assignment.Payload {
	return assignment.Payload{
		EngineerID:           strings.TrimSpace(f.EngineerID),
		ProjectID:            strings.TrimSpace(f.ProjectID),
		AllocationPercentage: f.AllocationPercentage,
		StartDate:            strings.TrimSpace(f.StartDate),
		EndDate:              strings.TrimSpace(f.EndDate),
		Role:                 strings.TrimSpace(f.Role),
	}
}

type AssignmentsView struct {
	View        string                  `json:"view"`
	Viewer      identity.Identity       `json:"viewer"`
	Title       string                  `json:"title"`
	CanEdit     bool                    `json:"canEdit"`
	Assignments []assignment.Assignment `json:"assignments"`
	Engineers   []engineer.Engineer     `json:"engineers,omitempty"`
	Projects    []project.Project       `json:"projects,omitempty"`
	Notices     []Notice                `json:"notices"`
}

// Assignments lists what the viewer may see. Managers also get the engineer
// and project pick-lists for the editor.
func (s *Service) Assignments(ctx context.Context, viewer identity.Identity) AssignmentsView {
	view := AssignmentsView{
		View:        "assignments",
		Viewer:      viewer,
		Assignments: []assignment.Assignment{},
		Notices:     []Notice{},
	}
	switch viewer.Role {
	case identity.Manager:
		view.Title = "Manage Assignments"
		view.CanEdit = true
	case identity.Engineer:
		view.Title = "My Assignments"
	}

	var (
		all       []assignment.Assignment
		listErr   error
		engineers []engineer.Engineer
		projects  []project.Project
		pickErr   error
	)

	var g errgroup.Group
	g.Go(func() error {
		all, listErr = s.backend.ListAssignments(ctx)
		return nil
	})
	if view.CanEdit {
		g.Go(func() error {
			var pg errgroup.Group
			var engErr, projErr error
			pg.Go(func() error {
				engineers, engErr = s.backend.ListEngineers(ctx)
				return nil
			})
			pg.Go(func() error {
				projects, projErr = s.backend.ListProjects(ctx)
				return nil
			})
			_ = pg.Wait()
			if engErr != nil {
				pickErr = engErr
			} else {
				pickErr = projErr
			}
			return nil
		})
	}
	_ = g.Wait()

	if listErr != nil {
		s.logFetch(ctx, "assignments", listErr)
		view.Notices = append(view.Notices, failure("Failed to load assignments."))
	} else {
		view.Assignments = visibility.VisibleAssignments(all, viewer)
	}

	if view.CanEdit {
		if pickErr != nil {
			s.logFetch(ctx, "engineers and projects", pickErr)
			view.Notices = append(view.Notices, failure("Failed to load engineers or projects."))
		} else {
			view.Engineers = engineers
			view.Projects = projects
		}
	}
	return view
}

// CreateAssignment submits the form, then re-fetches and re-filters the list.
func (s *Service) CreateAssignment(ctx context.Context, viewer identity.Identity, form AssignmentForm) (AssignmentsView, error) {
	notice, err := s.mutateAssignment(ctx, viewer, form, "Creation failed", func(p assignment.Payload) error {
		created, err := s.backend.CreateAssignment(ctx, p)
		if err == nil {
			s.logger.InfoContext(ctx, "assignment created", "assignment_id", created.ID)
		}
		return err
	})
	if err == nil {
		notice = success("Assignment created successfully")
	}
	return s.afterMutation(ctx, viewer, notice), err
}

func (s *Service) UpdateAssignment(ctx context.Context, viewer identity.Identity, id string, form AssignmentForm) (AssignmentsView, error) {
	notice, err := s.mutateAssignment(ctx, viewer, form, "Update failed", func(p assignment.Payload) error {
		_, err := s.backend.UpdateAssignment(ctx, id, p)
		return err
	})
	if err == nil {
		notice = success("Assignment updated successfully")
	}
	return s.afterMutation(ctx, viewer, notice), err
}

func (s *Service) DeleteAssignment(ctx context.Context, viewer identity.Identity, id string) (AssignmentsView, error) {
	var notice Notice
	err := requireManager(viewer)
	if err != nil {
		notice = failure(messageOr(err, "Failed to delete"))
	} else if err = s.backend.DeleteAssignment(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "assignment delete failed", "assignment_id", id, "error", err)
		notice = failure("Failed to delete")
	} else {
		notice = success("Assignment deleted")
	}
	return s.afterMutation(ctx, viewer, notice), err
}

func (s *Service) mutateAssignment(ctx context.Context, viewer identity.Identity, form AssignmentForm, fallback string, send func(assignment.Payload) error) (Notice, error) {
	if err := requireManager(viewer); err != nil {
		return failure(messageOr(err, fallback)), err
	}
	payload := form.Payload()
	if err := validation.ValidateAssignmentPayload(payload); err != nil {
		return failure(err.GetDetailedMessage()), err
	}
	if err := send(payload); err != nil {
		s.logger.WarnContext(ctx, "assignment mutation failed", "error", err)
		return failure(messageOr(err, fallback)), err
	}
	return Notice{}, nil
}

// afterMutation rebuilds the list the same way a fresh navigation does, so a
// mutation can never surface a record the viewer may not see.
func (s *Service) afterMutation(ctx context.Context, viewer identity.Identity, notice Notice) AssignmentsView {
	view := s.Assignments(ctx, viewer)
	view.Notices = append([]Notice{notice}, view.Notices...)
	return view
}
