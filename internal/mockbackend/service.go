package mockbackend

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/resource-dashboard/internal"
	"github.com/frahmantamala/resource-dashboard/internal/core/common/validation"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/assignment"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/auth"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/engineer"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/project"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
	"github.com/frahmantamala/resource-dashboard/internal/visibility"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	store      *Store
	tokens     *TokenIssuer
	bcryptCost int
	now        func() time.Time
	logger     *slog.Logger
}

func NewService(store *Store, tokens *TokenIssuer, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{store: store, tokens: tokens, bcryptCost: bcryptCost, now: time.Now, logger: logger}
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) Login(req auth.LoginRequest) (*auth.LoginResponse, error) {
	if err := validation.ValidateCredentials(req.Email, req.Password); err != nil {
		return nil, err
	}

	account, ok := s.store.AccountByEmail(req.Email)
	if !ok {
		return nil, internal.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account.Identity)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	s.logger.Info("user logged in", "user_id", account.ID, "role", account.Role.String())
	return &auth.LoginResponse{Token: token, User: account.Identity}, nil
}

func (s *Service) Authenticate(token string) (identity.Identity, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return identity.Identity{}, err
	}
	account, ok := s.store.Account(claims.UserID)
	if !ok {
		return identity.Identity{}, internal.ErrInvalidToken
	}
	return account.Identity, nil
}

func (s *Service) Projects() []project.Project {
	return s.store.Projects()
}

func (s *Service) Project(id string) (*project.Project, error) {
	p, ok := s.store.Project(id)
	if !ok {
		return nil, internal.ErrProjectNotFound
	}
	return &p, nil
}

func (s *Service) CreateProject(manager identity.Identity, payload project.Payload) (*project.Project, error) {
	p, err := projectFromPayload(payload)
	if err != nil {
		return nil, err
	}
	p.Manager = project.ManagerRef{ID: manager.ID, Name: manager.Name, Email: manager.Email}
	saved := s.store.SaveProject(p)
	return &saved, nil
}

func (s *Service) UpdateProject(id string, payload project.Payload) (*project.Project, error) {
	existing, ok := s.store.Project(id)
	if !ok {
		return nil, internal.ErrProjectNotFound
	}
	p, err := projectFromPayload(payload)
	if err != nil {
		return nil, err
	}
	p.ID = existing.ID
	p.Manager = existing.Manager
	saved := s.store.SaveProject(p)
	return &saved, nil
}

// SkillGap compares the project's requirements with the skills of engineers
// assigned to it.
func (s *Service) SkillGap(projectID string) (visibility.SkillGap, error) {
	p, ok := s.store.Project(projectID)
	if !ok {
		return visibility.SkillGap{}, internal.ErrProjectNotFound
	}

	seen := make(map[string]bool)
	var assigned []engineer.Engineer
	for _, a := range visibility.ProjectAssignments(s.store.Assignments(), projectID) {
		if seen[a.Engineer.ID] {
			continue
		}
		seen[a.Engineer.ID] = true
		if e, ok := s.store.Engineer(a.Engineer.ID); ok {
			assigned = append(assigned, e)
		}
	}
	return visibility.ComputeSkillGap(p.RequiredSkills, assigned), nil
}

func (s *Service) Engineers() []engineer.Engineer {
	return s.store.Engineers()
}

func (s *Service) Engineer(id string) (*engineer.Engineer, error) {
	e, ok := s.store.Engineer(id)
	if !ok {
		return nil, internal.NewNotFoundError("Engineer not found", internal.ErrCodeEngineerNotFound)
	}
	return &e, nil
}

// Capacity sums the allocations of assignments active today.
func (s *Service) Capacity(engineerID string) (*engineer.Capacity, error) {
	e, err := s.Engineer(engineerID)
	if err != nil {
		return nil, err
	}
	var total float64
	for _, a := range s.store.ActiveAssignments(engineerID, s.today()) {
		total += float64(a.AllocationPercentage)
	}
	return &engineer.Capacity{
		EngineerID:        engineerID,
		TotalAllocated:    total,
		AvailableCapacity: e.MaxCapacity - total,
		MaxCapacity:       e.MaxCapacity,
	}, nil
}

// Availability is today when nothing is active, else the latest end date of
// the active assignments.
func (s *Service) Availability(engineerID string) (*engineer.Availability, error) {
	if _, err := s.Engineer(engineerID); err != nil {
		return nil, err
	}
	today := s.today()
	next := today
	for _, a := range s.store.ActiveAssignments(engineerID, today) {
		if a.EndDate.After(next) {
			next = a.EndDate
		}
	}
	return &engineer.Availability{AvailableDate: next}, nil
}

func (s *Service) Assignments() []assignment.Assignment {
	return s.store.Assignments()
}

func (s *Service) CreateAssignment(payload assignment.Payload) (*assignment.Assignment, error) {
	a, err := s.assignmentFromPayload(payload)
	if err != nil {
		return nil, err
	}
	saved := s.store.SaveAssignment(a)
	return &saved, nil
}

func (s *Service) UpdateAssignment(id string, payload assignment.Payload) (*assignment.Assignment, error) {
	if !s.store.HasAssignment(id) {
		return nil, internal.ErrAssignmentNotFound
	}
	a, err := s.assignmentFromPayload(payload)
	if err != nil {
		return nil, err
	}
	a.ID = id
	saved := s.store.SaveAssignment(a)
	return &saved, nil
}

func (s *Service) DeleteAssignment(id string) error {
	return s.store.DeleteAssignment(id)
}

func (s *Service) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) assignmentFromPayload(payload assignment.Payload) (assignment.Assignment, error) {
	if err := validation.ValidateAssignmentPayload(payload); err != nil {
		return assignment.Assignment{}, err
	}
	e, ok := s.store.Engineer(payload.EngineerID)
	if !ok {
		return assignment.Assignment{}, internal.NewValidationFieldError("engineerId", "engineer does not exist", internal.ErrCodeEngineerNotFound)
	}
	p, ok := s.store.Project(payload.ProjectID)
	if !ok {
		return assignment.Assignment{}, internal.NewValidationFieldError("projectId", "project does not exist", internal.ErrCodeProjectNotFound)
	}
	start, _ := time.Parse(validation.DateLayout, payload.StartDate)
	end, _ := time.Parse(validation.DateLayout, payload.EndDate)

	return assignment.Assignment{
		Engineer:             assignment.EngineerRef{ID: e.ID, Name: e.Name, Email: e.Email},
		Project:              assignment.ProjectRef{ID: p.ID, Name: p.Name},
		AllocationPercentage: payload.AllocationPercentage,
		StartDate:            start,
		EndDate:              end,
		Role:                 payload.Role,
	}, nil
}

func projectFromPayload(payload project.Payload) (project.Project, error) {
	if err := validation.ValidateProjectPayload(payload); err != nil {
		return project.Project{}, err
	}
	start, _ := time.Parse(validation.DateLayout, payload.StartDate)
	end, _ := time.Parse(validation.DateLayout, payload.EndDate)
	skills := payload.RequiredSkills
	if skills == nil {
		skills = []string{}
	}
	return project.Project{
		Name:           payload.Name,
		Description:    payload.Description,
		StartDate:      start,
		EndDate:        end,
		RequiredSkills: skills,
		TeamSize:       payload.TeamSize,
		Status:         payload.Status,
	}, nil
}
