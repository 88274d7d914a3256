package mockbackend

import (
	"fmt"

	"github.com/frahmantamala/resource-dashboard/internal/core/common/validation"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/assignment"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/project"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
)

// SeedPassword is shared by every seeded account.
const SeedPassword = "password123"

type seedEngineer struct {
	name        string
	email       string
	skills      []string
	seniority   string
	maxCapacity float64
	department  string
}

var seedEngineers = []seedEngineer{
	{"Alice Johnson", "alice@example.com", []string{"React", "Node.js", "TypeScript"}, "senior", 100, "Frontend"},
	{"Bob Smith", "bob@example.com", []string{"Python", "Django", "PostgreSQL"}, "mid", 100, "Backend"},
	{"Carol White", "carol@example.com", []string{"Go", "Kubernetes", "Docker"}, "senior", 50, "Platform"},
	{"Dan Brown", "dan@example.com", []string{"React", "CSS"}, "junior", 40, "Frontend"},
}

// Seed loads a small organisation: one manager, four engineers, three
// projects and assignments dated around today.
func (s *Service) Seed() error {
	hash, err := s.HashPassword(SeedPassword)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	manager := s.store.AddAccount(Account{
		Identity:     identity.Identity{Name: "Maria Manager", Email: "manager@example.com", Role: identity.Manager},
		PasswordHash: hash,
	})

	var engineers []Account
	for _, e := range seedEngineers {
		engineers = append(engineers, s.store.AddAccount(Account{
			Identity:     identity.Identity{Name: e.name, Email: e.email, Role: identity.Engineer},
			PasswordHash: hash,
			Skills:       e.skills,
			Seniority:    e.seniority,
			MaxCapacity:  e.maxCapacity,
			Department:   e.department,
		}))
	}

	today := s.today()
	day := func(offset int) string { return today.AddDate(0, 0, offset).Format(validation.DateLayout) }

	projects := []project.Payload{
		{Name: "Customer Portal", Description: "Self-service portal rebuild", StartDate: day(-30), EndDate: day(60),
			RequiredSkills: []string{"React", "Node.js", "GraphQL"}, TeamSize: 3, Status: project.StatusActive},
		{Name: "Data Pipeline", Description: "Nightly ingestion into the warehouse", StartDate: day(-10), EndDate: day(90),
			RequiredSkills: []string{"Python", "PostgreSQL"}, TeamSize: 2, Status: project.StatusActive},
		{Name: "Platform Migration", Description: "Move services to the new cluster", StartDate: day(30), EndDate: day(120),
			RequiredSkills: []string{"Go", "Kubernetes"}, TeamSize: 2, Status: project.StatusPlanning},
	}
	var projectIDs []string
	for _, payload := range projects {
		p, err := s.CreateProject(manager.Identity, payload)
		if err != nil {
			return fmt.Errorf("seed project %s: %w", payload.Name, err)
		}
		projectIDs = append(projectIDs, p.ID)
	}

	assignments := []assignment.Payload{
		{EngineerID: engineers[0].ID, ProjectID: projectIDs[0], AllocationPercentage: 60, StartDate: day(-30), EndDate: day(60), Role: "Tech Lead"},
		{EngineerID: engineers[1].ID, ProjectID: projectIDs[1], AllocationPercentage: 80, StartDate: day(-10), EndDate: day(90), Role: "Developer"},
		{EngineerID: engineers[2].ID, ProjectID: projectIDs[2], AllocationPercentage: 50, StartDate: day(30), EndDate: day(120), Role: "Developer"},
		{EngineerID: engineers[3].ID, ProjectID: projectIDs[0], AllocationPercentage: 20, StartDate: day(-30), EndDate: day(45), Role: "Developer"},
		{EngineerID: engineers[3].ID, ProjectID: projectIDs[1], AllocationPercentage: 25, StartDate: day(-10), EndDate: day(30), Role: "Developer"},
	}
	for _, payload := range assignments {
		if _, err := s.CreateAssignment(payload); err != nil {
			return fmt.Errorf("seed assignment: %w", err)
		}
	}

	s.logger.Info("mock backend seeded",
		"engineers", len(engineers),
		"projects", len(projectIDs),
		"assignments", len(assignments))
	return nil
}
