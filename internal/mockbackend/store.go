package mockbackend

import (
	"sort"
	"sync"
	"time"

	"github.com/frahmantamala/resource-dashboard/internal"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/assignment"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/engineer"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/project"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
	"github.com/google/uuid"
)

// Account is a user of the backend. Engineer profile fields are empty for
// managers.
type Account struct {
	identity.Identity
	PasswordHash string
	Skills       []string
	Seniority    string
	MaxCapacity  float64
	Department   string
}

func (a Account) Engineer() engineer.Engineer {
	return engineer.Engineer{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		Skills:      append([]string(nil), a.Skills...),
		Seniority:   a.Seniority,
		MaxCapacity: a.MaxCapacity,
		Department:  a.Department,
	}
}

// Store keeps every record in memory, ordered by creation time.
type Store struct {
	mu          sync.RWMutex
	accounts    map[string]*Account
	byEmail     map[string]string
	projects    map[string]*project.Project
	assignments map[string]*assignment.Assignment
	order       map[string]int
	seq         int
}

func NewStore() *Store {
	return &Store{
		accounts:    make(map[string]*Account),
		byEmail:     make(map[string]string),
		projects:    make(map[string]*project.Project),
		assignments: make(map[string]*assignment.Assignment),
		order:       make(map[string]int),
	}
}

func newID() string {
	return uuid.NewString()
}

func (s *Store) touch(id string) {
	s.seq++
	s.order[id] = s.seq
}

func (s *Store) AddAccount(a Account) Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = newID()
	}
	s.accounts[a.ID] = &a
	s.byEmail[a.Email] = a.ID
	s.touch(a.ID)
	return a
}

func (s *Store) AccountByEmail(email string) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return Account{}, false
	}
	return *s.accounts[id], true
}

func (s *Store) Account(id string) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return Account{}, false
	}
	return *a, true
}

func (s *Store) Engineers() []engineer.Engineer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]engineer.Engineer, 0)
	for _, id := range s.sortedIDs(keys(s.accounts)) {
		if a := s.accounts[id]; a.Role == identity.Engineer {
			out = append(out, a.Engineer())
		}
	}
	return out
}

func (s *Store) Engineer(id string) (engineer.Engineer, bool) {
	a, ok := s.Account(id)
	if !ok || a.Role != identity.Engineer {
		return engineer.Engineer{}, false
	}
	return a.Engineer(), true
}

func (s *Store) Projects() []project.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]project.Project, 0, len(s.projects))
	for _, id := range s.sortedIDs(keys(s.projects)) {
		out = append(out, *s.projects[id])
	}
	return out
}

func (s *Store) Project(id string) (project.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return project.Project{}, false
	}
	return *p, true
}

func (s *Store) SaveProject(p project.Project) project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = newID()
	}
	if _, exists := s.projects[p.ID]; !exists {
		s.touch(p.ID)
	}
	s.projects[p.ID] = &p

	for _, a := range s.assignments {
		if a.Project.ID == p.ID {
			a.Project.Name = p.Name
		}
	}
	return p
}

func (s *Store) Assignments() []assignment.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]assignment.Assignment, 0, len(s.assignments))
	for _, id := range s.sortedIDs(keys(s.assignments)) {
		out = append(out, *s.assignments[id])
	}
	return out
}

func (s *Store) SaveAssignment(a assignment.Assignment) assignment.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = newID()
	}
	if _, exists := s.assignments[a.ID]; !exists {
		s.touch(a.ID)
	}
	s.assignments[a.ID] = &a
	return a
}

func (s *Store) HasAssignment(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.assignments[id]
	return ok
}

func (s *Store) DeleteAssignment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignments[id]; !ok {
		return internal.ErrAssignmentNotFound
	}
	delete(s.assignments, id)
	delete(s.order, id)
	return nil
}

// ActiveAssignments returns the engineer's assignments whose range covers at.
func (s *Store) ActiveAssignments(engineerID string, at time.Time) []assignment.Assignment {
	out := make([]assignment.Assignment, 0)
	for _, a := range s.Assignments() {
		if a.Engineer.ID == engineerID && a.ActiveAt(at) {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) sortedIDs(ids []string) []string {
	sort.Slice(ids, func(i, j int) bool { return s.order[ids[i]] < s.order[ids[j]] })
	return ids
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
