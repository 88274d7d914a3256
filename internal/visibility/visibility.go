// Package visibility decides which records a viewer may see and derives the
// skill coverage of a project.
package visibility

import (
	"strings"

	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/assignment"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/engineer"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/project"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
)

// VisibleAssignments returns what viewer may see, preserving input order. It
// never returns the input slice itself.
func VisibleAssignments(all []assignment.Assignment, viewer identity.Identity) []assignment.Assignment {
	switch viewer.Role {
	case identity.Manager:
		out := make([]assignment.Assignment, len(all))
		copy(out, all)
		return out
	case identity.Engineer:
		out := make([]assignment.Assignment, 0, len(all))
		for _, a := range all {
			if a.Engineer.ID == viewer.ID {
				out = append(out, a)
			}
		}
		return out
	default:
		return []assignment.Assignment{}
	}
}

// CanSee is the single-record form of VisibleAssignments.
func CanSee(a assignment.Assignment, viewer identity.Identity) bool {
	switch viewer.Role {
	case identity.Manager:
		return true
	case identity.Engineer:
		return a.Engineer.ID == viewer.ID
	default:
		return false
	}
}

func ProjectAssignments(all []assignment.Assignment, projectID string) []assignment.Assignment {
	out := make([]assignment.Assignment, 0)
	for _, a := range all {
		if a.Project.ID == projectID {
			out = append(out, a)
		}
	}
	return out
}

// FilterEngineersBySkill keeps engineers with a skill containing term,
// ignoring case. A blank term keeps everyone.
func FilterEngineersBySkill(engineers []engineer.Engineer, term string) []engineer.Engineer {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]engineer.Engineer, 0, len(engineers))
	for _, e := range engineers {
		if term == "" || hasSkillLike(e.Skills, term) {
			out = append(out, e)
		}
	}
	return out
}

func hasSkillLike(skills []string, term string) bool {
	for _, s := range skills {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

// StatusAll disables the status filter.
const StatusAll = "all"

func FilterProjectsByStatus(projects []project.Project, status string) []project.Project {
	out := make([]project.Project, 0, len(projects))
	for _, p := range projects {
		if status == "" || status == StatusAll || string(p.Status) == status {
			out = append(out, p)
		}
	}
	return out
}

// ParseSkills splits a comma separated list, trimming entries and dropping
// empty ones. Repeats keep their first position; matching is case-sensitive.
func ParseSkills(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return dedup(out)
}
