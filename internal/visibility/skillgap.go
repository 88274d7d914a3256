package visibility

import (
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/engineer"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/skillgap"
)

type Status uint8

const (
	NotComputed Status = iota
	Computed
)

type Coverage string

const (
	CoverageUnknown        Coverage = "unknown"
	CoverageNoRequirements Coverage = "no_requirements"
	CoverageFull           Coverage = "full"
	CoveragePartial        Coverage = "partial"
)

// SkillGap is the coverage of a project's required skills. The zero value is
// the not-yet-computed state. Skill names match case-sensitively.
type SkillGap struct {
	Status         Status   `json:"-"`
	RequiredSkills []string `json:"requiredSkills"`
	AssignedSkills []string `json:"assignedSkills"`
	MissingSkills  []string `json:"missingSkills"`
}

func (g SkillGap) Coverage() Coverage {
	switch {
	case g.Status != Computed:
		return CoverageUnknown
	case len(g.RequiredSkills) == 0:
		return CoverageNoRequirements
	case len(g.MissingSkills) == 0:
		return CoverageFull
	default:
		return CoveragePartial
	}
}

// ComputeSkillGap unions the skills of the assigned engineers and subtracts
// them from required. Order follows first appearance.
func ComputeSkillGap(required []string, assigned []engineer.Engineer) SkillGap {
	req := dedup(required)

	var all []string
	for _, e := range assigned {
		all = append(all, e.Skills...)
	}
	have := dedup(all)

	index := make(map[string]struct{}, len(have))
	for _, s := range have {
		index[s] = struct{}{}
	}
	missing := make([]string, 0)
	for _, s := range req {
		if _, ok := index[s]; !ok {
			missing = append(missing, s)
		}
	}

	return SkillGap{
		Status:         Computed,
		RequiredSkills: req,
		AssignedSkills: have,
		MissingSkills:  missing,
	}
}

// FromResponse adopts a gap computed by the backend.
func FromResponse(r skillgap.Response) SkillGap {
	return SkillGap{
		Status:         Computed,
		RequiredSkills: dedup(r.RequiredSkills),
		AssignedSkills: dedup(r.AssignedSkills),
		MissingSkills:  dedup(r.MissingSkills),
	}
}

func (g SkillGap) Response(projectID string) skillgap.Response {
	return skillgap.Response{
		ProjectID:      projectID,
		RequiredSkills: g.RequiredSkills,
		AssignedSkills: g.AssignedSkills,
		MissingSkills:  g.MissingSkills,
	}
}

func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
