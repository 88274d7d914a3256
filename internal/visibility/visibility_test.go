package visibility_test

import (
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/assignment"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/engineer"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/project"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
	"github.com/frahmantamala/resource-dashboard/internal/visibility"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func assign(id, engineerID, projectID string) assignment.Assignment {
	return assignment.Assignment{
		ID:       id,
		Engineer: assignment.EngineerRef{ID: engineerID},
		Project:  assignment.ProjectRef{ID: projectID},
	}
}

func ids(in []assignment.Assignment) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		out = append(out, a.ID)
	}
	return out
}

var _ = Describe("VisibleAssignments", func() {
	all := []assignment.Assignment{
		assign("a1", "e1", "p1"),
		assign("a2", "e2", "p1"),
		assign("a3", "e1", "p2"),
		assign("a4", "e3", "p2"),
	}

	It("gives a manager everything in order", func() {
		got := visibility.VisibleAssignments(all, identity.Identity{ID: "m1", Role: identity.Manager})
		Expect(got).To(Equal(all))
	})

	It("gives an engineer only their own, in order", func() {
		got := visibility.VisibleAssignments(all, identity.Identity{ID: "e1", Role: identity.Engineer})
		Expect(ids(got)).To(Equal([]string{"a1", "a3"}))
	})

	It("gives an unknown role nothing", func() {
		Expect(visibility.VisibleAssignments(all, identity.Identity{ID: "e1"})).To(BeEmpty())
	})

	It("agrees with CanSee record by record", func() {
		viewer := identity.Identity{ID: "e2", Role: identity.Engineer}
		visible := visibility.VisibleAssignments(all, viewer)
		for _, a := range all {
			if visibility.CanSee(a, viewer) {
				Expect(visible).To(ContainElement(a))
			} else {
				Expect(visible).NotTo(ContainElement(a))
			}
		}
	})

	It("selects a project's assignments", func() {
		Expect(ids(visibility.ProjectAssignments(all, "p2"))).To(Equal([]string{"a3", "a4"}))
	})
})

var _ = Describe("ComputeSkillGap", func() {
	It("reports required skills nobody assigned has", func() {
		gap := visibility.ComputeSkillGap([]string{"React", "Node"}, []engineer.Engineer{{Skills: []string{"React"}}})

		Expect(gap.MissingSkills).To(Equal([]string{"Node"}))
		Expect(gap.Coverage()).To(Equal(visibility.CoveragePartial))
	})

	It("separates no requirements from full coverage", func() {
		none := visibility.ComputeSkillGap(nil, []engineer.Engineer{{Skills: []string{"Go"}}})
		Expect(none.MissingSkills).To(BeEmpty())
		Expect(none.Coverage()).To(Equal(visibility.CoverageNoRequirements))

		full := visibility.ComputeSkillGap([]string{"Go"}, []engineer.Engineer{{Skills: []string{"Go"}}})
		Expect(full.MissingSkills).To(BeEmpty())
		Expect(full.Coverage()).To(Equal(visibility.CoverageFull))

		Expect(visibility.SkillGap{}.Coverage()).To(Equal(visibility.CoverageUnknown))
	})

	It("deduplicates assigned skills across engineers", func() {
		gap := visibility.ComputeSkillGap([]string{"Go", "Go"}, []engineer.Engineer{
			{Skills: []string{"Go", "SQL"}},
			{Skills: []string{"SQL", "Docker"}},
		})
		Expect(gap.RequiredSkills).To(Equal([]string{"Go"}))
		Expect(gap.AssignedSkills).To(Equal([]string{"Go", "SQL", "Docker"}))
	})

	It("matches skill names case-sensitively", func() {
		gap := visibility.ComputeSkillGap([]string{"react"}, []engineer.Engineer{{Skills: []string{"React"}}})
		Expect(gap.MissingSkills).To(Equal([]string{"react"}))
	})
})

var _ = Describe("list filters", func() {
	engineers := []engineer.Engineer{
		{ID: "e1", Skills: []string{"React", "TypeScript"}},
		{ID: "e2", Skills: []string{"Go"}},
	}

	It("matches skills by trimmed, case-insensitive substring", func() {
		got := visibility.FilterEngineersBySkill(engineers, "  script ")
		Expect(got).To(HaveLen(1))
		Expect(got[0].ID).To(Equal("e1"))
		Expect(visibility.FilterEngineersBySkill(engineers, "")).To(HaveLen(2))
	})

	It("filters projects by status", func() {
		projects := []project.Project{{ID: "p1", Status: project.StatusActive}, {ID: "p2", Status: project.StatusPlanning}}
		Expect(visibility.FilterProjectsByStatus(projects, "planning")).To(ConsistOf(projects[1]))
		Expect(visibility.FilterProjectsByStatus(projects, visibility.StatusAll)).To(HaveLen(2))
	})

	It("parses a comma separated skill list", func() {
		Expect(visibility.ParseSkills(" Go, ,React ,")).To(Equal([]string{"Go", "React"}))
	})

	It("drops repeated skills but keeps different casing", func() {
		Expect(visibility.ParseSkills("Swift, Kotlin, Swift, swift")).To(Equal([]string{"Swift", "Kotlin", "swift"}))
	})
})
