package dashboard

import (
	"context"

	"github.com/frahmantamala/resource-dashboard/internal/capacity"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/assignment"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/engineer"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
	"github.com/frahmantamala/resource-dashboard/internal/visibility"
)

type EngineerView struct {
	View        string                  `json:"view"`
	Viewer      identity.Identity       `json:"viewer"`
	Capacity    engineer.Capacity       `json:"capacity"`
	Utilization capacity.Utilization    `json:"utilization"`
	Bar         capacity.Bar            `json:"capacityBar"`
	Assignments []assignment.Assignment `json:"assignments"`
	Notices     []Notice                `json:"notices"`
}

// EngineerDashboard shows the viewer's own assignments and load. Any failure
// zeroes the capacity section.
func (s *Service) EngineerDashboard(ctx context.Context, viewer identity.Identity) EngineerView {
	view := EngineerView{
		View:        "engineer",
		Viewer:      viewer,
		Capacity:    engineer.Capacity{EngineerID: viewer.ID},
		Assignments: []assignment.Assignment{},
		Notices:     []Notice{},
	}

	all, err := s.backend.ListAssignments(ctx)
	if err != nil {
		s.logFetch(ctx, "assignments", err)
		view.Notices = append(view.Notices, failure("Failed to load assignments or capacity."))
		view.Bar = capacity.NewBar(0, 0)
		return view
	}
	view.Assignments = visibility.VisibleAssignments(all, viewer)

	c, err := s.backend.GetCapacity(ctx, viewer.ID)
	if err != nil {
		s.logFetch(ctx, "capacity", err)
		view.Notices = append(view.Notices, failure("Failed to load assignments or capacity."))
		view.Bar = capacity.NewBar(0, 0)
		return view
	}

	snap := capacity.NewSnapshot(viewer.ID, *c, s.fallbackMax(ctx, viewer.ID, *c))
	view.Capacity = engineer.Capacity{
		EngineerID:        viewer.ID,
		TotalAllocated:    snap.TotalAllocated,
		AvailableCapacity: snap.AvailableCapacity,
		MaxCapacity:       snap.MaxCapacity,
	}
	view.Utilization = snap.Utilization
	view.Bar = capacity.NewBar(snap.TotalAllocated, snap.MaxCapacity)
	return view
}

// fallbackMax reads the ceiling from the engineer record when the capacity
// body omits it. Zero leaves utilization undefined.
func (s *Service) fallbackMax(ctx context.Context, engineerID string, c engineer.Capacity) float64 {
	if c.MaxCapacity > 0 {
		return c.MaxCapacity
	}
	e, err := s.backend.GetEngineer(ctx, engineerID)
	if err != nil {
		s.logFetch(ctx, "engineer record", err)
		return 0
	}
	return e.MaxCapacity
}
