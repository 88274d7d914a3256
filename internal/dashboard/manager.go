package dashboard

import (
	"context"
	"unicode"
	"unicode/utf8"

	"github.com/frahmantamala/resource-dashboard/internal/capacity"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/engineer"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
	"github.com/frahmantamala/resource-dashboard/internal/visibility"
)

type EngineerCard struct {
	Engineer     engineer.Engineer    `json:"engineer"`
	Seniority    string               `json:"seniority"`
	Utilization  capacity.Utilization `json:"utilization"`
	Availability string               `json:"availability"`
	Bar          capacity.Bar         `json:"capacityBar"`
	Allocated    float64              `json:"totalAllocated"`
}

type ChartPoint struct {
	Name        string `json:"name"`
	Utilization int    `json:"utilization"`
}

// Alert flags an engineer whose raw utilization exceeds the ceiling.
type Alert struct {
	EngineerID  string `json:"engineerId"`
	Name        string `json:"name"`
	Utilization int    `json:"utilization"`
}

type ManagerView struct {
	View        string            `json:"view"`
	Viewer      identity.Identity `json:"viewer"`
	SkillFilter string            `json:"skillFilter"`
	Engineers   []EngineerCard    `json:"engineers"`
	Chart       []ChartPoint      `json:"chart"`
	Alerts      []Alert           `json:"alerts"`
	Notices     []Notice          `json:"notices"`
}

// ManagerDashboard lists every engineer with utilization and availability.
// The chart and alerts cover the whole team; the cards honour skillFilter.
func (s *Service) ManagerDashboard(ctx context.Context, viewer identity.Identity, skillFilter string) ManagerView {
	view := ManagerView{
		View:        "manager",
		Viewer:      viewer,
		SkillFilter: skillFilter,
		Engineers:   []EngineerCard{},
		Chart:       []ChartPoint{},
		Alerts:      []Alert{},
		Notices:     []Notice{},
	}

	engineers, err := s.backend.ListEngineers(ctx)
	if err != nil {
		s.logFetch(ctx, "engineers", err)
		view.Notices = append(view.Notices, failure("Failed to load engineers."))
		return view
	}

	loads, err := s.backend.FetchLoads(ctx, engineers, s.now())
	if err != nil {
		s.logFetch(ctx, "engineer loads", err)
		view.Notices = append(view.Notices, failure("Failed to load engineers."))
		return view
	}

	cards := make(map[string]EngineerCard, len(loads))
	for _, load := range loads {
		e := load.Engineer
		snap := capacity.NewSnapshot(e.ID, load.Capacity, e.MaxCapacity)
		next := load.AvailableDate

		cards[e.ID] = EngineerCard{
			Engineer:     e,
			Seniority:    titleCase(e.Seniority),
			Utilization:  snap.Utilization,
			Availability: capacity.AvailabilityText(snap.Utilization.Raw, &next),
			Bar:          capacity.NewBar(snap.TotalAllocated, snap.MaxCapacity),
			Allocated:    snap.TotalAllocated,
		}
		view.Chart = append(view.Chart, ChartPoint{Name: e.Name, Utilization: snap.Utilization.Display})
		if snap.Utilization.Overallocated {
			view.Alerts = append(view.Alerts, Alert{EngineerID: e.ID, Name: e.Name, Utilization: snap.Utilization.Raw})
		}
	}

	for _, e := range visibility.FilterEngineersBySkill(engineers, skillFilter) {
		view.Engineers = append(view.Engineers, cards[e.ID])
	}
	return view
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}
