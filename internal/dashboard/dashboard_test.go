package dashboard_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/resource-dashboard/internal"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/assignment"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/auth"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/engineer"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/project"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
	"github.com/frahmantamala/resource-dashboard/internal/dashboard"
	"github.com/frahmantamala/resource-dashboard/internal/gateway"
	"github.com/frahmantamala/resource-dashboard/internal/mockbackend"
	"github.com/frahmantamala/resource-dashboard/internal/session"
	"github.com/frahmantamala/resource-dashboard/internal/visibility"
	"github.com/frahmantamala/resource-dashboard/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var errBackendDown = internal.NewExternalError("backend unreachable", internal.ErrCodeGatewayUnavailable, errors.New("connection refused"))

// flakyBackend fails the calls whose switch is set and forwards the rest.
type flakyBackend struct {
	dashboard.Backend
	failEngineers   bool
	failCapacity    bool
	failAssignments bool
	failProjects    bool
	failLogin       bool
	failEngineer    bool
	omitMaxCapacity bool
	seniority       string
}

func (f *flakyBackend) GetEngineer(ctx context.Context, id string) (*engineer.Engineer, error) {
	if f.failEngineer {
		return nil, errBackendDown
	}
	return f.Backend.GetEngineer(ctx, id)
}

func (f *flakyBackend) Login(ctx context.Context, email, password string) (*auth.LoginResponse, error) {
	if f.failLogin {
		return nil, errBackendDown
	}
	return f.Backend.Login(ctx, email, password)
}

func (f *flakyBackend) ListEngineers(ctx context.Context) ([]engineer.Engineer, error) {
	if f.failEngineers {
		return nil, errBackendDown
	}
	engineers, err := f.Backend.ListEngineers(ctx)
	if err == nil && f.seniority != "" {
		for i := range engineers {
			engineers[i].Seniority = f.seniority
		}
	}
	return engineers, err
}

func (f *flakyBackend) GetCapacity(ctx context.Context, id string) (*engineer.Capacity, error) {
	if f.failCapacity {
		return nil, errBackendDown
	}
	c, err := f.Backend.GetCapacity(ctx, id)
	if err == nil && f.omitMaxCapacity {
		c.MaxCapacity = 0
	}
	return c, err
}

func (f *flakyBackend) ListAssignments(ctx context.Context) ([]assignment.Assignment, error) {
	if f.failAssignments {
		return nil, errBackendDown
	}
	return f.Backend.ListAssignments(ctx)
}

func (f *flakyBackend) ListProjects(ctx context.Context) ([]project.Project, error) {
	if f.failProjects {
		return nil, errBackendDown
	}
	return f.Backend.ListProjects(ctx)
}

func date(offset int) string {
	return time.Now().UTC().AddDate(0, 0, offset).Format("2006-01-02")
}

func messages(notices []dashboard.Notice) []string {
	out := make([]string, 0, len(notices))
	for _, n := range notices {
		out = append(out, n.Message)
	}
	return out
}

var _ = Describe("Dashboard", func() {
	var (
		ctx      context.Context
		backend  *mockbackend.Service
		sessions *session.Store
		flaky    *flakyBackend
		authSvc  *dashboard.Auth
		views    *dashboard.Service
	)

	BeforeEach(func() {
		ctx = context.Background()

		handler, svc, err := mockbackend.New(
			mockbackend.NewStore(),
			mockbackend.NewTokenIssuer("test-secret", time.Hour),
			4, true, logger.Discard())
		Expect(err).NotTo(HaveOccurred())
		backend = svc
		server := httptest.NewServer(handler)
		DeferCleanup(server.Close)

		sessions = session.NewStore(session.NewMemoryStore(), nil, logger.Discard())
		sessions.Init(ctx)

		client := gateway.NewClient(gateway.Config{
			BaseURL:        server.URL + mockbackend.APIPrefix,
			Timeout:        5 * time.Second,
			MaxConcurrency: 4,
		}, sessions, nil, logger.Discard())

		flaky = &flakyBackend{Backend: client}
		authSvc = dashboard.NewAuth(flaky, sessions, logger.Discard())
		views = dashboard.NewService(flaky, logger.Discard())
	})

	loginAs := func(email string) identity.Identity {
		result, err := authSvc.Login(ctx, dashboard.Credentials{Email: email, Password: mockbackend.SeedPassword})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.User).NotTo(BeNil())
		return *result.User
	}

	findEngineer := func(name string) engineer.Engineer {
		for _, e := range backend.Engineers() {
			if e.Name == name {
				return e
			}
		}
		Fail("no seeded engineer named " + name)
		return engineer.Engineer{}
	}

	findProject := func(name string) project.Project {
		for _, p := range backend.Projects() {
			if p.Name == name {
				return p
			}
		}
		Fail("no seeded project named " + name)
		return project.Project{}
	}

	Describe("Auth", func() {
		It("stores the session and redirects to the role's home", func() {
			result, err := authSvc.Login(ctx, dashboard.Credentials{Email: "manager@example.com", Password: mockbackend.SeedPassword})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Redirect).To(Equal(identity.ManagerHomePath))
			Expect(messages(result.Notices)).To(ConsistOf("Logged in successfully!"))

			info := authSvc.WhoAmI()
			Expect(info.Authenticated).To(BeTrue())
			Expect(info.User.Email).To(Equal("manager@example.com"))
			Expect(info.Home).To(Equal(identity.ManagerHomePath))
			Expect(info.ExpiresAt).NotTo(BeNil())
		})

		It("leaves the existing session alone when the backend rejects the login", func() {
			engineerUser := loginAs("alice@example.com")

			result, err := authSvc.Login(ctx, dashboard.Credentials{Email: "manager@example.com", Password: "wrong-password"})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeUnauthorized))
			Expect(result.Redirect).To(BeEmpty())
			Expect(result.Notices).To(HaveLen(1))
			Expect(result.Notices[0].Level).To(Equal(dashboard.NoticeError))

			user, ok := sessions.Current().User()
			Expect(ok).To(BeTrue())
			Expect(user.ID).To(Equal(engineerUser.ID))
		})

		It("blocks an empty form before calling the backend", func() {
			flaky.Backend = nil

			result, err := authSvc.Login(ctx, dashboard.Credentials{Email: "", Password: ""})

			Expect(err).To(HaveOccurred())
			Expect(result.Notices).To(HaveLen(1))
			Expect(sessions.Current().Active()).To(BeFalse())
		})

		It("falls back to a generic notice when the backend is down", func() {
			flaky.failLogin = true

			result, err := authSvc.Login(ctx, dashboard.Credentials{Email: "manager@example.com", Password: "x"})

			Expect(err).To(HaveOccurred())
			Expect(messages(result.Notices)).To(ConsistOf("Login failed"))
		})

		It("clears the session on logout", func() {
			loginAs("manager@example.com")

			result, err := authSvc.Logout(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Redirect).To(Equal(identity.LoginPath))
			Expect(sessions.Current().Active()).To(BeFalse())
			Expect(authSvc.WhoAmI().Home).To(Equal(identity.LoginPath))

			_, err = authSvc.RequireSession()
			Expect(err).To(MatchError(internal.ErrNoSession))
		})
	})

	Describe("ManagerDashboard", func() {
		var manager identity.Identity

		BeforeEach(func() {
			manager = loginAs("manager@example.com")
		})

		It("surfaces the raw overallocation while clamping the chart", func() {
			view := views.ManagerDashboard(ctx, manager, "")

			Expect(view.Notices).To(BeEmpty())
			Expect(view.Engineers).To(HaveLen(4))
			Expect(view.Alerts).To(HaveLen(1))
			Expect(view.Alerts[0].Name).To(Equal("Dan Brown"))
			Expect(view.Alerts[0].Utilization).To(Equal(113))

			var danChart dashboard.ChartPoint
			for _, point := range view.Chart {
				if point.Name == "Dan Brown" {
					danChart = point
				}
			}
			Expect(danChart.Utilization).To(Equal(100))

			for _, card := range view.Engineers {
				if card.Engineer.Name != "Dan Brown" {
					continue
				}
				Expect(card.Bar.Width).To(Equal(100))
				Expect(card.Bar.Label).To(Equal("45/40"))
				Expect(card.Seniority).To(Equal("Junior"))
				Expect(card.Availability).NotTo(Equal("Today"))
				Expect(card.Availability).To(Equal(time.Now().UTC().AddDate(0, 0, 45).Format("Jan 2, 2006")))
			}
		})

		It("filters the cards by skill but keeps the whole team in the chart", func() {
			view := views.ManagerDashboard(ctx, manager, "React")

			names := []string{}
			for _, card := range view.Engineers {
				names = append(names, card.Engineer.Name)
			}
			Expect(names).To(ConsistOf("Alice Johnson", "Dan Brown"))
			Expect(view.Chart).To(HaveLen(4))
		})

		It("capitalises a seniority that starts with a multi-byte letter", func() {
			flaky.seniority = "élite"

			view := views.ManagerDashboard(ctx, manager, "")

			Expect(view.Engineers).NotTo(BeEmpty())
			for _, card := range view.Engineers {
				Expect(card.Seniority).To(Equal("Élite"))
			}
		})

		It("degrades to an empty list with a notice when engineers cannot be loaded", func() {
			flaky.failEngineers = true

			view := views.ManagerDashboard(ctx, manager, "")

			Expect(view.Engineers).To(BeEmpty())
			Expect(messages(view.Notices)).To(ConsistOf("Failed to load engineers."))
		})
	})

	Describe("EngineerDashboard", func() {
		It("shows only the viewer's assignments and the unclamped utilization", func() {
			dan := loginAs("dan@example.com")

			view := views.EngineerDashboard(ctx, dan)

			Expect(view.Notices).To(BeEmpty())
			Expect(view.Assignments).To(HaveLen(2))
			for _, a := range view.Assignments {
				Expect(a.Engineer.ID).To(Equal(dan.ID))
			}
			Expect(view.Capacity.TotalAllocated).To(BeNumerically("==", 45))
			Expect(view.Capacity.MaxCapacity).To(BeNumerically("==", 40))
			Expect(view.Utilization.Raw).To(Equal(113))
			Expect(view.Utilization.Display).To(Equal(100))
			Expect(view.Utilization.Overallocated).To(BeTrue())
		})

		It("takes the ceiling from the engineer record when the capacity body omits it", func() {
			dan := loginAs("dan@example.com")
			flaky.omitMaxCapacity = true

			view := views.EngineerDashboard(ctx, dan)

			Expect(view.Notices).To(BeEmpty())
			Expect(view.Capacity.MaxCapacity).To(BeNumerically("==", 40))
			Expect(view.Utilization.Defined).To(BeTrue())
			Expect(view.Utilization.Raw).To(Equal(113))
			Expect(view.Bar.Width).To(Equal(100))
			Expect(view.Bar.Label).To(Equal("45/40"))
		})

		It("leaves utilization undefined when no ceiling can be found", func() {
			dan := loginAs("dan@example.com")
			flaky.omitMaxCapacity = true
			flaky.failEngineer = true

			view := views.EngineerDashboard(ctx, dan)

			Expect(view.Capacity.TotalAllocated).To(BeNumerically("==", 45))
			Expect(view.Utilization.Defined).To(BeFalse())
			Expect(view.Utilization.Raw).To(BeZero())
			Expect(view.Bar.Width).To(BeZero())
		})

		It("zeroes the capacity when it cannot be fetched", func() {
			dan := loginAs("dan@example.com")
			flaky.failCapacity = true

			view := views.EngineerDashboard(ctx, dan)

			Expect(view.Capacity.TotalAllocated).To(BeZero())
			Expect(view.Utilization.Raw).To(BeZero())
			Expect(view.Bar.Width).To(BeZero())
			Expect(messages(view.Notices)).To(ConsistOf("Failed to load assignments or capacity."))
		})
	})

	Describe("Projects", func() {
		var manager identity.Identity

		BeforeEach(func() {
			manager = loginAs("manager@example.com")
		})

		It("filters by status", func() {
			Expect(views.Projects(ctx, manager, "").Projects).To(HaveLen(3))
			Expect(views.Projects(ctx, manager, "active").Projects).To(HaveLen(2))
			Expect(views.Projects(ctx, manager, "planning").Projects).To(HaveLen(1))
		})

		It("creates a project and puts the notice first", func() {
			view, err := views.CreateProject(ctx, manager, dashboard.ProjectForm{
				Name:           "Mobile App",
				StartDate:      date(0),
				EndDate:        date(30),
				RequiredSkills: "Swift, Kotlin, Swift",
				TeamSize:       2,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(view.Projects).To(HaveLen(4))
			Expect(view.Notices[0]).To(Equal(dashboard.Notice{Level: dashboard.NoticeSuccess, Message: "Project created successfully"}))

			created := findProject("Mobile App")
			Expect(created.Status).To(Equal(project.StatusPlanning))
			Expect(created.RequiredSkills).To(Equal([]string{"Swift", "Kotlin"}))
		})

		It("blocks an end date before the start date without calling the backend", func() {
			view, err := views.CreateProject(ctx, manager, dashboard.ProjectForm{
				Name:      "Backwards",
				StartDate: date(10),
				EndDate:   date(0),
			})

			Expect(err).To(HaveOccurred())
			Expect(view.Notices[0].Level).To(Equal(dashboard.NoticeError))
			Expect(view.Projects).To(HaveLen(3))
		})

		It("refuses creation by an engineer", func() {
			alice := loginAs("alice@example.com")

			view, err := views.CreateProject(ctx, alice, dashboard.ProjectForm{Name: "Nope", StartDate: date(0), EndDate: date(1)})

			Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
			Expect(view.Notices[0].Message).To(Equal("manager role required"))
		})

		It("degrades when the list cannot be loaded", func() {
			flaky.failProjects = true

			view := views.Projects(ctx, manager, "")

			Expect(view.Projects).To(BeEmpty())
			Expect(messages(view.Notices)).To(ConsistOf("Failed to load projects."))
		})
	})

	Describe("ProjectDetails", func() {
		var manager identity.Identity

		BeforeEach(func() {
			manager = loginAs("manager@example.com")
		})

		It("loads the project, its assignments and the skill gap", func() {
			portal := findProject("Customer Portal")

			view := views.ProjectDetails(ctx, manager, portal.ID)

			Expect(view.Notices).To(BeEmpty())
			Expect(view.Project).NotTo(BeNil())
			Expect(view.Form.RequiredSkills).To(Equal("React, Node.js, GraphQL"))
			Expect(view.Assignments).To(HaveLen(2))
			Expect(view.SkillGap).NotTo(BeNil())
			Expect(view.SkillGap.MissingSkills).To(Equal([]string{"GraphQL"}))
			Expect(view.Coverage).To(Equal(visibility.CoveragePartial))
		})

		It("shows an absent project instead of failing", func() {
			view := views.ProjectDetails(ctx, manager, "missing")

			Expect(view.Project).To(BeNil())
			Expect(view.Form).To(BeNil())
			Expect(view.SkillGap).To(BeNil())
			Expect(view.Coverage).To(Equal(visibility.CoverageUnknown))
			Expect(messages(view.Notices)).To(ConsistOf("Failed to load project details."))
		})

		It("limits an engineer to their own assignments on the project", func() {
			dan := loginAs("dan@example.com")
			portal := findProject("Customer Portal")

			view := views.ProjectDetails(ctx, dan, portal.ID)

			Expect(view.Assignments).To(HaveLen(1))
			Expect(view.Assignments[0].Engineer.ID).To(Equal(dan.ID))
		})

		It("updates the project and reloads it", func() {
			pipeline := findProject("Data Pipeline")
			form := dashboard.FormFromProject(pipeline)
			form.Status = "completed"

			view, err := views.UpdateProject(ctx, manager, pipeline.ID, form)

			Expect(err).NotTo(HaveOccurred())
			Expect(view.Notices[0].Message).To(Equal("Project updated successfully"))
			Expect(view.Project.Status).To(Equal(project.StatusCompleted))
		})
	})

	Describe("Assignments", func() {
		It("gives managers the full list and the pick-lists", func() {
			manager := loginAs("manager@example.com")

			view := views.Assignments(ctx, manager)

			Expect(view.Title).To(Equal("Manage Assignments"))
			Expect(view.CanEdit).To(BeTrue())
			Expect(view.Assignments).To(HaveLen(5))
			Expect(view.Engineers).To(HaveLen(4))
			Expect(view.Projects).To(HaveLen(3))
		})

		It("gives engineers only their own rows", func() {
			dan := loginAs("dan@example.com")

			view := views.Assignments(ctx, dan)

			Expect(view.Title).To(Equal("My Assignments"))
			Expect(view.CanEdit).To(BeFalse())
			Expect(view.Assignments).To(HaveLen(2))
			Expect(view.Engineers).To(BeEmpty())
		})

		It("re-fetches after create, update and delete", func() {
			manager := loginAs("manager@example.com")
			carol := findEngineer("Carol White")
			portal := findProject("Customer Portal")
			form := dashboard.AssignmentForm{
				EngineerID:           carol.ID,
				ProjectID:            portal.ID,
				AllocationPercentage: 30,
				StartDate:            date(0),
				EndDate:              date(20),
				Role:                 "Reviewer",
			}

			view, err := views.CreateAssignment(ctx, manager, form)
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Notices[0].Message).To(Equal("Assignment created successfully"))
			Expect(view.Assignments).To(HaveLen(6))

			var createdID string
			for _, a := range view.Assignments {
				if a.Role == "Reviewer" {
					createdID = a.ID
				}
			}
			Expect(createdID).NotTo(BeEmpty())

			form.AllocationPercentage = 40
			view, err = views.UpdateAssignment(ctx, manager, createdID, form)
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Notices[0].Message).To(Equal("Assignment updated successfully"))

			view, err = views.DeleteAssignment(ctx, manager, createdID)
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Notices[0].Message).To(Equal("Assignment deleted"))
			Expect(view.Assignments).To(HaveLen(5))
		})

		It("rejects an allocation outside 1..100 locally", func() {
			manager := loginAs("manager@example.com")

			view, err := views.CreateAssignment(ctx, manager, dashboard.AssignmentForm{
				EngineerID:           "e",
				ProjectID:            "p",
				AllocationPercentage: 150,
				StartDate:            date(0),
				EndDate:              date(1),
			})

			Expect(err).To(HaveOccurred())
			Expect(view.Notices[0].Level).To(Equal(dashboard.NoticeError))
			Expect(view.Assignments).To(HaveLen(5))
		})

		It("reports a failed delete with the fixed message", func() {
			manager := loginAs("manager@example.com")

			view, err := views.DeleteAssignment(ctx, manager, "missing")

			Expect(err).To(HaveOccurred())
			Expect(view.Notices[0].Message).To(Equal("Failed to delete"))
		})

		It("never lets an engineer mutate", func() {
			dan := loginAs("dan@example.com")

			view, err := views.DeleteAssignment(ctx, dan, "anything")

			Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
			Expect(view.Assignments).To(HaveLen(2))
		})

		It("degrades when the list cannot be loaded", func() {
			manager := loginAs("manager@example.com")
			flaky.failAssignments = true

			view := views.Assignments(ctx, manager)

			Expect(view.Assignments).To(BeEmpty())
			Expect(messages(view.Notices)).To(ContainElement("Failed to load assignments."))
		})
	})
})
