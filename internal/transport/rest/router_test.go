package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/resource-dashboard/internal/core/events"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
	"github.com/frahmantamala/resource-dashboard/internal/dashboard"
	"github.com/frahmantamala/resource-dashboard/internal/gateway"
	"github.com/frahmantamala/resource-dashboard/internal/guard"
	"github.com/frahmantamala/resource-dashboard/internal/mockbackend"
	"github.com/frahmantamala/resource-dashboard/internal/session"
	"github.com/frahmantamala/resource-dashboard/internal/transport"
	"github.com/frahmantamala/resource-dashboard/internal/transport/middleware"
	"github.com/frahmantamala/resource-dashboard/internal/transport/rest"
	"github.com/frahmantamala/resource-dashboard/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Router", func() {
	var (
		ctx      context.Context
		router   *chi.Mux
		sessions *session.Store
		client   *gateway.Client
		metrics  *gateway.Metrics
	)

	BeforeEach(func() {
		ctx = context.Background()
		log := logger.Discard()

		handler, _, err := mockbackend.New(
			mockbackend.NewStore(),
			mockbackend.NewTokenIssuer("test-secret", time.Hour),
			4, true, log)
		Expect(err).NotTo(HaveOccurred())
		backend := httptest.NewServer(handler)
		DeferCleanup(backend.Close)

		bus := events.NewEventBus(log)
		sessions = session.NewStore(session.NewMemoryStore(), bus, log)
		sessions.Init(ctx)

		metrics = gateway.NewMetrics()
		client = gateway.NewClient(gateway.Config{
			BaseURL:        backend.URL + mockbackend.APIPrefix,
			Timeout:        5 * time.Second,
			MaxConcurrency: 4,
		}, sessions, metrics, log)

		router = rest.NewRouter(rest.Routes{
			Dashboard: dashboard.NewHandler(
				dashboard.NewAuth(client, sessions, log),
				dashboard.NewService(client, log),
				transport.NewBaseHandler(log)),
			Guard:       guard.New(sessions, log),
			Supersede:   middleware.NewSupersede(bus, log),
			Health:      rest.NewHealthHandler(rest.Check{Name: "gateway", Ping: client.Ping}),
			Metrics:     metrics.Handler(),
			MetricsPath: "/metrics",
			Logger:      log,
		})
	})

	open := func(path string) *rest.Page {
		page, err := rest.Navigate(ctx, router, http.MethodGet, path, nil)
		Expect(err).NotTo(HaveOccurred())
		return page
	}

	login := func(email string) {
		body, _ := json.Marshal(dashboard.Credentials{Email: email, Password: mockbackend.SeedPassword})
		page, err := rest.Navigate(ctx, router, http.MethodPost, identity.LoginPath, body)
		Expect(err).NotTo(HaveOccurred())
		Expect(page.Status).To(Equal(http.StatusOK))
	}

	Context("without a session", func() {
		It("redirects every gated view to login", func() {
			for _, path := range []string{"/manager", "/engineer", "/projects", "/projects/abc", "/assignments"} {
				page := open(path)
				Expect(page.Path).To(Equal(identity.LoginPath), path)
				Expect(page.Hops).To(Equal([]string{identity.LoginPath}), path)
			}
		})

		It("sends unknown paths to login", func() {
			page := open("/does-not-exist")

			Expect(page.Path).To(Equal(identity.LoginPath))
			Expect(page.Status).To(Equal(http.StatusOK))
		})

		It("answers a failed login with the backend's status and leaves no session", func() {
			body, _ := json.Marshal(dashboard.Credentials{Email: "manager@example.com", Password: "nope"})

			page, err := rest.Navigate(ctx, router, http.MethodPost, identity.LoginPath, body)

			Expect(err).NotTo(HaveOccurred())
			Expect(page.Status).To(Equal(http.StatusUnauthorized))
			Expect(sessions.Current().Active()).To(BeFalse())
		})
	})

	Context("as an engineer", func() {
		BeforeEach(func() {
			login("dan@example.com")
		})

		It("sends manager-only views to the engineer home", func() {
			page := open("/projects")

			Expect(page.Hops).To(Equal([]string{identity.EngineerHomePath}))
			Expect(page.Status).To(Equal(http.StatusOK))

			var view dashboard.EngineerView
			Expect(json.Unmarshal(page.Body, &view)).To(Succeed())
			Expect(view.View).To(Equal("engineer"))
			Expect(view.Utilization.Raw).To(Equal(113))
		})

		It("lets any authenticated role see assignments", func() {
			page := open("/assignments")

			Expect(page.Hops).To(BeEmpty())
			var view dashboard.AssignmentsView
			Expect(json.Unmarshal(page.Body, &view)).To(Succeed())
			Expect(view.Title).To(Equal("My Assignments"))
			Expect(view.Assignments).To(HaveLen(2))
		})

		It("rejects a mutation with 403 while still returning the view", func() {
			page, err := rest.Navigate(ctx, router, http.MethodDelete, "/assignments/anything", nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(page.Status).To(Equal(http.StatusForbidden))
			var view dashboard.AssignmentsView
			Expect(json.Unmarshal(page.Body, &view)).To(Succeed())
			Expect(view.Notices[0].Level).To(Equal(dashboard.NoticeError))
		})
	})

	Context("as a manager", func() {
		BeforeEach(func() {
			login("manager@example.com")
		})

		It("renders the manager dashboard and honours the skill filter", func() {
			page := open("/manager?skill=kube")

			Expect(page.Status).To(Equal(http.StatusOK))
			var view dashboard.ManagerView
			Expect(json.Unmarshal(page.Body, &view)).To(Succeed())
			Expect(view.Engineers).To(HaveLen(1))
			Expect(view.Engineers[0].Engineer.Name).To(Equal("Carol White"))
		})

		It("sends engineer-only views to the manager home", func() {
			page := open("/engineer")

			Expect(page.Hops).To(Equal([]string{identity.ManagerHomePath}))
		})

		It("re-evaluates the guard after logout", func() {
			Expect(open("/projects").Hops).To(BeEmpty())

			_, err := rest.Navigate(ctx, router, http.MethodPost, "/logout", nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(open("/projects").Path).To(Equal(identity.LoginPath))
		})

		It("exposes the gateway metrics", func() {
			open("/projects")

			page := open("/metrics")
			Expect(string(page.Body)).To(ContainSubstring(`dashboard_gateway_requests_total{op="list_projects",outcome="ok"}`))
		})
	})

	Context("health", func() {
		It("reports healthy when every check passes", func() {
			page := open("/healthz")

			Expect(page.Status).To(Equal(http.StatusOK))
			var resp rest.HealthResponse
			Expect(json.Unmarshal(page.Body, &resp)).To(Succeed())
			Expect(resp.Status).To(Equal(rest.HealthHealthy))
			Expect(resp.Components).To(HaveKey("gateway"))
		})

		It("reports unhealthy when a check fails", func() {
			h := rest.NewHealthHandler(
				rest.Check{Name: "session_store", Ping: func(context.Context) error { return errors.New("disk full") }},
				rest.Check{Name: "gateway", Ping: func(context.Context) error { return nil }},
			)

			resp := h.Check(ctx)

			Expect(resp.Status).To(Equal(rest.HealthUnhealthy))
			Expect(resp.Components["session_store"].Message).To(Equal("disk full"))
			Expect(resp.Components["gateway"].Status).To(Equal(rest.HealthHealthy))
		})
	})
})
