package guard_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/resource-dashboard/internal"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
	"github.com/frahmantamala/resource-dashboard/internal/guard"
	"github.com/frahmantamala/resource-dashboard/internal/session"
	"github.com/frahmantamala/resource-dashboard/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func loggedIn(role identity.Role) (*session.Store, identity.Identity) {
	user := identity.Identity{ID: "u1", Name: "U", Email: "u@example.com", Role: role}
	store := session.NewStore(session.NewMemoryStore(), nil, logger.Discard())
	Expect(store.SetAuth(context.Background(), "tok", user)).To(Succeed())
	return store, user
}

var _ = Describe("Decide", func() {
	It("redirects to login without a session, whatever the roles", func() {
		Expect(guard.Decide(session.Empty)).To(Equal(guard.Decision{Outcome: guard.RedirectLogin}))
		Expect(guard.Decide(session.Empty, identity.Manager).Location()).To(Equal("/login"))
		Expect(guard.Decide(session.Empty, identity.Engineer, identity.Manager).Outcome).To(Equal(guard.RedirectLogin))
	})

	It("sends an engineer home from a manager-only view", func() {
		store, _ := loggedIn(identity.Engineer)

		d := guard.Decide(store.Current(), identity.Manager)

		Expect(d.Outcome).To(Equal(guard.RedirectHome))
		Expect(d.Role).To(Equal(identity.Engineer))
		Expect(d.Location()).To(Equal("/engineer"))
	})

	It("sends a manager home from an engineer-only view", func() {
		store, _ := loggedIn(identity.Manager)

		Expect(guard.Decide(store.Current(), identity.Engineer).Location()).To(Equal("/manager"))
	})

	It("allows a manager when no roles are supplied", func() {
		store, _ := loggedIn(identity.Manager)

		d := guard.Decide(store.Current())

		Expect(d.Outcome).To(Equal(guard.Allow))
		Expect(d.Location()).To(BeEmpty())
	})

	It("allows a member of the permitted roles", func() {
		store, _ := loggedIn(identity.Engineer)
		Expect(guard.Decide(store.Current(), identity.Engineer).Outcome).To(Equal(guard.Allow))
	})
})

var _ = Describe("Guard middleware", func() {
	var reached bool
	var seen identity.Identity

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		seen, _ = internal.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	BeforeEach(func() {
		reached = false
		seen = identity.Identity{}
	})

	It("re-evaluates the session on every request", func() {
		store, user := loggedIn(identity.Manager)
		h := guard.New(store, logger.Discard()).Require(identity.Manager)(next)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/manager", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(seen).To(Equal(user))

		Expect(store.ClearAuth(context.Background())).To(Succeed())
		reached = false

		w = httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/manager", nil))
		Expect(reached).To(BeFalse())
		Expect(w.Code).To(Equal(http.StatusSeeOther))
		Expect(w.Header().Get("Location")).To(Equal("/login"))
	})

	It("redirects a wrong role to its home", func() {
		store, _ := loggedIn(identity.Engineer)
		h := guard.New(store, logger.Discard()).Require(identity.Manager)(next)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projects", nil))

		Expect(reached).To(BeFalse())
		Expect(w.Header().Get("Location")).To(Equal("/engineer"))
	})
})
