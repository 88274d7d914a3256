package guard

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/resource-dashboard/internal"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
	"github.com/frahmantamala/resource-dashboard/internal/session"
)

// SessionReader is satisfied by *session.Store.
type SessionReader interface {
	Current() session.Session
}

type Guard struct {
	sessions SessionReader
	logger   *slog.Logger
}

func New(sessions SessionReader, logger *slog.Logger) *Guard {
	return &Guard{sessions: sessions, logger: logger}
}

// Require gates a route. The session is read on every request so a login or
// logout between navigations is always honoured.
func (g *Guard) Require(roles ...identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current := g.sessions.Current()
			decision := Decide(current, roles...)

			if decision.Outcome != Allow {
				g.logger.InfoContext(r.Context(), "navigation redirected",
					"path", r.URL.Path,
					"outcome", decision.Outcome.String(),
					"location", decision.Location())
				http.Redirect(w, r, decision.Location(), http.StatusSeeOther)
				return
			}

			user, _ := current.User()
			ctx := internal.ContextWithIdentity(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
