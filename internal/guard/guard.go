// Package guard decides whether a navigation may render the requested view.
package guard

import (
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
	"github.com/frahmantamala/resource-dashboard/internal/session"
)

type Outcome uint8

const (
	Allow Outcome = iota
	RedirectLogin
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Decision is the result of one guard evaluation. Role is set only for
// RedirectHome.
type Decision struct {
	Outcome Outcome
	Role    identity.Role
}

// Location is the redirect target, or "" when the view may render.
func (d Decision) Location() string {
	switch d.Outcome {
	case RedirectLogin:
		return identity.LoginPath
	case RedirectHome:
		return d.Role.Home()
	default:
		return ""
	}
}

// Decide evaluates the session against the permitted roles. No roles means
// any authenticated user is permitted.
func Decide(s session.Session, permitted ...identity.Role) Decision {
	user, ok := s.User()
	if !ok {
		return Decision{Outcome: RedirectLogin}
	}
	if !user.Role.Valid() {
		return Decision{Outcome: RedirectLogin}
	}
	if len(permitted) == 0 {
		return Decision{Outcome: Allow}
	}
	for _, r := range permitted {
		if r == user.Role {
			return Decision{Outcome: Allow}
		}
	}
	return Decision{Outcome: RedirectHome, Role: user.Role}
}
