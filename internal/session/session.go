// Package session owns the authenticated session of the dashboard: the bearer
// token and the identity it was issued for, persisted in a durable key/value
// store so a restart restores the login.
package session

import (
	"context"

	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
)

// Persisted entry names.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Session is either empty or carries both a token and a user. Only Store
// constructs non-empty values.
type Session struct {
	token string
	user  identity.Identity
}

// Empty is the logged-out session.
var Empty = Session{}

func (s Session) Active() bool {
	return s.token != ""
}

func (s Session) Token() string {
	return s.token
}

// User returns the identity and whether the session is active.
func (s Session) User() (identity.Identity, bool) {
	if !s.Active() {
		return identity.Identity{}, false
	}
	return s.user, true
}

// KeyValueStore is the durable string/string storage behind the Store.
// Put and Delete must apply all keys or none.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
