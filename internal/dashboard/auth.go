package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/resource-dashboard/internal"
	"github.com/frahmantamala/resource-dashboard/internal/core/common/validation"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
	"github.com/frahmantamala/resource-dashboard/internal/session"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Redirect string             `json:"redirect,omitempty"`
	User     *identity.Identity `json:"user,omitempty"`
	Notices  []Notice           `json:"notices"`
}

type SessionInfo struct {
	Authenticated bool               `json:"authenticated"`
	User          *identity.Identity `json:"user,omitempty"`
	Home          string             `json:"home"`
	ExpiresAt     *time.Time         `json:"expiresAt,omitempty"`
}

type Auth struct {
	backend  Backend
	sessions Sessions
	logger   *slog.Logger
}

func NewAuth(backend Backend, sessions Sessions, logger *slog.Logger) *Auth {
	return &Auth{backend: backend, sessions: sessions, logger: logger}
}

// Login exchanges credentials for a session. On any failure the current
// session is left as it was.
func (a *Auth) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	if err := validation.ValidateCredentials(creds.Email, creds.Password); err != nil {
		return LoginResult{Notices: []Notice{failure(err.GetDetailedMessage())}}, err
	}

	resp, err := a.backend.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		a.logger.InfoContext(ctx, "login rejected", "email", creds.Email, "error", err)
		return LoginResult{Notices: []Notice{failure(messageOr(err, "Login failed"))}}, err
	}

	if err := a.sessions.SetAuth(ctx, resp.Token, resp.User); err != nil {
		a.logger.ErrorContext(ctx, "failed to store session", "error", err)
		return LoginResult{Notices: []Notice{failure("Login failed")}}, err
	}

	user := resp.User
	return LoginResult{
		Redirect: user.Role.Home(),
		User:     &user,
		Notices:  []Notice{success("Logged in successfully!")},
	}, nil
}

func (a *Auth) Logout(ctx context.Context) (LoginResult, error) {
	if err := a.sessions.ClearAuth(ctx); err != nil {
		a.logger.WarnContext(ctx, "session storage not cleared", "error", err)
		return LoginResult{Redirect: identity.LoginPath, Notices: []Notice{failure("Logged out, but the saved session could not be removed")}}, err
	}
	return LoginResult{Redirect: identity.LoginPath, Notices: []Notice{}}, nil
}

func (a *Auth) WhoAmI() SessionInfo {
	current := a.sessions.Current()
	user, ok := current.User()
	if !ok {
		return SessionInfo{Home: identity.LoginPath}
	}
	info := SessionInfo{Authenticated: true, User: &user, Home: user.Role.Home()}
	if exp, ok := session.TokenExpiry(current.Token()); ok {
		info.ExpiresAt = &exp
	}
	return info
}

// RequireSession is for callers outside the guarded routes.
func (a *Auth) RequireSession() (identity.Identity, error) {
	user, ok := a.sessions.Current().User()
	if !ok {
		return identity.Identity{}, internal.ErrNoSession
	}
	return user, nil
}
