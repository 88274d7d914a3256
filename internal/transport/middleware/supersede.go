package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/frahmantamala/resource-dashboard/internal/core/events"
)

var (
	ErrSuperseded     = errors.New("navigation superseded by a newer one")
	ErrSessionChanged = errors.New("session changed during navigation")
)

// ClientIDHeader lets a caller name its navigation scope. Without it the
// remote host is used.
const ClientIDHeader = "X-Client-ID"

// Supersede scopes each navigation (GET request) to its own context. A newer
// navigation from the same client cancels that client's one in flight; any
// login or logout cancels every client's.
type Supersede struct {
	mu      sync.Mutex
	nextID  uint64
	running map[string]scope
	logger  *slog.Logger
}

type scope struct {
	id     uint64
	cancel context.CancelCauseFunc
}

func NewSupersede(bus *events.EventBus, logger *slog.Logger) *Supersede {
	s := &Supersede{running: make(map[string]scope), logger: logger}
	if bus != nil {
		onSession := func(ctx context.Context, ev events.Event) error {
			s.CancelInFlight(ErrSessionChanged)
			return nil
		}
		bus.Subscribe(events.SessionEstablished, onSession)
		bus.Subscribe(events.SessionCleared, onSession)
	}
	return s
}

// CancelInFlight cancels the running navigation of every client.
func (s *Supersede) CancelInFlight(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for client, sc := range s.running {
		sc.cancel(cause)
		delete(s.running, client)
	}
}

func (s *Supersede) begin(parent context.Context, client string) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)

	s.mu.Lock()
	if prev, ok := s.running[client]; ok {
		prev.cancel(ErrSuperseded)
	}
	s.nextID++
	id := s.nextID
	s.running[client] = scope{id: id, cancel: cancel}
	s.mu.Unlock()

	return ctx, func() {
		s.mu.Lock()
		if sc, ok := s.running[client]; ok && sc.id == id {
			delete(s.running, client)
		}
		s.mu.Unlock()
		cancel(nil)
	}
}

func clientKey(r *http.Request) string {
	if id := r.Header.Get(ClientIDHeader); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Supersede) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		ctx, done := s.begin(r.Context(), clientKey(r))
		defer done()

		next.ServeHTTP(w, r.WithContext(ctx))

		if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
			s.logger.InfoContext(r.Context(), "navigation cancelled", "path", r.URL.Path, "cause", cause)
		}
	})
}
