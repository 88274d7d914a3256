package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/frahmantamala/resource-dashboard/internal"
	"github.com/frahmantamala/resource-dashboard/internal/core/events"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
)

// Store is the single writer of the session. Readers get a consistent
// snapshot of the token/user pair.
type Store struct {
	kv     KeyValueStore
	bus    *events.EventBus
	logger *slog.Logger

	mu      sync.RWMutex
	current Session
}

func NewStore(kv KeyValueStore, bus *events.EventBus, logger *slog.Logger) *Store {
	return &Store{
		kv:     kv,
		bus:    bus,
		logger: logger,
	}
}

// Init restores the persisted session. It never fails: unreadable or malformed
// entries yield the empty session.
func (s *Store) Init(ctx context.Context) Session {
	restored := s.Restore(ctx)

	s.mu.Lock()
	s.current = restored
	s.mu.Unlock()

	if user, ok := restored.User(); ok {
		s.logger.Info("session restored", "user_id", user.ID, "role", user.Role.String())
	} else {
		s.logger.Debug("no persisted session")
	}
	return restored
}

// Restore reads the persisted pair without touching the in-memory state.
func (s *Store) Restore(ctx context.Context) Session {
	token, ok, err := s.kv.Get(ctx, TokenKey)
	if err != nil {
		s.logger.Warn("session restore: failed to read token", "error", err)
		return Empty
	}
	if !ok || strings.TrimSpace(token) == "" {
		return Empty
	}

	raw, ok, err := s.kv.Get(ctx, UserKey)
	if err != nil {
		s.logger.Warn("session restore: failed to read user", "error", err)
		return Empty
	}
	if !ok {
		return Empty
	}

	var user identity.Identity
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("session restore: malformed user entry, treating as logged out", "error", err)
		return Empty
	}
	if err := user.Validate(); err != nil {
		s.logger.Warn("session restore: invalid user entry, treating as logged out", "error", err)
		return Empty
	}

	return Session{token: token, user: user}
}

// SetAuth persists the pair, then publishes it in memory. On a storage error
// the previous session stays current.
func (s *Store) SetAuth(ctx context.Context, token string, user identity.Identity) error {
	if strings.TrimSpace(token) == "" {
		return internal.NewValidationFieldError("token", "token is required", internal.ErrCodeInvalidToken)
	}
	if err := user.Validate(); err != nil {
		return internal.NewValidationFieldError("user", err.Error(), internal.ErrCodeInvalidIdentity)
	}

	encoded, err := json.Marshal(user)
	if err != nil {
		return internal.NewInternalError("failed to encode user", err)
	}

	s.mu.Lock()
	if err := s.kv.Put(ctx, map[string]string{
		TokenKey: token,
		UserKey:  string(encoded),
	}); err != nil {
		s.mu.Unlock()
		s.logger.Error("failed to persist session", "error", err, "user_id", user.ID)
		return internal.NewSessionStorageError("failed to persist session", err)
	}
	s.current = Session{token: token, user: user}
	s.mu.Unlock()

	s.logger.Info("session established", "user_id", user.ID, "role", user.Role.String())
	s.publish(ctx, events.NewSessionEvent(events.SessionEstablished, user.ID))
	return nil
}

// ClearAuth drops the session. The in-memory session is cleared even when the
// durable delete fails, so logout always takes effect for this process.
func (s *Store) ClearAuth(ctx context.Context) error {
	s.mu.Lock()
	previous := s.current
	s.current = Empty
	err := s.kv.Delete(ctx, TokenKey, UserKey)
	s.mu.Unlock()

	userID := ""
	if user, ok := previous.User(); ok {
		userID = user.ID
	}
	s.publish(ctx, events.NewSessionEvent(events.SessionCleared, userID))

	if err != nil {
		s.logger.Error("failed to remove persisted session", "error", err)
		return internal.NewSessionStorageError("failed to remove persisted session", err)
	}
	s.logger.Info("session cleared", "user_id", userID)
	return nil
}

// Current returns the latest session snapshot.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token returns the bearer credential for outbound calls.
func (s *Store) Token() (string, bool) {
	cur := s.Current()
	return cur.Token(), cur.Active()
}

// Teardown releases the durable store.
func (s *Store) Teardown() error {
	if err := s.kv.Close(); err != nil {
		return fmt.Errorf("close session storage: %w", err)
	}
	return nil
}

func (s *Store) publish(ctx context.Context, ev events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishSync(ctx, ev); err != nil {
		s.logger.Warn("session event handler failed", "event_type", ev.EventType(), "error", err)
	}
}
