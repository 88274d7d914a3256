package session_test

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/resource-dashboard/internal"
	"github.com/frahmantamala/resource-dashboard/internal/core/events"
	"github.com/frahmantamala/resource-dashboard/internal/core/identity"
	"github.com/frahmantamala/resource-dashboard/internal/session"
	"github.com/frahmantamala/resource-dashboard/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// failingKV wraps a MemoryStore and fails selected operations.
type failingKV struct {
	*session.MemoryStore
	failGet    bool
	failPut    bool
	failDelete bool
}

var errStorage = errors.New("disk full")

func (f *failingKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errStorage
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *failingKV) Put(ctx context.Context, entries map[string]string) error {
	if f.failPut {
		return errStorage
	}
	return f.MemoryStore.Put(ctx, entries)
}

func (f *failingKV) Delete(ctx context.Context, keys ...string) error {
	if f.failDelete {
		return errStorage
	}
	return f.MemoryStore.Delete(ctx, keys...)
}

var _ = Describe("Store", func() {
	var (
		ctx   context.Context
		kv    *session.MemoryStore
		store *session.Store
		ada   identity.Identity
	)

	BeforeEach(func() {
		ctx = context.Background()
		kv = session.NewMemoryStore()
		store = session.NewStore(kv, nil, logger.Discard())
		ada = identity.Identity{ID: "e1", Name: "Ada", Email: "ada@example.com", Role: identity.Engineer}
	})

	Describe("Init", func() {
		It("returns the empty session when nothing is persisted", func() {
			restored := store.Init(ctx)

			Expect(restored.Active()).To(BeFalse())
			_, ok := store.Token()
			Expect(ok).To(BeFalse())
		})

		It("treats a malformed user entry as logged out", func() {
			Expect(kv.Put(ctx, map[string]string{session.TokenKey: "t", session.UserKey: "{not json"})).To(Succeed())

			restored := store.Init(ctx)

			Expect(restored.Active()).To(BeFalse())
		})

		It("treats a user with an unknown role as logged out", func() {
			Expect(kv.Put(ctx, map[string]string{
				session.TokenKey: "t",
				session.UserKey:  `{"id":"x","name":"X","email":"x@example.com","role":"admin"}`,
			})).To(Succeed())

			Expect(store.Init(ctx).Active()).To(BeFalse())
		})

		It("treats a token without user as logged out", func() {
			Expect(kv.Put(ctx, map[string]string{session.TokenKey: "t"})).To(Succeed())

			Expect(store.Init(ctx).Active()).To(BeFalse())
		})

		It("does not fail when storage cannot be read", func() {
			broken := &failingKV{MemoryStore: kv, failGet: true}
			s := session.NewStore(broken, nil, logger.Discard())

			Expect(s.Init(ctx).Active()).To(BeFalse())
		})
	})

	Describe("SetAuth", func() {
		It("survives a restart of the process", func() {
			// Given
			Expect(store.SetAuth(ctx, "tok-1", ada)).To(Succeed())

			// When a fresh store reads the same storage
			fresh := session.NewStore(kv, nil, logger.Discard())
			restored := fresh.Init(ctx)

			// Then
			Expect(restored.Token()).To(Equal("tok-1"))
			user, ok := restored.User()
			Expect(ok).To(BeTrue())
			Expect(user).To(Equal(ada))
		})

		It("is visible to Token immediately", func() {
			Expect(store.SetAuth(ctx, "tok-1", ada)).To(Succeed())
			token, ok := store.Token()
			Expect(ok).To(BeTrue())
			Expect(token).To(Equal("tok-1"))

			Expect(store.SetAuth(ctx, "tok-2", ada)).To(Succeed())
			token, _ = store.Token()
			Expect(token).To(Equal("tok-2"))
		})

		It("is returned by Restore within the same run", func() {
			Expect(store.SetAuth(ctx, "tok-1", ada)).To(Succeed())
			Expect(store.Restore(ctx).Token()).To(Equal("tok-1"))
		})

		It("rejects an empty token without touching the session", func() {
			err := store.SetAuth(ctx, "  ", ada)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(store.Current().Active()).To(BeFalse())
		})

		It("rejects an identity with an invalid role", func() {
			err := store.SetAuth(ctx, "tok", identity.Identity{ID: "x"})
			Expect(err).To(HaveOccurred())
			Expect(store.Current().Active()).To(BeFalse())
		})

		It("keeps the previous session when storage fails", func() {
			Expect(store.SetAuth(ctx, "tok-1", ada)).To(Succeed())
			broken := &failingKV{MemoryStore: kv}
			s := session.NewStore(broken, nil, logger.Discard())
			s.Init(ctx)
			broken.failPut = true

			err := s.SetAuth(ctx, "tok-2", ada)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeSessionStorage))
			Expect(s.Current().Token()).To(Equal("tok-1"))
		})
	})

	Describe("ClearAuth", func() {
		It("removes both entries so a restart is logged out", func() {
			Expect(store.SetAuth(ctx, "tok-1", ada)).To(Succeed())

			Expect(store.ClearAuth(ctx)).To(Succeed())

			Expect(store.Current().Active()).To(BeFalse())
			_, ok, _ := kv.Get(ctx, session.TokenKey)
			Expect(ok).To(BeFalse())
			_, ok, _ = kv.Get(ctx, session.UserKey)
			Expect(ok).To(BeFalse())
			Expect(session.NewStore(kv, nil, logger.Discard()).Init(ctx).Active()).To(BeFalse())
		})

		It("clears memory even if storage delete fails", func() {
			broken := &failingKV{MemoryStore: kv}
			s := session.NewStore(broken, nil, logger.Discard())
			Expect(s.SetAuth(ctx, "tok-1", ada)).To(Succeed())
			broken.failDelete = true

			err := s.ClearAuth(ctx)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeSessionStorage))
			Expect(s.Current().Active()).To(BeFalse())
		})
	})

	Describe("session events", func() {
		It("publishes login and logout", func() {
			bus := events.NewEventBus(logger.Discard())
			var seen []string
			bus.Subscribe(events.SessionEstablished, func(_ context.Context, ev events.Event) error {
				seen = append(seen, ev.EventType()+":"+events.SessionUserID(ev))
				return nil
			})
			bus.Subscribe(events.SessionCleared, func(_ context.Context, ev events.Event) error {
				seen = append(seen, ev.EventType()+":"+events.SessionUserID(ev))
				return nil
			})
			s := session.NewStore(kv, bus, logger.Discard())

			Expect(s.SetAuth(ctx, "tok", ada)).To(Succeed())
			Expect(s.ClearAuth(ctx)).To(Succeed())

			Expect(seen).To(Equal([]string{"session.established:e1", "session.cleared:e1"}))
		})
	})

	Describe("TokenExpiry", func() {
		It("reads exp from a JWT", func() {
			exp := time.Now().Add(time.Hour).Truncate(time.Second)
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
				"exp": exp.Unix(),
			}).SignedString([]byte("secret"))
			Expect(err).NotTo(HaveOccurred())

			got, ok := session.TokenExpiry(signed)

			Expect(ok).To(BeTrue())
			Expect(got.Equal(exp)).To(BeTrue())
		})

		It("reports false for opaque tokens", func() {
			_, ok := session.TokenExpiry("opaque-token")
			Expect(ok).To(BeFalse())
		})
	})
})
