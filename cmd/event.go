package cmd

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/resource-dashboard/internal/core/events"
)

// watchSessionEvents writes an audit line for every login and logout.
func watchSessionEvents(bus *events.EventBus, log *slog.Logger) {
	for _, eventType := range []string{events.SessionEstablished, events.SessionCleared} {
		bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			log.Info("session event",
				"event_id", event.EventID(),
				"event_type", event.EventType(),
				"user_id", events.SessionUserID(event),
				"occurred_at", event.OccurredAt())
			return nil
		})
	}
}
