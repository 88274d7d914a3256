package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionEstablished = "session.established"
	SessionCleared     = "session.cleared"
)

// NewSessionEvent describes a login or logout of userID.
func NewSessionEvent(eventType, userID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id": userID,
		},
	}
}

// SessionUserID extracts the user id carried by a session event.
func SessionUserID(ev Event) string {
	data, ok := ev.Payload().(map[string]interface{})
	if !ok {
		return ""
	}
	id, _ := data["user_id"].(string)
	return id
}
