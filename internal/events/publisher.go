package events

import (
	"time"
)

// AttemptEvent is the wire shape of a login-attempt broadcast
type AttemptEvent struct {
	Email   string    `json:"email"`
	Success bool      `json:"success"`
	IP      string    `json:"ip"`
	Note    string    `json:"note,omitempty"`
	At      time.Time `json:"at"`
}

// PublishAttempt broadcasts a login attempt to connected dashboards.
// Broadcast failure never affects the auth flow.
func PublishAttempt(email string, success bool, ip, note string) {
	BroadcastToAll("auth:attempt", AttemptEvent{
		Email:   email,
		Success: success,
		IP:      ip,
		Note:    note,
		At:      time.Now(),
	})
}

// PublishConfigUpdated broadcasts that the security configuration changed
func PublishConfigUpdated(payload interface{}) {
	BroadcastToAll("config:updated", payload)
}
