package core

import "time"

// SessionEventType names a session lifecycle transition
type SessionEventType string

const (
	EventLogin          SessionEventType = "session.login"
	EventLogout         SessionEventType = "session.logout"
	EventRefreshed      SessionEventType = "session.refreshed"
	EventRefreshDenied  SessionEventType = "session.refresh_denied"
	EventSessionCleared SessionEventType = "session.cleared"
)

// SessionEvent records a session lifecycle transition.
// Credentials are never part of an event.
type SessionEvent struct {
	Type      SessionEventType `json:"type"`
	Subject   string           `json:"subject,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	RequestID string           `json:"request_id,omitempty"`
	At        time.Time        `json:"at"`
}
