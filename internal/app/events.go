package app

import "threefiveseven/internal/domain"

// EventKind identifies outbound events for transport dispatch. The values
// are the wire message types.
type EventKind string

const (
	EventTableUpdated EventKind = "update table"
	EventHandUpdated  EventKind = "update hand"
	EventCountdown    EventKind = "play countdown"
	EventServerError  EventKind = "server error"
)

// Event is an outbound message for one session. Payloads are already
// detached from engine state and safe to serialize on another goroutine.
type Event struct {
	Kind    EventKind
	Payload any
}

// TableUpdatedPayload carries a full table snapshot, or nil to signal that
// the session is not seated anywhere.
type TableUpdatedPayload struct {
	Table *domain.Table
}

// HandUpdatedPayload carries one player's hand, keyed by display name so it
// survives reconnects. Clear tells the client to drop all known hands first.
type HandUpdatedPayload struct {
	Name  string
	Hand  []domain.Card
	Clear bool
}

// ServerErrorPayload carries a per-request failure message.
type ServerErrorPayload struct {
	Message string
}

// Sender delivers events to one session's live connection. Implementations
// must not block the engine: a stalled or closed connection drops the event.
type Sender interface {
	Send(ev Event)
}
