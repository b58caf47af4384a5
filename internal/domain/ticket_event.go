package domain

import "time"

// TicketEventType captures what a timeline entry records.
type TicketEventType string

const (
	EventTypeStatusChange TicketEventType = "STATUS_CHANGE"
	EventTypeComment      TicketEventType = "COMMENT"
	EventTypeAssign       TicketEventType = "ASSIGN"
)

// ActorType indicates who produced an event.
type ActorType string

const (
	ActorTypeAccount ActorType = "ACCOUNT"
	ActorTypeSystem  ActorType = "SYSTEM"
)

// TicketEvent is an append-only audit/timeline record. Events are never
// mutated or deleted after creation; the SLA timeline is reconstructed from
// the STATUS_CHANGE entries alone.
type TicketEvent struct {
	ID         string
	TicketID   string
	Type       TicketEventType
	Status     *TicketStatus
	Message    *string
	ActorType  ActorType
	ActorID    *string
	IsResponse bool
	Metadata   map[string]any
	CreatedAt  time.Time
}
