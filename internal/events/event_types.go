package events

import (
	"time"

	"github.com/fleetops/sts-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketCommentAdded  EventType = "ticket_comment_added"
	EventTicketSlaBreached   EventType = "ticket_sla_breached"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type      domain.ActorType `json:"type"`
	AccountID *string          `json:"account_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TenantID  string      `json:"tenant_id"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ComponentID string               `json:"component_id"`
	Severity    domain.Severity      `json:"severity"`
	Channel     domain.TicketChannel `json:"channel"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
	Forced    bool                `json:"forced,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID *string `json:"assignee_account_id,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	EventID     string `json:"event_id"`
	IsResponse  bool   `json:"is_response"`
	BodyPreview string `json:"body_preview"`
}

// TicketSlaBreachedPayload payload.
type TicketSlaBreachedPayload struct {
	BreachResponse    bool   `json:"breach_response"`
	BreachResolution  bool   `json:"breach_resolution"`
	ResponseMinutes   *int64 `json:"response_minutes,omitempty"`
	ResolutionMinutes *int64 `json:"resolution_minutes,omitempty"`
}
