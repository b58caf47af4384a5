package dto

import (
	"time"

	"github.com/fleetops/sts-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	ComponentID string               `json:"component_id"`
	CaseID      *string              `json:"case_id"`
	Severity    domain.Severity      `json:"severity"`
	Channel     domain.TicketChannel `json:"channel"`
	Description string               `json:"description"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment"`
}

// AssignRequest payload. A null assignee clears the assignment.
type AssignRequest struct {
	AssigneeID *string `json:"assignee_account_id"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Body       string `json:"body"`
	IsResponse bool   `json:"is_response"`
}

// TicketSummary response.
type TicketSummary struct {
	ID                string               `json:"id"`
	ExternalKey       string               `json:"external_key"`
	ComponentID       string               `json:"component_id"`
	CaseID            *string              `json:"case_id"`
	AssigneeID        *string              `json:"assignee_account_id"`
	Severity          domain.Severity      `json:"severity"`
	Channel           domain.TicketChannel `json:"channel"`
	Status            domain.TicketStatus  `json:"status"`
	OpenedAt          time.Time            `json:"opened_at"`
	FirstResponseAt   *time.Time           `json:"first_response_at"`
	ResolvedAt        *time.Time           `json:"resolved_at"`
	ClosedAt          *time.Time           `json:"closed_at"`
	ResponseMinutes   *int64               `json:"response_minutes"`
	ResolutionMinutes *int64               `json:"resolution_minutes"`
	BreachResponse    bool                 `json:"breach_response"`
	BreachResolution  bool                 `json:"breach_resolution"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info including timeline and the
// live SLA view.
type TicketDetailResponse struct {
	TicketSummary
	Description string                `json:"description"`
	Events      []TicketEventResponse `json:"events"`
	Sla         *SlaStatusResponse    `json:"sla"`
}

// TicketEventResponse represents a timeline entry.
type TicketEventResponse struct {
	ID         string                 `json:"id"`
	Type       domain.TicketEventType `json:"type"`
	Status     *domain.TicketStatus   `json:"status,omitempty"`
	Message    *string                `json:"message,omitempty"`
	ActorType  domain.ActorType       `json:"actor_type"`
	ActorID    *string                `json:"actor_id,omitempty"`
	IsResponse bool                   `json:"is_response"`
	CreatedAt  time.Time              `json:"created_at"`
}

// SlaStatusResponse is the live SLA view for a single ticket.
type SlaStatusResponse struct {
	PolicyApplies         bool     `json:"policy_applies"`
	ResponseMinutes       *int64   `json:"response_minutes"`
	ResolutionMinutes     *int64   `json:"resolution_minutes"`
	BreachResponse        bool     `json:"breach_response"`
	BreachResolution      bool     `json:"breach_resolution"`
	ResponseProgress      *float64 `json:"response_progress,omitempty"`
	ResolutionProgress    *float64 `json:"resolution_progress,omitempty"`
	ApproachingResponse   bool     `json:"approaching_response"`
	ApproachingResolution bool     `json:"approaching_resolution"`
}
