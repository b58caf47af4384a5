package dto

import (
	"time"

	"github.com/fleetops/sts-service/internal/domain"
)

// UpsertPoliciesRequest bulk-upserts SLA policies.
type UpsertPoliciesRequest struct {
	Policies []PolicyRequest `json:"policies"`
}

// PolicyRequest describes one policy row.
type PolicyRequest struct {
	ComponentID       string                `json:"component_id"`
	Severity          domain.Severity       `json:"severity"`
	ResponseMinutes   int64                 `json:"response_minutes"`
	ResolutionMinutes int64                 `json:"resolution_minutes"`
	PauseStatuses     []domain.TicketStatus `json:"pause_statuses"`
}

// PolicyResponse payload.
type PolicyResponse struct {
	ID                string                `json:"id"`
	ComponentID       string                `json:"component_id"`
	Severity          domain.Severity       `json:"severity"`
	ResponseMinutes   int64                 `json:"response_minutes"`
	ResolutionMinutes int64                 `json:"resolution_minutes"`
	PauseStatuses     []domain.TicketStatus `json:"pause_statuses"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// CreateWindowRequest declares a maintenance window.
type CreateWindowRequest struct {
	ComponentID *string   `json:"component_id"`
	Reason      string    `json:"reason"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
}

// WindowResponse payload.
type WindowResponse struct {
	ID          string    `json:"id"`
	ComponentID *string   `json:"component_id"`
	Reason      string    `json:"reason"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	CreatedAt   time.Time `json:"created_at"`
}
