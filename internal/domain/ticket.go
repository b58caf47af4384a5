package domain

import "time"

// TicketStatus enumerates lifecycle states for support tickets.
type TicketStatus string

const (
	TicketStatusOpen          TicketStatus = "OPEN"
	TicketStatusInProgress    TicketStatus = "IN_PROGRESS"
	TicketStatusWaitingVendor TicketStatus = "WAITING_VENDOR"
	TicketStatusResolved      TicketStatus = "RESOLVED"
	TicketStatusClosed        TicketStatus = "CLOSED"
)

// ValidTicketStatus reports whether s is one of the five known statuses.
// Enum validation happens at the HTTP boundary; the SLA engine trusts its input.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingVendor,
		TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Severity enumerates SLA urgency for a ticket.
type Severity string

const (
	SeverityEmergency Severity = "EMERGENCY"
	SeverityHigh      Severity = "HIGH"
	SeverityMedium    Severity = "MEDIUM"
	SeverityLow       Severity = "LOW"
)

// ValidSeverity reports whether s is one of the four known severities.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityEmergency, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// TicketChannel records how a ticket reached the back office.
type TicketChannel string

const (
	ChannelPortal    TicketChannel = "PORTAL"
	ChannelPhone     TicketChannel = "PHONE"
	ChannelEmail     TicketChannel = "EMAIL"
	ChannelTelemetry TicketChannel = "TELEMETRY"
)

// Ticket is the aggregate for one support issue against a fleet component.
//
// OpenedAt is set once at creation and never changes. FirstResponseAt is set
// at most once, the first time a response comment is recorded. ClosedAt
// back-fills ResolvedAt when the ticket is closed without a prior resolve.
// Whenever each timestamp is present: OpenedAt <= FirstResponseAt <=
// ResolvedAt <= ClosedAt.
//
// BreachResponse/BreachResolution and the minute figures are denormalized
// evaluation results, rewritten on every mutation so dashboards and exports
// read them without re-running the accumulator.
type Ticket struct {
	ID                string
	TenantID          string
	ExternalKey       string
	ComponentID       string
	CaseID            *string
	AssigneeID        *string
	Severity          Severity
	Channel           TicketChannel
	Description       string
	Status            TicketStatus
	OpenedAt          time.Time
	FirstResponseAt   *time.Time
	ResolvedAt        *time.Time
	ClosedAt          *time.Time
	ResponseMinutes   *int64
	ResolutionMinutes *int64
	BreachResponse    bool
	BreachResolution  bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
