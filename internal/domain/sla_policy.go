package domain

import "time"

// StatusSet is a set of ticket statuses with O(1) membership tests.
type StatusSet map[TicketStatus]struct{}

// NewStatusSet builds a set from the given statuses.
func NewStatusSet(statuses ...TicketStatus) StatusSet {
	set := make(StatusSet, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

// Contains reports membership.
func (s StatusSet) Contains(status TicketStatus) bool {
	_, ok := s[status]
	return ok
}

// Slice returns the members in unspecified order, for persistence.
func (s StatusSet) Slice() []TicketStatus {
	out := make([]TicketStatus, 0, len(s))
	for status := range s {
		out = append(out, status)
	}
	return out
}

// SlaPolicy configures response/resolution limits for one
// (tenant, component, severity) key. At most one policy exists per key;
// policies are opt-in, so a missing row means SLA does not apply.
type SlaPolicy struct {
	ID                string
	TenantID          string
	ComponentID       string
	Severity          Severity
	ResponseMinutes   int64
	ResolutionMinutes int64
	PauseStatuses     StatusSet
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// EffectivePauseStatuses returns the configured pause set, defaulting to
// {WAITING_VENDOR} when none was stored.
func (p *SlaPolicy) EffectivePauseStatuses() StatusSet {
	if len(p.PauseStatuses) == 0 {
		return NewStatusSet(TicketStatusWaitingVendor)
	}
	return p.PauseStatuses
}
