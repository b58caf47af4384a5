package sla

import (
	"time"

	"github.com/fleetops/sts-service/internal/domain"
)

// Evaluation holds the derived SLA figures for one ticket. Nil minute fields
// mean the corresponding clock could not be evaluated (no first response yet,
// or the ticket is still open); breach flags are false in that case.
type Evaluation struct {
	ResponseMinutes   *int64
	ResolutionMinutes *int64
	BreachResponse    bool
	BreachResolution  bool
}

// Evaluate computes response/resolution minutes and breach flags for one
// ticket against its policy and maintenance windows.
//
// A nil policy means SLA does not apply to this component/severity pair; the
// zero Evaluation is returned. The resolution clock ends at closedAt when
// set, else resolvedAt, else it is still running and stays nil. Response time
// is pure wall clock between openedAt and the first response; maintenance
// windows and pauses only affect the resolution clock.
func Evaluate(openedAt time.Time, firstResponseAt, resolvedAt, closedAt *time.Time, events []domain.TicketEvent, policy *domain.SlaPolicy, windows []domain.MaintenanceWindow) Evaluation {
	var eval Evaluation
	if policy == nil {
		return eval
	}

	if firstResponseAt != nil {
		minutes := roundMinutes(firstResponseAt.Sub(openedAt))
		eval.ResponseMinutes = &minutes
		eval.BreachResponse = minutes > policy.ResponseMinutes
	}

	end := closedAt
	if end == nil {
		end = resolvedAt
	}
	eval.ResolutionMinutes = Accumulate(openedAt, end, events, policy.EffectivePauseStatuses(), windows)
	if eval.ResolutionMinutes != nil {
		eval.BreachResolution = *eval.ResolutionMinutes > policy.ResolutionMinutes
	}
	return eval
}

// Progress reports the fraction of limitMinutes consumed since openedAt,
// clamped to [0, 1]. A non-positive limit counts as already expired. Used for
// pre-breach warnings on live tickets only; never persisted.
func Progress(now, openedAt time.Time, limitMinutes int64) float64 {
	if limitMinutes <= 0 {
		return 1
	}
	elapsed := now.Sub(openedAt).Minutes()
	if elapsed <= 0 {
		return 0
	}
	ratio := elapsed / float64(limitMinutes)
	if ratio > 1 {
		return 1
	}
	return ratio
}
