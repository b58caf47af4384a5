package sla

import (
	"sort"
	"time"

	"github.com/fleetops/sts-service/internal/domain"
)

// Checkpoint marks when a ticket entered a status.
type Checkpoint struct {
	At     time.Time
	Status domain.TicketStatus
}

// BuildTimeline reconstructs a ticket's status history as an ordered list of
// checkpoints. The first checkpoint is always (openedAt, OPEN). One checkpoint
// is appended per STATUS_CHANGE event carrying a status, in ascending
// CreatedAt order; ties keep insertion order. Events of other types are
// ignored. The timeline has no terminal checkpoint; callers supply the end
// boundary when walking segments.
func BuildTimeline(openedAt time.Time, events []domain.TicketEvent) []Checkpoint {
	changes := make([]domain.TicketEvent, 0, len(events))
	for _, ev := range events {
		if ev.Type != domain.EventTypeStatusChange || ev.Status == nil {
			continue
		}
		changes = append(changes, ev)
	}
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].CreatedAt.Before(changes[j].CreatedAt)
	})

	timeline := make([]Checkpoint, 0, len(changes)+1)
	timeline = append(timeline, Checkpoint{At: openedAt, Status: domain.TicketStatusOpen})
	for _, ev := range changes {
		timeline = append(timeline, Checkpoint{At: ev.CreatedAt, Status: *ev.Status})
	}
	return timeline
}
