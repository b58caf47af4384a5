package sla

import (
	"math"
	"sort"
	"time"

	"github.com/fleetops/sts-service/internal/domain"
)

// Accumulate sums SLA clock minutes between openedAt and endAt.
//
// It walks the reconstructed timeline segment by segment: degenerate or
// out-of-order segments contribute nothing, segments spent in a pause status
// contribute nothing regardless of maintenance overlap, and every other
// segment contributes its wall-clock minutes minus its overlap with the
// merged maintenance windows, floored at zero per segment.
//
// Each figure (segment length, per-window overlap) is rounded to the nearest
// minute independently before being combined. SLA thresholds are expressed in
// whole minutes, and evaluating segment by segment keeps every reported value
// reproducible from its parts.
//
// A nil endAt means the clock is still running: the accumulated total is not
// defined yet, so nil is returned.
func Accumulate(openedAt time.Time, endAt *time.Time, events []domain.TicketEvent, pauseStatuses domain.StatusSet, windows []domain.MaintenanceWindow) *int64 {
	if endAt == nil {
		return nil
	}

	timeline := BuildTimeline(openedAt, events)
	timeline = append(timeline, Checkpoint{At: *endAt, Status: domain.TicketStatusClosed})
	blackouts := mergeWindows(windows)

	var total int64
	for i := 0; i < len(timeline)-1; i++ {
		current, next := timeline[i], timeline[i+1]
		if !next.At.After(current.At) {
			continue
		}
		if pauseStatuses.Contains(current.Status) {
			continue
		}
		minutes := roundMinutes(next.At.Sub(current.At))
		for _, blackout := range blackouts {
			minutes -= overlapMinutes(current.At, next.At, blackout)
		}
		if minutes < 0 {
			minutes = 0
		}
		total += minutes
	}
	return &total
}

type interval struct {
	start time.Time
	end   time.Time
}

// mergeWindows unions possibly-overlapping maintenance windows into disjoint
// intervals so overlapping declarations cannot exclude the same wall-clock
// time twice.
func mergeWindows(windows []domain.MaintenanceWindow) []interval {
	intervals := make([]interval, 0, len(windows))
	for _, w := range windows {
		if !w.EndAt.After(w.StartAt) {
			continue
		}
		intervals = append(intervals, interval{start: w.StartAt, end: w.EndAt})
	}
	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start.Before(intervals[j].start)
	})

	merged := make([]interval, 0, len(intervals))
	for _, iv := range intervals {
		if len(merged) > 0 && !iv.start.After(merged[len(merged)-1].end) {
			if iv.end.After(merged[len(merged)-1].end) {
				merged[len(merged)-1].end = iv.end
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// overlapMinutes returns the rounded minutes the [from, to) segment overlaps
// the blackout interval.
func overlapMinutes(from, to time.Time, blackout interval) int64 {
	start := from
	if blackout.start.After(start) {
		start = blackout.start
	}
	end := to
	if blackout.end.Before(end) {
		end = blackout.end
	}
	if !end.After(start) {
		return 0
	}
	return roundMinutes(end.Sub(start))
}

func roundMinutes(d time.Duration) int64 {
	return int64(math.Round(d.Minutes()))
}
