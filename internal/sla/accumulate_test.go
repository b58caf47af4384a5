package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fleetops/sts-service/internal/domain"
)

func window(start, end time.Time) domain.MaintenanceWindow {
	return domain.MaintenanceWindow{StartAt: start, EndAt: end}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestAccumulateNilEndBoundary(t *testing.T) {
	got := Accumulate(at(8, 0), nil, nil, domain.NewStatusSet(domain.TicketStatusWaitingVendor), nil)
	require.Nil(t, got)
}

func TestAccumulateVendorWaitPausesClock(t *testing.T) {
	// Opened 08:00, worked 09:00, vendor wait 10:00-12:00, worked until 13:00.
	events := []domain.TicketEvent{
		statusEvent(at(9, 0), domain.TicketStatusInProgress),
		statusEvent(at(10, 0), domain.TicketStatusWaitingVendor),
		statusEvent(at(12, 0), domain.TicketStatusInProgress),
		statusEvent(at(13, 0), domain.TicketStatusResolved),
	}
	pause := domain.NewStatusSet(domain.TicketStatusWaitingVendor)

	got := Accumulate(at(8, 0), timePtr(at(13, 0)), events, pause, nil)

	// 08:00-10:00 and 12:00-13:00 count; the 10:00-12:00 vendor wait does not.
	require.NotNil(t, got)
	require.Equal(t, int64(180), *got)
}

func TestAccumulateNoPauseCountsWallClock(t *testing.T) {
	events := []domain.TicketEvent{
		statusEvent(at(9, 0), domain.TicketStatusInProgress),
	}

	got := Accumulate(at(8, 0), timePtr(at(13, 0)), events, domain.NewStatusSet(), nil)

	require.NotNil(t, got)
	require.Equal(t, int64(300), *got)
}

func TestAccumulatePausedIntervalContributesZero(t *testing.T) {
	// Whole lifetime spent waiting on the vendor.
	events := []domain.TicketEvent{
		statusEvent(at(8, 0), domain.TicketStatusWaitingVendor),
	}
	pause := domain.NewStatusSet(domain.TicketStatusWaitingVendor)

	got := Accumulate(at(8, 0), timePtr(at(18, 0)), events, pause, nil)

	require.NotNil(t, got)
	require.Equal(t, int64(0), *got)
}

func TestAccumulateSubtractsMaintenanceOverlap(t *testing.T) {
	windows := []domain.MaintenanceWindow{
		window(at(9, 0), at(10, 0)),
	}

	got := Accumulate(at(8, 0), timePtr(at(12, 0)), nil, domain.NewStatusSet(), windows)

	require.NotNil(t, got)
	require.Equal(t, int64(180), *got)
}

func TestAccumulateMergesOverlappingWindows(t *testing.T) {
	// Two windows covering 09:00-10:30 combined; the overlapping half hour
	// must not be excluded twice.
	windows := []domain.MaintenanceWindow{
		window(at(9, 0), at(10, 0)),
		window(at(9, 30), at(10, 30)),
	}

	got := Accumulate(at(8, 0), timePtr(at(12, 0)), nil, domain.NewStatusSet(), windows)

	require.NotNil(t, got)
	require.Equal(t, int64(150), *got)
}

func TestAccumulateWindowInsidePauseChangesNothing(t *testing.T) {
	events := []domain.TicketEvent{
		statusEvent(at(9, 0), domain.TicketStatusWaitingVendor),
		statusEvent(at(11, 0), domain.TicketStatusInProgress),
	}
	pause := domain.NewStatusSet(domain.TicketStatusWaitingVendor)
	windows := []domain.MaintenanceWindow{
		window(at(9, 30), at(10, 30)),
	}

	got := Accumulate(at(8, 0), timePtr(at(12, 0)), events, pause, windows)

	// 08:00-09:00 counts, 09:00-11:00 paused, 11:00-12:00 counts.
	require.NotNil(t, got)
	require.Equal(t, int64(120), *got)
}

func TestAccumulateFloorsSegmentAtZero(t *testing.T) {
	// Window wider than the whole segment.
	windows := []domain.MaintenanceWindow{
		window(at(7, 0), at(13, 0)),
	}

	got := Accumulate(at(8, 0), timePtr(at(12, 0)), nil, domain.NewStatusSet(), windows)

	require.NotNil(t, got)
	require.Equal(t, int64(0), *got)
}

func TestAccumulateSkipsDegenerateSegments(t *testing.T) {
	// Two status changes recorded with identical timestamps; append-only
	// logs must stay valid anyway.
	events := []domain.TicketEvent{
		statusEvent(at(9, 0), domain.TicketStatusInProgress),
		statusEvent(at(9, 0), domain.TicketStatusWaitingVendor),
		statusEvent(at(10, 0), domain.TicketStatusInProgress),
	}
	pause := domain.NewStatusSet(domain.TicketStatusWaitingVendor)

	got := Accumulate(at(8, 0), timePtr(at(11, 0)), events, pause, nil)

	// The zero-length IN_PROGRESS segment contributes nothing; 09:00-10:00
	// is paused; 08:00-09:00 and 10:00-11:00 count.
	require.NotNil(t, got)
	require.Equal(t, int64(120), *got)
}

func TestAccumulateWideningWindowNeverIncreasesMinutes(t *testing.T) {
	base := Accumulate(at(8, 0), timePtr(at(12, 0)), nil, domain.NewStatusSet(), []domain.MaintenanceWindow{
		window(at(9, 0), at(10, 0)),
	})
	widened := Accumulate(at(8, 0), timePtr(at(12, 0)), nil, domain.NewStatusSet(), []domain.MaintenanceWindow{
		window(at(9, 0), at(11, 0)),
	})
	extra := Accumulate(at(8, 0), timePtr(at(12, 0)), nil, domain.NewStatusSet(), []domain.MaintenanceWindow{
		window(at(9, 0), at(10, 0)),
		window(at(10, 30), at(11, 0)),
	})

	require.NotNil(t, base)
	require.NotNil(t, widened)
	require.NotNil(t, extra)
	require.LessOrEqual(t, *widened, *base)
	require.LessOrEqual(t, *extra, *base)
}

func TestAccumulateLaterEventDoesNotDisturbEarlierSegments(t *testing.T) {
	events := []domain.TicketEvent{
		statusEvent(at(9, 0), domain.TicketStatusInProgress),
	}
	before := Accumulate(at(8, 0), timePtr(at(10, 0)), events, domain.NewStatusSet(domain.TicketStatusWaitingVendor), nil)

	// Appending a status change after the end boundary leaves the
	// accumulated minutes untouched.
	events = append(events, statusEvent(at(10, 0), domain.TicketStatusWaitingVendor))
	after := Accumulate(at(8, 0), timePtr(at(10, 0)), events, domain.NewStatusSet(domain.TicketStatusWaitingVendor), nil)

	require.NotNil(t, before)
	require.NotNil(t, after)
	require.Equal(t, *before, *after)
}

func TestAccumulateRoundsPerSegment(t *testing.T) {
	// Two segments of 30.4 and 30.4 minutes round to 30 each; a single
	// continuous duration would round 60.8 to 61.
	events := []domain.TicketEvent{
		{
			Type:      domain.EventTypeStatusChange,
			Status:    statusRef(domain.TicketStatusInProgress),
			CreatedAt: at(8, 30).Add(24 * time.Second),
		},
	}
	end := at(9, 0).Add(48 * time.Second)

	got := Accumulate(at(8, 0), &end, events, domain.NewStatusSet(), nil)

	require.NotNil(t, got)
	require.Equal(t, int64(60), *got)
}

func statusRef(s domain.TicketStatus) *domain.TicketStatus {
	return &s
}
