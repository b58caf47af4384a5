package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fleetops/sts-service/internal/domain"
)

func at(hour, min int) time.Time {
	return time.Date(2025, time.March, 10, hour, min, 0, 0, time.UTC)
}

func statusEvent(t time.Time, status domain.TicketStatus) domain.TicketEvent {
	return domain.TicketEvent{
		Type:      domain.EventTypeStatusChange,
		Status:    &status,
		CreatedAt: t,
	}
}

func commentEvent(t time.Time, isResponse bool) domain.TicketEvent {
	msg := "looking into it"
	return domain.TicketEvent{
		Type:       domain.EventTypeComment,
		Message:    &msg,
		IsResponse: isResponse,
		CreatedAt:  t,
	}
}

func TestBuildTimelineStartsWithOpen(t *testing.T) {
	timeline := BuildTimeline(at(8, 0), nil)

	require.Len(t, timeline, 1)
	require.Equal(t, at(8, 0), timeline[0].At)
	require.Equal(t, domain.TicketStatusOpen, timeline[0].Status)
}

func TestBuildTimelineIgnoresNonStatusEvents(t *testing.T) {
	events := []domain.TicketEvent{
		commentEvent(at(8, 30), true),
		{Type: domain.EventTypeAssign, CreatedAt: at(8, 45)},
		statusEvent(at(9, 0), domain.TicketStatusInProgress),
		// STATUS_CHANGE without a status carries no checkpoint
		{Type: domain.EventTypeStatusChange, CreatedAt: at(9, 30)},
	}

	timeline := BuildTimeline(at(8, 0), events)

	require.Len(t, timeline, 2)
	require.Equal(t, domain.TicketStatusInProgress, timeline[1].Status)
	require.Equal(t, at(9, 0), timeline[1].At)
}

func TestBuildTimelineSortsOutOfOrderEvents(t *testing.T) {
	events := []domain.TicketEvent{
		statusEvent(at(12, 0), domain.TicketStatusResolved),
		statusEvent(at(9, 0), domain.TicketStatusInProgress),
		statusEvent(at(10, 0), domain.TicketStatusWaitingVendor),
	}

	timeline := BuildTimeline(at(8, 0), events)

	require.Len(t, timeline, 4)
	require.Equal(t, domain.TicketStatusInProgress, timeline[1].Status)
	require.Equal(t, domain.TicketStatusWaitingVendor, timeline[2].Status)
	require.Equal(t, domain.TicketStatusResolved, timeline[3].Status)
}

func TestBuildTimelineTiesKeepInsertionOrder(t *testing.T) {
	events := []domain.TicketEvent{
		statusEvent(at(9, 0), domain.TicketStatusInProgress),
		statusEvent(at(9, 0), domain.TicketStatusWaitingVendor),
	}

	timeline := BuildTimeline(at(8, 0), events)

	require.Len(t, timeline, 3)
	require.Equal(t, domain.TicketStatusInProgress, timeline[1].Status)
	require.Equal(t, domain.TicketStatusWaitingVendor, timeline[2].Status)
}
