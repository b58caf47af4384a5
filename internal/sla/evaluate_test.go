package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fleetops/sts-service/internal/domain"
)

func testPolicy(responseMinutes, resolutionMinutes int64) *domain.SlaPolicy {
	return &domain.SlaPolicy{
		TenantID:          "tenant-1",
		ComponentID:       "component-1",
		Severity:          domain.SeverityHigh,
		ResponseMinutes:   responseMinutes,
		ResolutionMinutes: resolutionMinutes,
		PauseStatuses:     domain.NewStatusSet(domain.TicketStatusWaitingVendor),
	}
}

func TestEvaluateNoPolicy(t *testing.T) {
	eval := Evaluate(at(8, 0), timePtr(at(8, 20)), timePtr(at(13, 0)), timePtr(at(13, 0)), nil, nil, nil)

	require.Nil(t, eval.ResponseMinutes)
	require.Nil(t, eval.ResolutionMinutes)
	require.False(t, eval.BreachResponse)
	require.False(t, eval.BreachResolution)
}

func TestEvaluateWorkedExample(t *testing.T) {
	// Opened 08:00, first response 08:20, vendor wait 10:00-12:00,
	// resolved and closed 13:00. Response limit 15, resolution limit 240.
	events := []domain.TicketEvent{
		statusEvent(at(9, 0), domain.TicketStatusInProgress),
		statusEvent(at(10, 0), domain.TicketStatusWaitingVendor),
		statusEvent(at(12, 0), domain.TicketStatusInProgress),
		statusEvent(at(13, 0), domain.TicketStatusClosed),
	}

	eval := Evaluate(at(8, 0), timePtr(at(8, 20)), timePtr(at(13, 0)), timePtr(at(13, 0)), events, testPolicy(15, 240), nil)

	require.NotNil(t, eval.ResponseMinutes)
	require.Equal(t, int64(20), *eval.ResponseMinutes)
	require.True(t, eval.BreachResponse)

	// 300 elapsed minutes minus the 120 minute vendor wait.
	require.NotNil(t, eval.ResolutionMinutes)
	require.Equal(t, int64(180), *eval.ResolutionMinutes)
	require.False(t, eval.BreachResolution)
}

func TestEvaluateNoFirstResponse(t *testing.T) {
	eval := Evaluate(at(8, 0), nil, nil, nil, nil, testPolicy(15, 120), nil)

	require.Nil(t, eval.ResponseMinutes)
	require.False(t, eval.BreachResponse)
	require.Nil(t, eval.ResolutionMinutes)
	require.False(t, eval.BreachResolution)
}

func TestEvaluateStillOpenHasNilResolution(t *testing.T) {
	eval := Evaluate(at(8, 0), timePtr(at(8, 5)), nil, nil, nil, testPolicy(15, 120), nil)

	require.NotNil(t, eval.ResponseMinutes)
	require.Equal(t, int64(5), *eval.ResponseMinutes)
	require.False(t, eval.BreachResponse)
	require.Nil(t, eval.ResolutionMinutes)
	require.False(t, eval.BreachResolution)
}

func TestEvaluatePrefersClosedAtOverResolvedAt(t *testing.T) {
	eval := Evaluate(at(8, 0), timePtr(at(8, 5)), timePtr(at(10, 0)), timePtr(at(11, 0)), nil, testPolicy(15, 120), nil)

	require.NotNil(t, eval.ResolutionMinutes)
	require.Equal(t, int64(180), *eval.ResolutionMinutes)
	require.True(t, eval.BreachResolution)
}

func TestEvaluateFallsBackToResolvedAt(t *testing.T) {
	eval := Evaluate(at(8, 0), timePtr(at(8, 5)), timePtr(at(10, 0)), nil, nil, testPolicy(15, 120), nil)

	require.NotNil(t, eval.ResolutionMinutes)
	require.Equal(t, int64(120), *eval.ResolutionMinutes)
	require.False(t, eval.BreachResolution)
}

func TestEvaluateMaintenanceDoesNotTouchResponseClock(t *testing.T) {
	windows := []domain.MaintenanceWindow{
		window(at(8, 0), at(9, 0)),
	}

	eval := Evaluate(at(8, 0), timePtr(at(8, 20)), timePtr(at(13, 0)), timePtr(at(13, 0)), nil, testPolicy(15, 600), windows)

	// Response time is wall clock, unaffected by the window covering it.
	require.NotNil(t, eval.ResponseMinutes)
	require.Equal(t, int64(20), *eval.ResponseMinutes)
	require.True(t, eval.BreachResponse)
}

func TestEvaluateDefaultPauseStatuses(t *testing.T) {
	policy := testPolicy(15, 120)
	policy.PauseStatuses = nil

	events := []domain.TicketEvent{
		statusEvent(at(9, 0), domain.TicketStatusWaitingVendor),
		statusEvent(at(11, 0), domain.TicketStatusInProgress),
	}

	eval := Evaluate(at(8, 0), timePtr(at(8, 5)), nil, timePtr(at(12, 0)), events, policy, nil)

	// WAITING_VENDOR pauses the clock even when the policy stored no
	// explicit pause set.
	require.NotNil(t, eval.ResolutionMinutes)
	require.Equal(t, int64(120), *eval.ResolutionMinutes)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	events := []domain.TicketEvent{
		statusEvent(at(9, 0), domain.TicketStatusInProgress),
		statusEvent(at(10, 0), domain.TicketStatusWaitingVendor),
		statusEvent(at(12, 0), domain.TicketStatusInProgress),
		statusEvent(at(13, 0), domain.TicketStatusClosed),
	}
	windows := []domain.MaintenanceWindow{
		window(at(12, 30), at(12, 45)),
	}

	first := Evaluate(at(8, 0), timePtr(at(8, 20)), timePtr(at(13, 0)), timePtr(at(13, 0)), events, testPolicy(15, 120), windows)
	second := Evaluate(at(8, 0), timePtr(at(8, 20)), timePtr(at(13, 0)), timePtr(at(13, 0)), events, testPolicy(15, 120), windows)

	require.Equal(t, *first.ResponseMinutes, *second.ResponseMinutes)
	require.Equal(t, *first.ResolutionMinutes, *second.ResolutionMinutes)
	require.Equal(t, first.BreachResponse, second.BreachResponse)
	require.Equal(t, first.BreachResolution, second.BreachResolution)
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		openedAt time.Time
		limit    int64
		want     float64
	}{
		{"halfway", at(9, 0), at(8, 0), 120, 0.5},
		{"at limit", at(10, 0), at(8, 0), 120, 1},
		{"beyond limit clamps", at(12, 0), at(8, 0), 120, 1},
		{"zero limit expired", at(8, 1), at(8, 0), 0, 1},
		{"negative limit expired", at(8, 1), at(8, 0), -30, 1},
		{"now before opened clamps low", at(7, 0), at(8, 0), 120, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Progress(tt.now, tt.openedAt, tt.limit)
			require.InDelta(t, tt.want, got, 1e-9)
			require.GreaterOrEqual(t, got, 0.0)
			require.LessOrEqual(t, got, 1.0)
		})
	}
}
