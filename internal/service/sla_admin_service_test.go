package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fleetops/sts-service/internal/domain"
	apperrors "github.com/fleetops/sts-service/pkg/util/errorutil"
)

func newAdminService() (*SlaAdminService, *fakeState) {
	state := newFakeState()
	return NewSlaAdminService(fakePolicyRepo{state}, fakeWindowRepo{state}), state
}

func TestUpsertPoliciesValidation(t *testing.T) {
	svc, _ := newAdminService()

	_, err := svc.UpsertPolicies(context.Background(), testTenant, []PolicyInput{{
		Severity:          domain.SeverityHigh,
		ResponseMinutes:   15,
		ResolutionMinutes: 120,
	}})
	require.Error(t, err)

	_, err = svc.UpsertPolicies(context.Background(), testTenant, []PolicyInput{{
		ComponentID:       "component-1",
		Severity:          "CRITICAL",
		ResponseMinutes:   15,
		ResolutionMinutes: 120,
	}})
	require.Error(t, err)

	_, err = svc.UpsertPolicies(context.Background(), testTenant, []PolicyInput{{
		ComponentID:       "component-1",
		Severity:          domain.SeverityHigh,
		ResponseMinutes:   0,
		ResolutionMinutes: 120,
	}})
	require.Error(t, err)

	_, err = svc.UpsertPolicies(context.Background(), testTenant, []PolicyInput{{
		ComponentID:       "component-1",
		Severity:          domain.SeverityHigh,
		ResponseMinutes:   15,
		ResolutionMinutes: 120,
		PauseStatuses:     []domain.TicketStatus{"SLEEPING"},
	}})
	require.Error(t, err)
}

func TestUpsertPoliciesStoresRows(t *testing.T) {
	svc, state := newAdminService()

	policies, err := svc.UpsertPolicies(context.Background(), testTenant, []PolicyInput{
		{
			ComponentID:       "component-1",
			Severity:          domain.SeverityHigh,
			ResponseMinutes:   15,
			ResolutionMinutes: 120,
			PauseStatuses:     []domain.TicketStatus{domain.TicketStatusWaitingVendor},
		},
		{
			ComponentID:       "component-1",
			Severity:          domain.SeverityLow,
			ResponseMinutes:   240,
			ResolutionMinutes: 2880,
		},
	})
	require.NoError(t, err)
	require.Len(t, policies, 2)
	require.Len(t, state.policies, 2)

	// Re-upserting the same key overwrites instead of duplicating.
	_, err = svc.UpsertPolicies(context.Background(), testTenant, []PolicyInput{{
		ComponentID:       "component-1",
		Severity:          domain.SeverityHigh,
		ResponseMinutes:   30,
		ResolutionMinutes: 120,
	}})
	require.NoError(t, err)
	require.Len(t, state.policies, 2)
	stored := state.policies[policyKey(testTenant, "component-1", domain.SeverityHigh)]
	require.Equal(t, int64(30), stored.ResponseMinutes)
}

func TestCreateWindowRejectsInvertedInterval(t *testing.T) {
	svc, _ := newAdminService()

	_, err := svc.CreateWindow(context.Background(), testTenant, WindowInput{
		Reason:  "patching",
		StartAt: ts(10, 0),
		EndAt:   ts(9, 0),
	})
	require.Error(t, err)
}

func TestDeleteWindowNotFound(t *testing.T) {
	svc, _ := newAdminService()

	err := svc.DeleteWindow(context.Background(), testTenant, "missing")
	require.Error(t, err)
	require.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestWindowLifecycle(t *testing.T) {
	svc, _ := newAdminService()

	componentID := "component-1"
	window, err := svc.CreateWindow(context.Background(), testTenant, WindowInput{
		ComponentID: &componentID,
		Reason:      "planned outage",
		StartAt:     ts(9, 0),
		EndAt:       ts(10, 0),
	})
	require.NoError(t, err)
	require.NotEmpty(t, window.ID)

	windows, err := svc.ListWindows(context.Background(), testTenant)
	require.NoError(t, err)
	require.Len(t, windows, 1)

	require.NoError(t, svc.DeleteWindow(context.Background(), testTenant, window.ID))

	windows, err = svc.ListWindows(context.Background(), testTenant)
	require.NoError(t, err)
	require.Empty(t, windows)
}
