package sla

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/sts-service/internal/domain"
)

type stubPolicyStore struct {
	policy *domain.SlaPolicy
	err    error
}

func (s *stubPolicyStore) FetchOne(_ context.Context, _, _ string, _ domain.Severity) (*domain.SlaPolicy, error) {
	return s.policy, s.err
}

type stubWindowStore struct {
	windows []domain.MaintenanceWindow
	err     error
}

func (s *stubWindowStore) ListForComponent(_ context.Context, _, _ string) ([]domain.MaintenanceWindow, error) {
	return s.windows, s.err
}

func TestResolveReturnsPolicyAndWindows(t *testing.T) {
	policy := testPolicy(15, 120)
	windows := []domain.MaintenanceWindow{window(at(9, 0), at(10, 0))}
	resolver := NewResolver(&stubPolicyStore{policy: policy}, &stubWindowStore{windows: windows})

	gotPolicy, gotWindows, err := resolver.Resolve(context.Background(), "tenant-1", "component-1", domain.SeverityHigh)

	require.NoError(t, err)
	require.Equal(t, policy, gotPolicy)
	require.Equal(t, windows, gotWindows)
}

func TestResolveMissingPolicyIsNotAnError(t *testing.T) {
	resolver := NewResolver(&stubPolicyStore{err: pgx.ErrNoRows}, &stubWindowStore{})

	policy, windows, err := resolver.Resolve(context.Background(), "tenant-1", "component-1", domain.SeverityLow)

	require.NoError(t, err)
	require.Nil(t, policy)
	require.Empty(t, windows)
}

func TestResolvePropagatesStoreFailures(t *testing.T) {
	storeErr := errors.New("policy store unavailable")
	resolver := NewResolver(&stubPolicyStore{err: storeErr}, &stubWindowStore{})

	_, _, err := resolver.Resolve(context.Background(), "tenant-1", "component-1", domain.SeverityLow)
	require.ErrorIs(t, err, storeErr)

	windowErr := errors.New("window store unavailable")
	resolver = NewResolver(&stubPolicyStore{}, &stubWindowStore{err: windowErr})

	_, _, err = resolver.Resolve(context.Background(), "tenant-1", "component-1", domain.SeverityLow)
	require.ErrorIs(t, err, windowErr)
}
