package sla

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/fleetops/sts-service/internal/domain"
)

// PolicyStore fetches the single policy row for a (tenant, component,
// severity) key.
type PolicyStore interface {
	FetchOne(ctx context.Context, tenantID, componentID string, severity domain.Severity) (*domain.SlaPolicy, error)
}

// WindowStore lists maintenance windows that apply to a component, including
// tenant-wide windows with no component scope.
type WindowStore interface {
	ListForComponent(ctx context.Context, tenantID, componentID string) ([]domain.MaintenanceWindow, error)
}

// Resolver finds the applicable SLA policy and maintenance windows for a
// ticket. Reference data is read fresh on every resolution: a policy edit
// retroactively changes breach outcomes on the next recompute.
type Resolver struct {
	policies PolicyStore
	windows  WindowStore
}

// NewResolver constructs a resolver over the given stores.
func NewResolver(policies PolicyStore, windows WindowStore) *Resolver {
	return &Resolver{policies: policies, windows: windows}
}

// Resolve returns the policy for (tenant, component, severity) and the
// maintenance windows scoped to the component or the whole tenant. Policies
// are opt-in per key with no fallback across severities: a missing row is not
// an error, the policy is simply nil and downstream evaluation reports
// "not evaluated".
func (r *Resolver) Resolve(ctx context.Context, tenantID, componentID string, severity domain.Severity) (*domain.SlaPolicy, []domain.MaintenanceWindow, error) {
	policy, err := r.policies.FetchOne(ctx, tenantID, componentID, severity)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, err
		}
		policy = nil
	}

	windows, err := r.windows.ListForComponent(ctx, tenantID, componentID)
	if err != nil {
		return nil, nil, err
	}
	return policy, windows, nil
}
