package repository

import (
	"context"

	"github.com/fleetops/sts-service/internal/domain"
)

// SlaPolicyRepository manages SLA policy reference data. Policies are
// administrator-managed and read-only to the engine; at most one row exists
// per (tenant, component, severity) key.
type SlaPolicyRepository interface {
	FetchOne(ctx context.Context, tenantID, componentID string, severity domain.Severity) (*domain.SlaPolicy, error)
	Upsert(ctx context.Context, policy *domain.SlaPolicy) error
	List(ctx context.Context, tenantID string) ([]domain.SlaPolicy, error)
	Delete(ctx context.Context, tenantID, id string) error
}

type slaPolicyRepository struct {
	db DB
}

// NewSlaPolicyRepository builds repository.
func NewSlaPolicyRepository(db DB) SlaPolicyRepository {
	return &slaPolicyRepository{db: db}
}

func (r *slaPolicyRepository) FetchOne(ctx context.Context, tenantID, componentID string, severity domain.Severity) (*domain.SlaPolicy, error) {
	const query = `
        SELECT id, tenant_id, component_id, severity, response_minutes, resolution_minutes, pause_statuses, created_at, updated_at
        FROM sla_policies WHERE tenant_id=$1 AND component_id=$2 AND severity=$3`
	return r.scanOne(r.db.QueryRow(ctx, query, tenantID, componentID, severity))
}

func (r *slaPolicyRepository) Upsert(ctx context.Context, policy *domain.SlaPolicy) error {
	const query = `
        INSERT INTO sla_policies (tenant_id, component_id, severity, response_minutes, resolution_minutes, pause_statuses)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (tenant_id, component_id, severity) DO UPDATE SET
            response_minutes=EXCLUDED.response_minutes,
            resolution_minutes=EXCLUDED.resolution_minutes,
            pause_statuses=EXCLUDED.pause_statuses,
            updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		policy.TenantID,
		policy.ComponentID,
		policy.Severity,
		policy.ResponseMinutes,
		policy.ResolutionMinutes,
		statusesToStrings(policy.PauseStatuses),
	).Scan(&policy.ID, &policy.CreatedAt, &policy.UpdatedAt)
}

func (r *slaPolicyRepository) List(ctx context.Context, tenantID string) ([]domain.SlaPolicy, error) {
	const query = `
        SELECT id, tenant_id, component_id, severity, response_minutes, resolution_minutes, pause_statuses, created_at, updated_at
        FROM sla_policies WHERE tenant_id=$1 ORDER BY component_id, severity`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SlaPolicy
	for rows.Next() {
		var policy domain.SlaPolicy
		var pause []string
		if err := rows.Scan(
			&policy.ID,
			&policy.TenantID,
			&policy.ComponentID,
			&policy.Severity,
			&policy.ResponseMinutes,
			&policy.ResolutionMinutes,
			&pause,
			&policy.CreatedAt,
			&policy.UpdatedAt,
		); err != nil {
			return nil, err
		}
		policy.PauseStatuses = statusesFromStrings(pause)
		result = append(result, policy)
	}
	return result, rows.Err()
}

func (r *slaPolicyRepository) Delete(ctx context.Context, tenantID, id string) error {
	const query = `DELETE FROM sla_policies WHERE tenant_id=$1 AND id=$2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *slaPolicyRepository) scanOne(row rowScanner) (*domain.SlaPolicy, error) {
	var policy domain.SlaPolicy
	var pause []string
	if err := row.Scan(
		&policy.ID,
		&policy.TenantID,
		&policy.ComponentID,
		&policy.Severity,
		&policy.ResponseMinutes,
		&policy.ResolutionMinutes,
		&pause,
		&policy.CreatedAt,
		&policy.UpdatedAt,
	); err != nil {
		return nil, err
	}
	policy.PauseStatuses = statusesFromStrings(pause)
	return &policy, nil
}

func statusesToStrings(set domain.StatusSet) []string {
	out := make([]string, 0, len(set))
	for _, status := range set.Slice() {
		out = append(out, string(status))
	}
	return out
}

func statusesFromStrings(values []string) domain.StatusSet {
	set := make(domain.StatusSet, len(values))
	for _, v := range values {
		set[domain.TicketStatus(v)] = struct{}{}
	}
	return set
}
