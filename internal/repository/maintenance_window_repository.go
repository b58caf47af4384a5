package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fleetops/sts-service/internal/domain"
)

// MaintenanceWindowRepository manages declared blackout intervals.
type MaintenanceWindowRepository interface {
	Create(ctx context.Context, window *domain.MaintenanceWindow) error
	Delete(ctx context.Context, tenantID, id string) error
	List(ctx context.Context, tenantID string) ([]domain.MaintenanceWindow, error)
	// ListForComponent returns windows scoped to the component plus
	// tenant-wide windows with no component.
	ListForComponent(ctx context.Context, tenantID, componentID string) ([]domain.MaintenanceWindow, error)
}

type maintenanceWindowRepository struct {
	db DB
}

// NewMaintenanceWindowRepository builds repository.
func NewMaintenanceWindowRepository(db DB) MaintenanceWindowRepository {
	return &maintenanceWindowRepository{db: db}
}

func (r *maintenanceWindowRepository) Create(ctx context.Context, window *domain.MaintenanceWindow) error {
	const query = `
        INSERT INTO maintenance_windows (tenant_id, component_id, reason, start_at, end_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		window.TenantID,
		window.ComponentID,
		window.Reason,
		window.StartAt,
		window.EndAt,
	).Scan(&window.ID, &window.CreatedAt)
}

func (r *maintenanceWindowRepository) Delete(ctx context.Context, tenantID, id string) error {
	const query = `DELETE FROM maintenance_windows WHERE tenant_id=$1 AND id=$2`
	cmd, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *maintenanceWindowRepository) List(ctx context.Context, tenantID string) ([]domain.MaintenanceWindow, error) {
	const query = `
        SELECT id, tenant_id, component_id, reason, start_at, end_at, created_at
        FROM maintenance_windows WHERE tenant_id=$1 ORDER BY start_at ASC`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWindows(rows)
}

func (r *maintenanceWindowRepository) ListForComponent(ctx context.Context, tenantID, componentID string) ([]domain.MaintenanceWindow, error) {
	const query = `
        SELECT id, tenant_id, component_id, reason, start_at, end_at, created_at
        FROM maintenance_windows
        WHERE tenant_id=$1 AND (component_id=$2 OR component_id IS NULL)
        ORDER BY start_at ASC`
	rows, err := r.db.Query(ctx, query, tenantID, componentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWindows(rows)
}

func scanWindows(rows pgx.Rows) ([]domain.MaintenanceWindow, error) {
	var result []domain.MaintenanceWindow
	for rows.Next() {
		var window domain.MaintenanceWindow
		if err := rows.Scan(
			&window.ID,
			&window.TenantID,
			&window.ComponentID,
			&window.Reason,
			&window.StartAt,
			&window.EndAt,
			&window.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, window)
	}
	return result, rows.Err()
}
