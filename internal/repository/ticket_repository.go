package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fleetops/sts-service/internal/domain"
)

// TicketFilter captures listing parameters. All queries are additionally
// scoped by tenant id.
type TicketFilter struct {
	ComponentID *string
	AssigneeID  *string
	Statuses    []domain.TicketStatus
	Severities  []domain.Severity
	Breached    *bool
	OpenedFrom  *time.Time
	OpenedTo    *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, tenantID string, filter TicketFilter) ([]domain.Ticket, error)
	ListOpenByCase(ctx context.Context, tenantID, caseID string) ([]domain.Ticket, error)
}

type ticketRepository struct {
	db DB
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DB) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, tenant_id, external_key, component_id, case_id, assignee_account_id,
               severity, channel, description, status, opened_at, first_response_at,
               resolved_at, closed_at, response_minutes, resolution_minutes,
               breach_response, breach_resolution, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO sts_tickets (tenant_id, external_key, component_id, case_id, assignee_account_id,
            severity, channel, description, status, opened_at, breach_response, breach_resolution)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.TenantID,
		ticket.ExternalKey,
		ticket.ComponentID,
		ticket.CaseID,
		ticket.AssigneeID,
		ticket.Severity,
		ticket.Channel,
		ticket.Description,
		ticket.Status,
		ticket.OpenedAt,
		ticket.BreachResponse,
		ticket.BreachResolution,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE sts_tickets SET case_id=$1, assignee_account_id=$2, severity=$3, description=$4,
            status=$5, first_response_at=$6, resolved_at=$7, closed_at=$8,
            response_minutes=$9, resolution_minutes=$10, breach_response=$11, breach_resolution=$12,
            updated_at=NOW()
        WHERE tenant_id=$13 AND id=$14`
	cmd, err := r.db.Exec(ctx, query,
		ticket.CaseID,
		ticket.AssigneeID,
		ticket.Severity,
		ticket.Description,
		ticket.Status,
		ticket.FirstResponseAt,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.ResponseMinutes,
		ticket.ResolutionMinutes,
		ticket.BreachResponse,
		ticket.BreachResolution,
		ticket.TenantID,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM sts_tickets WHERE tenant_id=$1 AND id=$2`, ticketColumns)
	var ticket domain.Ticket
	if err := scanTicket(r.db.QueryRow(ctx, query, tenantID, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListOpenByCase(ctx context.Context, tenantID, caseID string) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM sts_tickets
        WHERE tenant_id=$1 AND case_id=$2 AND status <> 'CLOSED'
        ORDER BY opened_at ASC`, ticketColumns)
	rows, err := r.db.Query(ctx, query, tenantID, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, tenantID string, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"tenant_id=$1"}
	args := []any{tenantID}

	if filter.ComponentID != nil {
		args = append(args, *filter.ComponentID)
		clauses = append(clauses, fmt.Sprintf("component_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_account_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Severities) > 0 {
		placeholders := make([]string, len(filter.Severities))
		for i, severity := range filter.Severities {
			args = append(args, severity)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("severity IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Breached != nil {
		args = append(args, *filter.Breached)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(breach_response=%s OR breach_resolution=%s)", placeholder, placeholder))
	}
	if filter.OpenedFrom != nil {
		args = append(args, *filter.OpenedFrom)
		clauses = append(clauses, fmt.Sprintf("opened_at >= $%d", len(args)))
	}
	if filter.OpenedTo != nil {
		args = append(args, *filter.OpenedTo)
		clauses = append(clauses, fmt.Sprintf("opened_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM sts_tickets WHERE %s ORDER BY opened_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.TenantID,
		&ticket.ExternalKey,
		&ticket.ComponentID,
		&ticket.CaseID,
		&ticket.AssigneeID,
		&ticket.Severity,
		&ticket.Channel,
		&ticket.Description,
		&ticket.Status,
		&ticket.OpenedAt,
		&ticket.FirstResponseAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&ticket.ResponseMinutes,
		&ticket.ResolutionMinutes,
		&ticket.BreachResponse,
		&ticket.BreachResolution,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
