package repository

import (
	"context"

	"github.com/fleetops/sts-service/internal/domain"
)

// TicketEventRepository stores the append-only ticket timeline. Events are
// never updated or deleted.
type TicketEventRepository interface {
	Append(ctx context.Context, event *domain.TicketEvent) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketEvent, error)
}

type ticketEventRepository struct {
	db DB
}

// NewTicketEventRepository builds repository.
func NewTicketEventRepository(db DB) TicketEventRepository {
	return &ticketEventRepository{db: db}
}

func (r *ticketEventRepository) Append(ctx context.Context, event *domain.TicketEvent) error {
	const query = `
        INSERT INTO sts_ticket_events (ticket_id, event_type, status, message, actor_type, actor_id, is_response, metadata, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		event.TicketID,
		event.Type,
		event.Status,
		event.Message,
		event.ActorType,
		event.ActorID,
		event.IsResponse,
		event.Metadata,
		event.CreatedAt,
	).Scan(&event.ID)
}

func (r *ticketEventRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketEvent, error) {
	const query = `
        SELECT id, ticket_id, event_type, status, message, actor_type, actor_id, is_response, metadata, created_at
        FROM sts_ticket_events WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketEvent
	for rows.Next() {
		var event domain.TicketEvent
		if err := rows.Scan(
			&event.ID,
			&event.TicketID,
			&event.Type,
			&event.Status,
			&event.Message,
			&event.ActorType,
			&event.ActorID,
			&event.IsResponse,
			&event.Metadata,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
