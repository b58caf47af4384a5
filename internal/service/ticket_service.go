package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fleetops/sts-service/internal/domain"
	"github.com/fleetops/sts-service/internal/events"
	"github.com/fleetops/sts-service/internal/repository"
	"github.com/fleetops/sts-service/internal/sla"
	apperrors "github.com/fleetops/sts-service/pkg/util/errorutil"
)

// TxStore runs a unit of work against transaction-bound repositories. Every
// ticket mutation goes through it: state change, event append, SLA recompute
// and flag write commit or roll back together.
type TxStore interface {
	InTx(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// TicketService is the ticket lifecycle controller. It owns the state
// machine, appends timeline events, and re-runs the SLA engine on every
// mutation so the persisted breach flags are never stale.
type TicketService struct {
	tx         TxStore
	tickets    repository.TicketRepository
	ticketEvts repository.TicketEventRepository
	policies   repository.SlaPolicyRepository
	windows    repository.MaintenanceWindowRepository
	accounts   repository.AccountRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	Tx          TxStore
	TicketRepo  repository.TicketRepository
	EventRepo   repository.TicketEventRepository
	PolicyRepo  repository.SlaPolicyRepository
	WindowRepo  repository.MaintenanceWindowRepository
	AccountRepo repository.AccountRepository
	Dispatcher  events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	ComponentID string
	CaseID      *string
	Severity    domain.Severity
	Channel     domain.TicketChannel
	Description string
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
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

// SlaStatus is the live SLA view computed on read. Progress ratios are
// display-only and never persisted.
type SlaStatus struct {
	PolicyApplies      bool
	ResponseMinutes    *int64
	ResolutionMinutes  *int64
	BreachResponse     bool
	BreachResolution   bool
	ResponseProgress   *float64
	ResolutionProgress *float64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tx:         deps.Tx,
		tickets:    deps.TicketRepo,
		ticketEvts: deps.EventRepo,
		policies:   deps.PolicyRepo,
		windows:    deps.WindowRepo,
		accounts:   deps.AccountRepo,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// CreateTicket opens a ticket in OPEN with openedAt=now and logs the initial
// STATUS_CHANGE event.
func (s *TicketService) CreateTicket(ctx context.Context, tenantID, actorID string, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.ComponentID) == "" {
		return nil, apperrors.NewValidationError("component_id required", nil)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("description required", nil)
	}

	now := s.now()
	ticket := &domain.Ticket{
		TenantID:    tenantID,
		ExternalKey: generateTicketKey(),
		ComponentID: input.ComponentID,
		CaseID:      input.CaseID,
		Severity:    input.Severity,
		Channel:     input.Channel,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
		OpenedAt:    now,
	}
	if ticket.Channel == "" {
		ticket.Channel = domain.ChannelPortal
	}

	err := s.tx.InTx(ctx, func(repos repository.TxRepos) error {
		if err := repos.Tickets.Create(ctx, ticket); err != nil {
			return err
		}
		status := domain.TicketStatusOpen
		event := &domain.TicketEvent{
			TicketID:  ticket.ID,
			Type:      domain.EventTypeStatusChange,
			Status:    &status,
			ActorType: domain.ActorTypeAccount,
			ActorID:   &actorID,
			CreatedAt: now,
		}
		if err := repos.Events.Append(ctx, event); err != nil {
			return err
		}
		_, err := s.recompute(ctx, repos, ticket)
		return err
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TenantID: tenantID,
		TicketID: ticket.ID,
		Actor:    accountActor(actorID),
		Payload: events.TicketCreatedPayload{
			ComponentID: ticket.ComponentID,
			Severity:    ticket.Severity,
			Channel:     ticket.Channel,
		},
	})
	return ticket, nil
}

// AddComment appends a COMMENT event. A comment marked as response sets
// firstResponseAt the first time one is recorded; later response comments
// leave it untouched.
func (s *TicketService) AddComment(ctx context.Context, tenantID, ticketID, actorID, body string, isResponse bool) (*domain.TicketEvent, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.NewValidationError("body required", nil)
	}

	now := s.now()
	message := strings.TrimSpace(body)
	event := &domain.TicketEvent{
		TicketID:   ticketID,
		Type:       domain.EventTypeComment,
		Message:    &message,
		ActorType:  domain.ActorTypeAccount,
		ActorID:    &actorID,
		IsResponse: isResponse,
		CreatedAt:  now,
	}

	var ticket *domain.Ticket
	var breach *events.TicketSlaBreachedPayload
	err := s.tx.InTx(ctx, func(repos repository.TxRepos) error {
		var err error
		ticket, err = repos.Tickets.GetByID(ctx, tenantID, ticketID)
		if err != nil {
			return err
		}
		if err := repos.Events.Append(ctx, event); err != nil {
			return err
		}
		if isResponse && ticket.FirstResponseAt == nil {
			ticket.FirstResponseAt = &now
		}
		eval, err := s.recompute(ctx, repos, ticket)
		if err != nil {
			return err
		}
		breach = newBreachPayload(eval, ticket)
		return repos.Tickets.Update(ctx, ticket)
	})
	if err != nil {
		return nil, mapTicketError(err, ticketID)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TenantID: tenantID,
		TicketID: ticketID,
		Actor:    accountActor(actorID),
		Payload: events.TicketCommentAddedPayload{
			EventID:     event.ID,
			IsResponse:  isResponse,
			BodyPreview: stringPreview(message, 120),
		},
	})
	s.publishBreach(ctx, tenantID, ticketID, breach)
	return event, nil
}

// ChangeStatus applies one transition of the lifecycle state machine,
// stamps resolution/closure timestamps, and persists freshly computed breach
// flags in the same transaction.
func (s *TicketService) ChangeStatus(ctx context.Context, tenantID, ticketID, actorID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	now := s.now()

	var ticket *domain.Ticket
	var oldStatus domain.TicketStatus
	var breach *events.TicketSlaBreachedPayload
	err := s.tx.InTx(ctx, func(repos repository.TxRepos) error {
		var err error
		ticket, err = repos.Tickets.GetByID(ctx, tenantID, ticketID)
		if err != nil {
			return err
		}
		if !isValidTransition(ticket.Status, newStatus) {
			return apperrors.NewConflict("invalid status transition", map[string]any{
				"from": ticket.Status,
				"to":   newStatus,
			})
		}
		oldStatus = ticket.Status
		applyStatus(ticket, newStatus, now)

		status := newStatus
		event := &domain.TicketEvent{
			TicketID:  ticket.ID,
			Type:      domain.EventTypeStatusChange,
			Status:    &status,
			ActorType: domain.ActorTypeAccount,
			ActorID:   &actorID,
			CreatedAt: now,
		}
		if comment != "" {
			msg := comment
			event.Message = &msg
		}
		if err := repos.Events.Append(ctx, event); err != nil {
			return err
		}
		eval, err := s.recompute(ctx, repos, ticket)
		if err != nil {
			return err
		}
		breach = newBreachPayload(eval, ticket)
		return repos.Tickets.Update(ctx, ticket)
	})
	if err != nil {
		return nil, mapTicketError(err, ticketID)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TenantID: tenantID,
		TicketID: ticketID,
		Actor:    accountActor(actorID),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	s.publishBreach(ctx, tenantID, ticketID, breach)
	return ticket, nil
}

// Assign sets or clears the assignee. Assignment has no SLA effect; it is
// logged as an ASSIGN event only.
func (s *TicketService) Assign(ctx context.Context, tenantID, ticketID, actorID string, assigneeID *string) (*domain.Ticket, error) {
	if assigneeID != nil {
		assignee, err := s.accounts.GetByID(ctx, *assigneeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("account", map[string]any{"account_id": *assigneeID})
			}
			return nil, apperrors.MapError(err)
		}
		if assignee.TenantID != tenantID {
			return nil, apperrors.NewNotFound("account", map[string]any{"account_id": *assigneeID})
		}
		if assignee.Role == domain.RoleOperator {
			return nil, apperrors.NewValidationError("assignee must be a technician or admin", nil)
		}
		if assignee.Status != domain.AccountStatusActive {
			return nil, apperrors.NewValidationError("assignee suspended", nil)
		}
	}

	now := s.now()
	var ticket *domain.Ticket
	err := s.tx.InTx(ctx, func(repos repository.TxRepos) error {
		var err error
		ticket, err = repos.Tickets.GetByID(ctx, tenantID, ticketID)
		if err != nil {
			return err
		}
		ticket.AssigneeID = assigneeID
		event := &domain.TicketEvent{
			TicketID:  ticket.ID,
			Type:      domain.EventTypeAssign,
			ActorType: domain.ActorTypeAccount,
			ActorID:   &actorID,
			CreatedAt: now,
		}
		if assigneeID != nil {
			event.Metadata = map[string]any{"assignee_account_id": *assigneeID}
		}
		if err := repos.Events.Append(ctx, event); err != nil {
			return err
		}
		return repos.Tickets.Update(ctx, ticket)
	})
	if err != nil {
		return nil, mapTicketError(err, ticketID)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TenantID: tenantID,
		TicketID: ticketID,
		Actor:    accountActor(actorID),
		Payload:  events.TicketAssignedPayload{AssigneeID: assigneeID},
	})
	return ticket, nil
}

// ForceCloseForCase closes every still-open ticket linked to the given case.
// This is the administrative override used when an associated work order is
// externally validated: missing timestamps are back-filled with now and a
// synthetic SYSTEM status-change event is logged, bypassing the transition
// table.
func (s *TicketService) ForceCloseForCase(ctx context.Context, tenantID, caseID string) ([]domain.Ticket, error) {
	now := s.now()
	var closed []domain.Ticket
	var published []events.Event

	err := s.tx.InTx(ctx, func(repos repository.TxRepos) error {
		open, err := repos.Tickets.ListOpenByCase(ctx, tenantID, caseID)
		if err != nil {
			return err
		}
		for i := range open {
			ticket := &open[i]
			oldStatus := ticket.Status

			if ticket.FirstResponseAt == nil {
				ticket.FirstResponseAt = &now
			}
			ticket.Status = domain.TicketStatusClosed
			if ticket.ClosedAt == nil {
				ticket.ClosedAt = &now
			}
			if ticket.ResolvedAt == nil {
				ticket.ResolvedAt = ticket.ClosedAt
			}

			status := domain.TicketStatusClosed
			message := "case validated; ticket force-closed"
			event := &domain.TicketEvent{
				TicketID:  ticket.ID,
				Type:      domain.EventTypeStatusChange,
				Status:    &status,
				Message:   &message,
				ActorType: domain.ActorTypeSystem,
				CreatedAt: now,
			}
			if err := repos.Events.Append(ctx, event); err != nil {
				return err
			}
			if _, err := s.recompute(ctx, repos, ticket); err != nil {
				return err
			}
			if err := repos.Tickets.Update(ctx, ticket); err != nil {
				return err
			}
			closed = append(closed, *ticket)
			published = append(published, events.Event{
				Type:     events.EventTicketStatusChanged,
				TenantID: tenantID,
				TicketID: ticket.ID,
				Actor:    events.Actor{Type: domain.ActorTypeSystem},
				Payload: events.TicketStatusChangedPayload{
					OldStatus: oldStatus,
					NewStatus: domain.TicketStatusClosed,
					Forced:    true,
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	for _, event := range published {
		s.publishEvent(ctx, event)
	}
	return closed, nil
}

// GetTicket returns one ticket with its timeline and the live SLA status.
// Progress is always computed on read, never cached.
func (s *TicketService) GetTicket(ctx context.Context, tenantID, ticketID string) (*domain.Ticket, []domain.TicketEvent, *SlaStatus, error) {
	ticket, err := s.tickets.GetByID(ctx, tenantID, ticketID)
	if err != nil {
		return nil, nil, nil, mapTicketError(err, ticketID)
	}
	ticketEvents, err := s.ticketEvts.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	status, err := s.liveSlaStatus(ctx, ticket, ticketEvents)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	return ticket, ticketEvents, status, nil
}

// ListTickets returns paginated tickets for a tenant.
func (s *TicketService) ListTickets(ctx context.Context, tenantID string, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		ComponentID: filter.ComponentID,
		AssigneeID:  filter.AssigneeID,
		Statuses:    filter.Statuses,
		Severities:  filter.Severities,
		Breached:    filter.Breached,
		OpenedFrom:  filter.OpenedFrom,
		OpenedTo:    filter.OpenedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	tickets, err := s.tickets.ListWithFilter(ctx, tenantID, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// recompute resolves fresh policy/window data, re-evaluates both SLA clocks
// from the full event list, and writes the results onto the ticket.
func (s *TicketService) recompute(ctx context.Context, repos repository.TxRepos, ticket *domain.Ticket) (sla.Evaluation, error) {
	resolver := sla.NewResolver(repos.Policies, repos.Windows)
	policy, windows, err := resolver.Resolve(ctx, ticket.TenantID, ticket.ComponentID, ticket.Severity)
	if err != nil {
		return sla.Evaluation{}, err
	}
	ticketEvents, err := repos.Events.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return sla.Evaluation{}, err
	}
	eval := sla.Evaluate(ticket.OpenedAt, ticket.FirstResponseAt, ticket.ResolvedAt, ticket.ClosedAt, ticketEvents, policy, windows)
	ticket.ResponseMinutes = eval.ResponseMinutes
	ticket.ResolutionMinutes = eval.ResolutionMinutes
	ticket.BreachResponse = eval.BreachResponse
	ticket.BreachResolution = eval.BreachResolution
	return eval, nil
}

func (s *TicketService) liveSlaStatus(ctx context.Context, ticket *domain.Ticket, ticketEvents []domain.TicketEvent) (*SlaStatus, error) {
	resolver := sla.NewResolver(s.policies, s.windows)
	policy, windows, err := resolver.Resolve(ctx, ticket.TenantID, ticket.ComponentID, ticket.Severity)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		return &SlaStatus{}, nil
	}

	eval := sla.Evaluate(ticket.OpenedAt, ticket.FirstResponseAt, ticket.ResolvedAt, ticket.ClosedAt, ticketEvents, policy, windows)
	status := &SlaStatus{
		PolicyApplies:     true,
		ResponseMinutes:   eval.ResponseMinutes,
		ResolutionMinutes: eval.ResolutionMinutes,
		BreachResponse:    eval.BreachResponse,
		BreachResolution:  eval.BreachResolution,
	}

	now := s.now()
	if ticket.FirstResponseAt == nil && ticket.ClosedAt == nil {
		progress := sla.Progress(now, ticket.OpenedAt, policy.ResponseMinutes)
		status.ResponseProgress = &progress
	}
	if ticket.ResolvedAt == nil && ticket.ClosedAt == nil {
		progress := sla.Progress(now, ticket.OpenedAt, policy.ResolutionMinutes)
		status.ResolutionProgress = &progress
	}
	return status, nil
}

func (s *TicketService) publishBreach(ctx context.Context, tenantID, ticketID string, payload *events.TicketSlaBreachedPayload) {
	if payload == nil {
		return
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketSlaBreached,
		TenantID: tenantID,
		TicketID: ticketID,
		Actor:    events.Actor{Type: domain.ActorTypeSystem},
		Payload:  *payload,
	})
}

// newBreachPayload reports a breach payload when the freshly evaluated flags
// mark the ticket breached; nil otherwise.
func newBreachPayload(eval sla.Evaluation, ticket *domain.Ticket) *events.TicketSlaBreachedPayload {
	if !eval.BreachResponse && !eval.BreachResolution {
		return nil
	}
	return &events.TicketSlaBreachedPayload{
		BreachResponse:    eval.BreachResponse,
		BreachResolution:  eval.BreachResolution,
		ResponseMinutes:   eval.ResponseMinutes,
		ResolutionMinutes: eval.ResolutionMinutes,
	}
}

// applyStatus mutates lifecycle timestamps for a transition into newStatus.
// Entering RESOLVED stamps resolvedAt once; entering CLOSED stamps closedAt
// and back-fills resolvedAt if the ticket skipped the resolve step.
func applyStatus(ticket *domain.Ticket, newStatus domain.TicketStatus, now time.Time) {
	ticket.Status = newStatus
	switch newStatus {
	case domain.TicketStatusResolved:
		if ticket.ResolvedAt == nil {
			ticket.ResolvedAt = &now
		}
	case domain.TicketStatusClosed:
		if ticket.ClosedAt == nil {
			ticket.ClosedAt = &now
		}
		if ticket.ResolvedAt == nil {
			ticket.ResolvedAt = ticket.ClosedAt
		}
	}
}

// allowedTransitions is the five-state lifecycle graph. The only backward
// edge is WAITING_VENDOR -> IN_PROGRESS, resuming work after a vendor wait.
// Force-close bypasses this table.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:          {domain.TicketStatusInProgress},
	domain.TicketStatusInProgress:    {domain.TicketStatusWaitingVendor, domain.TicketStatusResolved},
	domain.TicketStatusWaitingVendor: {domain.TicketStatusInProgress, domain.TicketStatusResolved},
	domain.TicketStatusResolved:      {domain.TicketStatusClosed},
	domain.TicketStatusClosed:        {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

func mapTicketError(err error, ticketID string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return apperrors.MapError(err)
}

func generateTicketKey() string {
	return "STS-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func accountActor(accountID string) events.Actor {
	return events.Actor{
		Type:      domain.ActorTypeAccount,
		AccountID: &accountID,
	}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
