package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fleetops/sts-service/internal/api/dto"
	"github.com/fleetops/sts-service/internal/auth"
	"github.com/fleetops/sts-service/internal/domain"
	"github.com/fleetops/sts-service/internal/service"
	apperrors "github.com/fleetops/sts-service/pkg/util/errorutil"
)

// TicketsHandler manages ticket lifecycle endpoints.
type TicketsHandler struct {
	service   *service.TicketService
	warnRatio float64
}

// NewTicketsHandler constructs handler. warnRatio is the progress threshold
// at which a live ticket is flagged as approaching its SLA limit.
func NewTicketsHandler(ticketService *service.TicketService, warnRatio float64) *TicketsHandler {
	return &TicketsHandler{service: ticketService, warnRatio: warnRatio}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ComponentID == "" || req.Description == "" {
		return apperrors.NewValidationError("component_id, description required", nil)
	}
	if !domain.ValidSeverity(req.Severity) {
		return apperrors.NewValidationError("unknown severity", map[string]any{"severity": req.Severity})
	}

	input := service.TicketCreateInput{
		ComponentID: req.ComponentID,
		CaseID:      req.CaseID,
		Severity:    req.Severity,
		Channel:     req.Channel,
		Description: req.Description,
	}
	ticket, err := h.service.CreateTicket(c.Context(), principal.TenantID, principal.Account.ID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTickets(c.Context(), principal.TenantID, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, ticketEvents, slaStatus, err := h.service.GetTicket(c.Context(), principal.TenantID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketDetail(ticket, ticketEvents, slaStatus)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Body) == "" {
		return apperrors.NewValidationError("body required", nil)
	}
	event, err := h.service.AddComment(c.Context(), principal.TenantID, c.Params("id"), principal.Account.ID, req.Body, req.IsResponse)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketEventResponse(event)})
}

// ChangeStatus POST /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !domain.ValidTicketStatus(req.Status) {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": req.Status})
	}
	ticket, err := h.service.ChangeStatus(c.Context(), principal.TenantID, c.Params("id"), principal.Account.ID, req.Status, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Assign(c.Context(), principal.TenantID, c.Params("id"), principal.Account.ID, req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketListFilter, error) {
	filter := service.TicketListFilter{}
	if componentID := c.Query("component_id"); componentID != "" {
		filter.ComponentID = &componentID
	}
	if assigneeID := c.Query("assignee_account_id"); assigneeID != "" {
		filter.AssigneeID = &assigneeID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			status := domain.TicketStatus(strings.TrimSpace(part))
			if !domain.ValidTicketStatus(status) {
				return filter, apperrors.NewValidationError("unknown status", map[string]any{"status": status})
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if severityStr := c.Query("severity"); severityStr != "" {
		for _, part := range strings.Split(severityStr, ",") {
			severity := domain.Severity(strings.TrimSpace(part))
			if !domain.ValidSeverity(severity) {
				return filter, apperrors.NewValidationError("unknown severity", map[string]any{"severity": severity})
			}
			filter.Severities = append(filter.Severities, severity)
		}
	}
	if breachedStr := c.Query("breached"); breachedStr != "" {
		breached, err := strconv.ParseBool(breachedStr)
		if err != nil {
			return filter, apperrors.NewValidationError("breached must be a boolean", nil)
		}
		filter.Breached = &breached
	}
	if from := parseTimeParam(c.Query("opened_from")); from != nil {
		filter.OpenedFrom = from
	}
	if to := parseTimeParam(c.Query("opened_to")); to != nil {
		filter.OpenedTo = to
	}
	page := parseIntParam(c.Query("page"), 1)
	pageSize := parseIntParam(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter, nil
}

func parseTimeParam(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseIntParam(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:                ticket.ID,
		ExternalKey:       ticket.ExternalKey,
		ComponentID:       ticket.ComponentID,
		CaseID:            ticket.CaseID,
		AssigneeID:        ticket.AssigneeID,
		Severity:          ticket.Severity,
		Channel:           ticket.Channel,
		Status:            ticket.Status,
		OpenedAt:          ticket.OpenedAt,
		FirstResponseAt:   ticket.FirstResponseAt,
		ResolvedAt:        ticket.ResolvedAt,
		ClosedAt:          ticket.ClosedAt,
		ResponseMinutes:   ticket.ResponseMinutes,
		ResolutionMinutes: ticket.ResolutionMinutes,
		BreachResponse:    ticket.BreachResponse,
		BreachResolution:  ticket.BreachResolution,
		CreatedAt:         ticket.CreatedAt,
		UpdatedAt:         ticket.UpdatedAt,
	}
}

func (h *TicketsHandler) ticketDetail(ticket *domain.Ticket, ticketEvents []domain.TicketEvent, slaStatus *service.SlaStatus) dto.TicketDetailResponse {
	eventItems := make([]dto.TicketEventResponse, 0, len(ticketEvents))
	for i := range ticketEvents {
		eventItems = append(eventItems, ticketEventResponse(&ticketEvents[i]))
	}
	return dto.TicketDetailResponse{
		TicketSummary: ticketSummary(ticket),
		Description:   ticket.Description,
		Events:        eventItems,
		Sla:           h.slaStatusResponse(slaStatus),
	}
}

func ticketEventResponse(event *domain.TicketEvent) dto.TicketEventResponse {
	return dto.TicketEventResponse{
		ID:         event.ID,
		Type:       event.Type,
		Status:     event.Status,
		Message:    event.Message,
		ActorType:  event.ActorType,
		ActorID:    event.ActorID,
		IsResponse: event.IsResponse,
		CreatedAt:  event.CreatedAt,
	}
}

func (h *TicketsHandler) slaStatusResponse(status *service.SlaStatus) *dto.SlaStatusResponse {
	if status == nil {
		return nil
	}
	resp := &dto.SlaStatusResponse{
		PolicyApplies:      status.PolicyApplies,
		ResponseMinutes:    status.ResponseMinutes,
		ResolutionMinutes:  status.ResolutionMinutes,
		BreachResponse:     status.BreachResponse,
		BreachResolution:   status.BreachResolution,
		ResponseProgress:   status.ResponseProgress,
		ResolutionProgress: status.ResolutionProgress,
	}
	if status.ResponseProgress != nil && *status.ResponseProgress >= h.warnRatio {
		resp.ApproachingResponse = true
	}
	if status.ResolutionProgress != nil && *status.ResolutionProgress >= h.warnRatio {
		resp.ApproachingResolution = true
	}
	return resp
}
