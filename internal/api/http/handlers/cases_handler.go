package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fleetops/sts-service/internal/api/dto"
	"github.com/fleetops/sts-service/internal/auth"
	"github.com/fleetops/sts-service/internal/service"
	apperrors "github.com/fleetops/sts-service/pkg/util/errorutil"
)

// CasesHandler bridges external case validation into the ticket lifecycle.
type CasesHandler struct {
	service *service.TicketService
}

// NewCasesHandler constructs handler.
func NewCasesHandler(ticketService *service.TicketService) *CasesHandler {
	return &CasesHandler{service: ticketService}
}

// CloseTickets POST /internal/cases/:caseId/close-tickets. Force-closes every
// still-open ticket linked to the case.
func (h *CasesHandler) CloseTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	caseID := c.Params("caseId")
	if caseID == "" {
		return apperrors.NewValidationError("case id required", nil)
	}
	closed, err := h.service.ForceCloseForCase(c.Context(), principal.TenantID, caseID)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(closed))
	for i := range closed {
		items = append(items, ticketSummary(&closed[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
