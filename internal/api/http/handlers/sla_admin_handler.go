package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fleetops/sts-service/internal/api/dto"
	"github.com/fleetops/sts-service/internal/auth"
	"github.com/fleetops/sts-service/internal/domain"
	"github.com/fleetops/sts-service/internal/service"
	apperrors "github.com/fleetops/sts-service/pkg/util/errorutil"
)

// SlaAdminHandler manages SLA policy and maintenance window endpoints.
type SlaAdminHandler struct {
	service *service.SlaAdminService
}

// NewSlaAdminHandler constructs handler.
func NewSlaAdminHandler(slaService *service.SlaAdminService) *SlaAdminHandler {
	return &SlaAdminHandler{service: slaService}
}

// UpsertPolicies PUT /admin/sla/policies.
func (h *SlaAdminHandler) UpsertPolicies(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpsertPoliciesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.Policies) == 0 {
		return apperrors.NewValidationError("policies required", nil)
	}

	inputs := make([]service.PolicyInput, 0, len(req.Policies))
	for _, p := range req.Policies {
		inputs = append(inputs, service.PolicyInput{
			ComponentID:       p.ComponentID,
			Severity:          p.Severity,
			ResponseMinutes:   p.ResponseMinutes,
			ResolutionMinutes: p.ResolutionMinutes,
			PauseStatuses:     p.PauseStatuses,
		})
	}
	policies, err := h.service.UpsertPolicies(c.Context(), principal.TenantID, inputs)
	if err != nil {
		return err
	}
	items := make([]dto.PolicyResponse, 0, len(policies))
	for i := range policies {
		items = append(items, policyResponse(&policies[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListPolicies GET /admin/sla/policies.
func (h *SlaAdminHandler) ListPolicies(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	policies, err := h.service.ListPolicies(c.Context(), principal.TenantID)
	if err != nil {
		return err
	}
	items := make([]dto.PolicyResponse, 0, len(policies))
	for i := range policies {
		items = append(items, policyResponse(&policies[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DeletePolicy DELETE /admin/sla/policies/:id.
func (h *SlaAdminHandler) DeletePolicy(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.DeletePolicy(c.Context(), principal.TenantID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// CreateWindow POST /admin/sla/windows.
func (h *SlaAdminHandler) CreateWindow(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateWindowRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	window, err := h.service.CreateWindow(c.Context(), principal.TenantID, service.WindowInput{
		ComponentID: req.ComponentID,
		Reason:      req.Reason,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": windowResponse(window)})
}

// ListWindows GET /admin/sla/windows.
func (h *SlaAdminHandler) ListWindows(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	windows, err := h.service.ListWindows(c.Context(), principal.TenantID)
	if err != nil {
		return err
	}
	items := make([]dto.WindowResponse, 0, len(windows))
	for i := range windows {
		items = append(items, windowResponse(&windows[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DeleteWindow DELETE /admin/sla/windows/:id.
func (h *SlaAdminHandler) DeleteWindow(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.DeleteWindow(c.Context(), principal.TenantID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func policyResponse(policy *domain.SlaPolicy) dto.PolicyResponse {
	return dto.PolicyResponse{
		ID:                policy.ID,
		ComponentID:       policy.ComponentID,
		Severity:          policy.Severity,
		ResponseMinutes:   policy.ResponseMinutes,
		ResolutionMinutes: policy.ResolutionMinutes,
		PauseStatuses:     policy.PauseStatuses.Slice(),
		CreatedAt:         policy.CreatedAt,
		UpdatedAt:         policy.UpdatedAt,
	}
}

func windowResponse(window *domain.MaintenanceWindow) dto.WindowResponse {
	return dto.WindowResponse{
		ID:          window.ID,
		ComponentID: window.ComponentID,
		Reason:      window.Reason,
		StartAt:     window.StartAt,
		EndAt:       window.EndAt,
		CreatedAt:   window.CreatedAt,
	}
}
