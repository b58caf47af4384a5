package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fleetops/sts-service/internal/api/dto"
	"github.com/fleetops/sts-service/internal/auth"
	"github.com/fleetops/sts-service/internal/domain"
	"github.com/fleetops/sts-service/internal/service"
	apperrors "github.com/fleetops/sts-service/pkg/util/errorutil"
)

// AccountsHandler manages registration, login and password endpoints.
type AccountsHandler struct {
	service *service.AuthService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(authService *service.AuthService) *AccountsHandler {
	return &AccountsHandler{service: authService}
}

// Register POST /auth/register.
func (h *AccountsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TenantID == "" || req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("tenant_id, name, email, password required", nil)
	}
	role := req.Role
	if role == "" {
		role = domain.RoleOperator
	}
	if !domain.ValidAccountRole(role) {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}

	account, token, expiresAt, err := h.service.Register(c.Context(), req.TenantID, req.Name, strings.ToLower(req.Email), req.Password, role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": authResponse(account, token, expiresAt)})
}

// Login POST /auth/login.
func (h *AccountsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TenantID == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("tenant_id, email, password required", nil)
	}

	account, token, expiresAt, err := h.service.Login(c.Context(), req.TenantID, strings.ToLower(req.Email), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(account, token, expiresAt)})
}

// ChangePassword POST /auth/password/change.
func (h *AccountsHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current_password, new_password required", nil)
	}
	if err := h.service.ChangePassword(c.Context(), principal.Account.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}

// RequestPasswordReset POST /auth/password/reset/request.
func (h *AccountsHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TenantID == "" || req.Email == "" {
		return apperrors.NewValidationError("tenant_id, email required", nil)
	}
	if _, err := h.service.RequestPasswordReset(c.Context(), req.TenantID, strings.ToLower(req.Email)); err != nil {
		return err
	}
	// Same response for known and unknown emails.
	return c.JSON(fiber.Map{"data": fiber.Map{"requested": true}})
}

// ConfirmPasswordReset POST /auth/password/reset/confirm.
func (h *AccountsHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("token, new_password required", nil)
	}
	if err := h.service.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reset": true}})
}

func authResponse(account *domain.Account, token string, expiresAt time.Time) dto.AuthResponse {
	return dto.AuthResponse{
		Account:   accountResponse(account),
		Token:     token,
		ExpiresAt: expiresAt,
	}
}

func accountResponse(account *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        account.ID,
		TenantID:  account.TenantID,
		Name:      account.Name,
		Email:     account.Email,
		Role:      account.Role,
		Status:    account.Status,
		CreatedAt: account.CreatedAt,
	}
}
