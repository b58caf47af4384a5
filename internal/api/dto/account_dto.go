package dto

import (
	"time"

	"github.com/fleetops/sts-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	TenantID string             `json:"tenant_id"`
	Name     string             `json:"name"`
	Email    string             `json:"email"`
	Password string             `json:"password"`
	Role     domain.AccountRole `json:"role"`
}

// LoginRequest payload.
type LoginRequest struct {
	TenantID string `json:"tenant_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// PasswordResetRequest payload.
type PasswordResetRequest struct {
	TenantID string `json:"tenant_id"`
	Email    string `json:"email"`
}

// PasswordResetConfirmRequest payload.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// AccountResponse payload.
type AccountResponse struct {
	ID        string               `json:"id"`
	TenantID  string               `json:"tenant_id"`
	Name      string               `json:"name"`
	Email     string               `json:"email"`
	Role      domain.AccountRole   `json:"role"`
	Status    domain.AccountStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}

// AuthResponse wraps an account and its access token.
type AuthResponse struct {
	Account   AccountResponse `json:"account"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}
