package domain

import "time"

// AccountRole enumerates back-office roles within a tenant.
type AccountRole string

const (
	RoleOperator   AccountRole = "OPERATOR"
	RoleTechnician AccountRole = "TECHNICIAN"
	RoleAdmin      AccountRole = "ADMIN"
)

// ValidAccountRole reports whether r is a known role.
func ValidAccountRole(r AccountRole) bool {
	switch r {
	case RoleOperator, RoleTechnician, RoleAdmin:
		return true
	}
	return false
}

// AccountStatus represents lifecycle states for an account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
)

// Account models a tenant-scoped principal: fleet operators who raise
// tickets, technicians who work them, and administrators who manage SLA
// reference data.
type Account struct {
	ID           string
	TenantID     string
	Name         string
	Email        string
	PasswordHash string
	Role         AccountRole
	Status       AccountStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
