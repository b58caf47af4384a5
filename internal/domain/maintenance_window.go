package domain

import "time"

// MaintenanceWindow declares a [StartAt, EndAt) interval excluded from SLA
// accounting. A nil ComponentID applies the window to every component of the
// tenant. Windows may overlap each other.
type MaintenanceWindow struct {
	ID          string
	TenantID    string
	ComponentID *string
	Reason      string
	StartAt     time.Time
	EndAt       time.Time
	CreatedAt   time.Time
}
