package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fleetops/sts-service/internal/domain"
	"github.com/fleetops/sts-service/internal/repository"
	apperrors "github.com/fleetops/sts-service/pkg/util/errorutil"
)

// SlaAdminService manages SLA reference data: policies and maintenance
// windows. Administrative writes only; the engine reads this data fresh on
// every evaluation, so an edit here retroactively changes breach outcomes on
// the next recompute.
type SlaAdminService struct {
	policies repository.SlaPolicyRepository
	windows  repository.MaintenanceWindowRepository
}

// NewSlaAdminService constructs the service.
func NewSlaAdminService(policies repository.SlaPolicyRepository, windows repository.MaintenanceWindowRepository) *SlaAdminService {
	return &SlaAdminService{policies: policies, windows: windows}
}

// PolicyInput describes one policy row for upsert.
type PolicyInput struct {
	ComponentID       string
	Severity          domain.Severity
	ResponseMinutes   int64
	ResolutionMinutes int64
	PauseStatuses     []domain.TicketStatus
}

// WindowInput describes a maintenance window to declare.
type WindowInput struct {
	ComponentID *string
	Reason      string
	StartAt     time.Time
	EndAt       time.Time
}

// UpsertPolicies bulk-creates or updates policies keyed by
// (tenant, component, severity).
func (s *SlaAdminService) UpsertPolicies(ctx context.Context, tenantID string, inputs []PolicyInput) ([]domain.SlaPolicy, error) {
	result := make([]domain.SlaPolicy, 0, len(inputs))
	for _, input := range inputs {
		if input.ComponentID == "" {
			return nil, apperrors.NewValidationError("component_id required", nil)
		}
		if !domain.ValidSeverity(input.Severity) {
			return nil, apperrors.NewValidationError("unknown severity", map[string]any{"severity": input.Severity})
		}
		if input.ResponseMinutes <= 0 || input.ResolutionMinutes <= 0 {
			return nil, apperrors.NewValidationError("minutes must be positive", nil)
		}
		for _, status := range input.PauseStatuses {
			if !domain.ValidTicketStatus(status) {
				return nil, apperrors.NewValidationError("unknown pause status", map[string]any{"status": status})
			}
		}

		policy := domain.SlaPolicy{
			TenantID:          tenantID,
			ComponentID:       input.ComponentID,
			Severity:          input.Severity,
			ResponseMinutes:   input.ResponseMinutes,
			ResolutionMinutes: input.ResolutionMinutes,
			PauseStatuses:     domain.NewStatusSet(input.PauseStatuses...),
		}
		if err := s.policies.Upsert(ctx, &policy); err != nil {
			return nil, apperrors.MapError(err)
		}
		result = append(result, policy)
	}
	return result, nil
}

// ListPolicies returns all policies for the tenant.
func (s *SlaAdminService) ListPolicies(ctx context.Context, tenantID string) ([]domain.SlaPolicy, error) {
	policies, err := s.policies.List(ctx, tenantID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return policies, nil
}

// DeletePolicy removes one policy row.
func (s *SlaAdminService) DeletePolicy(ctx context.Context, tenantID, id string) error {
	if err := s.policies.Delete(ctx, tenantID, id); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// CreateWindow declares a maintenance window.
func (s *SlaAdminService) CreateWindow(ctx context.Context, tenantID string, input WindowInput) (*domain.MaintenanceWindow, error) {
	if !input.EndAt.After(input.StartAt) {
		return nil, apperrors.NewValidationError("end_at must be after start_at", nil)
	}

	window := &domain.MaintenanceWindow{
		TenantID:    tenantID,
		ComponentID: input.ComponentID,
		Reason:      input.Reason,
		StartAt:     input.StartAt,
		EndAt:       input.EndAt,
	}
	if err := s.windows.Create(ctx, window); err != nil {
		return nil, apperrors.MapError(err)
	}
	return window, nil
}

// ListWindows returns all declared windows for the tenant.
func (s *SlaAdminService) ListWindows(ctx context.Context, tenantID string) ([]domain.MaintenanceWindow, error) {
	windows, err := s.windows.List(ctx, tenantID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return windows, nil
}

// DeleteWindow removes one window.
func (s *SlaAdminService) DeleteWindow(ctx context.Context, tenantID, id string) error {
	if err := s.windows.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("maintenance window", map[string]any{"window_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}
