package services

import (
	"context"
	"time"

	"github.com/edubridge/consultancy-admin/internal/access"
	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/edubridge/consultancy-admin/internal/validator"
	"github.com/xuri/excelize/v2"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type UpdateRolePermissionRequest = validator.UpdateRolePermissionRequest
type SetFeatureRulesRequest = validator.SetFeatureRulesRequest
type FeatureRuleRequest = validator.FeatureRuleRequest
type AllocateBudgetRequest = validator.AllocateBudgetRequest
type RecordMessExpenseRequest = validator.RecordMessExpenseRequest

// BatchSummary describes one run of the commission batch
type BatchSummary struct {
	Reports            []models.AgentCommissionReport `json:"-"`
	Agents             int                            `json:"agents"`
	Failed             int                            `json:"failed"`
	TotalReceived      float64                        `json:"total_received"`
	TotalCommissionDue float64                        `json:"total_commission_due"`
	StartedAt          time.Time                      `json:"started_at"`
	Duration           time.Duration                  `json:"duration"`
}

// ===== SERVICE INTERFACES =====

// AuthorizationService loads permissions for a principal and runs the resolver
type AuthorizationService interface {
	Check(ctx context.Context, principal *models.Principal, path string, req access.Requirement) (access.Decision, error)
	Permissions(ctx context.Context, role models.UserRole) ([]models.PermissionEntry, error)

	// UpdateRolePermission is the update_role_permission procedure
	UpdateRolePermission(ctx context.Context, actor *models.Principal, role string, req *UpdateRolePermissionRequest) error
	SetFeaturePermissions(ctx context.Context, actor *models.Principal, role string, req *SetFeatureRulesRequest) error
}

type CommissionService interface {
	ComputeAgentCommission(ctx context.Context, agentID string) (*models.AgentCommissionSnapshot, error)

	// ComputeAllAgentCommissions never fails for a single agent; such agents get zeros
	ComputeAllAgentCommissions(ctx context.Context) ([]models.AgentCommissionReport, error)
	ExportAgentCommissions(ctx context.Context) (*excelize.File, error)

	// RunBatch computes every agent, records metrics and publishes the summary
	RunBatch(ctx context.Context) (*BatchSummary, error)
}

type BudgetService interface {
	Allocate(ctx context.Context, actor *models.Principal, hostelID string, req *AllocateBudgetRequest) error
	Summary(ctx context.Context, hostelID string) (*models.MessBudgetSummary, error)
	RecordExpense(ctx context.Context, actor *models.Principal, req *RecordMessExpenseRequest) (*models.MessExpense, error)
}

// ServiceManager manages all services and their dependencies
type ServiceManager interface {
	Authorization() AuthorizationService
	Commission() CommissionService
	Budget() BudgetService
	Scheduler() *Scheduler

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
