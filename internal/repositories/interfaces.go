package repositories

import (
	"context"
	"errors"

	"github.com/edubridge/consultancy-admin/internal/models"
	"gorm.io/gorm"
)

// ===== REPOSITORY INTERFACES =====

// PermissionRepository reads and writes the permission store: the role_permissions
// toggle table and the per-role JSON rule list in roles.permissions.
type PermissionRepository interface {
	ListRolePermissions(ctx context.Context, tx *gorm.DB, role models.UserRole) ([]*models.RolePermission, error)
	GetRoleDefinition(ctx context.Context, tx *gorm.DB, role models.UserRole) (*models.RoleDefinition, error)

	// UpdateRolePermission is the update_role_permission procedure: insert or update
	// the (role, menu_item) row.
	UpdateRolePermission(ctx context.Context, tx *gorm.DB, role models.UserRole, menu models.Menu, enabled bool) error
	SaveFeatureRules(ctx context.Context, tx *gorm.DB, role models.UserRole, rules []models.FeatureRule) error
}

type AgentRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Agent, error)
	List(ctx context.Context, tx *gorm.DB, filters AgentFilters) ([]*models.Agent, error)
	GetStudentIDs(ctx context.Context, tx *gorm.DB, agentID string) ([]string, error)
}

// FeeRepository reads the two payment ledgers. They never record the same payment twice.
type FeeRepository interface {
	ListCollectionsByStudents(ctx context.Context, tx *gorm.DB, studentIDs []string) ([]*models.FeeCollection, error)
	ListPaymentsByStudents(ctx context.Context, tx *gorm.DB, studentIDs []string) ([]*models.FeePayment, error)
}

type HostelRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Hostel, error)

	// AllocateMessBudget overwrites budget, remaining and year in one update.
	AllocateMessBudget(ctx context.Context, tx *gorm.DB, id string, amount float64, year int) error

	CreateMessExpense(ctx context.Context, tx *gorm.DB, expense *models.MessExpense) error

	// DecrementMessBudget lowers mess_budget_remaining for the hostel when the year matches
	// its current allocation. It reports whether a row was changed; the result may be negative.
	DecrementMessBudget(ctx context.Context, tx *gorm.DB, id string, year int, amount float64) (bool, error)
}

// ===== SHARED FILTER STRUCTS =====

type AgentFilters struct {
	Status    *models.AgentStatus `json:"status"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
	SortBy    string              `json:"sort_by"`    // "created_at", "name"
	SortOrder string              `json:"sort_order"` // "asc", "desc"
}

// ===== ERRORS =====

var ErrNotFound = errors.New("record not found")

// IsNotFoundError reports whether err means the requested row does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
