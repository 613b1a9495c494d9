package validator

import (
	"time"

	"github.com/edubridge/consultancy-admin/internal/models"
)

// UpdateRolePermissionRequest toggles one menu for a role
type UpdateRolePermissionRequest struct {
	Menu      models.Menu `json:"menu" validate:"required,menu_item"`
	IsEnabled *bool       `json:"is_enabled" validate:"required"`
}

// FeatureRuleRequest is one fine-grained rule. An empty feature is a menu-level rule.
type FeatureRuleRequest struct {
	Menu    models.Menu     `json:"menu" validate:"required,menu_item"`
	Feature *models.Feature `json:"feature" validate:"omitempty,feature_name"`
	Allowed bool            `json:"allowed"`
}

// SetFeatureRulesRequest replaces the whole rule list of a role
type SetFeatureRulesRequest struct {
	Rules []FeatureRuleRequest `json:"rules" validate:"omitempty,max=200,dive"`
}

// AllocateBudgetRequest overwrites the mess budget of a hostel
type AllocateBudgetRequest struct {
	Amount float64 `json:"amount" validate:"gte=0"`
	Year   int     `json:"year" validate:"required,budget_year"`
}

// RecordMessExpenseRequest records a mess expense against a hostel
type RecordMessExpenseRequest struct {
	HostelID    string     `json:"hostel_id" validate:"required,uuid"`
	Amount      float64    `json:"amount" validate:"gt=0"`
	Year        int        `json:"year" validate:"required,budget_year"`
	Description *string    `json:"description" validate:"omitempty,max=500"`
	ExpenseDate *time.Time `json:"expense_date"`
}
