package validator

import (
	"fmt"

	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/go-playground/validator/v10"
)

const (
	minBudgetYear = 2000
	maxBudgetYear = 2100
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	bv := &BusinessValidator{validate: validator.New()}
	bv.registerBusinessRules()
	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateFeatureRules checks the list and rejects duplicate (menu, feature) tuples
func (bv *BusinessValidator) ValidateFeatureRules(req *SetFeatureRulesRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	seen := make(map[string]int, len(req.Rules))
	for i, rule := range req.Rules {
		key := string(rule.Menu) + "|"
		if rule.Feature != nil {
			key += string(*rule.Feature)
		}
		if first, dup := seen[key]; dup {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("rules[%d]", i),
				Message: fmt.Sprintf("duplicates rules[%d]", first),
				Rule:    "unique_rule",
			})
			continue
		}
		seen[key] = i
	}

	return errors
}

// ValidateBudgetAllocation validates a mess budget allocation
func (bv *BusinessValidator) ValidateBudgetAllocation(req *AllocateBudgetRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateMessExpense validates an expense before it touches the ledger
func (bv *BusinessValidator) ValidateMessExpense(req *RecordMessExpenseRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.ExpenseDate != nil && !req.ExpenseDate.IsZero() && req.ExpenseDate.Year() != req.Year {
		errors = append(errors, ValidationError{
			Field:   "expense_date",
			Message: "must fall within the expense year",
			Value:   req.ExpenseDate,
			Rule:    "same_year",
		})
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Role names, including office_<city> variants
	bv.validate.RegisterValidation("app_role", func(fl validator.FieldLevel) bool {
		_, err := models.ParseRole(fl.Field().String())
		return err == nil
	})

	bv.validate.RegisterValidation("menu_item", func(fl validator.FieldLevel) bool {
		return models.IsKnownMenu(models.Menu(fl.Field().String()))
	})

	bv.validate.RegisterValidation("feature_name", func(fl validator.FieldLevel) bool {
		switch models.Feature(fl.Field().String()) {
		case models.FeatureView, models.FeatureCreate, models.FeatureEdit, models.FeatureManage:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("budget_year", func(fl validator.FieldLevel) bool {
		year := fl.Field().Int()
		return year >= minBudgetYear && year <= maxBudgetYear
	})
}
