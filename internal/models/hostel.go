package models

import (
	"time"

	"gorm.io/gorm"
)

type Hostel struct {
	ID                  string  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name                string  `json:"name" gorm:"not null;size:200"`
	OfficeLocation      *string `json:"office_location" gorm:"size:100"`
	MessBudget          float64 `json:"mess_budget" gorm:"not null;default:0"`
	MessBudgetRemaining float64 `json:"mess_budget_remaining" gorm:"not null;default:0"` // may go negative
	MessBudgetYear      int     `json:"mess_budget_year" gorm:"not null;default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Hostel) TableName() string {
	return "hostels"
}

// UsedAmount is display-only and never persisted.
func (h *Hostel) UsedAmount() float64 {
	return h.MessBudget - h.MessBudgetRemaining
}

// UsagePercentage is the raw share of the budget used; it can exceed 100.
func (h *Hostel) UsagePercentage() float64 {
	if h.MessBudget <= 0 {
		return 0
	}
	return 100 * h.UsedAmount() / h.MessBudget
}

// ClampedUsagePercentage bounds UsagePercentage to [0, 100] for progress bars.
func (h *Hostel) ClampedUsagePercentage() float64 {
	p := h.UsagePercentage()
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// IsOverBudget is the only source of the "exceeded" state.
func (h *Hostel) IsOverBudget() bool {
	return h.MessBudgetRemaining < 0
}

type MessExpense struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	HostelID    string    `json:"hostel_id" gorm:"not null;type:uuid;index"`
	Year        int       `json:"year" gorm:"not null;index"`
	Amount      float64   `json:"amount" gorm:"not null"`
	Description *string   `json:"description" gorm:"type:text"`
	RecordedBy  string    `json:"recorded_by" gorm:"size:255"`
	ExpenseDate time.Time `json:"expense_date" gorm:"type:date"`
	CreatedAt   time.Time `json:"created_at"`
}

func (MessExpense) TableName() string {
	return "mess_expenses"
}

// MessBudgetSummary is the read model returned to the hostel screens.
type MessBudgetSummary struct {
	HostelID               string  `json:"hostel_id"`
	HostelName             string  `json:"hostel_name"`
	Year                   int     `json:"year"`
	TotalBudget            float64 `json:"total_budget"`
	Remaining              float64 `json:"remaining"`
	UsedAmount             float64 `json:"used_amount"`
	UsagePercentage        float64 `json:"usage_percentage"`
	ClampedUsagePercentage float64 `json:"clamped_usage_percentage"`
	IsOverBudget           bool    `json:"is_over_budget"`
}

func NewMessBudgetSummary(h *Hostel) *MessBudgetSummary {
	return &MessBudgetSummary{
		HostelID:               h.ID,
		HostelName:             h.Name,
		Year:                   h.MessBudgetYear,
		TotalBudget:            h.MessBudget,
		Remaining:              h.MessBudgetRemaining,
		UsedAmount:             h.UsedAmount(),
		UsagePercentage:        h.UsagePercentage(),
		ClampedUsagePercentage: h.ClampedUsagePercentage(),
		IsOverBudget:           h.IsOverBudget(),
	}
}
