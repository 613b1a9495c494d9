package models

import (
	"time"

	"gorm.io/datatypes"
)

type Menu string

const (
	MenuDashboard        Menu = "Dashboard"
	MenuLeads            Menu = "Leads"
	MenuStudents         Menu = "Students"
	MenuAgents           Menu = "Agents"
	MenuInvoice          Menu = "Invoice"
	MenuOfficeExpenses   Menu = "Office Expenses"
	MenuHostelMess       Menu = "Hostel & Mess"
	MenuSettings         Menu = "Settings"
	MenuSalary           Menu = "Salary Management"
	MenuPersonalExpenses Menu = "Personal Expenses"
	MenuReports          Menu = "Reports"
	MenuUniversities     Menu = "Universities"
	MenuProfile          Menu = "Profile"
)

// AllMenus lists every menu in display order.
var AllMenus = []Menu{
	MenuDashboard, MenuLeads, MenuStudents, MenuAgents, MenuInvoice,
	MenuOfficeExpenses, MenuHostelMess, MenuSettings, MenuSalary,
	MenuPersonalExpenses, MenuReports, MenuUniversities, MenuProfile,
}

func IsKnownMenu(m Menu) bool {
	for _, known := range AllMenus {
		if known == m {
			return true
		}
	}
	return false
}

type Feature string

const (
	FeatureView   Feature = "view"
	FeatureCreate Feature = "create"
	FeatureEdit   Feature = "edit"
	FeatureManage Feature = "manage"
)

// PermissionEntry is one fine-grained rule. A nil Feature is a menu-level rule.
type PermissionEntry struct {
	Role    UserRole `json:"role"`
	Menu    Menu     `json:"menu"`
	Feature *Feature `json:"feature"`
	Allowed bool     `json:"allowed"`
}

// FeatureRule is the stored shape of an entry inside roles.permissions.
type FeatureRule struct {
	Menu    Menu     `json:"menu"`
	Feature *Feature `json:"feature"`
	Allowed bool     `json:"allowed"`
}

// RolePermission is the menu toggle table written by update_role_permission.
type RolePermission struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Role      UserRole  `json:"role" gorm:"not null;size:64;uniqueIndex:idx_role_menu"`
	MenuItem  Menu      `json:"menu_item" gorm:"not null;size:64;uniqueIndex:idx_role_menu"`
	IsEnabled bool      `json:"is_enabled" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

// RoleDefinition carries the per-role JSON list of feature rules.
type RoleDefinition struct {
	Name        UserRole                         `json:"name" gorm:"primaryKey;size:64"`
	Description *string                          `json:"description" gorm:"type:text"`
	Permissions datatypes.JSONSlice[FeatureRule] `json:"permissions" gorm:"type:jsonb"`
	CreatedAt   time.Time                        `json:"created_at"`
	UpdatedAt   time.Time                        `json:"updated_at"`
}

func (RoleDefinition) TableName() string {
	return "roles"
}
