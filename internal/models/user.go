package models

import (
	"fmt"
	"regexp"
	"strings"
)

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleAgent      UserRole = "agent"
	RoleHostelTeam UserRole = "hostel_team"
	RoleFinance    UserRole = "finance"
	RoleStaff      UserRole = "staff"
	RoleOfficeUser UserRole = "office_user"
	RoleOffice     UserRole = "office"
)

// officeVariantPattern matches city-scoped office roles such as office_bangalore or
// office_new_york.
var officeVariantPattern = regexp.MustCompile(`^office_[a-z]+(_[a-z]+)*$`)

var fixedRoles = map[UserRole]struct{}{
	RoleAdmin:      {},
	RoleAgent:      {},
	RoleHostelTeam: {},
	RoleFinance:    {},
	RoleStaff:      {},
	RoleOfficeUser: {},
	RoleOffice:     {},
}

// ParseRole validates a raw role name. Unknown names are rejected.
func ParseRole(raw string) (UserRole, error) {
	role := UserRole(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := fixedRoles[role]; ok {
		return role, nil
	}
	if role.IsOfficeVariant() {
		return role, nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// IsOfficeVariant reports whether the role is a city office role (office_<city>).
// The generic office_user role is not a variant.
func (r UserRole) IsOfficeVariant() bool {
	return r != RoleOfficeUser && officeVariantPattern.MatchString(string(r))
}

func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

func (r UserRole) String() string {
	return string(r)
}

// Principal is the authenticated caller for the lifetime of one request.
type Principal struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Role           UserRole `json:"role"`
	OfficeLocation *string  `json:"office_location,omitempty"`
	IsActive       bool     `json:"is_active"`
}
