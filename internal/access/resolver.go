// Package access decides whether a principal may open a UI path.
//
// The decision combines coarse role checks supplied by the route with fine-grained
// (menu, feature) permissions loaded from the permission store. Admin overrides every
// check. The package is pure: it performs no I/O and keeps no state.
package access

import (
	"github.com/edubridge/consultancy-admin/internal/models"
)

type DenyReason string

const (
	ReasonUnauthenticated   DenyReason = "unauthenticated"
	ReasonRoleMismatch      DenyReason = "role-mismatch"
	ReasonNotInAllowedRoles DenyReason = "not-in-allowed-roles"
	ReasonPermissionDenied  DenyReason = "permission-denied"
)

// Requirement is what a route declares about who may reach it. Both fields are optional.
type Requirement struct {
	RequiredRole *models.UserRole
	AllowedRoles []models.UserRole
}

func RequireRole(role models.UserRole) Requirement {
	return Requirement{RequiredRole: &role}
}

func AllowRoles(roles ...models.UserRole) Requirement {
	return Requirement{AllowedRoles: roles}
}

type Decision struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
}

var allow = Decision{Allowed: true}

func deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Resolve applies the checks in order and stops at the first denial.
// An empty permissions list means fine-grained gating is not configured.
func Resolve(principal *models.Principal, path string, req Requirement, permissions []models.PermissionEntry) Decision {
	if principal == nil || !principal.IsActive {
		return deny(ReasonUnauthenticated)
	}

	role := principal.Role
	if role.IsAdmin() {
		return allow
	}

	if req.RequiredRole != nil && role != *req.RequiredRole {
		return deny(ReasonRoleMismatch)
	}

	if len(req.AllowedRoles) > 0 && !roleAllowed(role, req.AllowedRoles) {
		return deny(ReasonNotInAllowedRoles)
	}

	if len(permissions) > 0 {
		menu, feature := InferMenuFeature(path)
		if menu == nil {
			return allow
		}
		if !lookup(permissions, role, *menu, feature) {
			return deny(ReasonPermissionDenied)
		}
	}

	return allow
}

// roleAllowed checks membership. City office roles inherit an office_user entry; this
// also admits any office_<city> role added later without its own entry.
func roleAllowed(role models.UserRole, allowed []models.UserRole) bool {
	officeUserListed := false
	for _, r := range allowed {
		if r == role {
			return true
		}
		if r == models.RoleOfficeUser {
			officeUserListed = true
		}
	}
	return officeUserListed && role.IsOfficeVariant()
}

// lookup finds the exact (menu, feature) rule, then the menu-level rule. Absent both,
// the combination is denied.
func lookup(permissions []models.PermissionEntry, role models.UserRole, menu models.Menu, feature models.Feature) bool {
	var menuLevel *bool
	for i := range permissions {
		e := &permissions[i]
		if e.Role != role || e.Menu != menu {
			continue
		}
		if e.Feature == nil {
			allowed := e.Allowed
			menuLevel = &allowed
			continue
		}
		if *e.Feature == feature {
			return e.Allowed
		}
	}
	if menuLevel != nil {
		return *menuLevel
	}
	return false
}
