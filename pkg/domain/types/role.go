package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Role is the role of a user in the register
type Role string

const (
	RoleSuperAdmin   Role = "superadmin"
	RoleRiskAdmin    Role = "risk_admin"
	RoleBusinessUser Role = "business_user"
	RoleReviewer     Role = "reviewer"
	RoleAuditor      Role = "auditor"

	// RoleUnknown is what any unrecognized role string resolves to. It has
	// the most restrictive access level.
	RoleUnknown Role = ""
)

// AccessLevel is the visibility level a role grants
type AccessLevel string

const (
	AccessLevelFull       AccessLevel = "full"
	AccessLevelDepartment AccessLevel = "department"
	AccessLevelReadOnly   AccessLevel = "read_only"
)

// AllRoles returns all known roles
func AllRoles() []Role {
	return []Role{
		RoleSuperAdmin,
		RoleRiskAdmin,
		RoleBusinessUser,
		RoleReviewer,
		RoleAuditor,
	}
}

// IsValid checks if the role is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin,
		RoleRiskAdmin,
		RoleBusinessUser,
		RoleReviewer,
		RoleAuditor:
		return true
	default:
		return false
	}
}

// AccessLevel returns the access level granted by the role. Unknown roles
// get AccessLevelReadOnly.
func (r Role) AccessLevel() AccessLevel {
	switch r {
	case RoleSuperAdmin, RoleAuditor:
		return AccessLevelFull
	case RoleRiskAdmin, RoleBusinessUser:
		return AccessLevelDepartment
	default:
		return AccessLevelReadOnly
	}
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a stored role string. Surrounding whitespace and case are
// ignored. On failure it returns RoleUnknown together with the error so that
// callers which ignore the error still fail closed.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if !role.IsValid() {
		return RoleUnknown, goerr.New("invalid role", goerr.V("role", s))
	}
	return role, nil
}

// NormalizeRole is ParseRole without the error.
func NormalizeRole(s string) Role {
	role, _ := ParseRole(s)
	return role
}
