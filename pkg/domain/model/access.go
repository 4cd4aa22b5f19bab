package model

import "github.com/secmon-lab/riskreg/pkg/domain/types"

// UserContext is the requester identity the access policy decides on.
type UserContext struct {
	UserID     string     `json:"userId"`
	Role       types.Role `json:"role"`
	Department string     `json:"department"`
}

// DepartmentScoped is anything filtered by department.
type DepartmentScoped interface {
	GetDepartment() string
}

// Role sets allowed to mutate risks. Auditor and Reviewer are in neither.
var (
	editRoles = map[types.Role]struct{}{
		types.RoleSuperAdmin:   {},
		types.RoleRiskAdmin:    {},
		types.RoleBusinessUser: {},
	}
	deleteRoles = map[types.Role]struct{}{
		types.RoleSuperAdmin: {},
		types.RoleRiskAdmin:  {},
	}
)

func hasRole(set map[types.Role]struct{}, role types.Role) bool {
	_, ok := set[role]
	return ok
}

// CanSeeAllRisks reports whether the user sees every department.
func CanSeeAllRisks(u UserContext) bool {
	return u.Role.AccessLevel() == types.AccessLevelFull
}

// CanSeeRisk reports whether the user may read a risk of riskDept.
func CanSeeRisk(u UserContext, riskDept string) bool {
	return CanSeeAllRisks(u) || u.Department == riskDept
}

// CanEditRisk reports whether the user may modify a risk of riskDept.
func CanEditRisk(u UserContext, riskDept string) bool {
	if !hasRole(editRoles, u.Role) {
		return false
	}
	return CanSeeAllRisks(u) || u.Department == riskDept
}

// CanDeleteRisk reports whether the user may delete a risk of riskDept.
func CanDeleteRisk(u UserContext, riskDept string) bool {
	if !hasRole(deleteRoles, u.Role) {
		return false
	}
	return CanSeeAllRisks(u) || u.Department == riskDept
}

// CanCreateRisk reports whether the user may create risks. The department of
// a new risk is always the creator's own, so it plays no part here.
func CanCreateRisk(u UserContext) bool {
	return hasRole(editRoles, u.Role)
}

// DepartmentFilter returns the department bulk queries must be restricted
// to. ok is false when the user sees all departments and no filter applies.
func DepartmentFilter(u UserContext) (department string, ok bool) {
	if CanSeeAllRisks(u) {
		return "", false
	}
	return u.Department, true
}

// FilterRisks keeps the items the user may see, in their original order.
// Users that see all departments get the input slice back unchanged.
func FilterRisks[T DepartmentScoped](u UserContext, items []T) []T {
	if CanSeeAllRisks(u) {
		return items
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if item.GetDepartment() == u.Department {
			out = append(out, item)
		}
	}
	return out
}

// CanSeeAllStatistics reports whether statistics span all departments.
func CanSeeAllStatistics(u UserContext) bool {
	return CanSeeAllRisks(u)
}

// CanUploadStaging reports whether the user may upload import rows.
func CanUploadStaging(u UserContext) bool {
	return hasRole(editRoles, u.Role)
}

// CanManageStaging reports whether the user may approve or clear staged rows.
func CanManageStaging(u UserContext) bool {
	return hasRole(deleteRoles, u.Role)
}

// CanReadAuditLogs reports whether the user may read the audit trail.
func CanReadAuditLogs(u UserContext) bool {
	return u.Role == types.RoleSuperAdmin || u.Role == types.RoleAuditor
}

// CanManageUsers reports whether the user may administer other users.
func CanManageUsers(u UserContext) bool {
	return u.Role == types.RoleSuperAdmin
}
