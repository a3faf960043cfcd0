package directory

import "hcm/internal/domain/identity"

// Scope is the visibility boundary for a caller. The zero value sees
// nothing.
type Scope struct {
	all          bool
	departmentID int
}

func AllDepartments() Scope {
	return Scope{all: true}
}

func SingleDepartment(departmentID int) Scope {
	return Scope{departmentID: departmentID}
}

// ScopeFor maps a role and the caller's own department to a scope.
func ScopeFor(role string, ownDepartmentID int) (Scope, error) {
	switch role {
	case identity.RoleHRAdmin:
		return AllDepartments(), nil
	case identity.RoleManager:
		if ownDepartmentID <= 0 {
			return Scope{}, ErrForbidden
		}
		return SingleDepartment(ownDepartmentID), nil
	default:
		return Scope{}, ErrForbidden
	}
}

// IsEmpty reports whether the scope can see no department at all.
func (s Scope) IsEmpty() bool {
	return !s.all && s.departmentID <= 0
}

func (s Scope) DepartmentID() int {
	return s.departmentID
}

// Apply overrides the department filter with the scoped department.
func (s Scope) Apply(filter Filter) Filter {
	if !s.all {
		filter.DepartmentID = s.departmentID
	}
	return filter
}

func (s Scope) Allows(departmentID int) bool {
	if s.all {
		return true
	}
	return s.departmentID > 0 && s.departmentID == departmentID
}

// CanAssignRole keeps department-scoped callers from granting the
// organisation-wide role.
func (s Scope) CanAssignRole(role string) bool {
	return s.all || role != identity.RoleHRAdmin
}

func (s Scope) String() string {
	if s.all {
		return "all"
	}
	return "department"
}
