package identity

const (
	RoleEmployee = "Employee"
	RoleManager  = "Manager"
	RoleHRAdmin  = "HR Admin"
)

var Roles = []string{RoleEmployee, RoleManager, RoleHRAdmin}

func ValidRole(role string) bool {
	for _, candidate := range Roles {
		if candidate == role {
			return true
		}
	}
	return false
}

const (
	PermEmployeesSelf   = "employees.self"
	PermEmployeesRead   = "employees.read"
	PermEmployeesCreate = "employees.create"
	PermEmployeesWrite  = "employees.write"
	PermEmployeesDelete = "employees.delete"
	PermReferenceRead   = "reference.read"
	PermAuditRead       = "audit.read"
)

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesSelf,
	},
	RoleManager: {
		PermEmployeesSelf,
		PermEmployeesRead,
		PermEmployeesWrite,
		PermEmployeesDelete,
		PermReferenceRead,
	},
	RoleHRAdmin: {
		PermEmployeesSelf,
		PermEmployeesRead,
		PermEmployeesCreate,
		PermEmployeesWrite,
		PermEmployeesDelete,
		PermReferenceRead,
		PermAuditRead,
	},
}
