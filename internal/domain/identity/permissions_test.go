package identity

import (
	"context"
	"testing"
)

func TestRolePermissionsCoverEveryRole(t *testing.T) {
	for _, role := range Roles {
		if len(RolePermissions[role]) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
	}
}

func TestPolicyMatrix(t *testing.T) {
	policy := NewPolicy()
	tests := []struct {
		role       string
		permission string
		want       bool
	}{
		{RoleEmployee, PermEmployeesSelf, true},
		{RoleEmployee, PermEmployeesRead, false},
		{RoleEmployee, PermReferenceRead, false},
		{RoleManager, PermEmployeesRead, true},
		{RoleManager, PermEmployeesWrite, true},
		{RoleManager, PermEmployeesDelete, true},
		{RoleManager, PermEmployeesCreate, false},
		{RoleManager, PermAuditRead, false},
		{RoleHRAdmin, PermEmployeesCreate, true},
		{RoleHRAdmin, PermAuditRead, true},
		{"Contractor", PermEmployeesSelf, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.role+"/"+tc.permission, func(t *testing.T) {
			got, err := policy.HasPermission(context.Background(), tc.role, tc.permission)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestValidRole(t *testing.T) {
	if !ValidRole(RoleHRAdmin) {
		t.Fatal("expected HR Admin to be valid")
	}
	if ValidRole("hr admin") {
		t.Fatal("expected role names to be case sensitive")
	}
}
