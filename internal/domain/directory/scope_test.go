package directory

import (
	"errors"
	"testing"

	"hcm/internal/domain/identity"
)

func TestScopeApplyOverridesDepartment(t *testing.T) {
	filter := Filter{Search: "a", DepartmentID: 3, EmployeeTypeID: 1}

	got := SingleDepartment(2).Apply(filter)
	if got.DepartmentID != 2 {
		t.Fatalf("expected department 2, got %d", got.DepartmentID)
	}
	if got.Search != "a" || got.EmployeeTypeID != 1 {
		t.Fatalf("expected other filters to be kept, got %+v", got)
	}

	if got := AllDepartments().Apply(filter); got.DepartmentID != 3 {
		t.Fatalf("expected requested department to be kept, got %d", got.DepartmentID)
	}
}

func TestScopeAllows(t *testing.T) {
	if !AllDepartments().Allows(4) {
		t.Fatal("expected all-departments scope to allow any department")
	}
	if !SingleDepartment(2).Allows(2) || SingleDepartment(2).Allows(3) {
		t.Fatal("expected single-department scope to allow only its department")
	}
	var zero Scope
	if zero.Allows(0) || zero.Allows(1) {
		t.Fatal("expected zero scope to allow nothing")
	}
	if !zero.IsEmpty() || !SingleDepartment(0).IsEmpty() || AllDepartments().IsEmpty() {
		t.Fatal("unexpected IsEmpty result")
	}
}

func TestScopeFor(t *testing.T) {
	scope, err := ScopeFor(identity.RoleHRAdmin, 0)
	if err != nil || !scope.Allows(99) || scope.String() != "all" {
		t.Fatalf("expected all-departments scope for HR Admin, got %v %v", scope, err)
	}
	scope, err = ScopeFor(identity.RoleManager, 3)
	if err != nil || scope.Allows(99) || scope.DepartmentID() != 3 {
		t.Fatalf("expected department 3 scope for manager, got %v %v", scope, err)
	}
	if _, err := ScopeFor(identity.RoleManager, 0); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for manager without department, got %v", err)
	}
	if _, err := ScopeFor(identity.RoleEmployee, 1); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for employee, got %v", err)
	}
}

func TestScopeCanAssignRole(t *testing.T) {
	if !AllDepartments().CanAssignRole(identity.RoleHRAdmin) {
		t.Fatal("expected HR scope to grant any role")
	}
	if SingleDepartment(1).CanAssignRole(identity.RoleHRAdmin) {
		t.Fatal("expected department scope to be unable to grant HR Admin")
	}
	if !SingleDepartment(1).CanAssignRole(identity.RoleManager) {
		t.Fatal("expected department scope to grant Manager")
	}
}
