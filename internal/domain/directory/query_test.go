package directory

import (
	"strings"
	"testing"
)

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		wantArgs []any
		contains []string
		excludes []string
	}{
		{
			name:     "no filter",
			filter:   Filter{},
			wantArgs: []any{},
			excludes: []string{"ILIKE", "department_id =", "employee_type_id ="},
		},
		{
			name:     "blank search is ignored",
			filter:   Filter{Search: "   "},
			wantArgs: []any{},
			excludes: []string{"ILIKE"},
		},
		{
			name:     "all filters",
			filter:   Filter{Search: "Doe", DepartmentID: 1, EmployeeTypeID: 2},
			wantArgs: []any{"%Doe%", 1, 2},
			contains: []string{"e.full_name ILIKE $1", "e.department_id = $2", "e.employee_type_id = $3"},
		},
		{
			name:     "non-positive ids mean any",
			filter:   Filter{DepartmentID: -1, EmployeeTypeID: 0},
			wantArgs: []any{},
			excludes: []string{"department_id =", "employee_type_id ="},
		},
		{
			name:     "wildcards are escaped",
			filter:   Filter{Search: `50%_off\`},
			wantArgs: []any{`%50\%\_off\\%`},
			contains: []string{`ESCAPE '\'`},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			query, args := buildListQuery("SELECT COUNT(1)", tc.filter)
			if len(args) != len(tc.wantArgs) {
				t.Fatalf("expected %d args, got %v", len(tc.wantArgs), args)
			}
			for i := range args {
				if args[i] != tc.wantArgs[i] {
					t.Fatalf("arg %d: expected %v, got %v", i, tc.wantArgs[i], args[i])
				}
			}
			for _, fragment := range tc.contains {
				if !strings.Contains(query, fragment) {
					t.Fatalf("expected %q in %s", fragment, query)
				}
			}
			for _, fragment := range tc.excludes {
				if strings.Contains(query, fragment) {
					t.Fatalf("did not expect %q in %s", fragment, query)
				}
			}
		})
	}
}

func TestBuildPageQueryOrdersAndOffsets(t *testing.T) {
	query, args := buildPageQuery(Filter{DepartmentID: 2}, PageRequest{Number: 3, Size: 5})
	if !strings.Contains(query, "ORDER BY e.id ASC LIMIT $2 OFFSET $3") {
		t.Fatalf("unexpected paging clause: %s", query)
	}
	if len(args) != 3 || args[1] != 5 || args[2] != 10 {
		t.Fatalf("unexpected args: %v", args)
	}
	for _, join := range []string{"JOIN departments d", "JOIN designations g", "JOIN employee_types t"} {
		if !strings.Contains(query, join) {
			t.Fatalf("expected %q in %s", join, query)
		}
	}
}
