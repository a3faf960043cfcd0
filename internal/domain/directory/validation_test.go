package directory

import (
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2026, time.October, 18, 15, 30, 0, 0, time.UTC)
}

func validInput() EmployeeInput {
	return EmployeeInput{
		FullName:       "John Doe",
		Email:          "john@example.com",
		DepartmentID:   1,
		DesignationID:  1,
		EmployeeTypeID: 1,
		HireDate:       "2020-01-15",
		DateOfBirth:    "1990-03-12",
		Gender:         GenderMale,
		Salary:         60000,
		Country:        "Bulgaria",
		CountryCode:    "bg",
		IBAN:           "BG80BNBG96611020345678",
	}
}

func TestValidatorAcceptsValidInput(t *testing.T) {
	v := NewValidator(fixedClock)
	if issues := v.Employee(validInput()); len(issues.Issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
}

func TestValidatorReportsPerField(t *testing.T) {
	v := NewValidator(fixedClock)
	tests := []struct {
		name   string
		mutate func(*EmployeeInput)
		field  string
	}{
		{name: "missing name", mutate: func(in *EmployeeInput) { in.FullName = "" }, field: "fullName"},
		{name: "long name", mutate: func(in *EmployeeInput) { in.FullName = strings.Repeat("x", 101) }, field: "fullName"},
		{name: "bad email", mutate: func(in *EmployeeInput) { in.Email = "not-an-email" }, field: "email"},
		{name: "no department", mutate: func(in *EmployeeInput) { in.DepartmentID = 0 }, field: "departmentId"},
		{name: "negative salary", mutate: func(in *EmployeeInput) { in.Salary = -1 }, field: "salary"},
		{name: "future hire date", mutate: func(in *EmployeeInput) { in.HireDate = "2026-10-19" }, field: "hireDate"},
		{name: "malformed hire date", mutate: func(in *EmployeeInput) { in.HireDate = "15/01/2020" }, field: "hireDate"},
		{name: "under eighteen", mutate: func(in *EmployeeInput) { in.DateOfBirth = "2008-10-19" }, field: "dateOfBirth"},
		{name: "over sixty", mutate: func(in *EmployeeInput) { in.DateOfBirth = "1966-10-17" }, field: "dateOfBirth"},
		{name: "unknown gender", mutate: func(in *EmployeeInput) { in.Gender = "male" }, field: "gender"},
		{name: "bad country code", mutate: func(in *EmployeeInput) { in.CountryCode = "bgr" }, field: "countryCode"},
		{name: "unassigned country code", mutate: func(in *EmployeeInput) { in.CountryCode = "zz" }, field: "countryCode"},
		{name: "bad iban checksum", mutate: func(in *EmployeeInput) { in.IBAN = "BG80BNBG96611020345679" }, field: "iban"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			issues := v.Employee(in)
			if !hasIssue(issues, tc.field) {
				t.Fatalf("expected issue for %s, got %v", tc.field, issues.Issues)
			}
			if len(issues.Issues) != 1 {
				t.Fatalf("expected a single issue, got %v", issues.Issues)
			}
		})
	}
}

func TestValidatorDateBoundaries(t *testing.T) {
	v := NewValidator(fixedClock)
	tests := []struct {
		name string
		hire string
		dob  string
	}{
		{name: "hired today", hire: "2026-10-18", dob: "1990-03-12"},
		{name: "turns eighteen today", hire: "2020-01-15", dob: "2008-10-18"},
		{name: "turns sixty today", hire: "2020-01-15", dob: "1966-10-18"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			in.HireDate, in.DateOfBirth = tc.hire, tc.dob
			if issues := v.Employee(in); len(issues.Issues) != 0 {
				t.Fatalf("unexpected issues: %v", issues.Issues)
			}
		})
	}
}

func TestValidatorCollectsAllIssues(t *testing.T) {
	v := NewValidator(fixedClock)
	in := validInput()
	in.Salary = -5
	in.Gender = ""
	in.IBAN = "XX00"
	issues := v.Employee(in)
	for _, field := range []string{"salary", "gender", "iban"} {
		if !hasIssue(issues, field) {
			t.Fatalf("expected issue for %s, got %v", field, issues.Issues)
		}
	}
}

func TestValidIBAN(t *testing.T) {
	tests := []struct {
		iban string
		want bool
	}{
		{"BG80BNBG96611020345678", true},
		{"bg80 bnbg 9661 1020 3456 78", true},
		{"NL91ABNA0417164300", true},
		{"BE68539007547034", true},
		{"GR1601101250000000012300695", true},
		{"BG80BNBG96611020345670", false},
		{"8080BNBG96611020345678", false},
		{"BGX0BNBG96611020345678", false},
		{"BG80BNBG9661-020345678", false},
		{"BG80", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := ValidIBAN(tc.iban); got != tc.want {
			t.Fatalf("ValidIBAN(%q) = %v, want %v", tc.iban, got, tc.want)
		}
	}
}

func TestNormalizedInput(t *testing.T) {
	in := validInput()
	in.Email = "  John@Example.COM "
	in.CountryCode = "BG"
	in.IBAN = "bg80 bnbg 9661 1020 3456 78"
	got := in.normalized()
	if got.Email != "john@example.com" || got.CountryCode != "bg" || got.IBAN != "BG80BNBG96611020345678" {
		t.Fatalf("unexpected normalization: %+v", got)
	}
}

func TestValidatePageRequest(t *testing.T) {
	tests := []struct {
		page    PageRequest
		wantErr bool
	}{
		{PageRequest{Number: 1, Size: 5}, false},
		{PageRequest{Number: 3, Size: 100}, false},
		{PageRequest{Number: 0, Size: 5}, true},
		{PageRequest{Number: 1, Size: 0}, true},
		{PageRequest{Number: 1, Size: 101}, true},
	}
	for _, tc := range tests {
		err := ValidatePageRequest(tc.page)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ValidatePageRequest(%+v) error = %v, wantErr %v", tc.page, err, tc.wantErr)
		}
	}
}

func TestPageTotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{12, 5, 3},
		{10, 5, 2},
		{0, 5, 0},
		{1, 100, 1},
	}
	for _, tc := range tests {
		if got := (Page{Total: tc.total, Size: tc.size}).TotalPages(); got != tc.want {
			t.Fatalf("TotalPages(%d/%d) = %d, want %d", tc.total, tc.size, got, tc.want)
		}
	}
}

func hasIssue(issues *ValidationError, field string) bool {
	if issues == nil {
		return false
	}
	for _, issue := range issues.Issues {
		if issue.Field == field {
			return true
		}
	}
	return false
}
