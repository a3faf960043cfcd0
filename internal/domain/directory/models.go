package directory

import "time"

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// Employee is an employee row joined with its reference data names.
// IBAN is always plaintext in memory; only the store sees ciphertext.
type Employee struct {
	ID                int       `json:"id"`
	FullName          string    `json:"fullName"`
	Email             string    `json:"email"`
	IdentityAccountID string    `json:"identityAccountId,omitempty"`
	DepartmentID      int       `json:"departmentId"`
	Department        string    `json:"department"`
	DesignationID     int       `json:"designationId"`
	Designation       string    `json:"designation"`
	EmployeeTypeID    int       `json:"employeeTypeId"`
	EmployeeType      string    `json:"employeeType"`
	HireDate          time.Time `json:"hireDate"`
	DateOfBirth       time.Time `json:"dateOfBirth"`
	Gender            string    `json:"gender"`
	Salary            float64   `json:"salary"`
	Country           string    `json:"country"`
	CountryCode       string    `json:"countryCode"`
	IBAN              string    `json:"iban,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type Department struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

type Designation struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	IsActive     bool   `json:"isActive"`
	DepartmentID int    `json:"departmentId"`
}

type EmployeeType struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// EmployeeInput is the caller-supplied part of an employee record.
type EmployeeInput struct {
	FullName       string  `json:"fullName" validate:"required,max=100"`
	Email          string  `json:"email" validate:"required,email,max=256"`
	DepartmentID   int     `json:"departmentId" validate:"required,gt=0"`
	DesignationID  int     `json:"designationId" validate:"required,gt=0"`
	EmployeeTypeID int     `json:"employeeTypeId" validate:"required,gt=0"`
	HireDate       string  `json:"hireDate" validate:"required,datetime=2006-01-02,notfuture"`
	DateOfBirth    string  `json:"dateOfBirth" validate:"required,datetime=2006-01-02,workingage"`
	Gender         string  `json:"gender" validate:"required,oneof=Male Female Other"`
	Salary         float64 `json:"salary" validate:"gte=0"`
	Country        string  `json:"country" validate:"omitempty,max=100"`
	CountryCode    string  `json:"countryCode" validate:"omitempty,iso3166_1_alpha2"`
	IBAN           string  `json:"iban" validate:"omitempty,iban"`
}

// Filter narrows ListEmployees. Non-positive ids mean "any".
type Filter struct {
	Search         string
	DepartmentID   int
	EmployeeTypeID int
}

// PageRequest selects a 1-indexed page.
type PageRequest struct {
	Number int
	Size   int
}

const MaxPageSize = 100

type Page struct {
	Items  []Employee
	Total  int
	Number int
	Size   int
}

func (p Page) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return (p.Total + p.Size - 1) / p.Size
}
