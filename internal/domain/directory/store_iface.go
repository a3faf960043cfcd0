package directory

import "context"

// StoreAPI is the employee directory query engine.
type StoreAPI interface {
	ListEmployees(ctx context.Context, scope Scope, filter Filter, page PageRequest) (Page, error)
	GetByID(ctx context.Context, id int) (*Employee, error)
	GetByEmail(ctx context.Context, email string) (*Employee, error)
	DesignationsForDepartment(ctx context.Context, departmentID int) ([]Designation, error)
	CreateEmployee(ctx context.Context, emp *Employee) error
	UpdateEmployee(ctx context.Context, emp *Employee) error
	DeleteEmployee(ctx context.Context, id int) error
	ListDepartments(ctx context.Context) ([]Department, error)
	ListEmployeeTypes(ctx context.Context) ([]EmployeeType, error)
}

// FieldCipher protects the bank account column at rest.
type FieldCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
