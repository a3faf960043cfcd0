// Package directorytest provides in-memory doubles for the employee
// directory and its identity collaborator.
package directorytest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"hcm/internal/domain/directory"
	"hcm/internal/domain/identity"
)

// MemoryStore implements directory.StoreAPI over maps. Reference ids are
// checked like foreign keys.
type MemoryStore struct {
	mu           sync.Mutex
	employees    map[int]directory.Employee
	departments  []directory.Department
	designations []directory.Designation
	types        []directory.EmployeeType
	nextID       int

	// CreateErr and UpdateErr, when set, are returned by CreateEmployee and
	// UpdateEmployee.
	CreateErr error
	UpdateErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		employees: map[int]directory.Employee{},
		departments: []directory.Department{
			{ID: 1, Name: "IT", IsActive: true},
			{ID: 2, Name: "HR", IsActive: true},
			{ID: 3, Name: "Sales", IsActive: true},
			{ID: 4, Name: "Admin", IsActive: true},
		},
		designations: []directory.Designation{
			{ID: 1, Name: "Software Developer", IsActive: true, DepartmentID: 1},
			{ID: 2, Name: "System Administrator", IsActive: true, DepartmentID: 1},
			{ID: 3, Name: "Network Engineer", IsActive: true, DepartmentID: 1},
			{ID: 4, Name: "HR Specialist", IsActive: true, DepartmentID: 2},
			{ID: 5, Name: "HR Manager", IsActive: true, DepartmentID: 2},
			{ID: 6, Name: "Talent Acquisition Coordinator", IsActive: true, DepartmentID: 2},
			{ID: 7, Name: "Sales Executive", IsActive: true, DepartmentID: 3},
			{ID: 8, Name: "Sales Manager", IsActive: true, DepartmentID: 3},
			{ID: 9, Name: "Account Executive", IsActive: true, DepartmentID: 3},
			{ID: 10, Name: "Office Manager", IsActive: true, DepartmentID: 4},
			{ID: 11, Name: "Executive Assistant", IsActive: true, DepartmentID: 4},
			{ID: 12, Name: "Receptionist", IsActive: true, DepartmentID: 4},
		},
		types: []directory.EmployeeType{
			{ID: 1, Name: "Permanent", IsActive: true},
			{ID: 2, Name: "Temporary", IsActive: true},
			{ID: 3, Name: "Contract", IsActive: true},
			{ID: 4, Name: "Intern", IsActive: true},
		},
		nextID: 1,
	}
}

// Add inserts an employee directly, bypassing validation.
func (m *MemoryStore) Add(emp directory.Employee) directory.Employee {
	if err := m.CreateEmployee(context.Background(), &emp); err != nil {
		panic(err)
	}
	return emp
}

func (m *MemoryStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.employees)
}

func (m *MemoryStore) ListEmployees(_ context.Context, scope directory.Scope, filter directory.Filter, page directory.PageRequest) (directory.Page, error) {
	if err := directory.ValidatePageRequest(page); err != nil {
		return directory.Page{}, err
	}
	if scope.IsEmpty() {
		return directory.Page{Items: []directory.Employee{}, Number: page.Number, Size: page.Size}, nil
	}
	filter = scope.Apply(filter)
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	m.mu.Lock()
	defer m.mu.Unlock()
	matched := []directory.Employee{}
	for _, emp := range m.employees {
		if search != "" && !strings.Contains(strings.ToLower(emp.FullName), search) {
			continue
		}
		if filter.DepartmentID > 0 && emp.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.EmployeeTypeID > 0 && emp.EmployeeTypeID != filter.EmployeeTypeID {
			continue
		}
		matched = append(matched, emp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	out := directory.Page{Items: []directory.Employee{}, Total: len(matched), Number: page.Number, Size: page.Size}
	start := (page.Number - 1) * page.Size
	if start < len(matched) {
		end := min(start+page.Size, len(matched))
		out.Items = append(out.Items, matched[start:end]...)
	}
	return out, nil
}

func (m *MemoryStore) GetByID(_ context.Context, id int) (*directory.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	emp, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	return &emp, nil
}

func (m *MemoryStore) GetByEmail(_ context.Context, email string) (*directory.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, emp := range m.employees {
		if emp.Email == email {
			out := emp
			return &out, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) DesignationsForDepartment(_ context.Context, departmentID int) ([]directory.Designation, error) {
	out := []directory.Designation{}
	for _, d := range m.designations {
		if d.DepartmentID == departmentID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateEmployee(_ context.Context, emp *directory.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		err := m.CreateErr
		m.CreateErr = nil
		return err
	}
	if err := m.resolve(emp); err != nil {
		return err
	}
	for _, existing := range m.employees {
		if existing.Email == emp.Email {
			return &directory.PersistenceError{Op: "create employee", Code: "23505", Err: errors.New("duplicate email")}
		}
	}
	emp.ID = m.nextID
	m.nextID++
	emp.CreatedAt = time.Now().UTC()
	emp.UpdatedAt = emp.CreatedAt
	m.employees[emp.ID] = *emp
	return nil
}

func (m *MemoryStore) UpdateEmployee(_ context.Context, emp *directory.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	existing, ok := m.employees[emp.ID]
	if !ok {
		return directory.ErrNotFound
	}
	if err := m.resolve(emp); err != nil {
		return err
	}
	emp.CreatedAt = existing.CreatedAt
	emp.UpdatedAt = time.Now().UTC()
	m.employees[emp.ID] = *emp
	return nil
}

func (m *MemoryStore) DeleteEmployee(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[id]; !ok {
		return directory.ErrNotFound
	}
	delete(m.employees, id)
	return nil
}

func (m *MemoryStore) ListDepartments(context.Context) ([]directory.Department, error) {
	return append([]directory.Department{}, m.departments...), nil
}

func (m *MemoryStore) ListEmployeeTypes(context.Context) ([]directory.EmployeeType, error) {
	return append([]directory.EmployeeType{}, m.types...), nil
}

// resolve fills the joined names and rejects dangling references.
func (m *MemoryStore) resolve(emp *directory.Employee) error {
	fk := func() error {
		return &directory.PersistenceError{Op: "write employee", Code: "23503", Err: errors.New("foreign key violation")}
	}
	emp.Department, emp.Designation, emp.EmployeeType = "", "", ""
	for _, d := range m.departments {
		if d.ID == emp.DepartmentID {
			emp.Department = d.Name
		}
	}
	for _, d := range m.designations {
		if d.ID == emp.DesignationID && d.DepartmentID == emp.DepartmentID {
			emp.Designation = d.Name
		}
	}
	for _, t := range m.types {
		if t.ID == emp.EmployeeTypeID {
			emp.EmployeeType = t.Name
		}
	}
	if emp.Department == "" || emp.Designation == "" || emp.EmployeeType == "" {
		return fk()
	}
	return nil
}

// Accounts records identity calls made by the directory service.
type Accounts struct {
	mu        sync.Mutex
	Roles     map[string]string
	Emails    map[string]string
	Deleted   []string
	Resets    []string
	Calls     int
	nextID    int
	CreateErr error
	ResetErr  error
}

func NewAccounts() *Accounts {
	return &Accounts{Roles: map[string]string{}, Emails: map[string]string{}}
}

func (a *Accounts) Account(_ context.Context, id string) (identity.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls++
	role, ok := a.Roles[id]
	if !ok {
		return identity.Account{}, identity.ErrAccountNotFound
	}
	return identity.Account{ID: id, Email: a.Emails[id], Role: role}, nil
}

func (a *Accounts) CreateAccount(_ context.Context, email, _ string, role string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls++
	if a.CreateErr != nil {
		return "", a.CreateErr
	}
	for _, existing := range a.Emails {
		if existing == email {
			return "", identity.ErrEmailTaken
		}
	}
	a.nextID++
	id := fmt.Sprintf("acc-%d", a.nextID)
	a.Roles[id] = role
	a.Emails[id] = email
	return id, nil
}

func (a *Accounts) UpdateAccount(_ context.Context, id, email, role string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls++
	if _, ok := a.Roles[id]; !ok {
		return identity.ErrAccountNotFound
	}
	for other, existing := range a.Emails {
		if other != id && existing == email {
			return identity.ErrEmailTaken
		}
	}
	a.Roles[id] = role
	a.Emails[id] = email
	return nil
}

func (a *Accounts) ResetPassword(_ context.Context, id, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls++
	if a.ResetErr != nil {
		return a.ResetErr
	}
	a.Resets = append(a.Resets, id)
	return nil
}

func (a *Accounts) DeleteAccount(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls++
	if _, ok := a.Roles[id]; !ok {
		return identity.ErrAccountNotFound
	}
	delete(a.Roles, id)
	delete(a.Emails, id)
	a.Deleted = append(a.Deleted, id)
	return nil
}

// Exists reports whether the account is still registered.
func (a *Accounts) Exists(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.Roles[id]
	return ok
}
