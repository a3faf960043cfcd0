package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB     *pgxpool.Pool
	Cipher FieldCipher
}

func NewStore(db *pgxpool.Pool, cipher FieldCipher) *Store {
	return &Store{DB: db, Cipher: cipher}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanEmployee(row rowScanner) (Employee, error) {
	var emp Employee
	var ibanEnc *string
	err := row.Scan(
		&emp.ID, &emp.FullName, &emp.Email, &emp.IdentityAccountID,
		&emp.DepartmentID, &emp.Department, &emp.DesignationID, &emp.Designation,
		&emp.EmployeeTypeID, &emp.EmployeeType,
		&emp.HireDate, &emp.DateOfBirth, &emp.Gender, &emp.Salary, &emp.Country, &emp.CountryCode,
		&ibanEnc, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		return Employee{}, err
	}
	if ibanEnc != nil && *ibanEnc != "" {
		plain, err := s.Cipher.Decrypt(*ibanEnc)
		if err != nil {
			return Employee{}, fmt.Errorf("employee %d iban: %w", emp.ID, err)
		}
		emp.IBAN = plain
	}
	return emp, nil
}

func (s *Store) encryptIBAN(iban string) (*string, error) {
	if iban == "" {
		return nil, nil
	}
	enc, err := s.Cipher.Encrypt(iban)
	if err != nil {
		return nil, err
	}
	return &enc, nil
}

// ListEmployees returns one page of the employees visible in scope. The
// count and the page are read from the same snapshot.
func (s *Store) ListEmployees(ctx context.Context, scope Scope, filter Filter, page PageRequest) (Page, error) {
	if err := ValidatePageRequest(page); err != nil {
		return Page{}, err
	}
	if scope.IsEmpty() {
		return Page{Items: []Employee{}, Number: page.Number, Size: page.Size}, nil
	}
	filter = scope.Apply(filter)

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return Page{}, persistenceError("list employees", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	countQuery, countArgs := buildListQuery("SELECT COUNT(1)", filter)
	var total int
	if err := tx.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return Page{}, persistenceError("count employees", err)
	}

	out := Page{Items: []Employee{}, Total: total, Number: page.Number, Size: page.Size}
	if total == 0 {
		return out, persistenceError("list employees", tx.Commit(ctx))
	}

	query, args := buildPageQuery(filter, page)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return Page{}, persistenceError("list employees", err)
	}
	defer rows.Close()

	for rows.Next() {
		emp, err := s.scanEmployee(rows)
		if err != nil {
			return Page{}, wrapRead("list employees", err)
		}
		out.Items = append(out.Items, emp)
	}
	if err := rows.Err(); err != nil {
		return Page{}, persistenceError("list employees", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Page{}, persistenceError("list employees", err)
	}
	return out, nil
}

// GetByID returns nil without error when the employee does not exist.
func (s *Store) GetByID(ctx context.Context, id int) (*Employee, error) {
	return s.getOne(ctx, "e.id = $1", id)
}

// GetByEmail matches the email exactly and returns nil when absent.
func (s *Store) GetByEmail(ctx context.Context, email string) (*Employee, error) {
	return s.getOne(ctx, "e.email = $1", email)
}

func (s *Store) getOne(ctx context.Context, where string, arg any) (*Employee, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+employeeColumns+employeeJoins+"\n    WHERE "+where, arg)
	emp, err := s.scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapRead("get employee", err)
	}
	return &emp, nil
}

// wrapRead leaves cipher errors untouched so callers can tell corrupt
// ciphertext from database failures.
func wrapRead(op string, err error) error {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	if isCipherError(err) {
		return err
	}
	return persistenceError(op, err)
}

func (s *Store) DesignationsForDepartment(ctx context.Context, departmentID int) ([]Designation, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, is_active, department_id
    FROM designations
    WHERE department_id = $1
    ORDER BY id
  `, departmentID)
	if err != nil {
		return nil, persistenceError("list designations", err)
	}
	defer rows.Close()

	out := []Designation{}
	for rows.Next() {
		var d Designation
		if err := rows.Scan(&d.ID, &d.Name, &d.IsActive, &d.DepartmentID); err != nil {
			return nil, persistenceError("list designations", err)
		}
		out = append(out, d)
	}
	return out, persistenceError("list designations", rows.Err())
}

func (s *Store) CreateEmployee(ctx context.Context, emp *Employee) error {
	ibanEnc, err := s.encryptIBAN(emp.IBAN)
	if err != nil {
		return err
	}
	err = s.DB.QueryRow(ctx, `
    INSERT INTO employees (full_name, email, identity_account_id, department_id, designation_id, employee_type_id,
                           hire_date, date_of_birth, gender, salary, country, country_code, iban_enc)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    RETURNING id, created_at, updated_at
  `, emp.FullName, emp.Email, nullable(emp.IdentityAccountID), emp.DepartmentID, emp.DesignationID, emp.EmployeeTypeID,
		emp.HireDate, emp.DateOfBirth, emp.Gender, emp.Salary, emp.Country, emp.CountryCode, ibanEnc,
	).Scan(&emp.ID, &emp.CreatedAt, &emp.UpdatedAt)
	return persistenceError("create employee", err)
}

// UpdateEmployee replaces every stored field of the employee with the same id.
func (s *Store) UpdateEmployee(ctx context.Context, emp *Employee) error {
	ibanEnc, err := s.encryptIBAN(emp.IBAN)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET full_name = $1, email = $2, identity_account_id = $3, department_id = $4, designation_id = $5,
        employee_type_id = $6, hire_date = $7, date_of_birth = $8, gender = $9, salary = $10,
        country = $11, country_code = $12, iban_enc = $13, updated_at = now()
    WHERE id = $14
  `, emp.FullName, emp.Email, nullable(emp.IdentityAccountID), emp.DepartmentID, emp.DesignationID,
		emp.EmployeeTypeID, emp.HireDate, emp.DateOfBirth, emp.Gender, emp.Salary,
		emp.Country, emp.CountryCode, ibanEnc, emp.ID)
	if err != nil {
		return persistenceError("update employee", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteEmployee(ctx context.Context, id int) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM employees WHERE id = $1", id)
	if err != nil {
		return persistenceError("delete employee", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name, is_active FROM departments ORDER BY id")
	if err != nil {
		return nil, persistenceError("list departments", err)
	}
	defer rows.Close()

	out := []Department{}
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.IsActive); err != nil {
			return nil, persistenceError("list departments", err)
		}
		out = append(out, d)
	}
	return out, persistenceError("list departments", rows.Err())
}

func (s *Store) ListEmployeeTypes(ctx context.Context) ([]EmployeeType, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name, is_active FROM employee_types ORDER BY id")
	if err != nil {
		return nil, persistenceError("list employee types", err)
	}
	defer rows.Close()

	out := []EmployeeType{}
	for rows.Next() {
		var t EmployeeType
		if err := rows.Scan(&t.ID, &t.Name, &t.IsActive); err != nil {
			return nil, persistenceError("list employee types", err)
		}
		out = append(out, t)
	}
	return out, persistenceError("list employee types", rows.Err())
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
