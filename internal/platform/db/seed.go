package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hcm/internal/domain/identity"
)

// Encrypter protects the bank account column of seeded employees.
type Encrypter interface {
	Encrypt(plaintext string) (string, error)
}

// seedVersion marks the demo employee set. Bump it only together with a
// change to seedEmployees.
const seedVersion = 1

// Seed loads the reference data and, once per database, the demo
// employees. Later runs never re-insert employees that were dismissed or
// edited. Seeded employees left without an identity account get one, under
// their current email.
func Seed(ctx context.Context, pool *pgxpool.Pool, cipher Encrypter) error {
	if err := ensureReferenceData(ctx, pool); err != nil {
		return err
	}
	if err := seedEmployeesOnce(ctx, pool, cipher); err != nil {
		return err
	}
	if err := resetIdentities(ctx, pool); err != nil {
		return err
	}
	return linkSeedAccounts(ctx, pool)
}

func seedEmployeesOnce(ctx context.Context, pool *pgxpool.Pool, cipher Encrypter) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, "INSERT INTO seed_versions (version) VALUES ($1) ON CONFLICT (version) DO NOTHING", seedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return nil
	}
	for _, emp := range seedEmployees {
		if err := insertEmployee(ctx, tx, cipher, emp); err != nil {
			return fmt.Errorf("seed employee %s: %w", emp.Email, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	slog.Info("seeded employees", "count", len(seedEmployees), "version", seedVersion)
	return nil
}

// seedRole assigns the first two seeded employees to HR Admin and the next
// four to Manager.
func seedRole(index int) string {
	switch {
	case index < 2:
		return identity.RoleHRAdmin
	case index < 6:
		return identity.RoleManager
	default:
		return identity.RoleEmployee
	}
}

func ensureReferenceData(ctx context.Context, pool *pgxpool.Pool) error {
	for _, d := range seedDepartments {
		if _, err := pool.Exec(ctx, "INSERT INTO departments (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING", d.ID, d.Name); err != nil {
			return err
		}
	}
	for _, t := range seedEmployeeTypes {
		if _, err := pool.Exec(ctx, "INSERT INTO employee_types (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING", t.ID, t.Name); err != nil {
			return err
		}
	}
	for _, d := range seedDesignations {
		if _, err := pool.Exec(ctx, "INSERT INTO designations (id, name, department_id) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING", d.ID, d.Name, d.DepartmentID); err != nil {
			return err
		}
	}
	return nil
}

// linkSeedAccounts creates an account for every seeded employee row that
// still exists and has none.
func linkSeedAccounts(ctx context.Context, pool *pgxpool.Pool) error {
	ids := make([]int, 0, len(seedEmployees))
	for _, emp := range seedEmployees {
		ids = append(ids, emp.ID)
	}
	rows, err := pool.Query(ctx, "SELECT id, email FROM employees WHERE id = ANY($1) AND identity_account_id IS NULL ORDER BY id", ids)
	if err != nil {
		return err
	}
	type unlinked struct {
		id    int
		email string
	}
	var pending []unlinked
	for rows.Next() {
		var u unlinked
		if err := rows.Scan(&u.id, &u.email); err != nil {
			rows.Close()
			return err
		}
		pending = append(pending, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, u := range pending {
		index, emp, ok := seededEmployee(u.id)
		if !ok {
			continue
		}
		if err := linkAccount(ctx, pool, u.id, u.email, emp.Password, seedRole(index)); err != nil {
			if errors.Is(err, identity.ErrEmailTaken) {
				slog.Warn("seed account skipped, email already registered", "employeeId", u.id, "email", u.email)
				continue
			}
			return fmt.Errorf("seed account %s: %w", u.email, err)
		}
	}
	return nil
}

func seededEmployee(id int) (int, seedEmployee, bool) {
	for i, emp := range seedEmployees {
		if emp.ID == id {
			return i, emp, true
		}
	}
	return 0, seedEmployee{}, false
}

func linkAccount(ctx context.Context, pool *pgxpool.Pool, employeeID int, email, password, role string) error {
	hash, err := identity.HashPassword(password)
	if err != nil {
		return err
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var taken bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)", email).Scan(&taken); err != nil {
		return err
	}
	if taken {
		return identity.ErrEmailTaken
	}
	id := uuid.NewString()
	if _, err := tx.Exec(ctx, "INSERT INTO accounts (id, email, password_hash, role) VALUES ($1, $2, $3, $4)", id, email, hash, role); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, "UPDATE employees SET identity_account_id = $1 WHERE id = $2 AND identity_account_id IS NULL", id, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return nil
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	slog.Info("seeded account", "employeeId", employeeID, "email", email)
	return nil
}

func insertEmployee(ctx context.Context, tx pgx.Tx, cipher Encrypter, emp seedEmployee) error {
	hireDate, err := time.Parse(time.DateOnly, emp.HireDate)
	if err != nil {
		return err
	}
	dob, err := time.Parse(time.DateOnly, emp.DateOfBirth)
	if err != nil {
		return err
	}
	ibanEnc, err := cipher.Encrypt(emp.IBAN)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
    INSERT INTO employees (id, full_name, email, department_id, designation_id,
                           employee_type_id, hire_date, date_of_birth, gender, salary, country, country_code, iban_enc)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    ON CONFLICT DO NOTHING
  `, emp.ID, emp.FullName, emp.Email, emp.DepartmentID, emp.DesignationID,
		emp.EmployeeTypeID, hireDate, dob, emp.Gender, emp.Salary, emp.Country, emp.CountryCode, ibanEnc)
	return err
}

// resetIdentities moves identity sequences past explicitly seeded ids.
func resetIdentities(ctx context.Context, pool *pgxpool.Pool) error {
	for _, table := range []string{"departments", "employee_types", "designations", "employees"} {
		_, err := pool.Exec(ctx, fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 1))", table))
		if err != nil {
			return fmt.Errorf("reset %s identity: %w", table, err)
		}
	}
	return nil
}
