package directory

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"hcm/internal/domain/audit"
	"hcm/internal/domain/identity"
	"hcm/internal/requestctx"
)

// AccountManager is the identity side of hiring and dismissal.
type AccountManager interface {
	Account(ctx context.Context, id string) (identity.Account, error)
	CreateAccount(ctx context.Context, email, password, role string) (string, error)
	UpdateAccount(ctx context.Context, id, email, role string) error
	ResetPassword(ctx context.Context, id, password string) error
	DeleteAccount(ctx context.Context, id string) error
}

type Auditor interface {
	Record(ctx context.Context, action, entityType, entityID string, changedFields []string) error
}

type Service struct {
	store     StoreAPI
	accounts  AccountManager
	auditor   Auditor
	validator *Validator
}

func NewService(store StoreAPI, accounts AccountManager, auditor Auditor, validator *Validator) *Service {
	if validator == nil {
		validator = NewValidator(nil)
	}
	return &Service{store: store, accounts: accounts, auditor: auditor, validator: validator}
}

func (s *Service) ListEmployees(ctx context.Context, scope Scope, filter Filter, page PageRequest) (Page, error) {
	return s.store.ListEmployees(ctx, scope, filter, page)
}

// Employee loads one employee visible in scope. Employees outside the
// scope are reported as not found.
func (s *Service) Employee(ctx context.Context, scope Scope, id int) (*Employee, error) {
	emp, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if emp == nil || !scope.Allows(emp.DepartmentID) {
		return nil, ErrNotFound
	}
	return emp, nil
}

// Self resolves the employee record of the authenticated caller.
func (s *Service) Self(ctx context.Context, email string) (*Employee, error) {
	return s.store.GetByEmail(ctx, email)
}

func (s *Service) DesignationsForDepartment(ctx context.Context, departmentID int) ([]Designation, error) {
	return s.store.DesignationsForDepartment(ctx, departmentID)
}

func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	return s.store.ListDepartments(ctx)
}

func (s *Service) ListEmployeeTypes(ctx context.Context) ([]EmployeeType, error) {
	return s.store.ListEmployeeTypes(ctx)
}

func (s *Service) validate(in EmployeeInput, role, password string, passwordRequired bool) error {
	issues := s.validator.Employee(in)
	if !identity.ValidRole(role) {
		issues.Add("role", "must be one of Employee, Manager, HR Admin")
	}
	if passwordRequired || password != "" {
		if err := identity.ValidatePassword(password); err != nil {
			issues.Add("password", fmt.Sprintf("must be at least %d characters", identity.MinPasswordLength))
		}
	}
	return issues.orNil()
}

// Hire creates the identity account and then the employee row linked to
// it. If the employee insert fails the new account is removed again.
func (s *Service) Hire(ctx context.Context, in EmployeeInput, role, password string) (*Employee, error) {
	in = in.normalized()
	if err := s.validate(in, role, password, true); err != nil {
		return nil, err
	}
	existing, err := s.store.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fieldError("email", "is already in use")
	}

	accountID, err := s.accounts.CreateAccount(ctx, in.Email, password, role)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return nil, fieldError("email", "is already in use")
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	emp := in.toEmployee()
	emp.IdentityAccountID = accountID
	if err := s.store.CreateEmployee(ctx, &emp); err != nil {
		if delErr := s.accounts.DeleteAccount(ctx, accountID); delErr != nil {
			requestctx.Logger(ctx).Warn("rollback of new account failed", "accountId", accountID, "err", delErr)
		}
		return nil, err
	}

	s.record(ctx, audit.ActionEmployeeCreate, emp.ID, employeeFields)
	return s.reload(ctx, emp.ID)
}

// Amend replaces the employee record and keeps the linked account's email
// and role in step. A non-empty newPassword resets the account password.
// The account is changed first; when a later step fails both the account
// and the row are put back to their previous state.
func (s *Service) Amend(ctx context.Context, scope Scope, id int, in EmployeeInput, role, newPassword string) (*Employee, error) {
	in = in.normalized()
	if err := s.validate(in, role, newPassword, false); err != nil {
		return nil, err
	}
	current, err := s.Employee(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(in.DepartmentID) || !scope.CanAssignRole(role) {
		return nil, ErrForbidden
	}
	if in.Email != current.Email {
		other, err := s.store.GetByEmail(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, fieldError("email", "is already in use")
		}
	}

	var previous *identity.Account
	if current.IdentityAccountID != "" {
		account, err := s.accounts.Account(ctx, current.IdentityAccountID)
		if err != nil {
			return nil, fmt.Errorf("load account: %w", err)
		}
		if err := s.accounts.UpdateAccount(ctx, account.ID, in.Email, role); err != nil {
			if errors.Is(err, identity.ErrEmailTaken) {
				return nil, fieldError("email", "is already in use")
			}
			return nil, fmt.Errorf("update account: %w", err)
		}
		previous = &account
	} else if newPassword != "" {
		requestctx.Logger(ctx).Warn("password reset skipped for employee without account", "employeeId", id)
	}

	updated := in.toEmployee()
	updated.ID = id
	updated.IdentityAccountID = current.IdentityAccountID
	if err := s.store.UpdateEmployee(ctx, &updated); err != nil {
		s.restoreAccount(ctx, previous)
		return nil, err
	}

	if previous != nil && newPassword != "" {
		if err := s.accounts.ResetPassword(ctx, previous.ID, newPassword); err != nil {
			if restoreErr := s.store.UpdateEmployee(ctx, current); restoreErr != nil {
				requestctx.Logger(ctx).Warn("rollback of employee update failed", "employeeId", id, "err", restoreErr)
			}
			s.restoreAccount(ctx, previous)
			return nil, fmt.Errorf("reset password: %w", err)
		}
	}

	changed := ChangedFields(*current, updated)
	if newPassword != "" && previous != nil {
		changed = append(changed, "password")
	}
	s.record(ctx, audit.ActionEmployeeUpdate, id, changed)
	return s.reload(ctx, id)
}

func (s *Service) restoreAccount(ctx context.Context, previous *identity.Account) {
	if previous == nil {
		return
	}
	if err := s.accounts.UpdateAccount(ctx, previous.ID, previous.Email, previous.Role); err != nil {
		requestctx.Logger(ctx).Warn("rollback of account update failed", "accountId", previous.ID, "err", err)
	}
}

// Dismiss deletes the employee row first and then its linked account.
// Employees without an account cause no identity call.
func (s *Service) Dismiss(ctx context.Context, scope Scope, id int) error {
	current, err := s.Employee(ctx, scope, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteEmployee(ctx, id); err != nil {
		return err
	}
	s.record(ctx, audit.ActionEmployeeDelete, id, nil)

	if current.IdentityAccountID == "" {
		return nil
	}
	if err := s.accounts.DeleteAccount(ctx, current.IdentityAccountID); err != nil {
		if errors.Is(err, identity.ErrAccountNotFound) {
			return nil
		}
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func (s *Service) reload(ctx context.Context, id int) (*Employee, error) {
	emp, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, ErrNotFound
	}
	return emp, nil
}

func (s *Service) record(ctx context.Context, action string, id int, changed []string) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, action, audit.EntityEmployee, strconv.Itoa(id), changed); err != nil {
		requestctx.Logger(ctx).Warn("audit record failed", "action", action, "employeeId", id, "err", err)
	}
}

var employeeFields = []string{
	"fullName", "email", "departmentId", "designationId", "employeeTypeId", "hireDate",
	"dateOfBirth", "gender", "salary", "country", "countryCode", "iban",
}

// ChangedFields lists the names of the editable fields that differ.
func ChangedFields(before, after Employee) []string {
	out := []string{}
	add := func(name string, differs bool) {
		if differs {
			out = append(out, name)
		}
	}
	add("fullName", before.FullName != after.FullName)
	add("email", before.Email != after.Email)
	add("departmentId", before.DepartmentID != after.DepartmentID)
	add("designationId", before.DesignationID != after.DesignationID)
	add("employeeTypeId", before.EmployeeTypeID != after.EmployeeTypeID)
	add("hireDate", !before.HireDate.Equal(after.HireDate))
	add("dateOfBirth", !before.DateOfBirth.Equal(after.DateOfBirth))
	add("gender", before.Gender != after.Gender)
	add("salary", before.Salary != after.Salary)
	add("country", before.Country != after.Country)
	add("countryCode", before.CountryCode != after.CountryCode)
	add("iban", before.IBAN != after.IBAN)
	return out
}
