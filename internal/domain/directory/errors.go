package directory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"hcm/internal/platform/crypto"
)

var (
	ErrNotFound  = errors.New("employee not found")
	ErrForbidden = errors.New("outside caller scope")
)

const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

// PersistenceError wraps a store failure. Code is the PostgreSQL SQLSTATE
// when the failure came from the database.
type PersistenceError struct {
	Op         string
	Code       string
	Constraint string
	Err        error
}

func (e *PersistenceError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%s: constraint %s: %v", e.Op, e.Constraint, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) ForeignKeyViolation() bool {
	return e.Code == codeForeignKeyViolation
}

func (e *PersistenceError) UniqueViolation() bool {
	return e.Code == codeUniqueViolation
}

func persistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	out := &PersistenceError{Op: op, Err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		out.Code = pgErr.Code
		out.Constraint = pgErr.ConstraintName
	}
	return out
}

type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+": "+issue.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, reason string) {
	e.Issues = append(e.Issues, FieldIssue{Field: field, Reason: reason})
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Issues) == 0 {
		return nil
	}
	return e
}

func fieldError(field, reason string) *ValidationError {
	return &ValidationError{Issues: []FieldIssue{{Field: field, Reason: reason}}}
}

func isCipherError(err error) bool {
	var cipherErr *crypto.CipherError
	return errors.As(err, &cipherErr)
}
