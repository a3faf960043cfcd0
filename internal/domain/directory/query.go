package directory

import (
	"fmt"
	"strings"
)

const employeeColumns = `e.id, e.full_name, e.email, COALESCE(e.identity_account_id, ''),
       e.department_id, d.name, e.designation_id, g.name, e.employee_type_id, t.name,
       e.hire_date, e.date_of_birth, e.gender, e.salary, e.country, e.country_code,
       e.iban_enc, e.created_at, e.updated_at`

const employeeJoins = `
    FROM employees e
    JOIN departments d ON d.id = e.department_id
    JOIN designations g ON g.id = e.designation_id
    JOIN employee_types t ON t.id = e.employee_type_id`

// buildListQuery renders the filtered base query. The filter must already
// have the caller's scope applied.
func buildListQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + employeeJoins + "\n    WHERE 1=1"
	args := []any{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query += fmt.Sprintf(" AND e.full_name ILIKE $%d ESCAPE '\\'", len(args)+1)
		args = append(args, "%"+escapeLike(search)+"%")
	}
	if filter.DepartmentID > 0 {
		query += fmt.Sprintf(" AND e.department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if filter.EmployeeTypeID > 0 {
		query += fmt.Sprintf(" AND e.employee_type_id = $%d", len(args)+1)
		args = append(args, filter.EmployeeTypeID)
	}
	return query, args
}

func buildPageQuery(filter Filter, page PageRequest) (string, []any) {
	query, args := buildListQuery("SELECT "+employeeColumns, filter)
	query += fmt.Sprintf(" ORDER BY e.id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, page.Size, (page.Number-1)*page.Size)
	return query, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
