package directory

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	minWorkingAge = 18
	maxWorkingAge = 60
)

// Validator checks employee input against the domain rules. The clock is
// injectable so date rules can be tested.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled()), now: now}
	v.validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	mustRegister(v.validate, "notfuture", v.notFuture)
	mustRegister(v.validate, "workingage", v.workingAge)
	mustRegister(v.validate, "iban", func(fl validator.FieldLevel) bool {
		return ValidIBAN(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func (v *Validator) today() time.Time {
	now := v.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (v *Validator) notFuture(fl validator.FieldLevel) bool {
	date, err := time.Parse(time.DateOnly, fl.Field().String())
	if err != nil {
		return false
	}
	return !date.After(v.today())
}

func (v *Validator) workingAge(fl validator.FieldLevel) bool {
	dob, err := time.Parse(time.DateOnly, fl.Field().String())
	if err != nil {
		return false
	}
	today := v.today()
	youngest := today.AddDate(-minWorkingAge, 0, 0)
	oldest := today.AddDate(-maxWorkingAge, 0, 0)
	return !dob.After(youngest) && !dob.Before(oldest)
}

// Employee returns every issue found in the input; an empty result means
// the input is valid.
func (v *Validator) Employee(in EmployeeInput) *ValidationError {
	out := &ValidationError{}
	// ISO 3166 codes are upper case; stored codes are lower case.
	in.CountryCode = strings.ToUpper(in.CountryCode)
	err := v.validate.Struct(in)
	if err == nil {
		return out
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		out.Add("", err.Error())
		return out
	}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), reasonFor(fe))
	}
	return out
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "gt":
		return "must be selected"
	case "datetime":
		return "must be a valid date in YYYY-MM-DD format"
	case "notfuture":
		return "cannot be in the future"
	case "workingage":
		return fmt.Sprintf("employee must be between %d and %d years old", minWorkingAge, maxWorkingAge)
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		return "cannot be negative"
	case "iso3166_1_alpha2":
		return "must be an ISO 3166-1 alpha-2 country code"
	case "iban":
		return "must be a valid IBAN"
	default:
		return "is invalid"
	}
}

// NormalizeIBAN strips spaces and upper-cases the value.
func NormalizeIBAN(value string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
}

// ValidIBAN checks the structure and the ISO 13616 mod-97 checksum.
func ValidIBAN(value string) bool {
	iban := NormalizeIBAN(value)
	if len(iban) < 15 || len(iban) > 34 {
		return false
	}
	for i, r := range iban {
		switch {
		case i < 2 && (r < 'A' || r > 'Z'):
			return false
		case i >= 2 && i < 4 && (r < '0' || r > '9'):
			return false
		case (r < 'A' || r > 'Z') && (r < '0' || r > '9'):
			return false
		}
	}
	rearranged := iban[4:] + iban[:4]
	remainder := 0
	for _, r := range rearranged {
		if r >= 'A' && r <= 'Z' {
			n := int(r-'A') + 10
			remainder = (remainder*100 + n) % 97
			continue
		}
		remainder = (remainder*10 + int(r-'0')) % 97
	}
	return remainder == 1
}

func (in EmployeeInput) normalized() EmployeeInput {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.HireDate = strings.TrimSpace(in.HireDate)
	in.DateOfBirth = strings.TrimSpace(in.DateOfBirth)
	in.Gender = strings.TrimSpace(in.Gender)
	in.Country = strings.TrimSpace(in.Country)
	in.CountryCode = strings.ToLower(strings.TrimSpace(in.CountryCode))
	in.IBAN = NormalizeIBAN(in.IBAN)
	return in
}

// toEmployee converts validated input. Dates are known to parse.
func (in EmployeeInput) toEmployee() Employee {
	hire, _ := time.Parse(time.DateOnly, in.HireDate)
	dob, _ := time.Parse(time.DateOnly, in.DateOfBirth)
	return Employee{
		FullName:       in.FullName,
		Email:          in.Email,
		DepartmentID:   in.DepartmentID,
		DesignationID:  in.DesignationID,
		EmployeeTypeID: in.EmployeeTypeID,
		HireDate:       hire,
		DateOfBirth:    dob,
		Gender:         in.Gender,
		Salary:         in.Salary,
		Country:        in.Country,
		CountryCode:    in.CountryCode,
		IBAN:           in.IBAN,
	}
}

func ValidatePageRequest(page PageRequest) error {
	issues := &ValidationError{}
	if page.Number < 1 {
		issues.Add("page", "must be at least 1")
	}
	if page.Size < 1 || page.Size > MaxPageSize {
		issues.Add("pageSize", fmt.Sprintf("must be between 1 and %d", MaxPageSize))
	}
	return issues.orNil()
}
