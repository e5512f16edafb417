package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var ErrValidationFailed = errors.New("validation failed")

var (
	ErrInvalidDate   = fmt.Errorf("%w: invalid date", ErrValidationFailed)
	ErrInvalidGender = fmt.Errorf("%w: invalid gender", ErrValidationFailed)
)

// ValidationError represents a single field-level validation failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// Is lets callers test a ValidationErrors against ErrValidationFailed, and
// against ErrInvalidDate or ErrInvalidGender when a field broke that rule.
func (ve ValidationErrors) Is(target error) bool {
	switch target {
	case ErrValidationFailed:
		return true
	case ErrInvalidDate:
		return ve.hasRule(ruleDate) || ve.hasRule(ruleDateOrder)
	case ErrInvalidGender:
		return ve.hasRule(ruleGender)
	}
	return false
}

func (ve ValidationErrors) hasRule(rule string) bool {
	for _, e := range ve {
		if e.Rule == rule {
			return true
		}
	}
	return false
}

// Validator bundles the struct validator and the business rule validator
type Validator struct {
	validate *validator.Validate
	business *BusinessValidator
}

func New() *Validator {
	business := NewBusinessValidator()
	return &Validator{
		validate: business.validate,
		business: business,
	}
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// Struct runs tag validation only
func (v *Validator) Struct(s interface{}) ValidationErrors {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ToValidationErrors converts a go-playground error into ValidationErrors
func ToValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Field: "request", Message: err.Error(), Rule: "invalid"}}
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: errorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case ruleDate:
		return "must be a valid date (YYYY-MM-DD or RFC 3339)"
	case ruleGender:
		return "must be one of MALE, FEMALE, OTHER"
	case ruleUserRole:
		return "must be one of ADMIN, TEACHER, STUDENT"
	case ruleClassroomCode:
		return "must be 2-20 letters, digits, '-' or '_'"
	case ruleClassroomStatus:
		return "must be one of ACTIVE, INACTIVE, COMPLETED"
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}
