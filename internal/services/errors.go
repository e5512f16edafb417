package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/classroom-service/internal/validator"
)

// Error kinds. Every specific error below wraps exactly one of them, so the
// HTTP layer only has to test the kind.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrValidationFailed = validator.ErrValidationFailed
)

var (
	ErrClassroomNotFound = fmt.Errorf("classroom %w", ErrNotFound)
	ErrStudentNotFound   = fmt.Errorf("student %w", ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)

	ErrDuplicateClassroomCode = fmt.Errorf("%w: classroom code already exists", ErrConflict)
	ErrEmailInUse             = fmt.Errorf("%w: email is already in use", ErrConflict)
	ErrStudentIDTaken         = fmt.Errorf("%w: student ID already exists", ErrConflict)
	ErrAlreadyEnrolled        = fmt.Errorf("%w: student is already enrolled in this classroom", ErrConflict)

	ErrClassroomFull = ErrCapacityExceeded

	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	ErrTokenRevoked       = fmt.Errorf("%w: token has been revoked", ErrUnauthorized)

	ErrInvalidDate   = validator.ErrInvalidDate
	ErrInvalidGender = validator.ErrInvalidGender
)

type (
	ValidationError  = validator.ValidationError
	ValidationErrors = validator.ValidationErrors
)

// CapacityError reports how full a classroom was when a change was refused
type CapacityError struct {
	ClassroomID string
	MaxStudents int
	Enrolled    int64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("classroom is full: %d of %d seats taken", e.Enrolled, e.MaxStudents)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// fieldError builds a single-field ValidationErrors
func fieldError(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message, Value: value, Rule: "business_logic"}}
}
