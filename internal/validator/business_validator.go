package validator

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/classroom-service/internal/models"
)

const (
	ruleDate            = "date"
	ruleDateOrder       = "date_order"
	ruleGender          = "gender"
	ruleUserRole        = "user_role"
	ruleClassroomCode   = "classroom_code"
	ruleClassroomStatus = "classroom_status"
)

var classroomCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{2,20}$`)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (bv *BusinessValidator) ValidateLogin(req *LoginRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateRegister also refuses self-registration as ADMIN
func (bv *BusinessValidator) ValidateRegister(req *RegisterRequest) ValidationErrors {
	errs := bv.Validate(req)
	if len(errs) > 0 {
		return errs
	}
	if req.Role != nil {
		if role, _ := models.ParseUserRole(*req.Role); role == models.RoleAdmin {
			errs = append(errs, ValidationError{
				Field:   "role",
				Message: "cannot self-register as ADMIN",
				Value:   *req.Role,
				Rule:    ruleUserRole,
			})
		}
	}
	return errs
}

// ValidateClassroomCreate checks the request shape and that the date range is ordered
func (bv *BusinessValidator) ValidateClassroomCreate(req *ClassroomCreateRequest) ValidationErrors {
	errs := bv.Validate(req)
	if len(errs) > 0 {
		return errs
	}

	start, _ := ParseDate(req.StartDate)
	if req.EndDate != nil {
		end, _ := ParseDate(*req.EndDate)
		errs = append(errs, checkDateOrder(start, end)...)
	}
	return errs
}

// ValidateClassroomUpdate checks the patch against the stored classroom so a
// partial date change still yields an ordered range.
func (bv *BusinessValidator) ValidateClassroomUpdate(req *ClassroomUpdateRequest, existing *models.Classroom) ValidationErrors {
	errs := bv.Validate(req)
	if len(errs) > 0 {
		return errs
	}

	start := existing.StartDate
	if req.StartDate != nil {
		start, _ = ParseDate(*req.StartDate)
	}
	end := existing.EndDate
	if req.EndDate != nil {
		t, _ := ParseDate(*req.EndDate)
		end = &t
	}
	if end != nil {
		errs = append(errs, checkDateOrder(start, *end)...)
	}
	return errs
}

func (bv *BusinessValidator) ValidateEnroll(req *EnrollRequest) ValidationErrors {
	return bv.Validate(req)
}

func (bv *BusinessValidator) ValidateStudentCreate(req *StudentCreateRequest) ValidationErrors {
	errs := bv.Validate(req)
	if len(errs) > 0 {
		return errs
	}
	if dob, _ := ParseDate(req.DateOfBirth); dob.After(time.Now()) {
		errs = append(errs, ValidationError{
			Field:   "dateOfBirth",
			Message: "must not be in the future",
			Value:   req.DateOfBirth,
			Rule:    ruleDate,
		})
	}
	return errs
}

func (bv *BusinessValidator) ValidateStudentUpdate(req *StudentUpdateRequest) ValidationErrors {
	errs := bv.Validate(req)
	if len(errs) > 0 {
		return errs
	}
	if req.DateOfBirth != nil {
		if dob, _ := ParseDate(*req.DateOfBirth); dob.After(time.Now()) {
			errs = append(errs, ValidationError{
				Field:   "dateOfBirth",
				Message: "must not be in the future",
				Value:   *req.DateOfBirth,
				Rule:    ruleDate,
			})
		}
	}
	return errs
}

func checkDateOrder(start, end time.Time) ValidationErrors {
	if end.Before(start) {
		return ValidationErrors{{
			Field:   "endDate",
			Message: "must not be before startDate",
			Value:   end.Format(time.DateOnly),
			Rule:    ruleDateOrder,
		}}
	}
	return nil
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation(ruleDate, func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})

	bv.validate.RegisterValidation(ruleGender, func(fl validator.FieldLevel) bool {
		_, ok := models.ParseGender(fl.Field().String())
		return ok
	})

	bv.validate.RegisterValidation(ruleUserRole, func(fl validator.FieldLevel) bool {
		_, ok := models.ParseUserRole(fl.Field().String())
		return ok
	})

	bv.validate.RegisterValidation(ruleClassroomCode, func(fl validator.FieldLevel) bool {
		return classroomCodePattern.MatchString(fl.Field().String())
	})

	bv.validate.RegisterValidation(ruleClassroomStatus, func(fl validator.FieldLevel) bool {
		switch models.ClassroomStatus(fl.Field().String()) {
		case models.ClassroomActive, models.ClassroomInactive, models.ClassroomCompleted:
			return true
		}
		return false
	})
}
