package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/classroom-service/internal/auth"
	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
)

type studentService struct {
	serviceBase
	hasher auth.PasswordHasher
}

func NewStudentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, hasher auth.PasswordHasher, publisher events.EventPublisher) StudentService {
	return &studentService{
		serviceBase: serviceBase{
			repo:      repo,
			db:        db,
			logger:    logger,
			validator: validator,
			publisher: publisher,
		},
		hasher: hasher,
	}
}

// Create registers a STUDENT user together with its profile
func (s *studentService) Create(ctx context.Context, req *CreateStudentRequest, actor auth.Principal) (*StudentResponse, error) {
	s.logger.Info("Creating student", "student_id", req.StudentID, "actor_id", actor.ID)

	if errs := s.validator.GetBusinessValidator().ValidateStudentCreate(req); len(errs) > 0 {
		return nil, errs
	}

	gender, ok := models.ParseGender(req.Gender)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGender, req.Gender)
	}
	dob, err := validator.ParseDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	studentCode := strings.TrimSpace(req.StudentID)

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.StudentProfile{
		StudentCode:  studentCode,
		DateOfBirth:  datatypes.Date(dob),
		Gender:       gender,
		Major:        req.Major,
		AcademicYear: req.AcademicYear,
	}
	if req.GPA != nil {
		profile.GPA = *req.GPA
	}

	user := &models.User{
		Email:          email,
		PasswordHash:   hash,
		FullName:       req.FullName,
		Role:           models.RoleStudent,
		PhoneNumber:    req.PhoneNumber,
		Address:        req.Address,
		IsActive:       true,
		StudentProfile: profile,
	}

	err = s.withTx(ctx, func(tx *gorm.DB) error {
		if err := s.checkEmailFree(ctx, tx, email); err != nil {
			return err
		}
		if err := s.checkStudentCodeFree(ctx, tx, studentCode); err != nil {
			return err
		}
		return s.repo.User().Create(ctx, tx, user)
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, s.resolveDuplicate(ctx, email)
		}
		return nil, err
	}

	s.logger.Info("Student created successfully", "student_id", profile.ID, "user_id", user.ID)
	s.publish(ctx, events.StudentCreated, events.StudentEventData{
		StudentID:   profile.ID,
		StudentCode: profile.StudentCode,
		UserID:      user.ID,
		ActorID:     actor.ID,
	})

	return s.GetByID(ctx, profile.ID)
}

func (s *studentService) GetByID(ctx context.Context, id string) (*StudentResponse, error) {
	student, err := s.repo.Student().GetByIDWithEnrollments(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return toStudentResponse(student), nil
}

func (s *studentService) List(ctx context.Context, filters repositories.StudentFilters) ([]*StudentResponse, error) {
	students, err := s.repo.Student().List(ctx, s.db, filters)
	if err != nil {
		return nil, err
	}

	out := make([]*StudentResponse, 0, len(students))
	for _, student := range students {
		out = append(out, toStudentResponse(student))
	}
	return out, nil
}

// Update changes the present fields only. Email and student ID uniqueness is
// checked only when the value actually changes.
func (s *studentService) Update(ctx context.Context, id string, req *UpdateStudentRequest, actor auth.Principal) (*StudentResponse, error) {
	s.logger.Info("Updating student", "student_id", id, "actor_id", actor.ID)

	existing, err := s.repo.Student().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidateStudentUpdate(req); len(errs) > 0 {
		return nil, errs
	}

	userFields, studentFields, err := s.buildUpdateFields(req, existing)
	if err != nil {
		return nil, err
	}
	if len(userFields) == 0 && len(studentFields) == 0 {
		return s.GetByID(ctx, id)
	}

	newEmail, emailChanged := userFields["email"].(string)

	err = s.withTx(ctx, func(tx *gorm.DB) error {
		if emailChanged {
			if err := s.checkEmailFree(ctx, tx, newEmail); err != nil {
				return err
			}
		}
		if code, ok := studentFields["student_id"].(string); ok {
			if err := s.checkStudentCodeFree(ctx, tx, code); err != nil {
				return err
			}
		}

		if err := s.repo.User().UpdateFields(ctx, tx, existing.UserID, userFields); err != nil {
			return err
		}
		return s.repo.Student().UpdateFields(ctx, tx, id, studentFields)
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			if emailChanged {
				return nil, s.resolveDuplicate(ctx, newEmail)
			}
			return nil, ErrStudentIDTaken
		}
		return nil, err
	}

	changed := changedFields(userFields, studentFields)
	s.logger.Info("Student updated successfully", "student_id", id, "changed", changed)
	s.publish(ctx, events.StudentUpdated, events.StudentEventData{
		StudentID:   id,
		StudentCode: stringField(studentFields, "student_id", existing.StudentCode),
		UserID:      existing.UserID,
		Changed:     changed,
		ActorID:     actor.ID,
	})

	return s.GetByID(ctx, id)
}

// Delete removes the student's user account; profile and enrollments go with it
func (s *studentService) Delete(ctx context.Context, id string, actor auth.Principal) error {
	s.logger.Info("Deleting student", "student_id", id, "actor_id", actor.ID)

	existing, err := s.repo.Student().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrStudentNotFound
		}
		return err
	}

	if err := s.repo.User().Delete(ctx, s.db, existing.UserID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrStudentNotFound
		}
		return err
	}

	s.logger.Info("Student deleted successfully", "student_id", id, "user_id", existing.UserID)
	s.publish(ctx, events.StudentDeleted, events.StudentEventData{
		StudentID:   id,
		StudentCode: existing.StudentCode,
		UserID:      existing.UserID,
		ActorID:     actor.ID,
	})
	return nil
}

// ===== HELPERS =====

func (s *studentService) checkEmailFree(ctx context.Context, tx *gorm.DB, email string) error {
	exists, err := s.repo.User().ExistsByEmail(ctx, tx, email)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailInUse
	}
	return nil
}

func (s *studentService) checkStudentCodeFree(ctx context.Context, tx *gorm.DB, code string) error {
	exists, err := s.repo.Student().ExistsByStudentID(ctx, tx, code)
	if err != nil {
		return err
	}
	if exists {
		return ErrStudentIDTaken
	}
	return nil
}

// resolveDuplicate names the unique key a concurrent writer took first.
// It runs outside the failed transaction, which postgres has aborted.
func (s *studentService) resolveDuplicate(ctx context.Context, email string) error {
	exists, err := s.repo.User().ExistsByEmail(ctx, s.db, email)
	if err == nil && exists {
		return ErrEmailInUse
	}
	return ErrStudentIDTaken
}

func (s *studentService) buildUpdateFields(req *UpdateStudentRequest, existing *models.StudentProfile) (map[string]interface{}, map[string]interface{}, error) {
	userFields := make(map[string]interface{})
	studentFields := make(map[string]interface{})

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if existing.User == nil || email != existing.User.Email {
			userFields["email"] = email
		}
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to hash password: %w", err)
		}
		userFields["password_hash"] = hash
	}
	if req.FullName != nil {
		userFields["full_name"] = *req.FullName
	}
	if req.PhoneNumber != nil {
		userFields["phone_number"] = *req.PhoneNumber
	}
	if req.Address != nil {
		userFields["address"] = *req.Address
	}
	if req.Avatar != nil {
		userFields["avatar"] = *req.Avatar
	}
	if req.IsActive != nil {
		userFields["is_active"] = *req.IsActive
	}

	if req.StudentID != nil {
		if code := strings.TrimSpace(*req.StudentID); code != existing.StudentCode {
			studentFields["student_id"] = code
		}
	}
	if req.DateOfBirth != nil {
		dob, err := validator.ParseDate(*req.DateOfBirth)
		if err != nil {
			return nil, nil, err
		}
		studentFields["date_of_birth"] = datatypes.Date(dob)
	}
	if req.Gender != nil {
		gender, ok := models.ParseGender(*req.Gender)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrInvalidGender, *req.Gender)
		}
		studentFields["gender"] = gender
	}
	if req.Major != nil {
		studentFields["major"] = *req.Major
	}
	if req.AcademicYear != nil {
		studentFields["academic_year"] = *req.AcademicYear
	}
	if req.GPA != nil {
		studentFields["gpa"] = *req.GPA
	}

	return userFields, studentFields, nil
}

// changedFields lists the updated column names, sorted
func changedFields(maps ...map[string]interface{}) []string {
	var out []string
	for _, m := range maps {
		for k := range m {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
