package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/classroom-service/internal/auth"
	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
)

type classroomService struct {
	serviceBase
}

func NewClassroomService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ClassroomService {
	return &classroomService{serviceBase{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}}
}

// ===== CORE CRUD OPERATIONS =====

func (s *classroomService) Create(ctx context.Context, req *CreateClassroomRequest, actor auth.Principal) (*ClassroomResponse, error) {
	s.logger.Info("Creating classroom", "classroom_code", req.ClassroomCode, "actor_id", actor.ID)

	if errs := s.validator.GetBusinessValidator().ValidateClassroomCreate(req); len(errs) > 0 {
		return nil, errs
	}

	teacherID, err := s.resolveTeacherID(req.TeacherID, actor)
	if err != nil {
		return nil, err
	}

	classroom, err := s.buildClassroom(req, teacherID)
	if err != nil {
		return nil, err
	}

	err = s.withTx(ctx, func(tx *gorm.DB) error {
		if err := s.checkTeacher(ctx, tx, teacherID); err != nil {
			return err
		}

		exists, err := s.repo.Classroom().ExistsByCode(ctx, tx, classroom.ClassroomCode, nil)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateClassroomCode
		}

		if err := s.repo.Classroom().Create(ctx, tx, classroom); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrDuplicateClassroomCode
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Classroom created successfully", "classroom_id", classroom.ID, "teacher_id", teacherID)
	s.publish(ctx, events.ClassroomCreated, events.ClassroomEventData{
		ClassroomID:   classroom.ID,
		ClassroomCode: classroom.ClassroomCode,
		TeacherID:     classroom.TeacherID,
		ActorID:       actor.ID,
	})

	created, err := s.repo.Classroom().GetByID(ctx, s.db, classroom.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload classroom: %w", err)
	}
	return toClassroomResponse(created), nil
}

func (s *classroomService) GetByID(ctx context.Context, id string) (*ClassroomResponse, error) {
	classroom, err := s.repo.Classroom().GetByIDWithRoster(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassroomNotFound
		}
		return nil, err
	}
	return toClassroomResponse(classroom), nil
}

func (s *classroomService) List(ctx context.Context, filters repositories.ClassroomFilters) ([]*ClassroomResponse, error) {
	classrooms, err := s.repo.Classroom().List(ctx, s.db, filters)
	if err != nil {
		return nil, err
	}

	out := make([]*ClassroomResponse, 0, len(classrooms))
	for _, c := range classrooms {
		out = append(out, toClassroomResponse(c))
	}
	return out, nil
}

func (s *classroomService) Update(ctx context.Context, id string, req *UpdateClassroomRequest, actor auth.Principal) (*ClassroomResponse, error) {
	s.logger.Info("Updating classroom", "classroom_id", id, "actor_id", actor.ID)

	existing, err := s.repo.Classroom().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassroomNotFound
		}
		return nil, err
	}

	if !canManageClassroom(actor, existing) {
		return nil, fmt.Errorf("%w: classroom belongs to another teacher", ErrForbidden)
	}

	if errs := s.validator.GetBusinessValidator().ValidateClassroomUpdate(req, existing); len(errs) > 0 {
		return nil, errs
	}

	fields := s.buildUpdateFields(req)
	if len(fields) == 0 {
		return s.GetByID(ctx, id)
	}

	err = s.withTx(ctx, func(tx *gorm.DB) error {
		// Serialises with enrollments so the capacity check below sees a stable count
		if _, err := s.repo.Classroom().GetByIDForUpdate(ctx, tx, id); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrClassroomNotFound
			}
			return err
		}

		if code, ok := fields["classroom_code"].(string); ok && code != existing.ClassroomCode {
			exists, err := s.repo.Classroom().ExistsByCode(ctx, tx, code, &id)
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicateClassroomCode
			}
		}

		if teacherID, ok := fields["teacher_id"].(string); ok && teacherID != existing.TeacherID {
			if actor.Role != models.RoleAdmin {
				return fmt.Errorf("%w: only an admin can reassign a classroom", ErrForbidden)
			}
			if err := s.checkTeacher(ctx, tx, teacherID); err != nil {
				return err
			}
		}

		if maxStudents, ok := fields["max_students"].(int); ok {
			enrolled, err := s.repo.Enrollment().CountByClassroom(ctx, tx, id)
			if err != nil {
				return err
			}
			if int64(maxStudents) < enrolled {
				return &CapacityError{ClassroomID: id, MaxStudents: maxStudents, Enrolled: enrolled}
			}
		}

		if err := s.repo.Classroom().UpdateFields(ctx, tx, id, fields); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrDuplicateClassroomCode
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Classroom updated successfully", "classroom_id", id, "fields", len(fields))
	s.publish(ctx, events.ClassroomUpdated, events.ClassroomEventData{
		ClassroomID:   id,
		ClassroomCode: stringField(fields, "classroom_code", existing.ClassroomCode),
		TeacherID:     stringField(fields, "teacher_id", existing.TeacherID),
		ActorID:       actor.ID,
	})

	return s.GetByID(ctx, id)
}

func (s *classroomService) Delete(ctx context.Context, id string, actor auth.Principal) error {
	s.logger.Info("Deleting classroom", "classroom_id", id, "actor_id", actor.ID)

	existing, err := s.repo.Classroom().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrClassroomNotFound
		}
		return err
	}

	if !canManageClassroom(actor, existing) {
		return fmt.Errorf("%w: classroom belongs to another teacher", ErrForbidden)
	}

	if err := s.repo.Classroom().Delete(ctx, s.db, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrClassroomNotFound
		}
		return err
	}

	s.logger.Info("Classroom deleted successfully", "classroom_id", id)
	s.publish(ctx, events.ClassroomDeleted, events.ClassroomEventData{
		ClassroomID:   id,
		ClassroomCode: existing.ClassroomCode,
		TeacherID:     existing.TeacherID,
		ActorID:       actor.ID,
	})
	return nil
}

// ===== HELPERS =====

// resolveTeacherID defaults the teacher to a teaching caller
func (s *classroomService) resolveTeacherID(requested *string, actor auth.Principal) (string, error) {
	if requested != nil && strings.TrimSpace(*requested) != "" {
		id := strings.TrimSpace(*requested)
		if actor.Role == models.RoleTeacher && id != actor.ID {
			return "", fmt.Errorf("%w: teachers can only create their own classrooms", ErrForbidden)
		}
		return id, nil
	}
	if actor.Role == models.RoleTeacher {
		return actor.ID, nil
	}
	return "", fieldError("teacherId", "is required", nil)
}

// checkTeacher verifies teacherID names an existing TEACHER or ADMIN user
func (s *classroomService) checkTeacher(ctx context.Context, tx *gorm.DB, teacherID string) error {
	teacher, err := s.repo.User().GetByID(ctx, tx, teacherID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return fieldError("teacherId", "teacher does not exist", teacherID)
		}
		return err
	}
	if teacher.Role != models.RoleTeacher && teacher.Role != models.RoleAdmin {
		return fieldError("teacherId", "user is not a teacher", teacherID)
	}
	return nil
}

func (s *classroomService) buildClassroom(req *CreateClassroomRequest, teacherID string) (*models.Classroom, error) {
	start, err := validator.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}

	classroom := &models.Classroom{
		ClassroomCode: strings.TrimSpace(req.ClassroomCode),
		Name:          req.Name,
		Description:   req.Description,
		TeacherID:     teacherID,
		Subject:       req.Subject,
		Room:          req.Room,
		Schedule:      req.Schedule,
		Semester:      req.Semester,
		MaxStudents:   req.MaxStudents,
		StartDate:     start,
	}

	if req.EndDate != nil {
		end, err := validator.ParseDate(*req.EndDate)
		if err != nil {
			return nil, err
		}
		classroom.EndDate = &end
	}
	if req.Status != nil {
		classroom.Status = models.ClassroomStatus(*req.Status)
	}

	return classroom, nil
}

// buildUpdateFields maps the present request fields to column updates.
// Dates were validated already, so parse errors cannot occur here.
func (s *classroomService) buildUpdateFields(req *UpdateClassroomRequest) map[string]interface{} {
	fields := make(map[string]interface{})

	if req.ClassroomCode != nil {
		fields["classroom_code"] = strings.TrimSpace(*req.ClassroomCode)
	}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.TeacherID != nil {
		fields["teacher_id"] = strings.TrimSpace(*req.TeacherID)
	}
	if req.Subject != nil {
		fields["subject"] = *req.Subject
	}
	if req.Room != nil {
		fields["room"] = *req.Room
	}
	if req.Schedule != nil {
		fields["schedule"] = *req.Schedule
	}
	if req.Semester != nil {
		fields["semester"] = *req.Semester
	}
	if req.MaxStudents != nil {
		fields["max_students"] = *req.MaxStudents
	}
	if req.StartDate != nil {
		if t, err := validator.ParseDate(*req.StartDate); err == nil {
			fields["start_date"] = t
		}
	}
	if req.EndDate != nil {
		if t, err := validator.ParseDate(*req.EndDate); err == nil {
			fields["end_date"] = t
		}
	}
	if req.Status != nil {
		fields["status"] = models.ClassroomStatus(*req.Status)
	}

	return fields
}

func stringField(fields map[string]interface{}, key, fallback string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return fallback
}
