package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/classroom-service/internal/auth"
	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/export"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
)

type enrollmentService struct {
	serviceBase
}

func NewEnrollmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) EnrollmentService {
	return &enrollmentService{serviceBase{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}}
}

// Enroll adds a student to a classroom. The classroom row stays locked from
// the seat count until the insert commits, so two enrollments racing for the
// last seat cannot both succeed.
func (s *enrollmentService) Enroll(ctx context.Context, classroomID string, req *EnrollRequest, actor auth.Principal) (*EnrollmentResponse, error) {
	s.logger.Info("Enrolling student", "classroom_id", classroomID, "student_id", req.StudentID, "actor_id", actor.ID)

	if errs := s.validator.GetBusinessValidator().ValidateEnroll(req); len(errs) > 0 {
		return nil, errs
	}

	var enrollment *models.Enrollment
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		classroom, err := s.repo.Classroom().GetByIDForUpdate(ctx, tx, classroomID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrClassroomNotFound
			}
			return err
		}

		if !canManageClassroom(actor, classroom) {
			return fmt.Errorf("%w: classroom belongs to another teacher", ErrForbidden)
		}

		exists, err := s.repo.Student().ExistsByID(ctx, tx, req.StudentID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrStudentNotFound
		}

		enrolled, err := s.repo.Enrollment().CountByClassroom(ctx, tx, classroomID)
		if err != nil {
			return err
		}
		if !classroom.HasSeat(enrolled) {
			return &CapacityError{ClassroomID: classroomID, MaxStudents: classroom.MaxStudents, Enrolled: enrolled}
		}

		already, err := s.repo.Enrollment().Exists(ctx, tx, req.StudentID, classroomID)
		if err != nil {
			return err
		}
		if already {
			return ErrAlreadyEnrolled
		}

		enrollment = &models.Enrollment{
			StudentID:   req.StudentID,
			ClassroomID: classroomID,
			Status:      models.EnrollmentActive,
		}
		if err := s.repo.Enrollment().Create(ctx, tx, enrollment); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrAlreadyEnrolled
			}
			return err
		}
		return nil
	})
	if err != nil {
		var capErr *CapacityError
		if errors.As(err, &capErr) {
			s.logger.Warn("Classroom is full", "classroom_id", classroomID, "max_students", capErr.MaxStudents)
		}
		return nil, err
	}

	s.logger.Info("Student enrolled successfully", "enrollment_id", enrollment.ID, "classroom_id", classroomID)
	s.publish(ctx, events.StudentEnrolled, events.EnrollmentEventData{
		EnrollmentID: enrollment.ID,
		ClassroomID:  classroomID,
		StudentID:    enrollment.StudentID,
		EnrolledAt:   enrollment.EnrolledAt,
		ActorID:      actor.ID,
	})

	loaded, err := s.repo.Enrollment().GetByID(ctx, s.db, enrollment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload enrollment: %w", err)
	}
	resp := toEnrollmentResponse(loaded)
	return &resp, nil
}

// GetRoster lists a classroom's enrollments oldest first. An unknown
// classroom has no enrollments and yields an empty roster.
func (s *enrollmentService) GetRoster(ctx context.Context, classroomID string) ([]RosterEntry, error) {
	enrollments, err := s.repo.Enrollment().ListByClassroom(ctx, s.db, classroomID)
	if err != nil {
		return nil, err
	}

	roster := make([]RosterEntry, 0, len(enrollments))
	for _, e := range enrollments {
		roster = append(roster, toRosterEntry(e))
	}
	return roster, nil
}

func (s *enrollmentService) ExportRoster(ctx context.Context, classroomID string) (*RosterExport, error) {
	classroom, err := s.repo.Classroom().GetByID(ctx, s.db, classroomID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassroomNotFound
		}
		return nil, err
	}

	roster, err := s.GetRoster(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	rows := make([]export.RosterRow, 0, len(roster))
	for _, entry := range roster {
		row := export.RosterRow{
			StudentCode:  entry.Student.StudentID,
			FullName:     entry.Student.FullName,
			Email:        entry.Student.Email,
			Major:        entry.Student.Major,
			AcademicYear: entry.Student.AcademicYear,
			GPA:          entry.Student.GPA,
			EnrolledAt:   entry.EnrolledAt,
			Status:       string(entry.Status),
			Grade:        entry.Grade,
		}
		if entry.Student.PhoneNumber != nil {
			row.PhoneNumber = *entry.Student.PhoneNumber
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	if err := export.WriteRoster(&buf, rows); err != nil {
		return nil, fmt.Errorf("failed to export roster: %w", err)
	}

	s.logger.Info("Roster exported", "classroom_id", classroomID, "rows", len(rows))
	return &RosterExport{
		Filename:    classroom.ClassroomCode + "-roster.xlsx",
		ContentType: export.ContentTypeXLSX,
		Content:     &buf,
	}, nil
}
