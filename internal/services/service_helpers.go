package services

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/classroom-service/internal/auth"
	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
)

// serviceBase carries the dependencies every service shares
type serviceBase struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func (s *serviceBase) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// publish sends an event after commit. Delivery failures are logged only;
// the change they describe is already durable.
func (s *serviceBase) publish(ctx context.Context, eventType events.EventType, data interface{}) {
	if s.publisher == nil {
		return
	}
	event, err := events.NewEvent(eventType, data)
	if err != nil {
		s.logger.Error("Failed to build event", "type", eventType, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "type", eventType, "event_id", event.ID, "error", err)
	}
}

// canManageClassroom: admins manage every classroom, teachers their own
func canManageClassroom(actor auth.Principal, classroom *models.Classroom) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleTeacher:
		return classroom.TeacherID == actor.ID
	}
	return false
}

// ===== RESPONSE BUILDERS =====

func toTeacherSummary(u *models.User) *TeacherSummary {
	if u == nil {
		return nil
	}
	return &TeacherSummary{
		ID:             u.ID,
		FullName:       u.FullName,
		Email:          u.Email,
		TeacherProfile: u.TeacherProfile,
	}
}

func toUserSummary(u *models.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
		Avatar:      u.Avatar,
		Role:        u.Role,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func toEnrollmentResponse(e *models.Enrollment) EnrollmentResponse {
	resp := EnrollmentResponse{
		ID:          e.ID,
		StudentID:   e.StudentID,
		ClassroomID: e.ClassroomID,
		EnrolledAt:  e.EnrolledAt,
		Grade:       e.Grade,
		Status:      e.Status,
	}
	if e.Student != nil {
		resp.Student = &EnrolledStudent{
			ID:           e.Student.ID,
			StudentID:    e.Student.StudentCode,
			Major:        e.Student.Major,
			AcademicYear: e.Student.AcademicYear,
			GPA:          e.Student.GPA,
			User:         toUserSummary(e.Student.User),
		}
	}
	return resp
}

func toRosterEntry(e *models.Enrollment) RosterEntry {
	entry := RosterEntry{
		EnrollmentID: e.ID,
		EnrolledAt:   e.EnrolledAt,
		Grade:        e.Grade,
		Status:       e.Status,
	}
	if s := e.Student; s != nil {
		entry.Student = RosterStudent{
			ID:           s.ID,
			StudentID:    s.StudentCode,
			Major:        s.Major,
			AcademicYear: s.AcademicYear,
			GPA:          s.GPA,
		}
		if s.User != nil {
			entry.Student.FullName = s.User.FullName
			entry.Student.Email = s.User.Email
			entry.Student.PhoneNumber = s.User.PhoneNumber
		}
	}
	return entry
}

func toClassroomResponse(c *models.Classroom) *ClassroomResponse {
	resp := &ClassroomResponse{
		Classroom: c,
		Teacher:   toTeacherSummary(c.Teacher),
	}
	if len(c.Enrollments) > 0 {
		resp.Enrollments = make([]EnrollmentResponse, 0, len(c.Enrollments))
		for i := range c.Enrollments {
			resp.Enrollments = append(resp.Enrollments, toEnrollmentResponse(&c.Enrollments[i]))
		}
	}
	return resp
}

func toStudentResponse(s *models.StudentProfile) *StudentResponse {
	resp := &StudentResponse{
		StudentProfile: s,
		User:           toUserSummary(s.User),
	}
	if len(s.Enrollments) > 0 {
		resp.Enrollments = make([]StudentEnrollment, 0, len(s.Enrollments))
		for _, e := range s.Enrollments {
			item := StudentEnrollment{
				ID:          e.ID,
				ClassroomID: e.ClassroomID,
				EnrolledAt:  e.EnrolledAt,
				Grade:       e.Grade,
				Status:      e.Status,
			}
			if c := e.Classroom; c != nil {
				item.Classroom = &ClassroomSummary{
					ID:            c.ID,
					ClassroomCode: c.ClassroomCode,
					Name:          c.Name,
					Subject:       c.Subject,
					Semester:      c.Semester,
				}
			}
			resp.Enrollments = append(resp.Enrollments, item)
		}
	}
	return resp
}
