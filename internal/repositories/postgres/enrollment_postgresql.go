package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"gorm.io/gorm"
)

type EnrollmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (e *EnrollmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}

func (e *EnrollmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	if err := e.getDB(tx).WithContext(ctx).Create(enrollment).Error; err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

// GetByID retrieves an enrollment joined with the student profile and user
func (e *EnrollmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := e.getDB(tx).WithContext(ctx).
		Preload("Student").
		Preload("Student.User").
		First(&enrollment, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, studentID, classroomID string) (bool, error) {
	var count int64
	err := e.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("student_id = ? AND classroom_id = ?", studentID, classroomID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return count > 0, nil
}

func (e *EnrollmentPostgreSQL) CountByClassroom(ctx context.Context, tx *gorm.DB, classroomID string) (int64, error) {
	return e.helpers.CountEnrollments(ctx, e.getDB(tx), classroomID)
}

func (e *EnrollmentPostgreSQL) CountByClassrooms(ctx context.Context, tx *gorm.DB, classroomIDs []string) (map[string]int64, error) {
	return e.helpers.CountEnrollmentsByClassrooms(ctx, e.getDB(tx), classroomIDs)
}

func (e *EnrollmentPostgreSQL) ListByClassroom(ctx context.Context, tx *gorm.DB, classroomID string) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	err := e.getDB(tx).WithContext(ctx).
		Preload("Student").
		Preload("Student.User").
		Where("classroom_id = ?", classroomID).
		Order("enrolled_at ASC").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}
