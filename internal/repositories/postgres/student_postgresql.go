package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"gorm.io/gorm"
)

type StudentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewStudentPostgreSQL(db *gorm.DB) repositories.StudentRepository {
	return &StudentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (s *StudentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *StudentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.StudentProfile, error) {
	var student models.StudentProfile
	err := s.getDB(tx).WithContext(ctx).
		Preload("User").
		First(&student, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

// GetByIDWithEnrollments retrieves a student with user and enrollments, each
// enrollment carrying its classroom
func (s *StudentPostgreSQL) GetByIDWithEnrollments(ctx context.Context, tx *gorm.DB, id string) (*models.StudentProfile, error) {
	var student models.StudentProfile
	err := s.getDB(tx).WithContext(ctx).
		Preload("User").
		Preload("Enrollments", func(db *gorm.DB) *gorm.DB {
			return db.Order("enrollments.enrolled_at ASC")
		}).
		Preload("Enrollments.Classroom").
		First(&student, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get student details: %w", err)
	}

	student.EnrollmentCount = int64(len(student.Enrollments))
	return &student, nil
}

func (s *StudentPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	var count int64
	err := s.getDB(tx).WithContext(ctx).
		Model(&models.StudentProfile{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check student: %w", err)
	}
	return count > 0, nil
}

func (s *StudentPostgreSQL) ExistsByStudentID(ctx context.Context, tx *gorm.DB, studentID string) (bool, error) {
	var count int64
	err := s.getDB(tx).WithContext(ctx).
		Model(&models.StudentProfile{}).
		Where("student_id = ?", studentID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check student id: %w", err)
	}
	return count > 0, nil
}

// List returns students newest first with user and enrollment count
func (s *StudentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.StudentFilters) ([]*models.StudentProfile, error) {
	db := s.getDB(tx)

	query := db.WithContext(ctx).
		Model(&models.StudentProfile{}).
		Preload("User")
	query = s.helpers.ApplyStudentFilters(query, filters)
	query = s.helpers.ApplyPagination(query.Order("created_at DESC"), filters.Limit, filters.Offset)

	var students []*models.StudentProfile
	if err := query.Find(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	ids := make([]string, 0, len(students))
	for _, student := range students {
		ids = append(ids, student.ID)
	}
	counts, err := s.helpers.CountEnrollmentsByStudents(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for _, student := range students {
		student.EnrollmentCount = counts[student.ID]
	}

	return students, nil
}

func (s *StudentPostgreSQL) UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	err := s.getDB(tx).WithContext(ctx).
		Model(&models.StudentProfile{}).
		Where("id = ?", id).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	return nil
}
