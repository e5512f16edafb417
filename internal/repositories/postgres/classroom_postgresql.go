package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClassroomPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewClassroomPostgreSQL(db *gorm.DB) repositories.ClassroomRepository {
	return &ClassroomPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (c *ClassroomPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *ClassroomPostgreSQL) Create(ctx context.Context, tx *gorm.DB, classroom *models.Classroom) error {
	if err := c.getDB(tx).WithContext(ctx).Create(classroom).Error; err != nil {
		return fmt.Errorf("failed to create classroom: %w", err)
	}
	return nil
}

// GetByID retrieves a classroom with its teacher and current enrollment count
func (c *ClassroomPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Classroom, error) {
	db := c.getDB(tx)

	var classroom models.Classroom
	err := db.WithContext(ctx).
		Preload("Teacher").
		First(&classroom, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get classroom: %w", err)
	}

	count, err := c.helpers.CountEnrollments(ctx, db, id)
	if err != nil {
		return nil, err
	}
	classroom.EnrollmentCount = count

	return &classroom, nil
}

// GetByIDForUpdate takes a row lock on the classroom so concurrent enrollments
// into the same classroom run one after another. Dialects without row locks
// (sqlite) drop the clause; they serialise writers anyway.
func (c *ClassroomPostgreSQL) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Classroom, error) {
	var classroom models.Classroom
	err := c.getDB(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&classroom, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock classroom: %w", err)
	}
	return &classroom, nil
}

// GetByIDWithRoster retrieves a classroom with teacher detail and every
// enrollment joined to the student profile and user
func (c *ClassroomPostgreSQL) GetByIDWithRoster(ctx context.Context, tx *gorm.DB, id string) (*models.Classroom, error) {
	var classroom models.Classroom
	err := c.getDB(tx).WithContext(ctx).
		Preload("Teacher").
		Preload("Teacher.TeacherProfile").
		Preload("Enrollments", func(db *gorm.DB) *gorm.DB {
			return db.Order("enrollments.enrolled_at ASC")
		}).
		Preload("Enrollments.Student").
		Preload("Enrollments.Student.User").
		First(&classroom, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get classroom details: %w", err)
	}

	classroom.EnrollmentCount = int64(len(classroom.Enrollments))
	return &classroom, nil
}

func (c *ClassroomPostgreSQL) ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID *string) (bool, error) {
	query := c.getDB(tx).WithContext(ctx).
		Model(&models.Classroom{}).
		Where("classroom_code = ?", code)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check classroom code: %w", err)
	}
	return count > 0, nil
}

// List returns classrooms newest first, each with teacher and enrollment count
func (c *ClassroomPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ClassroomFilters) ([]*models.Classroom, error) {
	db := c.getDB(tx)

	query := db.WithContext(ctx).
		Model(&models.Classroom{}).
		Preload("Teacher")
	query = c.helpers.ApplyClassroomFilters(query, filters)
	query = c.helpers.ApplyPagination(query.Order("created_at DESC"), filters.Limit, filters.Offset)

	var classrooms []*models.Classroom
	if err := query.Find(&classrooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list classrooms: %w", err)
	}

	ids := make([]string, 0, len(classrooms))
	for _, classroom := range classrooms {
		ids = append(ids, classroom.ID)
	}
	counts, err := c.helpers.CountEnrollmentsByClassrooms(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for _, classroom := range classrooms {
		classroom.EnrollmentCount = counts[classroom.ID]
	}

	return classrooms, nil
}

func (c *ClassroomPostgreSQL) UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	err := c.getDB(tx).WithContext(ctx).
		Model(&models.Classroom{}).
		Where("id = ?", id).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("failed to update classroom: %w", err)
	}
	return nil
}

// Delete removes the classroom and its enrollments
func (c *ClassroomPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	return c.getDB(tx).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("classroom_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
			return fmt.Errorf("failed to delete classroom enrollments: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&models.Classroom{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete classroom: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("failed to delete classroom: %w", gorm.ErrRecordNotFound)
		}
		return nil
	})
}
