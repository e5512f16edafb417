package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"gorm.io/gorm"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

type groupCount struct {
	GroupKey string
	Count    int64
}

// CountEnrollments counts enrollments of one classroom
func (h *SharedHelpers) CountEnrollments(ctx context.Context, db *gorm.DB, classroomID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("classroom_id = ?", classroomID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return count, nil
}

// CountEnrollmentsByClassrooms counts enrollments per classroom in one query.
// Classrooms without enrollments are absent from the map.
func (h *SharedHelpers) CountEnrollmentsByClassrooms(ctx context.Context, db *gorm.DB, classroomIDs []string) (map[string]int64, error) {
	return h.countGrouped(ctx, db, "classroom_id", classroomIDs)
}

// CountEnrollmentsByStudents counts enrollments per student profile in one query
func (h *SharedHelpers) CountEnrollmentsByStudents(ctx context.Context, db *gorm.DB, studentIDs []string) (map[string]int64, error) {
	return h.countGrouped(ctx, db, "student_id", studentIDs)
}

func (h *SharedHelpers) countGrouped(ctx context.Context, db *gorm.DB, column string, ids []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []groupCount
	err := db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Select(column+" AS group_key, COUNT(*) AS count").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments by %s: %w", column, err)
	}

	for _, row := range rows {
		counts[row.GroupKey] = row.Count
	}
	return counts, nil
}

// ApplyClassroomFilters applies common filters to classroom queries
func (h *SharedHelpers) ApplyClassroomFilters(query *gorm.DB, filters repositories.ClassroomFilters) *gorm.DB {
	if filters.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filters.TeacherID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Semester != nil {
		query = query.Where("semester = ?", *filters.Semester)
	}
	return query
}

// ApplyStudentFilters applies common filters to student queries
func (h *SharedHelpers) ApplyStudentFilters(query *gorm.DB, filters repositories.StudentFilters) *gorm.DB {
	if filters.Major != nil {
		query = query.Where("major = ?", *filters.Major)
	}
	if filters.AcademicYear != nil {
		query = query.Where("academic_year = ?", *filters.AcademicYear)
	}
	return query
}

// ApplyPagination applies limit/offset; zero means unbounded
func (h *SharedHelpers) ApplyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
