package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"gorm.io/gorm"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== DASHBOARD STATS =====

func (r *dashboardRepository) GetStats(ctx context.Context, tx *gorm.DB) (*repositories.DashboardStats, error) {
	db := r.getDB(tx).WithContext(ctx)
	stats := &repositories.DashboardStats{}

	if err := db.Model(&models.Classroom{}).Count(&stats.TotalClassrooms).Error; err != nil {
		return nil, fmt.Errorf("failed to get total classrooms: %w", err)
	}

	if err := db.Model(&models.Classroom{}).
		Where("status = ?", models.ClassroomActive).
		Count(&stats.ActiveClassrooms).Error; err != nil {
		return nil, fmt.Errorf("failed to get active classrooms: %w", err)
	}

	// Classrooms whose enrollment count reached max_students
	if err := db.Model(&models.Classroom{}).
		Where("max_students <= (SELECT COUNT(*) FROM enrollments WHERE enrollments.classroom_id = classrooms.id)").
		Count(&stats.FullClassrooms).Error; err != nil {
		return nil, fmt.Errorf("failed to get full classrooms: %w", err)
	}

	if err := db.Model(&models.StudentProfile{}).Count(&stats.TotalStudents).Error; err != nil {
		return nil, fmt.Errorf("failed to get total students: %w", err)
	}

	if err := db.Model(&models.User{}).
		Where("role = ?", models.RoleTeacher).
		Count(&stats.TotalTeachers).Error; err != nil {
		return nil, fmt.Errorf("failed to get total teachers: %w", err)
	}

	if err := db.Model(&models.Enrollment{}).Count(&stats.TotalEnrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to get total enrollments: %w", err)
	}

	return stats, nil
}

func (r *dashboardRepository) GetSemesterBreakdown(ctx context.Context, tx *gorm.DB) ([]repositories.SemesterStat, error) {
	var result []repositories.SemesterStat

	err := r.getDB(tx).WithContext(ctx).
		Table("classrooms").
		Select("classrooms.semester AS semester, COUNT(DISTINCT classrooms.id) AS classrooms, COUNT(enrollments.id) AS enrollments").
		Joins("LEFT JOIN enrollments ON enrollments.classroom_id = classrooms.id").
		Group("classrooms.semester").
		Order("classrooms.semester DESC").
		Scan(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get semester breakdown: %w", err)
	}

	return result, nil
}
