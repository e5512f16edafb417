package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"gorm.io/gorm"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

// Create inserts the user together with any profile attached to it
func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := u.getDB(tx).WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByIDWithProfiles(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := u.getDB(tx).WithContext(ctx).
		Preload("StudentProfile").
		Preload("TeacherProfile").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user with profiles: %w", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := u.getDB(tx).WithContext(ctx).
		Preload("StudentProfile").
		Preload("TeacherProfile").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	err := u.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

func (u *UserPostgreSQL) UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	err := u.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete removes the user and everything hanging off it: profiles and the
// student's enrollments. The FK cascades cover postgres; the explicit deletes
// keep stores without FK enforcement consistent.
func (u *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	return u.getDB(tx).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		studentIDs := tx.Model(&models.StudentProfile{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("student_id IN (?)", studentIDs).Delete(&models.Enrollment{}).Error; err != nil {
			return fmt.Errorf("failed to delete user enrollments: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.StudentProfile{}).Error; err != nil {
			return fmt.Errorf("failed to delete student profile: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.TeacherProfile{}).Error; err != nil {
			return fmt.Errorf("failed to delete teacher profile: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&models.User{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("failed to delete user: %w", gorm.ErrRecordNotFound)
		}
		return nil
	})
}
