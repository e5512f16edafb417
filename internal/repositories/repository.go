package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repository interface tổng hợp tất cả các repository interfaces
type Repository interface {
	// Identity domain
	User() UserRepository

	// Classroom domain
	Classroom() ClassroomRepository
	Enrollment() EnrollmentRepository

	// Student domain
	Student() StudentRepository

	// Dashboard domain
	Dashboard() DashboardRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
