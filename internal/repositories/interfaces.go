package repositories

import (
	"context"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type ClassroomFilters struct {
	TeacherID *string                 `json:"teacher_id"`
	Status    *models.ClassroomStatus `json:"status"`
	Semester  *string                 `json:"semester"`
	Limit     int                     `json:"limit"`
	Offset    int                     `json:"offset"`
}

type StudentFilters struct {
	Major        *string `json:"major"`
	AcademicYear *string `json:"academic_year"`
	Limit        int     `json:"limit"`
	Offset       int     `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

// Every method takes the *gorm.DB to run on; pass a transaction handle to
// join it, or nil to use the repository's default connection.

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByIDWithProfiles(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
}

type ClassroomRepository interface {
	Create(ctx context.Context, tx *gorm.DB, classroom *models.Classroom) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Classroom, error)
	// GetByIDForUpdate locks the classroom row until tx ends
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Classroom, error)
	GetByIDWithRoster(ctx context.Context, tx *gorm.DB, id string) (*models.Classroom, error)
	ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID *string) (bool, error)
	List(ctx context.Context, tx *gorm.DB, filters ClassroomFilters) ([]*models.Classroom, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
}

type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Enrollment, error)
	Exists(ctx context.Context, tx *gorm.DB, studentID, classroomID string) (bool, error)
	CountByClassroom(ctx context.Context, tx *gorm.DB, classroomID string) (int64, error)
	CountByClassrooms(ctx context.Context, tx *gorm.DB, classroomIDs []string) (map[string]int64, error)
	// ListByClassroom returns enrollments ordered by enrolled_at ascending
	ListByClassroom(ctx context.Context, tx *gorm.DB, classroomID string) ([]*models.Enrollment, error)
}

type StudentRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.StudentProfile, error)
	GetByIDWithEnrollments(ctx context.Context, tx *gorm.DB, id string) (*models.StudentProfile, error)
	ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error)
	ExistsByStudentID(ctx context.Context, tx *gorm.DB, studentID string) (bool, error)
	List(ctx context.Context, tx *gorm.DB, filters StudentFilters) ([]*models.StudentProfile, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]interface{}) error
}

// ===== DASHBOARD =====

type DashboardStats struct {
	TotalClassrooms  int64 `json:"totalClassrooms"`
	ActiveClassrooms int64 `json:"activeClassrooms"`
	FullClassrooms   int64 `json:"fullClassrooms"`
	TotalStudents    int64 `json:"totalStudents"`
	TotalTeachers    int64 `json:"totalTeachers"`
	TotalEnrollments int64 `json:"totalEnrollments"`
}

type SemesterStat struct {
	Semester    string `json:"semester"`
	Classrooms  int64  `json:"classrooms"`
	Enrollments int64  `json:"enrollments"`
}

type DashboardRepository interface {
	GetStats(ctx context.Context, tx *gorm.DB) (*DashboardStats, error)
	GetSemesterBreakdown(ctx context.Context, tx *gorm.DB) ([]SemesterStat, error)
}
