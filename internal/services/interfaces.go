package services

import (
	"context"
	"io"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/auth"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
)

// ===== REQUEST DTOs =====

// Use business validator types
type LoginRequest = validator.LoginRequest
type RegisterRequest = validator.RegisterRequest
type CreateClassroomRequest = validator.ClassroomCreateRequest
type UpdateClassroomRequest = validator.ClassroomUpdateRequest
type EnrollRequest = validator.EnrollRequest
type CreateStudentRequest = validator.StudentCreateRequest
type UpdateStudentRequest = validator.StudentUpdateRequest

// ===== RESPONSE DTOs =====

type TeacherSummary struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`

	TeacherProfile *models.TeacherProfile `json:"teacherProfile,omitempty"`
}

type UserSummary struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	FullName    string          `json:"fullName"`
	PhoneNumber *string         `json:"phoneNumber"`
	Address     *string         `json:"address,omitempty"`
	Avatar      *string         `json:"avatar,omitempty"`
	Role        models.UserRole `json:"role"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ClassroomResponse struct {
	*models.Classroom
	Teacher     *TeacherSummary      `json:"teacher"`
	Enrollments []EnrollmentResponse `json:"enrollments,omitempty"`
}

type EnrolledStudent struct {
	ID           string       `json:"id"`
	StudentID    string       `json:"studentId"`
	Major        string       `json:"major"`
	AcademicYear string       `json:"academicYear"`
	GPA          float64      `json:"gpa"`
	User         *UserSummary `json:"user,omitempty"`
}

type EnrollmentResponse struct {
	ID          string                  `json:"id"`
	StudentID   string                  `json:"studentId"`
	ClassroomID string                  `json:"classroomId"`
	EnrolledAt  time.Time               `json:"enrolledAt"`
	Grade       *float64                `json:"grade"`
	Status      models.EnrollmentStatus `json:"status"`
	Student     *EnrolledStudent        `json:"student,omitempty"`
}

// RosterStudent is the flattened student view inside a roster entry
type RosterStudent struct {
	ID           string  `json:"id"`
	StudentID    string  `json:"studentId"`
	FullName     string  `json:"fullName"`
	Email        string  `json:"email"`
	PhoneNumber  *string `json:"phoneNumber"`
	Major        string  `json:"major"`
	AcademicYear string  `json:"academicYear"`
	GPA          float64 `json:"gpa"`
}

type RosterEntry struct {
	EnrollmentID string                  `json:"enrollmentId"`
	EnrolledAt   time.Time               `json:"enrolledAt"`
	Grade        *float64                `json:"grade"`
	Status       models.EnrollmentStatus `json:"status"`
	Student      RosterStudent           `json:"student"`
}

type ClassroomSummary struct {
	ID            string `json:"id"`
	ClassroomCode string `json:"classroomCode"`
	Name          string `json:"name"`
	Subject       string `json:"subject"`
	Semester      string `json:"semester"`
}

type StudentEnrollment struct {
	ID          string                  `json:"id"`
	ClassroomID string                  `json:"classroomId"`
	EnrolledAt  time.Time               `json:"enrolledAt"`
	Grade       *float64                `json:"grade"`
	Status      models.EnrollmentStatus `json:"status"`
	Classroom   *ClassroomSummary       `json:"classroom,omitempty"`
}

type StudentResponse struct {
	*models.StudentProfile
	User        *UserSummary        `json:"user,omitempty"`
	Enrollments []StudentEnrollment `json:"enrollments,omitempty"`
}

type LoginResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type DashboardResponse struct {
	Stats     *repositories.DashboardStats `json:"stats"`
	Semesters []repositories.SemesterStat  `json:"semesters"`
}

// RosterExport is a rendered roster workbook
type RosterExport struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// ===== CAPABILITIES =====

// TokenRevoker blocks tokens before their natural expiry
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ===== SERVICE INTERFACES =====

type ClassroomService interface {
	Create(ctx context.Context, req *CreateClassroomRequest, actor auth.Principal) (*ClassroomResponse, error)
	GetByID(ctx context.Context, id string) (*ClassroomResponse, error)
	List(ctx context.Context, filters repositories.ClassroomFilters) ([]*ClassroomResponse, error)
	Update(ctx context.Context, id string, req *UpdateClassroomRequest, actor auth.Principal) (*ClassroomResponse, error)
	Delete(ctx context.Context, id string, actor auth.Principal) error
}

type EnrollmentService interface {
	Enroll(ctx context.Context, classroomID string, req *EnrollRequest, actor auth.Principal) (*EnrollmentResponse, error)
	GetRoster(ctx context.Context, classroomID string) ([]RosterEntry, error)
	ExportRoster(ctx context.Context, classroomID string) (*RosterExport, error)
}

type StudentService interface {
	Create(ctx context.Context, req *CreateStudentRequest, actor auth.Principal) (*StudentResponse, error)
	GetByID(ctx context.Context, id string) (*StudentResponse, error)
	List(ctx context.Context, filters repositories.StudentFilters) ([]*StudentResponse, error)
	Update(ctx context.Context, id string, req *UpdateStudentRequest, actor auth.Principal) (*StudentResponse, error)
	Delete(ctx context.Context, id string, actor auth.Principal) error
}

type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	Logout(ctx context.Context, principal auth.Principal) error
	// Authenticate validates a bearer token and rejects revoked ones
	Authenticate(ctx context.Context, token string) (*auth.Principal, error)
}

type DashboardService interface {
	GetStats(ctx context.Context) (*DashboardResponse, error)
}

type ServiceManager interface {
	Classroom() ClassroomService
	Enrollment() EnrollmentService
	Student() StudentService
	Auth() AuthService
	Dashboard() DashboardService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
