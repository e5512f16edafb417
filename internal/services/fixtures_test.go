package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/classroom-service/internal/auth"
	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/classroom-service/internal/testutil"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
)

const testPassword = "password123"

type testEnv struct {
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	hasher    *auth.BcryptHasher
	jwt       *auth.JWTManager
	publisher *events.MockEventPublisher

	admin    auth.Principal
	teacher  auth.Principal
	teacher2 auth.Principal
}

func newTestEnv(t testing.TB) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	env := &testEnv{
		db:        db,
		repo:      postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db}),
		logger:    logger,
		validator: validator.New(),
		hasher:    auth.NewBcryptHasher(bcrypt.MinCost),
		jwt: auth.NewJWTManager(auth.JWTConfig{
			Secret: "test-secret",
			Expiry: time.Hour,
			Issuer: "classroom-service",
		}),
		publisher: events.NewMockEventPublisher(logger),
	}

	env.admin = env.principal(env.createUser(t, "admin@classroom.com", models.RoleAdmin, true))
	env.teacher = env.principal(env.createUser(t, "teacher1@classroom.com", models.RoleTeacher, true))
	env.teacher2 = env.principal(env.createUser(t, "teacher2@classroom.com", models.RoleTeacher, true))
	return env
}

func (e *testEnv) deps() ServiceDependencies {
	return ServiceDependencies{
		Hasher:         e.hasher,
		Issuer:         e.jwt,
		TokenValidator: e.jwt,
		Publisher:      e.publisher,
	}
}

func (e *testEnv) classrooms() ClassroomService {
	return NewClassroomService(e.repo, e.db, e.logger, e.validator, e.publisher)
}

func (e *testEnv) enrollments() EnrollmentService {
	return NewEnrollmentService(e.repo, e.db, e.logger, e.validator, e.publisher)
}

func (e *testEnv) students() StudentService {
	return NewStudentService(e.repo, e.db, e.logger, e.validator, e.hasher, e.publisher)
}

func (e *testEnv) authService(revoker TokenRevoker) AuthService {
	deps := e.deps()
	deps.Revoker = revoker
	return NewAuthService(e.repo, e.db, e.logger, e.validator, deps)
}

func (e *testEnv) principal(u *models.User) auth.Principal {
	return auth.Principal{ID: u.ID, Email: u.Email, Role: u.Role}
}

func (e *testEnv) createUser(t testing.TB, email string, role models.UserRole, active bool) *models.User {
	t.Helper()
	hash, err := e.hasher.Hash(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     "User " + email,
		Role:         role,
		IsActive:     true,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	if !active {
		// gorm skips the zero value on Create and the column default wins
		if err := e.db.Model(user).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate user: %v", err)
		}
		user.IsActive = false
	}
	return user
}

// createStudent inserts a STUDENT user and profile and returns the profile
func (e *testEnv) createStudent(t testing.TB, n int) *models.StudentProfile {
	t.Helper()
	profile := &models.StudentProfile{
		StudentCode:  fmt.Sprintf("SV%03d", n),
		DateOfBirth:  datatypes.Date(time.Date(2003, 1, 1, 0, 0, 0, 0, time.UTC)),
		Gender:       models.GenderFemale,
		Major:        "Computer Science",
		AcademicYear: "K18",
	}
	user := &models.User{
		Email:          fmt.Sprintf("student%d@classroom.com", n),
		PasswordHash:   "x",
		FullName:       fmt.Sprintf("Student %d", n),
		Role:           models.RoleStudent,
		IsActive:       true,
		StudentProfile: profile,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create student %d: %v", n, err)
	}
	profile.User = user
	return profile
}

func (e *testEnv) createClassroom(t testing.TB, code string, maxStudents int, owner auth.Principal) *ClassroomResponse {
	t.Helper()
	resp, err := e.classrooms().Create(context.Background(), &CreateClassroomRequest{
		ClassroomCode: code,
		Name:          "Classroom " + code,
		Subject:       "Web Development",
		Semester:      "2024-1",
		MaxStudents:   maxStudents,
		StartDate:     "2024-09-01",
	}, owner)
	if err != nil {
		t.Fatalf("create classroom %s: %v", code, err)
	}
	return resp
}

func ptr[T any](v T) *T {
	return &v
}
