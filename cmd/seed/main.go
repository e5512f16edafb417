// Command seed fills an empty database with demo accounts and classrooms.
// Re-running it skips rows that already exist.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/classroom-service/internal/auth"
	"github.com/SAP-F-2025/classroom-service/internal/config"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/classroom-service/pkg"
)

const seedPassword = "password123"

type seeder struct {
	db     *gorm.DB
	repo   repositories.Repository
	hasher auth.PasswordHasher
	logger *slog.Logger

	hash string
}

func newSeeder(db *gorm.DB, hasher auth.PasswordHasher, logger *slog.Logger) *seeder {
	return &seeder{
		db:     db,
		repo:   postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db}),
		hasher: hasher,
		logger: logger,
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	s := newSeeder(db, auth.NewBcryptHasher(10), logger)
	if err := s.run(context.Background()); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	logger.Info("Seeding completed",
		"admin", "admin@classroom.com",
		"teachers", "teacher1@classroom.com, teacher2@classroom.com",
		"students", "student1@classroom.com ... student10@classroom.com",
		"password", seedPassword,
	)
}

func (s *seeder) run(ctx context.Context) error {
	hash, err := s.hasher.Hash(seedPassword)
	if err != nil {
		return err
	}
	s.hash = hash

	if _, err := s.ensureUser(ctx, &models.User{
		Email:    "admin@classroom.com",
		FullName: "Administrator",
		Role:     models.RoleAdmin,
	}); err != nil {
		return err
	}

	teacher1, err := s.ensureUser(ctx, &models.User{
		Email:    "teacher1@classroom.com",
		FullName: "Nguyễn Văn A",
		Role:     models.RoleTeacher,
		TeacherProfile: &models.TeacherProfile{
			TeacherID:      "GV001",
			Department:     "Khoa Công nghệ Thông tin",
			Qualification:  "Thạc sĩ",
			Specialization: "Lập trình Web",
		},
	})
	if err != nil {
		return err
	}

	teacher2, err := s.ensureUser(ctx, &models.User{
		Email:    "teacher2@classroom.com",
		FullName: "Trần Thị B",
		Role:     models.RoleTeacher,
		TeacherProfile: &models.TeacherProfile{
			TeacherID:      "GV002",
			Department:     "Khoa Công nghệ Thông tin",
			Qualification:  "Tiến sĩ",
			Specialization: "Trí tuệ nhân tạo",
		},
	})
	if err != nil {
		return err
	}

	for i := 1; i <= 10; i++ {
		gender := models.GenderFemale
		if i%2 == 0 {
			gender = models.GenderMale
		}
		if _, err := s.ensureUser(ctx, &models.User{
			Email:    fmt.Sprintf("student%d@classroom.com", i),
			FullName: fmt.Sprintf("Sinh viên %d", i),
			Role:     models.RoleStudent,
			StudentProfile: &models.StudentProfile{
				StudentCode:  fmt.Sprintf("SV%03d", i),
				DateOfBirth:  datatypes.Date(time.Date(2003, time.Month(i), i, 0, 0, 0, 0, time.UTC)),
				Gender:       gender,
				Major:        "Công nghệ Thông tin",
				AcademicYear: "K18",
			},
		}); err != nil {
			return err
		}
	}

	start := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	classrooms := []*models.Classroom{
		{
			ClassroomCode: "WEB101",
			Name:          "Lập trình Web cơ bản",
			Description:   ptr("Học HTML, CSS, JavaScript cơ bản"),
			TeacherID:     teacher1.ID,
			Subject:       "Lập trình Web",
			Room:          ptr("P301"),
			Schedule:      ptr("Thứ 2, Thứ 4: 7h-9h"),
			Semester:      "HK1 2024-2025",
			MaxStudents:   40,
			StartDate:     start,
			EndDate:       &end,
			Status:        models.ClassroomActive,
		},
		{
			ClassroomCode: "AI201",
			Name:          "Trí tuệ nhân tạo nâng cao",
			Description:   ptr("Machine Learning, Deep Learning"),
			TeacherID:     teacher2.ID,
			Subject:       "Trí tuệ nhân tạo",
			Room:          ptr("P205"),
			Schedule:      ptr("Thứ 3, Thứ 5: 13h-15h"),
			Semester:      "HK1 2024-2025",
			MaxStudents:   30,
			StartDate:     start,
			EndDate:       &end,
			Status:        models.ClassroomActive,
		},
	}
	for _, c := range classrooms {
		if err := s.ensureClassroom(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// ensureUser creates user unless its email is taken and returns the stored row
func (s *seeder) ensureUser(ctx context.Context, user *models.User) (*models.User, error) {
	existing, err := s.repo.User().GetByEmail(ctx, nil, user.Email)
	if err == nil {
		s.logger.Info("User exists, skipping", "email", user.Email)
		return existing, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, err
	}

	user.PasswordHash = s.hash
	user.IsActive = true
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Email, err)
	}
	s.logger.Info("Created user", "email", user.Email, "role", user.Role)
	return user, nil
}

func (s *seeder) ensureClassroom(ctx context.Context, classroom *models.Classroom) error {
	exists, err := s.repo.Classroom().ExistsByCode(ctx, nil, classroom.ClassroomCode, nil)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Info("Classroom exists, skipping", "code", classroom.ClassroomCode)
		return nil
	}

	if err := s.repo.Classroom().Create(ctx, nil, classroom); err != nil {
		return fmt.Errorf("create classroom %s: %w", classroom.ClassroomCode, err)
	}
	s.logger.Info("Created classroom", "code", classroom.ClassroomCode)
	return nil
}

func ptr[T any](v T) *T { return &v }
