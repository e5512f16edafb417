package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/classroom-service/internal/auth"
	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
)

// ServiceDependencies are the collaborators built outside the service layer
type ServiceDependencies struct {
	Hasher         auth.PasswordHasher
	Issuer         auth.TokenIssuer
	TokenValidator auth.TokenValidator
	Revoker        TokenRevoker
	Publisher      events.EventPublisher
}

func (d ServiceDependencies) validate() error {
	var errs []error
	if d.Hasher == nil {
		errs = append(errs, errors.New("password hasher is required"))
	}
	if d.Issuer == nil {
		errs = append(errs, errors.New("token issuer is required"))
	}
	if d.TokenValidator == nil {
		errs = append(errs, errors.New("token validator is required"))
	}
	return errors.Join(errs...)
}

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	Classroom  ServiceConfig
	Enrollment ServiceConfig
	Student    ServiceConfig

	// HealthTimeout bounds the store ping in HealthCheck
	HealthTimeout time.Duration
}

type ServiceConfig struct {
	Enabled bool
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	deps      ServiceDependencies
	config    ServiceManagerConfig

	// Service instances
	classroomService  ClassroomService
	enrollmentService EnrollmentService
	studentService    StudentService
	authService       AuthService
	dashboardService  DashboardService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, deps ServiceDependencies, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		deps:      deps,
		config:    config,
	}
}

// NewDefaultServiceManager enables every service
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, deps ServiceDependencies) ServiceManager {
	config := ServiceManagerConfig{
		Classroom:     ServiceConfig{Enabled: true},
		Enrollment:    ServiceConfig{Enabled: true},
		Student:       ServiceConfig{Enabled: true},
		HealthTimeout: 5 * time.Second,
	}
	return NewServiceManager(db, repo, logger, validator, deps, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.deps.validate(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	if sm.config.Classroom.Enabled {
		sm.classroomService = NewClassroomService(sm.repo, sm.db, sm.logger, sm.validator, sm.deps.Publisher)
		sm.logger.Info("Classroom service initialized")
	}

	if sm.config.Enrollment.Enabled {
		sm.enrollmentService = NewEnrollmentService(sm.repo, sm.db, sm.logger, sm.validator, sm.deps.Publisher)
		sm.logger.Info("Enrollment service initialized")
	}

	if sm.config.Student.Enabled {
		sm.studentService = NewStudentService(sm.repo, sm.db, sm.logger, sm.validator, sm.deps.Hasher, sm.deps.Publisher)
		sm.logger.Info("Student service initialized")
	}

	sm.authService = NewAuthService(sm.repo, sm.db, sm.logger, sm.validator, sm.deps)
	sm.logger.Info("Auth service initialized")

	sm.dashboardService = NewDashboardService(sm.repo, sm.db, sm.logger)
	sm.logger.Info("Dashboard service initialized")

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Classroom() ClassroomService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Classroom.Enabled && sm.classroomService != nil {
		return sm.classroomService
	}

	panic("classroom service not enabled or not initialized")
}

func (sm *serviceManager) Enrollment() EnrollmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Enrollment.Enabled && sm.enrollmentService != nil {
		return sm.enrollmentService
	}

	panic("enrollment service not enabled or not initialized")
}

func (sm *serviceManager) Student() StudentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Student.Enabled && sm.studentService != nil {
		return sm.studentService
	}

	panic("student service not enabled or not initialized")
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.authService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.dashboardService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if sm.config.HealthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sm.config.HealthTimeout)
		defer cancel()
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

// Shutdown closes the event publisher. The repository manager owns the
// database and redis connections and is shut down by the caller.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
