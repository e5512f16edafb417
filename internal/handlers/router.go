package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
)

const serviceName = "classroom-service"

// HealthChecker reports whether the backing stores are reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HandlerManager struct {
	authHandler      *AuthHandler
	classroomHandler *ClassroomHandler
	studentHandler   *StudentHandler
	dashboardHandler *DashboardHandler
	authMiddleware   *AuthMiddleware
	health           HealthChecker
	logger           utils.Logger
}

func NewHandlerManager(serviceManager services.ServiceManager, health HealthChecker, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		authHandler:      NewAuthHandler(serviceManager.Auth(), logger),
		classroomHandler: NewClassroomHandler(serviceManager.Classroom(), serviceManager.Enrollment(), logger),
		studentHandler:   NewStudentHandler(serviceManager.Student(), logger),
		dashboardHandler: NewDashboardHandler(serviceManager.Dashboard(), logger),
		authMiddleware:   NewAuthMiddleware(serviceManager.Auth(), logger),
		health:           health,
		logger:           logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"service": serviceName,
		})
	})
	router.GET("/health/ready", hm.ready)

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/login", hm.authHandler.Login)
		authRoutes.POST("/register", hm.authHandler.Register)
		authRoutes.GET("/me", hm.authMiddleware.Authenticate(), hm.authHandler.Me)
		authRoutes.POST("/logout", hm.authMiddleware.Authenticate(), hm.authHandler.Logout)
	}

	protected := api.Group("")
	protected.Use(hm.authMiddleware.Authenticate())
	{
		teachers := hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin)
		admins := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)

		// Classroom routes
		classrooms := protected.Group("/classrooms")
		{
			classrooms.GET("", hm.classroomHandler.ListClassrooms)
			classrooms.GET("/:id", hm.classroomHandler.GetClassroom)
			classrooms.GET("/:id/students", hm.classroomHandler.GetRoster)
			classrooms.GET("/:id/students/export", hm.classroomHandler.ExportRoster)

			// Create/modify classrooms - Teachers and Admins only
			classrooms.POST("", teachers, hm.classroomHandler.CreateClassroom)
			classrooms.PUT("/:id", teachers, hm.classroomHandler.UpdateClassroom)
			classrooms.DELETE("/:id", teachers, hm.classroomHandler.DeleteClassroom)
			classrooms.POST("/:id/enroll", teachers, hm.classroomHandler.EnrollStudent)
		}

		// Student routes
		students := protected.Group("/students")
		{
			students.GET("", hm.studentHandler.ListStudents)
			students.GET("/:id", hm.studentHandler.GetStudent)
			students.POST("", teachers, hm.studentHandler.CreateStudent)
			students.PUT("/:id", teachers, hm.studentHandler.UpdateStudent)
			students.DELETE("/:id", admins, hm.studentHandler.DeleteStudent)
		}

		protected.GET("/dashboard/stats", hm.dashboardHandler.GetDashboardStats)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Route not found"})
	})
}

func (hm *HandlerManager) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := hm.health.HealthCheck(ctx); err != nil {
		utils.GetLogger(c, hm.logger).Warn("Readiness check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "UNAVAILABLE",
			"service": serviceName,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "READY",
		"service": serviceName,
	})
}
