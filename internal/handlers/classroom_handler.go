package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
)

type ClassroomHandler struct {
	BaseHandler
	classrooms  services.ClassroomService
	enrollments services.EnrollmentService
}

func NewClassroomHandler(classrooms services.ClassroomService, enrollments services.EnrollmentService, logger utils.Logger) *ClassroomHandler {
	return &ClassroomHandler{
		BaseHandler: NewBaseHandler(logger),
		classrooms:  classrooms,
		enrollments: enrollments,
	}
}

// ===== CLASSROOM ENDPOINTS =====

// CreateClassroom creates a classroom
// @Summary Create classroom
// @Description Teachers create their own classrooms; admins name the teacher
// @Tags classrooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateClassroomRequest true "Classroom"
// @Success 201 {object} SuccessResponse{data=services.ClassroomResponse}
// @Failure 400 {object} ErrorResponse "Validation failed or duplicate code"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /classrooms [post]
func (h *ClassroomHandler) CreateClassroom(c *gin.Context) {
	principal, ok := GetPrincipal(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req services.CreateClassroomRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Creating classroom", "classroom_code", req.ClassroomCode)

	classroom, err := h.classrooms.Create(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusCreated, "Classroom created successfully", classroom)
}

// ListClassrooms lists classrooms newest first
// @Summary List classrooms
// @Tags classrooms
// @Produce json
// @Security BearerAuth
// @Param teacherId query string false "Filter by teacher"
// @Param status query string false "ACTIVE, INACTIVE or COMPLETED"
// @Param semester query string false "Filter by semester"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} SuccessResponse{data=[]services.ClassroomResponse}
// @Router /classrooms [get]
func (h *ClassroomHandler) ListClassrooms(c *gin.Context) {
	filters := repositories.ClassroomFilters{
		TeacherID: optionalQuery(c, "teacherId"),
		Semester:  optionalQuery(c, "semester"),
		Limit:     queryInt(c, "limit", 0),
		Offset:    queryInt(c, "offset", 0),
	}
	if status := optionalQuery(c, "status"); status != nil {
		s := models.ClassroomStatus(*status)
		filters.Status = &s
	}

	classrooms, err := h.classrooms.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusOK, "", classrooms)
}

// GetClassroom returns a classroom with teacher and enrollments
// @Summary Get classroom
// @Tags classrooms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Classroom ID"
// @Success 200 {object} SuccessResponse{data=services.ClassroomResponse}
// @Failure 404 {object} ErrorResponse "Classroom not found"
// @Router /classrooms/{id} [get]
func (h *ClassroomHandler) GetClassroom(c *gin.Context) {
	classroom, err := h.classrooms.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusOK, "", classroom)
}

// UpdateClassroom updates the present fields
// @Summary Update classroom
// @Tags classrooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Classroom ID"
// @Param request body services.UpdateClassroomRequest true "Fields to change"
// @Success 200 {object} SuccessResponse{data=services.ClassroomResponse}
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Classroom not found"
// @Router /classrooms/{id} [put]
func (h *ClassroomHandler) UpdateClassroom(c *gin.Context) {
	principal, ok := GetPrincipal(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req services.UpdateClassroomRequest
	if !h.bindJSON(c, &req) {
		return
	}
	id := c.Param("id")
	h.LogRequest(c, "Updating classroom", "classroom_id", id)

	classroom, err := h.classrooms.Update(c.Request.Context(), id, &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusOK, "Classroom updated successfully", classroom)
}

// DeleteClassroom deletes a classroom and its enrollments
// @Summary Delete classroom
// @Tags classrooms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Classroom ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Classroom not found"
// @Router /classrooms/{id} [delete]
func (h *ClassroomHandler) DeleteClassroom(c *gin.Context) {
	principal, ok := GetPrincipal(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id := c.Param("id")
	h.LogRequest(c, "Deleting classroom", "classroom_id", id)

	if err := h.classrooms.Delete(c.Request.Context(), id, principal); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusOK, "Classroom deleted successfully", nil)
}

// ===== ENROLLMENT ENDPOINTS =====

// EnrollStudent adds a student to the classroom
// @Summary Enroll student
// @Tags classrooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Classroom ID"
// @Param request body services.EnrollRequest true "Student"
// @Success 201 {object} SuccessResponse{data=services.EnrollmentResponse}
// @Failure 400 {object} ErrorResponse "Classroom full or already enrolled"
// @Failure 404 {object} ErrorResponse "Classroom or student not found"
// @Router /classrooms/{id}/enroll [post]
func (h *ClassroomHandler) EnrollStudent(c *gin.Context) {
	principal, ok := GetPrincipal(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req services.EnrollRequest
	if !h.bindJSON(c, &req) {
		return
	}
	id := c.Param("id")
	h.LogRequest(c, "Enrolling student", "classroom_id", id, "student_id", req.StudentID)

	enrollment, err := h.enrollments.Enroll(c.Request.Context(), id, &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusCreated, "Student enrolled successfully", enrollment)
}

// GetRoster lists the classroom's enrollments oldest first
// @Summary Classroom roster
// @Tags classrooms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Classroom ID"
// @Success 200 {object} SuccessResponse{data=[]services.RosterEntry}
// @Router /classrooms/{id}/students [get]
func (h *ClassroomHandler) GetRoster(c *gin.Context) {
	roster, err := h.enrollments.GetRoster(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusOK, "", roster)
}

// ExportRoster downloads the roster as a spreadsheet
// @Summary Export roster
// @Tags classrooms
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path string true "Classroom ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse "Classroom not found"
// @Router /classrooms/{id}/students/export [get]
func (h *ClassroomHandler) ExportRoster(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Exporting roster", "classroom_id", id)

	out, err := h.enrollments.ExportRoster(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.DataFromReader(http.StatusOK, -1, out.ContentType, out.Content, map[string]string{
		"Content-Disposition": `attachment; filename="` + out.Filename + `"`,
	})
}
