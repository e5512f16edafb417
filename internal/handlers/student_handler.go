package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
)

type StudentHandler struct {
	BaseHandler
	service services.StudentService
}

func NewStudentHandler(service services.StudentService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== STUDENT ENDPOINTS =====

// ListStudents lists students newest first
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param major query string false "Filter by major"
// @Param academicYear query string false "Filter by academic year"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} SuccessResponse{data=[]services.StudentResponse}
// @Router /students [get]
func (h *StudentHandler) ListStudents(c *gin.Context) {
	filters := repositories.StudentFilters{
		Major:        optionalQuery(c, "major"),
		AcademicYear: optionalQuery(c, "academicYear"),
		Limit:        queryInt(c, "limit", 0),
		Offset:       queryInt(c, "offset", 0),
	}

	students, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusOK, "", students)
}

// GetStudent returns a student with enrollments
// @Summary Get student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} SuccessResponse{data=services.StudentResponse}
// @Failure 404 {object} ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (h *StudentHandler) GetStudent(c *gin.Context) {
	student, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusOK, "", student)
}

// CreateStudent creates a STUDENT user with its profile
// @Summary Create student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateStudentRequest true "Student"
// @Success 201 {object} SuccessResponse{data=services.StudentResponse}
// @Failure 400 {object} ErrorResponse "Validation failed, email in use or student ID taken"
// @Router /students [post]
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	principal, ok := GetPrincipal(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req services.CreateStudentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Creating student", "student_id", req.StudentID)

	student, err := h.service.Create(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusCreated, "Student created successfully", student)
}

// UpdateStudent updates the present fields
// @Summary Update student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param request body services.UpdateStudentRequest true "Fields to change"
// @Success 200 {object} SuccessResponse{data=services.StudentResponse}
// @Failure 400 {object} ErrorResponse "Validation failed, email in use or student ID taken"
// @Failure 404 {object} ErrorResponse "Student not found"
// @Router /students/{id} [put]
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	principal, ok := GetPrincipal(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req services.UpdateStudentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	id := c.Param("id")
	h.LogRequest(c, "Updating student", "student_id", id)

	student, err := h.service.Update(c.Request.Context(), id, &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusOK, "Student updated successfully", student)
}

// DeleteStudent removes the student and its user account
// @Summary Delete student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse "Student not found"
// @Router /students/{id} [delete]
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	principal, ok := GetPrincipal(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id := c.Param("id")
	h.LogRequest(c, "Deleting student", "student_id", id)

	if err := h.service.Delete(c.Request.Context(), id, principal); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusOK, "Student deleted successfully", nil)
}
