package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
)

// FieldError is one entry of ErrorResponse.Errors
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SuccessResponse is the envelope of every successful API response
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope of every failed API response
type ErrorResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs with the request-scoped logger
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.GetLogger(c, h.logger).Info(msg, append(args, "path", c.FullPath())...)
}

func (h *BaseHandler) respondSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, SuccessResponse{Success: true, Message: message, Data: data})
}

func (h *BaseHandler) respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Success: false, Message: message})
}

// bindJSON decodes the body into req; malformed JSON is reported as a validation failure
func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.respondValidation(c, validator.ToValidationErrors(err))
		return false
	}
	return true
}

func (h *BaseHandler) respondValidation(c *gin.Context, errs validator.ValidationErrors) {
	fields := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, FieldError{Field: e.Field, Message: e.Message})
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Message: "Validation failed",
		Errors:  fields,
	})
}

// handleServiceError maps the service error kinds onto HTTP statuses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.respondValidation(c, validationErrors)
		return
	}

	switch {
	case errors.Is(err, services.ErrValidationFailed):
		// sentinel-wrapped parse failures carry no field list
		h.respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		h.respondError(c, http.StatusNotFound, capitalize(err.Error()))
	case errors.Is(err, services.ErrConflict):
		h.respondError(c, http.StatusBadRequest, conflictMessage(err))
	case errors.Is(err, services.ErrCapacityExceeded):
		h.respondError(c, http.StatusBadRequest, "Classroom is full")
	case errors.Is(err, services.ErrUnauthorized):
		h.respondError(c, http.StatusUnauthorized, unauthorizedMessage(err))
	case errors.Is(err, services.ErrForbidden):
		h.respondError(c, http.StatusForbidden, "Access denied")
	default:
		utils.GetLogger(c, h.logger).Error("Unhandled service error", "error", err, "path", c.FullPath())
		h.respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrDuplicateClassroomCode):
		return "Classroom code already exists"
	case errors.Is(err, services.ErrEmailInUse):
		return "Email already in use"
	case errors.Is(err, services.ErrStudentIDTaken):
		return "Student ID already exists"
	case errors.Is(err, services.ErrAlreadyEnrolled):
		return "Student is already enrolled in this classroom"
	}
	return "Conflict"
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, services.ErrTokenRevoked):
		return "Token has been revoked"
	}
	return "Invalid or expired token"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// queryInt reads a non-negative integer query parameter
func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}

func optionalQuery(c *gin.Context, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}
