package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/classroom-service/internal/auth"
	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/testutil"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
)

const testPassword = "password123"

type stubHealth struct{ err error }

func (s stubHealth) HealthCheck(context.Context) error { return s.err }

type apiEnv struct {
	t      *testing.T
	router *gin.Engine
	jwt    *auth.JWTManager
	hasher *auth.BcryptHasher
	db     *gorm.DB

	adminToken    string
	teacherToken  string
	teacher2Token string
	studentToken  string
	teacherID     string
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []FieldError    `json:"errors"`
}

func newAPIEnv(t *testing.T, health HealthChecker) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwt := auth.NewJWTManager(auth.JWTConfig{
		Secret: "test-secret",
		Expiry: time.Hour,
		Issuer: "classroom-service",
	})
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	deps := services.ServiceDependencies{
		Hasher:         hasher,
		Issuer:         jwt,
		TokenValidator: jwt,
		Publisher:      events.NewMockEventPublisher(slogger),
	}
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})
	sm := services.NewDefaultServiceManager(db, repo, slogger, validator.New(), deps)
	if err := sm.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize services: %v", err)
	}

	logger := utils.NewSlogLogger(slogger)
	router := gin.New()
	SetupMiddleware(router, "http://localhost:3000", logger)
	NewHandlerManager(sm, health, logger).SetupRoutes(router)

	env := &apiEnv{
		t:      t,
		router: router,
		jwt:    jwt,
		hasher: hasher,
		db:     db,
	}

	env.adminToken = env.userToken("admin@classroom.com", models.RoleAdmin)
	env.teacherToken = env.userToken("teacher1@classroom.com", models.RoleTeacher)
	env.teacher2Token = env.userToken("teacher2@classroom.com", models.RoleTeacher)
	env.studentToken = env.userToken("viewer@classroom.com", models.RoleStudent)
	return env
}

// userToken inserts an active user and issues a token for it
func (e *apiEnv) userToken(email string, role models.UserRole) string {
	e.t.Helper()
	hash, err := e.hasher.Hash(testPassword)
	if err != nil {
		e.t.Fatalf("hash: %v", err)
	}
	user := &models.User{Email: email, PasswordHash: hash, FullName: "User " + email, Role: role, IsActive: true}
	if err := e.db.Create(user).Error; err != nil {
		e.t.Fatalf("create user %s: %v", email, err)
	}
	if email == "teacher1@classroom.com" {
		e.teacherID = user.ID
	}
	token, _, err := e.jwt.IssueToken(auth.Principal{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		e.t.Fatalf("issue token: %v", err)
	}
	return token
}

func (e *apiEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			e.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return env
}

func (e *apiEnv) createClassroom(code string, max int) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/classrooms", e.teacherToken, map[string]interface{}{
		"classroomCode": code,
		"name":          "Classroom " + code,
		"subject":       "Web",
		"semester":      "2024-1",
		"maxStudents":   max,
		"startDate":     "2024-09-01",
	})
	if w.Code != http.StatusCreated {
		e.t.Fatalf("create classroom: status %d body %s", w.Code, w.Body.String())
	}
	var data struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(decode(e.t, w).Data, &data); err != nil {
		e.t.Fatalf("decode classroom: %v", err)
	}
	return data.ID
}

func (e *apiEnv) createStudent(code, email string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/students", e.teacherToken, map[string]interface{}{
		"email":        email,
		"password":     testPassword,
		"fullName":     "Student " + code,
		"studentId":    code,
		"dateOfBirth":  "2003-05-01",
		"gender":       "FEMALE",
		"major":        "Computer Science",
		"academicYear": "K18",
	})
	if w.Code != http.StatusCreated {
		e.t.Fatalf("create student: status %d body %s", w.Code, w.Body.String())
	}
	var data struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(decode(e.t, w).Data, &data); err != nil {
		e.t.Fatalf("decode student: %v", err)
	}
	return data.ID
}

func TestHealthRoutes(t *testing.T) {
	env := newAPIEnv(t, stubHealth{})

	w := env.do(http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"classroom-service"`) {
		t.Errorf("/health = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}

	w = env.do(http.MethodGet, "/health/ready", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("/health/ready = %d, want 200", w.Code)
	}

	down := newAPIEnv(t, stubHealth{err: errors.New("database ping failed")})
	w = down.do(http.MethodGet, "/health/ready", "", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("/health/ready with failing store = %d, want 503", w.Code)
	}
}

func TestAuthRoutes(t *testing.T) {
	env := newAPIEnv(t, stubHealth{})

	w := env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "new@classroom.com",
		"password": testPassword,
		"fullName": "New User",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register = %d %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("register response leaks password: %s", w.Body.String())
	}

	w = env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "new@classroom.com",
		"password": testPassword,
		"fullName": "New User",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate register = %d, want 400", w.Code)
	}

	w = env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "root@classroom.com",
		"password": testPassword,
		"fullName": "Root",
		"role":     "ADMIN",
	})
	if w.Code != http.StatusBadRequest || len(decode(t, w).Errors) == 0 {
		t.Errorf("ADMIN register = %d %s, want 400 with field errors", w.Code, w.Body.String())
	}

	w = env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "new@classroom.com",
		"password": testPassword,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d %s", w.Code, w.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(decode(t, w).Data, &login); err != nil || login.Token == "" {
		t.Fatalf("login token missing: %s", w.Body.String())
	}

	w = env.do(http.MethodGet, "/api/auth/me", login.Token, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "new@classroom.com") {
		t.Errorf("me = %d %s", w.Code, w.Body.String())
	}

	w = env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "new@classroom.com",
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login = %d, want 401", w.Code)
	}

	w = env.do(http.MethodPost, "/api/auth/login", "", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed login = %d, want 400", w.Code)
	}
}

func TestRoleGuards(t *testing.T) {
	env := newAPIEnv(t, stubHealth{})
	classroomBody := map[string]interface{}{
		"classroomCode": "WEB101",
		"name":          "Web",
		"subject":       "Web",
		"semester":      "2024-1",
		"maxStudents":   40,
		"startDate":     "2024-09-01",
	}

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"no token", http.MethodGet, "/api/classrooms", "", nil, http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/classrooms", "garbage", nil, http.StatusUnauthorized},
		{"student lists classrooms", http.MethodGet, "/api/classrooms", env.studentToken, nil, http.StatusOK},
		{"student creates classroom", http.MethodPost, "/api/classrooms", env.studentToken, classroomBody, http.StatusForbidden},
		{"teacher deletes student", http.MethodDelete, "/api/students/missing", env.teacherToken, nil, http.StatusForbidden},
		{"admin deletes missing student", http.MethodDelete, "/api/students/missing", env.adminToken, nil, http.StatusNotFound},
		{"student reads dashboard", http.MethodGet, "/api/dashboard/stats", env.studentToken, nil, http.StatusOK},
		{"unknown route", http.MethodGet, "/api/nothing", env.adminToken, nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(tt.method, tt.path, tt.token, tt.body)
			if w.Code != tt.want {
				t.Errorf("%s %s = %d %s, want %d", tt.method, tt.path, w.Code, w.Body.String(), tt.want)
			}
		})
	}
}

func TestClassroomRoutes(t *testing.T) {
	env := newAPIEnv(t, stubHealth{})
	classroomID := env.createClassroom("WEB101", 1)

	t.Run("duplicate code", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/classrooms", env.teacherToken, map[string]interface{}{
			"classroomCode": "WEB101",
			"name":          "Again",
			"subject":       "Web",
			"semester":      "2024-1",
			"maxStudents":   10,
			"startDate":     "2024-09-01",
		})
		if w.Code != http.StatusBadRequest || decode(t, w).Message != "Classroom code already exists" {
			t.Errorf("duplicate = %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("validation errors", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/classrooms", env.teacherToken, map[string]interface{}{
			"classroomCode": "AI201",
			"name":          "AI",
			"subject":       "AI",
			"semester":      "2024-1",
			"maxStudents":   0,
			"startDate":     "2024-09-01",
		})
		if w.Code != http.StatusBadRequest || len(decode(t, w).Errors) == 0 {
			t.Errorf("invalid create = %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("get and list", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/classrooms/"+classroomID, env.studentToken, nil)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"classroomCode":"WEB101"`) {
			t.Errorf("get = %d %s", w.Code, w.Body.String())
		}

		w = env.do(http.MethodGet, "/api/classrooms?semester=2024-1&teacherId="+env.teacherID, env.teacherToken, nil)
		var list []map[string]interface{}
		if err := json.Unmarshal(decode(t, w).Data, &list); err != nil || len(list) != 1 {
			t.Errorf("list = %d %s", w.Code, w.Body.String())
		}

		w = env.do(http.MethodGet, "/api/classrooms/missing", env.teacherToken, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("get missing = %d, want 404", w.Code)
		}
	})

	t.Run("other teacher is forbidden", func(t *testing.T) {
		w := env.do(http.MethodPut, "/api/classrooms/"+classroomID, env.teacher2Token, map[string]string{"name": "Hijacked"})
		if w.Code != http.StatusForbidden {
			t.Errorf("update by other teacher = %d, want 403", w.Code)
		}
	})

	t.Run("enroll and roster", func(t *testing.T) {
		first := env.createStudent("SV001", "sv001@classroom.com")
		second := env.createStudent("SV002", "sv002@classroom.com")

		w := env.do(http.MethodPost, "/api/classrooms/"+classroomID+"/enroll", env.teacherToken, map[string]string{"studentId": first})
		if w.Code != http.StatusCreated {
			t.Fatalf("enroll = %d %s", w.Code, w.Body.String())
		}

		w = env.do(http.MethodPost, "/api/classrooms/"+classroomID+"/enroll", env.teacherToken, map[string]string{"studentId": second})
		if w.Code != http.StatusBadRequest || decode(t, w).Message != "Classroom is full" {
			t.Errorf("enroll into full classroom = %d %s", w.Code, w.Body.String())
		}

		w = env.do(http.MethodPut, "/api/classrooms/"+classroomID, env.teacherToken, map[string]int{"maxStudents": 2})
		if w.Code != http.StatusOK {
			t.Fatalf("raise capacity = %d %s", w.Code, w.Body.String())
		}

		w = env.do(http.MethodPost, "/api/classrooms/"+classroomID+"/enroll", env.teacherToken, map[string]string{"studentId": first})
		if w.Code != http.StatusBadRequest || !strings.Contains(decode(t, w).Message, "already enrolled") {
			t.Errorf("duplicate enroll = %d %s", w.Code, w.Body.String())
		}

		w = env.do(http.MethodGet, "/api/classrooms/"+classroomID+"/students", env.studentToken, nil)
		var roster []services.RosterEntry
		if err := json.Unmarshal(decode(t, w).Data, &roster); err != nil || len(roster) != 1 {
			t.Fatalf("roster = %d %s", w.Code, w.Body.String())
		}
		if roster[0].Student.StudentID != "SV001" {
			t.Errorf("roster[0].Student.StudentID = %q, want SV001", roster[0].Student.StudentID)
		}
	})

	t.Run("export", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/classrooms/"+classroomID+"/students/export", env.teacherToken, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("export = %d %s", w.Code, w.Body.String())
		}
		if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "WEB101-roster.xlsx") {
			t.Errorf("Content-Disposition = %q", cd)
		}
		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		if err != nil {
			t.Fatalf("open workbook: %v", err)
		}
		defer f.Close()
		rows, err := f.GetRows("Roster")
		if err != nil || len(rows) != 2 {
			t.Errorf("rows = %d (err %v), want header plus one entry", len(rows), err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		w := env.do(http.MethodDelete, "/api/classrooms/"+classroomID, env.teacherToken, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("delete = %d %s", w.Code, w.Body.String())
		}
		w = env.do(http.MethodGet, "/api/classrooms/"+classroomID, env.teacherToken, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("get after delete = %d, want 404", w.Code)
		}
	})
}

func TestStudentRoutes(t *testing.T) {
	env := newAPIEnv(t, stubHealth{})
	id := env.createStudent("SV001", "sv001@classroom.com")

	w := env.do(http.MethodPost, "/api/students", env.teacherToken, map[string]interface{}{
		"email":        "SV001@classroom.com",
		"password":     testPassword,
		"fullName":     "Copy",
		"studentId":    "SV009",
		"dateOfBirth":  "2003-05-01",
		"gender":       "MALE",
		"major":        "Math",
		"academicYear": "K18",
	})
	if w.Code != http.StatusBadRequest || decode(t, w).Message != "Email already in use" {
		t.Errorf("duplicate email = %d %s", w.Code, w.Body.String())
	}

	w = env.do(http.MethodPut, "/api/students/"+id, env.teacherToken, map[string]interface{}{"major": "Data Science", "gpa": 3.5})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"major":"Data Science"`) {
		t.Errorf("update = %d %s", w.Code, w.Body.String())
	}

	w = env.do(http.MethodGet, "/api/students?academicYear=K18", env.studentToken, nil)
	var list []map[string]interface{}
	if err := json.Unmarshal(decode(t, w).Data, &list); err != nil || len(list) != 1 {
		t.Errorf("list = %d %s", w.Code, w.Body.String())
	}

	w = env.do(http.MethodGet, "/api/students/"+id, env.studentToken, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"studentId":"SV001"`) {
		t.Errorf("get = %d %s", w.Code, w.Body.String())
	}

	w = env.do(http.MethodDelete, "/api/students/"+id, env.adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete = %d %s", w.Code, w.Body.String())
	}
	w = env.do(http.MethodGet, "/api/students/"+id, env.adminToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestDashboardRoute(t *testing.T) {
	env := newAPIEnv(t, stubHealth{})
	env.createClassroom("WEB101", 40)

	w := env.do(http.MethodGet, "/api/dashboard/stats", env.teacherToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats = %d %s", w.Code, w.Body.String())
	}
	var data services.DashboardResponse
	if err := json.Unmarshal(decode(t, w).Data, &data); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if data.Stats == nil || data.Stats.TotalClassrooms != 1 || data.Stats.TotalTeachers != 2 {
		t.Errorf("stats = %+v", data.Stats)
	}
	if len(data.Semesters) != 1 || data.Semesters[0].Semester != "2024-1" {
		t.Errorf("semesters = %+v", data.Semesters)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
