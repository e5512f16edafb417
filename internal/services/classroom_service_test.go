package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
)

func TestClassroomService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.classrooms().Create(ctx, &CreateClassroomRequest{
		ClassroomCode: "WEB101",
		Name:          "Web Development",
		Subject:       "Web",
		Semester:      "2024-1",
		MaxStudents:   40,
		StartDate:     "2024-09-01",
		EndDate:       ptr("2024-12-31"),
		Room:          ptr("P301"),
	}, env.teacher)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if resp.TeacherID != env.teacher.ID {
		t.Errorf("TeacherID = %q, want caller %q", resp.TeacherID, env.teacher.ID)
	}
	if resp.Status != models.ClassroomActive {
		t.Errorf("Status = %q, want ACTIVE", resp.Status)
	}
	if resp.Teacher == nil || resp.Teacher.Email != env.teacher.Email {
		t.Errorf("Teacher = %+v, want summary of caller", resp.Teacher)
	}
	if resp.EnrollmentCount != 0 {
		t.Errorf("EnrollmentCount = %d, want 0", resp.EnrollmentCount)
	}

	published := env.publisher.EventsOfType(events.ClassroomCreated)
	if len(published) != 1 {
		t.Fatalf("published %d classroom.created events, want 1", len(published))
	}
}

func TestClassroomService_CreateErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createClassroom(t, "WEB101", 40, env.teacher)
	student := env.createStudent(t, 1)

	base := func() *CreateClassroomRequest {
		return &CreateClassroomRequest{
			ClassroomCode: "AI201",
			Name:          "AI",
			Subject:       "AI",
			Semester:      "2024-1",
			MaxStudents:   30,
			StartDate:     "2024-09-01",
		}
	}

	tests := []struct {
		name    string
		mutate  func(r *CreateClassroomRequest)
		asAdmin bool
		wantErr error
		field   string
	}{
		{
			name:    "duplicate code",
			mutate:  func(r *CreateClassroomRequest) { r.ClassroomCode = "WEB101" },
			wantErr: ErrDuplicateClassroomCode,
		},
		{
			name:    "end before start",
			mutate:  func(r *CreateClassroomRequest) { r.EndDate = ptr("2024-08-01") },
			wantErr: ErrInvalidDate,
			field:   "endDate",
		},
		{
			name:    "zero capacity",
			mutate:  func(r *CreateClassroomRequest) { r.MaxStudents = 0 },
			wantErr: ErrValidationFailed,
			field:   "maxStudents",
		},
		{
			name:    "teacher creates for another teacher",
			mutate:  func(r *CreateClassroomRequest) { r.TeacherID = ptr(env.teacher2.ID) },
			wantErr: ErrForbidden,
		},
		{
			name:    "teacherId names a student",
			mutate:  func(r *CreateClassroomRequest) { r.TeacherID = ptr(student.UserID) },
			asAdmin: true,
			wantErr: ErrValidationFailed,
			field:   "teacherId",
		},
		{
			name:    "admin without teacherId",
			mutate:  func(r *CreateClassroomRequest) {},
			asAdmin: true,
			wantErr: ErrValidationFailed,
			field:   "teacherId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(req)

			actor := env.teacher
			if tt.asAdmin {
				actor = env.admin
			}

			_, err := env.classrooms().Create(ctx, req, actor)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if tt.field != "" {
				var verrs ValidationErrors
				if !errors.As(err, &verrs) || verrs[0].Field != tt.field {
					t.Errorf("Create() error = %v, want field %q", err, tt.field)
				}
			}
		})
	}
}

func TestClassroomService_AdminCreatesForTeacher(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.classrooms().Create(context.Background(), &CreateClassroomRequest{
		ClassroomCode: "AI201",
		Name:          "AI",
		Subject:       "AI",
		Semester:      "2024-1",
		MaxStudents:   30,
		StartDate:     "2024-09-01T00:00:00Z",
		TeacherID:     ptr(env.teacher2.ID),
	}, env.admin)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if resp.TeacherID != env.teacher2.ID {
		t.Errorf("TeacherID = %q, want %q", resp.TeacherID, env.teacher2.ID)
	}
}

func TestClassroomService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	classroom := env.createClassroom(t, "WEB101", 3, env.teacher)
	other := env.createClassroom(t, "AI201", 3, env.teacher)

	for i := 1; i <= 2; i++ {
		s := env.createStudent(t, i)
		if _, err := env.enrollments().Enroll(ctx, classroom.ID, &EnrollRequest{StudentID: s.ID}, env.teacher); err != nil {
			t.Fatalf("Enroll() error = %v", err)
		}
	}

	t.Run("partial update keeps other fields", func(t *testing.T) {
		resp, err := env.classrooms().Update(ctx, classroom.ID, &UpdateClassroomRequest{
			Name: ptr("Web Development II"),
		}, env.teacher)
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if resp.Name != "Web Development II" || resp.ClassroomCode != "WEB101" || resp.MaxStudents != 3 {
			t.Errorf("Update() = %+v", resp.Classroom)
		}
		if len(resp.Enrollments) != 2 {
			t.Errorf("Enrollments = %d, want 2", len(resp.Enrollments))
		}
	})

	t.Run("end date checked against stored start", func(t *testing.T) {
		_, err := env.classrooms().Update(ctx, classroom.ID, &UpdateClassroomRequest{
			EndDate: ptr("2024-01-01"),
		}, env.teacher)
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("Update() error = %v, want ErrInvalidDate", err)
		}
	})

	t.Run("capacity below enrolled", func(t *testing.T) {
		_, err := env.classrooms().Update(ctx, classroom.ID, &UpdateClassroomRequest{
			MaxStudents: ptr(1),
		}, env.teacher)
		if !errors.Is(err, ErrCapacityExceeded) {
			t.Fatalf("Update() error = %v, want ErrCapacityExceeded", err)
		}
		var capErr *CapacityError
		if !errors.As(err, &capErr) || capErr.Enrolled != 2 {
			t.Errorf("Update() error = %#v, want CapacityError with 2 enrolled", err)
		}
	})

	t.Run("capacity equal to enrolled", func(t *testing.T) {
		resp, err := env.classrooms().Update(ctx, classroom.ID, &UpdateClassroomRequest{
			MaxStudents: ptr(2),
		}, env.teacher)
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if resp.MaxStudents != 2 {
			t.Errorf("MaxStudents = %d, want 2", resp.MaxStudents)
		}
	})

	t.Run("code taken by another classroom", func(t *testing.T) {
		_, err := env.classrooms().Update(ctx, classroom.ID, &UpdateClassroomRequest{
			ClassroomCode: ptr(other.ClassroomCode),
		}, env.teacher)
		if !errors.Is(err, ErrDuplicateClassroomCode) {
			t.Fatalf("Update() error = %v, want ErrDuplicateClassroomCode", err)
		}
	})

	t.Run("other teacher", func(t *testing.T) {
		_, err := env.classrooms().Update(ctx, classroom.ID, &UpdateClassroomRequest{
			Name: ptr("Hijacked"),
		}, env.teacher2)
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("Update() error = %v, want ErrForbidden", err)
		}
	})

	t.Run("missing classroom", func(t *testing.T) {
		_, err := env.classrooms().Update(ctx, "missing", &UpdateClassroomRequest{Name: ptr("x")}, env.admin)
		if !errors.Is(err, ErrClassroomNotFound) {
			t.Fatalf("Update() error = %v, want ErrClassroomNotFound", err)
		}
	})
}

func TestClassroomService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	classroom := env.createClassroom(t, "WEB101", 10, env.teacher)
	student := env.createStudent(t, 1)
	if _, err := env.enrollments().Enroll(ctx, classroom.ID, &EnrollRequest{StudentID: student.ID}, env.teacher); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}

	if err := env.classrooms().Delete(ctx, classroom.ID, env.teacher2); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Delete() by other teacher error = %v, want ErrForbidden", err)
	}

	if err := env.classrooms().Delete(ctx, classroom.ID, env.admin); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := env.classrooms().GetByID(ctx, classroom.ID); !errors.Is(err, ErrClassroomNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrClassroomNotFound", err)
	}

	roster, err := env.enrollments().GetRoster(ctx, classroom.ID)
	if err != nil || len(roster) != 0 {
		t.Errorf("GetRoster() after delete = %d entries, %v; want none", len(roster), err)
	}

	if err := env.classrooms().Delete(ctx, classroom.ID, env.admin); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}

	if got := len(env.publisher.EventsOfType(events.ClassroomDeleted)); got != 1 {
		t.Errorf("published %d classroom.deleted events, want 1", got)
	}
}

func TestClassroomService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createClassroom(t, "WEB101", 10, env.teacher)
	env.createClassroom(t, "AI201", 10, env.teacher2)

	all, err := env.classrooms().List(ctx, repositories.ClassroomFilters{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("List() = %d classrooms, want 2", len(all))
	}
	for _, c := range all {
		if c.Teacher == nil {
			t.Errorf("classroom %s has no teacher summary", c.ClassroomCode)
		}
	}

	mine, err := env.classrooms().List(ctx, repositories.ClassroomFilters{TeacherID: &env.teacher2.ID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(mine) != 1 || mine[0].ClassroomCode != "AI201" {
		t.Errorf("List(teacher2) = %+v, want AI201 only", mine)
	}
}
