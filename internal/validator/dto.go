package validator

// ===== AUTH =====

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email       string  `json:"email" validate:"required,email,max=255"`
	Password    string  `json:"password" validate:"required,min=6,max=72"`
	FullName    string  `json:"fullName" validate:"required,min=2,max=100"`
	Role        *string `json:"role" validate:"omitempty,user_role"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=20"`
	Address     *string `json:"address" validate:"omitempty,max=255"`
}

// ===== CLASSROOMS =====

// ClassroomCreateRequest carries dates as strings so both YYYY-MM-DD and
// RFC 3339 input are accepted.
type ClassroomCreateRequest struct {
	ClassroomCode string  `json:"classroomCode" validate:"required,classroom_code"`
	Name          string  `json:"name" validate:"required,min=1,max=200"`
	Description   *string `json:"description" validate:"omitempty,max=2000"`
	TeacherID     *string `json:"teacherId" validate:"omitempty,uuid"`
	Subject       string  `json:"subject" validate:"required,min=1,max=150"`
	Room          *string `json:"room" validate:"omitempty,max=50"`
	Schedule      *string `json:"schedule" validate:"omitempty,max=255"`
	Semester      string  `json:"semester" validate:"required,min=1,max=50"`
	MaxStudents   int     `json:"maxStudents" validate:"required,min=1,max=1000"`
	StartDate     string  `json:"startDate" validate:"required,date"`
	EndDate       *string `json:"endDate" validate:"omitempty,date"`
	Status        *string `json:"status" validate:"omitempty,classroom_status"`
}

// ClassroomUpdateRequest only touches the fields that are present
type ClassroomUpdateRequest struct {
	ClassroomCode *string `json:"classroomCode" validate:"omitempty,classroom_code"`
	Name          *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string `json:"description" validate:"omitempty,max=2000"`
	TeacherID     *string `json:"teacherId" validate:"omitempty,uuid"`
	Subject       *string `json:"subject" validate:"omitempty,min=1,max=150"`
	Room          *string `json:"room" validate:"omitempty,max=50"`
	Schedule      *string `json:"schedule" validate:"omitempty,max=255"`
	Semester      *string `json:"semester" validate:"omitempty,min=1,max=50"`
	MaxStudents   *int    `json:"maxStudents" validate:"omitempty,min=1,max=1000"`
	StartDate     *string `json:"startDate" validate:"omitempty,date"`
	EndDate       *string `json:"endDate" validate:"omitempty,date"`
	Status        *string `json:"status" validate:"omitempty,classroom_status"`
}

type EnrollRequest struct {
	StudentID string `json:"studentId" validate:"required"`
}

// ===== STUDENTS =====

type StudentCreateRequest struct {
	Email        string   `json:"email" validate:"required,email,max=255"`
	Password     string   `json:"password" validate:"required,min=6,max=72"`
	FullName     string   `json:"fullName" validate:"required,min=2,max=100"`
	PhoneNumber  *string  `json:"phoneNumber" validate:"omitempty,max=20"`
	Address      *string  `json:"address" validate:"omitempty,max=255"`
	StudentID    string   `json:"studentId" validate:"required,min=1,max=20"`
	DateOfBirth  string   `json:"dateOfBirth" validate:"required,date"`
	Gender       string   `json:"gender" validate:"required,gender"`
	Major        string   `json:"major" validate:"required,min=1,max=150"`
	AcademicYear string   `json:"academicYear" validate:"required,min=1,max=20"`
	GPA          *float64 `json:"gpa" validate:"omitempty,min=0,max=4"`
}

type StudentUpdateRequest struct {
	Email        *string  `json:"email" validate:"omitempty,email,max=255"`
	Password     *string  `json:"password" validate:"omitempty,min=6,max=72"`
	FullName     *string  `json:"fullName" validate:"omitempty,min=2,max=100"`
	PhoneNumber  *string  `json:"phoneNumber" validate:"omitempty,max=20"`
	Address      *string  `json:"address" validate:"omitempty,max=255"`
	Avatar       *string  `json:"avatar" validate:"omitempty,max=500"`
	IsActive     *bool    `json:"isActive"`
	StudentID    *string  `json:"studentId" validate:"omitempty,min=1,max=20"`
	DateOfBirth  *string  `json:"dateOfBirth" validate:"omitempty,date"`
	Gender       *string  `json:"gender" validate:"omitempty,gender"`
	Major        *string  `json:"major" validate:"omitempty,min=1,max=150"`
	AcademicYear *string  `json:"academicYear" validate:"omitempty,min=1,max=20"`
	GPA          *float64 `json:"gpa" validate:"omitempty,min=0,max=4"`
}
