package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// IsValid reports whether r is one of the known roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// ParseUserRole normalises a role name, e.g. "teacher" -> RoleTeacher
func ParseUserRole(s string) (UserRole, bool) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(s)))
	return role, role.IsValid()
}

type User struct {
	ID           string   `json:"id" gorm:"primaryKey;size:36"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string   `json:"-" gorm:"not null;size:255"`
	FullName     string   `json:"fullName" gorm:"not null;size:100"`
	Role         UserRole `json:"role" gorm:"not null;size:20;default:STUDENT;index"`

	// Profile info
	PhoneNumber *string `json:"phoneNumber" gorm:"size:20"`
	Address     *string `json:"address" gorm:"size:255"`
	Avatar      *string `json:"avatar" gorm:"size:500"`

	IsActive bool `json:"isActive" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	StudentProfile *StudentProfile `json:"studentProfile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	TeacherProfile *TeacherProfile `json:"teacherProfile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type TeacherProfile struct {
	ID             string `json:"id" gorm:"primaryKey;size:36"`
	UserID         string `json:"userId" gorm:"uniqueIndex;not null;size:36"`
	TeacherID      string `json:"teacherId" gorm:"uniqueIndex;not null;size:20"`
	Department     string `json:"department" gorm:"size:150"`
	Qualification  string `json:"qualification" gorm:"size:100"`
	Specialization string `json:"specialization" gorm:"size:150"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (TeacherProfile) TableName() string {
	return "teacher_profiles"
}

func (t *TeacherProfile) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
