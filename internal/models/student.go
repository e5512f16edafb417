package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// ParseGender accepts any letter case and returns the stored form
func ParseGender(s string) (Gender, bool) {
	g := Gender(strings.ToUpper(strings.TrimSpace(s)))
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return g, true
	}
	return "", false
}

// StudentProfile is the 1:1 extension of a STUDENT user.
// StudentCode is the institutional code (e.g. SV001) exposed as "studentId";
// ID is the row key that enrollments reference. The Go field is not named
// StudentID so gorm cannot mistake Enrollment.Student for a has-one.
type StudentProfile struct {
	ID           string         `json:"id" gorm:"primaryKey;size:36"`
	UserID       string         `json:"userId" gorm:"uniqueIndex;not null;size:36"`
	StudentCode  string         `json:"studentId" gorm:"column:student_id;uniqueIndex;not null;size:20"`
	DateOfBirth  datatypes.Date `json:"dateOfBirth" gorm:"not null"`
	Gender       Gender         `json:"gender" gorm:"not null;size:10"`
	Major        string         `json:"major" gorm:"not null;size:150"`
	AcademicYear string         `json:"academicYear" gorm:"not null;size:20;index"`
	GPA          float64        `json:"gpa" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	User        *User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Enrollments []Enrollment `json:"enrollments,omitempty" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`

	// Computed fields (not stored)
	EnrollmentCount int64 `json:"enrollmentCount" gorm:"-"`
}

func (StudentProfile) TableName() string {
	return "students"
}

func (s *StudentProfile) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
