package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "ACTIVE"
	EnrollmentCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentDropped   EnrollmentStatus = "DROPPED"
)

// Enrollment joins a StudentProfile to a Classroom. The pair is unique.
type Enrollment struct {
	ID          string           `json:"id" gorm:"primaryKey;size:36"`
	StudentID   string           `json:"studentId" gorm:"not null;size:36;uniqueIndex:idx_enrollments_student_classroom"`
	ClassroomID string           `json:"classroomId" gorm:"not null;size:36;uniqueIndex:idx_enrollments_student_classroom;index"`
	EnrolledAt  time.Time        `json:"enrolledAt" gorm:"not null"`
	Grade       *float64         `json:"grade"`
	Status      EnrollmentStatus `json:"status" gorm:"not null;size:20;default:ACTIVE"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Student   *StudentProfile `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Classroom *Classroom      `json:"classroom,omitempty" gorm:"foreignKey:ClassroomID"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now()
	}
	if e.Status == "" {
		e.Status = EnrollmentActive
	}
	return nil
}

// AllModels lists every persisted model in migration order
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&TeacherProfile{},
		&StudentProfile{},
		&Classroom{},
		&Enrollment{},
	}
}
