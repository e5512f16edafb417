package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClassroomStatus string

const (
	ClassroomActive    ClassroomStatus = "ACTIVE"
	ClassroomInactive  ClassroomStatus = "INACTIVE"
	ClassroomCompleted ClassroomStatus = "COMPLETED"
)

type Classroom struct {
	ID            string          `json:"id" gorm:"primaryKey;size:36"`
	ClassroomCode string          `json:"classroomCode" gorm:"uniqueIndex;not null;size:20"`
	Name          string          `json:"name" gorm:"not null;size:200"`
	Description   *string         `json:"description" gorm:"type:text"`
	TeacherID     string          `json:"teacherId" gorm:"not null;size:36;index"`
	Subject       string          `json:"subject" gorm:"not null;size:150"`
	Room          *string         `json:"room" gorm:"size:50"`
	Schedule      *string         `json:"schedule" gorm:"size:255"`
	Semester      string          `json:"semester" gorm:"not null;size:50;index"`
	MaxStudents   int             `json:"maxStudents" gorm:"not null;check:chk_classrooms_max_students,max_students > 0"`
	StartDate     time.Time       `json:"startDate" gorm:"not null"`
	EndDate       *time.Time      `json:"endDate"`
	Status        ClassroomStatus `json:"status" gorm:"not null;size:20;default:ACTIVE;index"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Teacher     *User        `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	Enrollments []Enrollment `json:"enrollments,omitempty" gorm:"foreignKey:ClassroomID;constraint:OnDelete:CASCADE"`

	// Computed fields (not stored)
	EnrollmentCount int64 `json:"enrollmentCount" gorm:"-"`
}

func (Classroom) TableName() string {
	return "classrooms"
}

func (c *Classroom) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = ClassroomActive
	}
	return nil
}

// HasSeat reports whether one more enrollment fits under MaxStudents
func (c *Classroom) HasSeat(enrolled int64) bool {
	return enrolled < int64(c.MaxStudents)
}
