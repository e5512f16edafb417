package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "classroom-service"
	EventVersion = "1.0"
	TopicSuffix  = "classroom-events"
)

type EventType string

const (
	ClassroomCreated EventType = "classroom.created"
	ClassroomUpdated EventType = "classroom.updated"
	ClassroomDeleted EventType = "classroom.deleted"
	StudentEnrolled  EventType = "student.enrolled"
	StudentCreated   EventType = "student.created"
	StudentUpdated   EventType = "student.updated"
	StudentDeleted   EventType = "student.deleted"
	UserRegistered   EventType = "user.registered"
)

// Event is the envelope every domain event is published in
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent wraps data in an envelope; data must be JSON-encodable
func NewEvent(eventType EventType, data interface{}) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      payload,
	}, nil
}

// Topic returns the topic name for the given deployment prefix
func Topic(prefix string) string {
	return prefix + TopicSuffix
}

// Payloads

type ClassroomEventData struct {
	ClassroomID   string `json:"classroomId"`
	ClassroomCode string `json:"classroomCode"`
	TeacherID     string `json:"teacherId"`
	ActorID       string `json:"actorId,omitempty"`
}

type EnrollmentEventData struct {
	EnrollmentID string    `json:"enrollmentId"`
	ClassroomID  string    `json:"classroomId"`
	StudentID    string    `json:"studentId"`
	EnrolledAt   time.Time `json:"enrolledAt"`
	ActorID      string    `json:"actorId,omitempty"`
}

type StudentEventData struct {
	StudentID   string   `json:"studentId"`
	StudentCode string   `json:"studentCode"`
	UserID      string   `json:"userId"`
	Changed     []string `json:"changed,omitempty"`
	ActorID     string   `json:"actorId,omitempty"`
}

type UserEventData struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}
