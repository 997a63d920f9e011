package domain

import "time"

// EventType names a store state change
type EventType string

const (
	EventSessionChanged EventType = "session.changed"
	EventCourseAdded    EventType = "course.added"
	EventCourseEnrolled EventType = "course.enrolled"
	EventVideoAdded     EventType = "course.video_added"
)

// Event is published after a store mutation has been persisted
type Event struct {
	Type     EventType `json:"type"`
	CourseID string    `json:"courseId,omitempty"`
	UserID   string    `json:"userId,omitempty"`
	VideoID  string    `json:"videoId,omitempty"`
	At       time.Time `json:"at"`
}
