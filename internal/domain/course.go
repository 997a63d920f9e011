package domain

import (
	"context"
	"slices"
)

// Course represents a course in the catalog
type Course struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	InstructorID     string   `json:"instructorId"`
	InstructorName   string   `json:"instructorName"` // Copied from the owner at creation, never re-synced
	Thumbnail        string   `json:"thumbnail"`
	Videos           []Video  `json:"videos"`           // Lesson order
	EnrolledStudents []string `json:"enrolledStudents"` // No duplicates
}

// Video represents a lesson video owned by exactly one course
type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Duration    string `json:"duration"` // Display string such as "10:30"
}

// CourseDraft carries the caller-supplied fields of a new course
type CourseDraft struct {
	Title          string
	Description    string
	InstructorID   string
	InstructorName string
	Thumbnail      string
	Videos         []Video
}

// VideoDraft carries the caller-supplied fields of a new video
type VideoDraft struct {
	Title       string
	Description string
	URL         string
	Duration    string
}

// HasStudent reports whether studentID is on the enrollment roster
func (c Course) HasStudent(studentID string) bool {
	return slices.Contains(c.EnrolledStudents, studentID)
}

// Clone returns a deep copy. Nil slices come back empty so that the
// persisted record always carries [] rather than null.
func (c Course) Clone() Course {
	out := c
	out.Videos = make([]Video, len(c.Videos))
	copy(out.Videos, c.Videos)
	out.EnrolledStudents = make([]string, len(c.EnrolledStudents))
	copy(out.EnrolledStudents, c.EnrolledStudents)
	return out
}

// CatalogRepository persists the whole course catalog as one record.
// Load reports found=false when no catalog has been stored yet.
type CatalogRepository interface {
	Load(ctx context.Context) (courses []Course, found bool, err error)
	Save(ctx context.Context, courses []Course) error
}
