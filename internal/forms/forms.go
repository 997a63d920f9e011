// Package forms holds the request payloads accepted by the HTTP API and CLI,
// with the required-field rules checked before any store is called.
package forms

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aryan0dhankhar/coursehub/internal/domain"
)

// MissingFieldsMessage is shown to users when a form is incomplete
const MissingFieldsMessage = "Please fill in all required fields"

// DefaultThumbnail is used for courses created without a thumbnail
const DefaultThumbnail = "https://images.unsplash.com/photo-1501504905252-473c47e087f8?ixlib=rb-1.2.1&auto=format&fit=crop&w=800&q=80"

// ErrMissingFields is reported for any missing or malformed field
var ErrMissingFields = errors.New("missing required fields")

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoginForm is the login payload
type LoginForm struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterForm is the registration payload
type RegisterForm struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"required,oneof=instructor student"`
}

// CourseForm is the create-course payload. The owner comes from the session.
type CourseForm struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description" validate:"required"`
	Thumbnail   string `json:"thumbnail"`
}

// VideoForm is the add-video payload
type VideoForm struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description" validate:"required"`
	URL         string `json:"url"         validate:"required"`
	Duration    string `json:"duration"    validate:"required"`
}

// Validate trims string fields in place and checks the struct rules.
// Whitespace-only values count as missing. Credentials are left as typed
// since they are matched exactly.
func Validate(form any) error {
	switch f := form.(type) {
	case *LoginForm:
		if blank(f.Email, f.Password) {
			return ErrMissingFields
		}
	case *RegisterForm:
		f.Name = strings.TrimSpace(f.Name)
		f.Role = strings.TrimSpace(f.Role)
		if blank(f.Email, f.Password) {
			return ErrMissingFields
		}
	case *CourseForm:
		f.Title = strings.TrimSpace(f.Title)
		f.Description = strings.TrimSpace(f.Description)
		f.Thumbnail = strings.TrimSpace(f.Thumbnail)
	case *VideoForm:
		f.Title = strings.TrimSpace(f.Title)
		f.Description = strings.TrimSpace(f.Description)
		f.URL = strings.TrimSpace(f.URL)
		f.Duration = strings.TrimSpace(f.Duration)
	}

	if err := validate.Struct(form); err != nil {
		return ErrMissingFields
	}
	return nil
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// Draft converts the form into a course draft owned by instructor
func (f CourseForm) Draft(instructor domain.User) domain.CourseDraft {
	thumbnail := strings.TrimSpace(f.Thumbnail)
	if thumbnail == "" {
		thumbnail = DefaultThumbnail
	}
	return domain.CourseDraft{
		Title:          f.Title,
		Description:    f.Description,
		InstructorID:   instructor.ID,
		InstructorName: instructor.Name,
		Thumbnail:      thumbnail,
	}
}

// Draft converts the form into a video draft
func (f VideoForm) Draft() domain.VideoDraft {
	return domain.VideoDraft{
		Title:       f.Title,
		Description: f.Description,
		URL:         f.URL,
		Duration:    f.Duration,
	}
}
