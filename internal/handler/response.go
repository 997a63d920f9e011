package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aryan0dhankhar/coursehub/internal/domain"
	"github.com/aryan0dhankhar/coursehub/internal/service"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// UserResponse is a user without the password
type UserResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// CourseDetail is a course plus how the session user relates to it.
// Videos is empty unless the user is enrolled or owns the course;
// VideoCount is always set.
type CourseDetail struct {
	domain.Course
	VideoCount int  `json:"videoCount"`
	IsEnrolled bool `json:"isEnrolled"`
	IsOwner    bool `json:"isOwner"`
}

func toCourseDetail(c domain.Course, user domain.User, authenticated bool) CourseDetail {
	d := CourseDetail{Course: c, VideoCount: len(c.Videos)}
	if authenticated {
		d.IsEnrolled = c.HasStudent(user.ID)
		d.IsOwner = service.IsOwner(c, user)
	}
	if !authenticated || !service.CanViewContent(c, user) {
		d.Videos = []domain.Video{}
	}
	return d
}

func toCourseDetails(courses []domain.Course, user domain.User, authenticated bool) []CourseDetail {
	out := make([]CourseDetail, 0, len(courses))
	for _, c := range courses {
		out = append(out, toCourseDetail(c, user, authenticated))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
