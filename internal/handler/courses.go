package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/coursehub/internal/forms"
	"github.com/aryan0dhankhar/coursehub/internal/security"
	"github.com/aryan0dhankhar/coursehub/internal/security/middleware"
	"github.com/aryan0dhankhar/coursehub/internal/service"
)

// CoursesHandler serves the catalog
type CoursesHandler struct {
	catalog  *service.CatalogService
	identity *service.IdentityService
	authz    *security.AuthorizationService
	featured int
	logger   *slog.Logger
}

// NewCoursesHandler creates a new courses handler. featured is the number
// of courses returned by the featured listing.
func NewCoursesHandler(
	catalog *service.CatalogService,
	identity *service.IdentityService,
	authz *security.AuthorizationService,
	featured int,
	logger *slog.Logger,
) *CoursesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CoursesHandler{
		catalog:  catalog,
		identity: identity,
		authz:    authz,
		featured: featured,
		logger:   logger,
	}
}

// List handles GET /api/courses?q=
func (h *CoursesHandler) List(w http.ResponseWriter, r *http.Request) {
	user, authenticated := h.identity.CurrentUser()
	writeJSON(w, http.StatusOK, toCourseDetails(h.catalog.SearchCourses(r.URL.Query().Get("q")), user, authenticated))
}

// Featured handles GET /api/courses/featured
func (h *CoursesHandler) Featured(w http.ResponseWriter, r *http.Request) {
	user, authenticated := h.identity.CurrentUser()
	writeJSON(w, http.StatusOK, toCourseDetails(h.catalog.FeaturedCourses(h.featured), user, authenticated))
}

// Get handles GET /api/courses/{id}
func (h *CoursesHandler) Get(w http.ResponseWriter, r *http.Request) {
	course, found := h.catalog.GetCourse(r.PathValue("id"))
	if !found {
		writeError(w, http.StatusNotFound, "Course not found")
		return
	}
	user, authenticated := h.identity.CurrentUser()
	writeJSON(w, http.StatusOK, toCourseDetail(course, user, authenticated))
}

// Create handles POST /api/courses. The session user becomes the owner.
func (h *CoursesHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	var req forms.CourseForm
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := forms.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, forms.MissingFieldsMessage)
		return
	}

	course, err := h.catalog.AddCourse(r.Context(), req.Draft(user))
	if err != nil {
		h.logger.Error("failed to add course", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to create course")
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

// AddVideo handles POST /api/courses/{id}/videos. Only the owner may add videos.
func (h *CoursesHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	courseID := r.PathValue("id")
	course, found := h.catalog.GetCourse(courseID)
	if !found {
		writeError(w, http.StatusNotFound, "Course not found")
		return
	}
	if err := h.authz.ValidateCourseOwnership(user, course); err != nil {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	var req forms.VideoForm
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := forms.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, forms.MissingFieldsMessage)
		return
	}

	if err := h.catalog.AddVideoToCourse(r.Context(), courseID, req.Draft()); err != nil {
		h.logger.Error("failed to add video", slog.String("course_id", courseID), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to add video")
		return
	}

	updated, _ := h.catalog.GetCourse(courseID)
	writeJSON(w, http.StatusCreated, updated)
}

// Enroll handles POST /api/courses/{id}/enroll for the session user
func (h *CoursesHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	courseID := r.PathValue("id")
	if _, found := h.catalog.GetCourse(courseID); !found {
		writeError(w, http.StatusNotFound, "Course not found")
		return
	}

	if err := h.catalog.EnrollInCourse(r.Context(), courseID, user.ID); err != nil {
		h.logger.Error("failed to enroll", slog.String("course_id", courseID), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to enroll")
		return
	}

	course, _ := h.catalog.GetCourse(courseID)
	writeJSON(w, http.StatusOK, toCourseDetail(course, user, true))
}
