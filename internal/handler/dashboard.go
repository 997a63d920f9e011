package handler

import (
	"net/http"

	"github.com/aryan0dhankhar/coursehub/internal/security/middleware"
	"github.com/aryan0dhankhar/coursehub/internal/service"
)

// DashboardHandler serves the per-role course lists
type DashboardHandler struct {
	catalog *service.CatalogService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(catalog *service.CatalogService) *DashboardHandler {
	return &DashboardHandler{catalog: catalog}
}

// InstructorCourses handles GET /api/instructor/courses
func (h *DashboardHandler) InstructorCourses(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, h.catalog.GetInstructorCourses(user.ID))
}

// StudentCourses handles GET /api/student/courses
func (h *DashboardHandler) StudentCourses(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, h.catalog.GetEnrolledCourses(user.ID))
}
