package security

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aryan0dhankhar/coursehub/internal/domain"
)

// ErrPermissionDenied is returned when a role lacks a permission
var ErrPermissionDenied = errors.New("permission denied")

// Permission represents an action permission
type Permission string

const (
	PermCreateCourse            Permission = "create_course"
	PermAddVideo                Permission = "add_video"
	PermViewInstructorDashboard Permission = "view_instructor_dashboard"
	PermViewStudentDashboard    Permission = "view_student_dashboard"
	PermEnroll                  Permission = "enroll"
)

// RolePermissions maps roles to their permissions.
// Enrolling only needs a session, so both roles carry it.
var RolePermissions = map[domain.Role][]Permission{
	domain.RoleInstructor: {
		PermCreateCourse,
		PermAddVideo,
		PermViewInstructorDashboard,
		PermEnroll,
	},
	domain.RoleStudent: {
		PermViewStudentDashboard,
		PermEnroll,
	},
}

// AuthorizationService handles authorization checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role domain.Role, permission Permission) bool {
	return slices.Contains(RolePermissions[role], permission)
}

// ValidatePermission validates that a role has a specific permission
func (as *AuthorizationService) ValidatePermission(role domain.Role, permission Permission) error {
	if !as.HasPermission(role, permission) {
		as.logger.Warn("permission denied",
			slog.String("role", string(role)),
			slog.String("permission", string(permission)),
		)
		return fmt.Errorf("%w: %s role cannot %s", ErrPermissionDenied, role, permission)
	}
	return nil
}

// GetRolePermissions returns all permissions for a role
func (as *AuthorizationService) GetRolePermissions(role domain.Role) []Permission {
	return RolePermissions[role]
}
