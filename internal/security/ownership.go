package security

import (
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/coursehub/internal/domain"
)

// ValidateCourseOwnership allows changes to a course only by the
// instructor who created it.
func (as *AuthorizationService) ValidateCourseOwnership(user domain.User, course domain.Course) error {
	if user.Role == domain.RoleInstructor && course.InstructorID == user.ID {
		return nil
	}

	as.logger.Warn("course access denied",
		slog.String("user_id", user.ID),
		slog.String("course_id", course.ID),
		slog.String("owner_id", course.InstructorID),
	)
	return fmt.Errorf("%w: you do not own course %s", ErrPermissionDenied, course.ID)
}
