package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aryan0dhankhar/coursehub/internal/domain"
	"github.com/aryan0dhankhar/coursehub/internal/observability/metrics"
)

// CatalogService owns the course catalog. Every mutation rewrites the
// whole catalog record before the in-memory state changes.
type CatalogService struct {
	mu          sync.RWMutex
	repo        domain.CatalogRepository
	courses     []domain.Course
	initialized bool
	ids         IDGenerator
	events      Publisher
	seed        func() []domain.Course
	logger      *slog.Logger
}

// CatalogStats summarises catalog size
type CatalogStats struct {
	Courses     int
	Videos      int
	Enrollments int
}

// CatalogOption configures a CatalogService
type CatalogOption func(*CatalogService)

// WithCatalogIDs overrides the id generator for courses and videos
func WithCatalogIDs(ids IDGenerator) CatalogOption {
	return func(s *CatalogService) { s.ids = ids }
}

// WithCatalogEvents publishes catalog changes to p
func WithCatalogEvents(p Publisher) CatalogOption {
	return func(s *CatalogService) { s.events = p }
}

// WithSeed replaces the catalog stored when none exists yet
func WithSeed(seed func() []domain.Course) CatalogOption {
	return func(s *CatalogService) { s.seed = seed }
}

// NewCatalogService creates the catalog store. Call Initialize before
// reading; mutations initialize on demand.
func NewCatalogService(repo domain.CatalogRepository, logger *slog.Logger, opts ...CatalogOption) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &CatalogService{
		repo:   repo,
		ids:    UUIDGenerator{},
		events: noopPublisher{},
		seed:   DemoCatalog,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads the stored catalog, or stores the seed catalog if there is none
func (s *CatalogService) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initLocked(ctx)
}

func (s *CatalogService) initLocked(ctx context.Context) error {
	if s.initialized {
		return nil
	}

	courses, found, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	if !found {
		courses = s.seed()
		if err := s.repo.Save(ctx, courses); err != nil {
			return fmt.Errorf("failed to store seed catalog: %w", err)
		}
		s.logger.Info("catalog seeded", slog.Int("courses", len(courses)))
	} else {
		s.logger.Info("catalog loaded", slog.Int("courses", len(courses)))
	}

	s.courses = courses
	s.initialized = true
	return nil
}

// commit persists next and then makes it the live catalog. Caller holds mu.
func (s *CatalogService) commit(ctx context.Context, op string, next []domain.Course) error {
	if err := s.repo.Save(ctx, next); err != nil {
		metrics.ObserveCatalogMutation(op, "error")
		return err
	}
	s.courses = next
	metrics.ObserveCatalogMutation(op, "ok")
	return nil
}

// snapshot returns a slice header copy of the catalog that can be appended
// to or have elements replaced without touching live state. Caller holds mu.
func (s *CatalogService) snapshot(extra int) []domain.Course {
	next := make([]domain.Course, len(s.courses), len(s.courses)+extra)
	copy(next, s.courses)
	return next
}

func (s *CatalogService) indexOf(id string) int {
	for i := range s.courses {
		if s.courses[i].ID == id {
			return i
		}
	}
	return -1
}

// AddCourse appends a new course with a fresh id and an empty roster.
// Draft videos get fresh ids as well.
func (s *CatalogService) AddCourse(ctx context.Context, draft domain.CourseDraft) (domain.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.initLocked(ctx); err != nil {
		return domain.Course{}, err
	}

	course := domain.Course{
		ID:               s.ids.NewID(),
		Title:            draft.Title,
		Description:      draft.Description,
		InstructorID:     draft.InstructorID,
		InstructorName:   draft.InstructorName,
		Thumbnail:        draft.Thumbnail,
		Videos:           make([]domain.Video, 0, len(draft.Videos)),
		EnrolledStudents: []string{},
	}
	for _, v := range draft.Videos {
		v.ID = s.ids.NewID()
		course.Videos = append(course.Videos, v)
	}

	next := append(s.snapshot(1), course)
	if err := s.commit(ctx, "add_course", next); err != nil {
		return domain.Course{}, err
	}

	s.logger.Info("course added",
		slog.String("course_id", course.ID),
		slog.String("instructor_id", course.InstructorID),
	)
	s.events.Publish(domain.Event{Type: domain.EventCourseAdded, CourseID: course.ID, UserID: course.InstructorID})
	return course.Clone(), nil
}

// GetCourse looks a course up by exact id
func (s *CatalogService) GetCourse(id string) (domain.Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Course{}, false
	}
	return s.courses[i].Clone(), true
}

// Courses returns the whole catalog in order
func (s *CatalogService) Courses() []domain.Course {
	return s.filter(func(domain.Course) bool { return true })
}

// EnrollInCourse adds studentID to the course roster. An unknown course or
// an existing enrollment is a no-op.
func (s *CatalogService) EnrollInCourse(ctx context.Context, courseID, studentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.initLocked(ctx); err != nil {
		return err
	}

	i := s.indexOf(courseID)
	if i < 0 || s.courses[i].HasStudent(studentID) {
		metrics.ObserveCatalogMutation("enroll", "noop")
		return nil
	}

	updated := s.courses[i].Clone()
	updated.EnrolledStudents = append(updated.EnrolledStudents, studentID)
	next := s.snapshot(0)
	next[i] = updated
	if err := s.commit(ctx, "enroll", next); err != nil {
		return err
	}

	s.logger.Info("student enrolled", slog.String("course_id", courseID), slog.String("student_id", studentID))
	s.events.Publish(domain.Event{Type: domain.EventCourseEnrolled, CourseID: courseID, UserID: studentID})
	return nil
}

// AddVideoToCourse appends a video with a fresh id. An unknown course is a no-op.
func (s *CatalogService) AddVideoToCourse(ctx context.Context, courseID string, draft domain.VideoDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.initLocked(ctx); err != nil {
		return err
	}

	i := s.indexOf(courseID)
	if i < 0 {
		metrics.ObserveCatalogMutation("add_video", "noop")
		return nil
	}

	video := domain.Video{
		ID:          s.ids.NewID(),
		Title:       draft.Title,
		Description: draft.Description,
		URL:         draft.URL,
		Duration:    draft.Duration,
	}
	updated := s.courses[i].Clone()
	updated.Videos = append(updated.Videos, video)
	next := s.snapshot(0)
	next[i] = updated
	if err := s.commit(ctx, "add_video", next); err != nil {
		return err
	}

	s.logger.Info("video added", slog.String("course_id", courseID), slog.String("video_id", video.ID))
	s.events.Publish(domain.Event{Type: domain.EventVideoAdded, CourseID: courseID, VideoID: video.ID})
	return nil
}

// GetInstructorCourses returns the courses owned by instructorID, in catalog order
func (s *CatalogService) GetInstructorCourses(instructorID string) []domain.Course {
	return s.filter(func(c domain.Course) bool { return c.InstructorID == instructorID })
}

// GetEnrolledCourses returns the courses whose roster holds studentID, in catalog order
func (s *CatalogService) GetEnrolledCourses(studentID string) []domain.Course {
	return s.filter(func(c domain.Course) bool { return c.HasStudent(studentID) })
}

// SearchCourses matches term case-insensitively against title or description.
// An empty term matches everything.
func (s *CatalogService) SearchCourses(term string) []domain.Course {
	needle := strings.ToLower(strings.TrimSpace(term))
	return s.filter(func(c domain.Course) bool {
		return strings.Contains(strings.ToLower(c.Title), needle) ||
			strings.Contains(strings.ToLower(c.Description), needle)
	})
}

// FeaturedCourses returns the first n courses
func (s *CatalogService) FeaturedCourses(n int) []domain.Course {
	all := s.Courses()
	if n < 0 {
		n = 0
	}
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// IsEnrolled reports whether studentID is on the roster of courseID
func (s *CatalogService) IsEnrolled(courseID, studentID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(courseID)
	return i >= 0 && s.courses[i].HasStudent(studentID)
}

// Stats counts courses, videos and enrollments
func (s *CatalogService) Stats() CatalogStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := CatalogStats{Courses: len(s.courses)}
	for _, c := range s.courses {
		stats.Videos += len(c.Videos)
		stats.Enrollments += len(c.EnrolledStudents)
	}
	return stats
}

func (s *CatalogService) filter(keep func(domain.Course) bool) []domain.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Course{}
	for _, c := range s.courses {
		if keep(c) {
			out = append(out, c.Clone())
		}
	}
	return out
}

// IsOwner reports whether user is the instructor who owns course
func IsOwner(course domain.Course, user domain.User) bool {
	return user.Role == domain.RoleInstructor && course.InstructorID == user.ID
}

// CanViewContent reports whether user may see the lessons of course:
// its enrolled students and its owner may, everyone else sees the outline.
func CanViewContent(course domain.Course, user domain.User) bool {
	if user.ID == "" {
		return false
	}
	return course.HasStudent(user.ID) || IsOwner(course, user)
}
