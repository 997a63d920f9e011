package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/coursehub/internal/domain"
	"github.com/aryan0dhankhar/coursehub/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/coursehub/internal/repository"
)

func newCatalog(t *testing.T, kv *failingKV, opts ...CatalogOption) (*CatalogService, *recorder) {
	t.Helper()
	log := logger.Discard()
	events := &recorder{}
	opts = append([]CatalogOption{
		WithCatalogIDs(&seqIDs{prefix: "id"}),
		WithCatalogEvents(events),
	}, opts...)

	s := NewCatalogService(repository.NewCatalogRepository(kv, log), log, opts...)
	require.NoError(t, s.Initialize(context.Background()))
	return s, events
}

func TestInitializeSeedsAndPersists(t *testing.T) {
	kv := newFailingKV()
	s, _ := newCatalog(t, kv)

	courses := s.Courses()
	require.Len(t, courses, 1)
	c := courses[0]
	assert.Equal(t, "1", c.ID)
	assert.Equal(t, "Introduction to React", c.Title)
	assert.Equal(t, "John Instructor", c.InstructorName)
	assert.Equal(t, []string{"2"}, c.EnrolledStudents)
	require.Len(t, c.Videos, 1)
	assert.Equal(t, "React Fundamentals", c.Videos[0].Title)
	assert.Equal(t, "10:30", c.Videos[0].Duration)

	_, stored, err := kv.Read(context.Background(), repository.CatalogKey)
	require.NoError(t, err)
	assert.True(t, stored, "seed persisted immediately")
}

func TestInitializeLoadsExistingCatalog(t *testing.T) {
	kv := newFailingKV()
	ctx := context.Background()
	require.NoError(t, kv.Cache.Write(ctx, repository.CatalogKey,
		`[{"id":"a","title":"Go","description":"d","instructorId":"7","instructorName":"Rob","thumbnail":"","videos":[],"enrolledStudents":["3"]}]`))

	s, _ := newCatalog(t, kv)
	courses := s.Courses()
	require.Len(t, courses, 1)
	assert.Equal(t, "a", courses[0].ID)
	assert.Equal(t, 0, kv.writeCount(), "loading must not rewrite the record")
}

func TestInitializeKeepsStoredEmptyCatalog(t *testing.T) {
	kv := newFailingKV()
	require.NoError(t, kv.Cache.Write(context.Background(), repository.CatalogKey, `[]`))

	s, _ := newCatalog(t, kv)
	assert.Empty(t, s.Courses())
}

func TestEnrollScenario(t *testing.T) {
	s, events := newCatalog(t, newFailingKV())
	ctx := context.Background()

	require.NoError(t, s.EnrollInCourse(ctx, "1", "2"))
	c, _ := s.GetCourse("1")
	assert.Equal(t, []string{"2"}, c.EnrolledStudents)

	require.NoError(t, s.EnrollInCourse(ctx, "1", "3"))
	c, _ = s.GetCourse("1")
	assert.Equal(t, []string{"2", "3"}, c.EnrolledStudents)

	assert.Equal(t, []domain.EventType{domain.EventCourseEnrolled}, events.types())
}

func TestEnrollIsIdempotent(t *testing.T) {
	kv := newFailingKV()
	s, _ := newCatalog(t, kv)
	ctx := context.Background()

	require.NoError(t, s.EnrollInCourse(ctx, "1", "9"))
	once, _ := s.GetCourse("1")
	writes := kv.writeCount()

	require.NoError(t, s.EnrollInCourse(ctx, "1", "9"))
	twice, _ := s.GetCourse("1")

	assert.Equal(t, once.EnrolledStudents, twice.EnrolledStudents)
	assert.Equal(t, writes, kv.writeCount(), "no-op must not write")
}

func TestEnrollUnknownCourseIsNoop(t *testing.T) {
	kv := newFailingKV()
	s, events := newCatalog(t, kv)
	before := s.Courses()
	writes := kv.writeCount()

	assert.NoError(t, s.EnrollInCourse(context.Background(), "nonexistent", "2"))
	assert.Equal(t, before, s.Courses())
	assert.Equal(t, writes, kv.writeCount())
	assert.Empty(t, events.types())
}

func TestAddCourseScenario(t *testing.T) {
	s, events := newCatalog(t, newFailingKV())
	ctx := context.Background()

	created, err := s.AddCourse(ctx, domain.CourseDraft{
		Title:          "T",
		Description:    "D",
		InstructorID:   "1",
		InstructorName: "Admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", created.ID)

	got, found := s.GetCourse(created.ID)
	require.True(t, found)
	assert.Equal(t, "T", got.Title)
	assert.NotNil(t, got.EnrolledStudents)
	assert.Empty(t, got.EnrolledStudents)
	assert.NotNil(t, got.Videos)
	assert.Empty(t, got.Videos)

	courses := s.Courses()
	assert.Equal(t, created.ID, courses[len(courses)-1].ID, "appended at the end")
	assert.Equal(t, []domain.EventType{domain.EventCourseAdded}, events.types())
}

func TestAddCourseAssignsDraftVideoIDs(t *testing.T) {
	s, _ := newCatalog(t, newFailingKV())

	created, err := s.AddCourse(context.Background(), domain.CourseDraft{
		Title:  "With videos",
		Videos: []domain.Video{{ID: "client-chosen", Title: "one"}, {Title: "two"}},
	})
	require.NoError(t, err)
	require.Len(t, created.Videos, 2)
	assert.Equal(t, "id-2", created.Videos[0].ID)
	assert.Equal(t, "id-3", created.Videos[1].ID)
	assert.Equal(t, "one", created.Videos[0].Title)
}

func TestAddVideoAppendsInOrder(t *testing.T) {
	s, _ := newCatalog(t, newFailingKV())
	ctx := context.Background()

	titles := []string{"Hooks", "State", "Effects"}
	for _, title := range titles {
		require.NoError(t, s.AddVideoToCourse(ctx, "1", domain.VideoDraft{
			Title:       title,
			Description: "d",
			URL:         "https://example.com/" + title,
			Duration:    "5:00",
		}))
	}

	c, _ := s.GetCourse("1")
	require.Len(t, c.Videos, 1+len(titles))
	ids := map[string]bool{}
	for i, v := range c.Videos {
		assert.False(t, ids[v.ID], "video id %s reused", v.ID)
		ids[v.ID] = true
		if i > 0 {
			assert.Equal(t, titles[i-1], v.Title)
		}
	}
}

func TestAddVideoIDsDistinctAcrossCatalog(t *testing.T) {
	s, _ := newCatalog(t, newFailingKV())
	ctx := context.Background()

	other, err := s.AddCourse(ctx, domain.CourseDraft{Title: "Other", InstructorID: "1"})
	require.NoError(t, err)
	require.NoError(t, s.AddVideoToCourse(ctx, "1", domain.VideoDraft{Title: "a"}))
	require.NoError(t, s.AddVideoToCourse(ctx, other.ID, domain.VideoDraft{Title: "b"}))

	seen := map[string]bool{}
	for _, c := range s.Courses() {
		for _, v := range c.Videos {
			assert.False(t, seen[v.ID], "video id %s reused", v.ID)
			seen[v.ID] = true
		}
	}
	assert.Len(t, seen, 3)
}

func TestNotFoundCases(t *testing.T) {
	kv := newFailingKV()
	s, _ := newCatalog(t, kv)
	writes := kv.writeCount()

	_, found := s.GetCourse("nonexistent")
	assert.False(t, found)

	assert.NoError(t, s.AddVideoToCourse(context.Background(), "nonexistent", domain.VideoDraft{Title: "v"}))
	assert.Equal(t, writes, kv.writeCount())
	assert.Len(t, s.Courses(), 1)
}

func TestInstructorAndEnrolledCoursesPreserveOrder(t *testing.T) {
	s, _ := newCatalog(t, newFailingKV())
	ctx := context.Background()

	a, err := s.AddCourse(ctx, domain.CourseDraft{Title: "A", InstructorID: "7"})
	require.NoError(t, err)
	_, err = s.AddCourse(ctx, domain.CourseDraft{Title: "B", InstructorID: "8"})
	require.NoError(t, err)
	c, err := s.AddCourse(ctx, domain.CourseDraft{Title: "C", InstructorID: "7"})
	require.NoError(t, err)

	mine := s.GetInstructorCourses("7")
	require.Len(t, mine, 2)
	assert.Equal(t, a.ID, mine[0].ID)
	assert.Equal(t, c.ID, mine[1].ID)

	require.NoError(t, s.EnrollInCourse(ctx, c.ID, "2"))
	enrolled := s.GetEnrolledCourses("2")
	require.Len(t, enrolled, 2)
	assert.Equal(t, "1", enrolled[0].ID)
	assert.Equal(t, c.ID, enrolled[1].ID)

	assert.Empty(t, s.GetInstructorCourses("nobody"))
	assert.NotNil(t, s.GetEnrolledCourses("nobody"))
}

func TestSearchAndFeatured(t *testing.T) {
	s, _ := newCatalog(t, newFailingKV())
	ctx := context.Background()

	_, err := s.AddCourse(ctx, domain.CourseDraft{Title: "Concurrency in Go", Description: "goroutines and channels"})
	require.NoError(t, err)
	_, err = s.AddCourse(ctx, domain.CourseDraft{Title: "SQL", Description: "Joins for REACT developers"})
	require.NoError(t, err)

	tests := []struct {
		term string
		want int
	}{
		{"", 3},
		{"react", 2},
		{"CHANNELS", 1},
		{"rust", 0},
	}
	for _, tt := range tests {
		assert.Len(t, s.SearchCourses(tt.term), tt.want, "term %q", tt.term)
	}

	featured := s.FeaturedCourses(2)
	require.Len(t, featured, 2)
	assert.Equal(t, "1", featured[0].ID)
	assert.Len(t, s.FeaturedCourses(10), 3)
	assert.Empty(t, s.FeaturedCourses(0))
}

func TestReadsReturnCopies(t *testing.T) {
	s, _ := newCatalog(t, newFailingKV())

	c, _ := s.GetCourse("1")
	c.EnrolledStudents[0] = "hacked"
	c.Videos[0].Title = "hacked"

	list := s.Courses()
	list[0].Title = "hacked"

	again, _ := s.GetCourse("1")
	assert.Equal(t, []string{"2"}, again.EnrolledStudents)
	assert.Equal(t, "React Fundamentals", again.Videos[0].Title)
	assert.Equal(t, "Introduction to React", again.Title)
}

func TestStorageFailureLeavesCatalogUnchanged(t *testing.T) {
	kv := newFailingKV()
	s, events := newCatalog(t, kv)
	ctx := context.Background()
	before := s.Courses()
	kv.setFailWrites(true)

	_, err := s.AddCourse(ctx, domain.CourseDraft{Title: "T"})
	assert.ErrorIs(t, err, errDiskFull)
	assert.ErrorIs(t, s.EnrollInCourse(ctx, "1", "5"), errDiskFull)
	assert.ErrorIs(t, s.AddVideoToCourse(ctx, "1", domain.VideoDraft{Title: "v"}), errDiskFull)

	assert.Equal(t, before, s.Courses())
	assert.Empty(t, events.types())
}

func TestMutationBeforeInitializeLoadsFirst(t *testing.T) {
	kv := newFailingKV()
	log := logger.Discard()
	s := NewCatalogService(repository.NewCatalogRepository(kv, log), log)

	require.NoError(t, s.EnrollInCourse(context.Background(), "1", "4"))
	assert.True(t, s.IsEnrolled("1", "4"))
	assert.True(t, s.IsEnrolled("1", "2"), "seed loaded before mutating")
}

func TestCatalogSurvivesRestart(t *testing.T) {
	kv := newFailingKV()
	ctx := context.Background()

	first, _ := newCatalog(t, kv)
	created, err := first.AddCourse(ctx, domain.CourseDraft{Title: "Persisted", InstructorID: "1"})
	require.NoError(t, err)
	require.NoError(t, first.AddVideoToCourse(ctx, created.ID, domain.VideoDraft{Title: "v"}))

	second, _ := newCatalog(t, kv, WithCatalogIDs(&seqIDs{prefix: "second"}))
	got, found := second.GetCourse(created.ID)
	require.True(t, found)
	assert.Len(t, got.Videos, 1)
	assert.Len(t, second.Courses(), 2)
}

func TestStatsAndOwnership(t *testing.T) {
	s, _ := newCatalog(t, newFailingKV())

	assert.Equal(t, CatalogStats{Courses: 1, Videos: 1, Enrollments: 1}, s.Stats())

	c, _ := s.GetCourse("1")
	assert.True(t, IsOwner(c, domain.User{ID: "1", Role: domain.RoleInstructor}))
	assert.False(t, IsOwner(c, domain.User{ID: "2", Role: domain.RoleInstructor}))
	assert.False(t, IsOwner(c, domain.User{ID: "1", Role: domain.RoleStudent}))
}

func TestCanViewContent(t *testing.T) {
	s, _ := newCatalog(t, newFailingKV())
	c, _ := s.GetCourse("1")

	tests := []struct {
		name string
		user domain.User
		want bool
	}{
		{"anonymous", domain.User{}, false},
		{"enrolled student", domain.User{ID: "2", Role: domain.RoleStudent}, true},
		{"other student", domain.User{ID: "9", Role: domain.RoleStudent}, false},
		{"owner", domain.User{ID: "1", Role: domain.RoleInstructor}, true},
		{"other instructor", domain.User{ID: "7", Role: domain.RoleInstructor}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanViewContent(c, tt.user))
		})
	}
}
