package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/coursehub/internal/domain"
	"github.com/aryan0dhankhar/coursehub/internal/forms"
	"github.com/aryan0dhankhar/coursehub/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/coursehub/internal/repository"
	"github.com/aryan0dhankhar/coursehub/internal/service"
	"github.com/aryan0dhankhar/coursehub/pkg/cache"
)

type testServer struct {
	handler  http.Handler
	identity *service.IdentityService
	catalog  *service.CatalogService
	broker   *service.Broker
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	log := logger.Discard()
	kv := cache.New()
	broker := service.NewBroker(log)

	identity, err := service.NewIdentityService(ctx,
		repository.NewMemoryUserRepository(service.DemoUsers(), log),
		repository.NewSessionRepository(kv, log),
		log,
		service.WithIdentityEvents(broker),
	)
	require.NoError(t, err)

	catalog := service.NewCatalogService(repository.NewCatalogRepository(kv, log), log, service.WithCatalogEvents(broker))
	require.NoError(t, catalog.Initialize(ctx))

	h := NewRouter(RouterConfig{
		Identity:       identity,
		Catalog:        catalog,
		Broker:         broker,
		Storage:        kv,
		StorageBackend: "memory",
		AllowedOrigins: []string{"*"},
		Featured:       3,
		Logger:         log,
	})
	return &testServer{handler: h, identity: identity, catalog: catalog, broker: broker}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, email string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/login", `{"email":"`+email+`","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/auth/session", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", `{"email":"student@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", `{"email":"student@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	user := decode[UserResponse](t, rec)
	assert.Equal(t, "2", user.ID)

	rec = s.do(t, http.MethodGet, "/api/auth/session", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRegisterEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/register", `{"name":"A","email":"a@x.com","password":"pw","role":"student"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, domain.RoleStudent, decode[UserResponse](t, rec).Role)

	rec = s.do(t, http.MethodPost, "/api/auth/register", `{"name":"B","email":"a@x.com","password":"pw2","role":"instructor"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/register", `{"name":"C","email":"c@x.com","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please fill in all required fields", decode[ErrorResponse](t, rec).Error)
}

func TestCourseBrowsing(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/courses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Course](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/courses?q=REACT", "")
	assert.Len(t, decode[[]domain.Course](t, rec), 1)
	rec = s.do(t, http.MethodGet, "/api/courses?q=haskell", "")
	assert.Empty(t, decode[[]domain.Course](t, rec))

	rec = s.do(t, http.MethodGet, "/api/courses/featured", "")
	assert.Len(t, decode[[]domain.Course](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/courses/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[CourseDetail](t, rec)
	assert.Equal(t, "Introduction to React", detail.Title)
	assert.False(t, detail.IsEnrolled)

	rec = s.do(t, http.MethodGet, "/api/courses/nonexistent", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCourseGuards(t *testing.T) {
	s := newTestServer(t)
	body := `{"title":"Go","description":"Concurrency"}`

	rec := s.do(t, http.MethodPost, "/api/courses", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	s.login(t, "student@example.com")
	rec = s.do(t, http.MethodPost, "/api/courses", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	s.login(t, "instructor@example.com")
	rec = s.do(t, http.MethodPost, "/api/courses", `{"title":"Go"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/courses", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	course := decode[domain.Course](t, rec)
	assert.Equal(t, "1", course.InstructorID)
	assert.Equal(t, "Admin", course.InstructorName)
	assert.Empty(t, course.EnrolledStudents)

	rec = s.do(t, http.MethodGet, "/api/instructor/courses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Course](t, rec), 2)
}

func TestAddVideoOwnership(t *testing.T) {
	s := newTestServer(t)
	video := `{"title":"Hooks","description":"useState","url":"https://example.com/v2","duration":"12:00"}`

	// The seed course belongs to instructor 1
	_, _, err := s.identity.Register(context.Background(), "Other", "other@example.com", "pw", domain.RoleInstructor)
	require.NoError(t, err)
	rec := s.do(t, http.MethodPost, "/api/courses/1/videos", video)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	s.login(t, "instructor@example.com")
	rec = s.do(t, http.MethodPost, "/api/courses/missing/videos", video)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/courses/1/videos", video)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	course := decode[domain.Course](t, rec)
	require.Len(t, course.Videos, 2)
	assert.Equal(t, "Hooks", course.Videos[1].Title)
}

func TestEnrollEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/courses/1/enroll", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, _, err := s.identity.Register(context.Background(), "New", "new@example.com", "pw", domain.RoleStudent)
	require.NoError(t, err)
	user, _ := s.identity.CurrentUser()

	for i := 0; i < 2; i++ {
		rec = s.do(t, http.MethodPost, "/api/courses/1/enroll", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	detail := decode[CourseDetail](t, rec)
	assert.True(t, detail.IsEnrolled)
	assert.Equal(t, []string{"2", user.ID}, detail.EnrolledStudents)

	rec = s.do(t, http.MethodGet, "/api/student/courses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Course](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/instructor/courses", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/courses/ghost/enroll", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProbes(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/healthz", "").Code)
	rec := s.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode[ReadinessResponse](t, rec).Status)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/metrics", "").Code)
}

func TestEventsFeed(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.broker.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, s.catalog.EnrollInCourse(context.Background(), "1", "42"))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event domain.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, domain.EventCourseEnrolled, event.Type)
	assert.Equal(t, "1", event.CourseID)
	assert.Equal(t, "42", event.UserID)
}

func TestCourseContentVisibility(t *testing.T) {
	s := newTestServer(t)
	const videoURL = "https://www.example.com/video1"

	detail := func() CourseDetail {
		t.Helper()
		rec := s.do(t, http.MethodGet, "/api/courses/1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		return decode[CourseDetail](t, rec)
	}

	// Anonymous callers see the outline only
	d := detail()
	assert.Empty(t, d.Videos)
	assert.Equal(t, 1, d.VideoCount)
	rec := s.do(t, http.MethodGet, "/api/courses", "")
	assert.NotContains(t, rec.Body.String(), videoURL)
	rec = s.do(t, http.MethodGet, "/api/courses/featured", "")
	assert.NotContains(t, rec.Body.String(), videoURL)

	// A student who has not enrolled
	_, _, err := s.identity.Register(context.Background(), "New", "new@example.com", "pw", domain.RoleStudent)
	require.NoError(t, err)
	d = detail()
	assert.Empty(t, d.Videos)
	assert.Equal(t, 1, d.VideoCount)

	// The same student after enrolling
	rec = s.do(t, http.MethodPost, "/api/courses/1/enroll", "")
	require.Equal(t, http.StatusOK, rec.Code)
	d = detail()
	require.Len(t, d.Videos, 1)
	assert.Equal(t, videoURL, d.Videos[0].URL)

	// Another instructor
	_, _, err = s.identity.Register(context.Background(), "Other", "other@example.com", "pw", domain.RoleInstructor)
	require.NoError(t, err)
	assert.Empty(t, detail().Videos)

	// The owner
	s.login(t, "instructor@example.com")
	d = detail()
	assert.True(t, d.IsOwner)
	require.Len(t, d.Videos, 1)
	rec = s.do(t, http.MethodGet, "/api/courses", "")
	assert.Contains(t, rec.Body.String(), videoURL)
}

func TestCreateCourseDefaultsThumbnail(t *testing.T) {
	s := newTestServer(t)
	s.login(t, "instructor@example.com")

	rec := s.do(t, http.MethodPost, "/api/courses", `{"title":"T","description":"D"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, forms.DefaultThumbnail, decode[domain.Course](t, rec).Thumbnail)

	rec = s.do(t, http.MethodPost, "/api/courses", `{"title":"T2","description":"D","thumbnail":"https://img.example.com/t2.png"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "https://img.example.com/t2.png", decode[domain.Course](t, rec).Thumbnail)
}

func TestLoginMatchesEmailAsTyped(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/login", `{"email":" student@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/register", `{"name":"Pad","email":"student@example.com ","password":"pw","role":"student"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "student@example.com ", decode[UserResponse](t, rec).Email)
}
