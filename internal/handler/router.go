package handler

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aryan0dhankhar/coursehub/internal/observability/metrics"
	"github.com/aryan0dhankhar/coursehub/internal/security"
	"github.com/aryan0dhankhar/coursehub/internal/security/audit"
	"github.com/aryan0dhankhar/coursehub/internal/security/middleware"
	"github.com/aryan0dhankhar/coursehub/internal/security/ratelimit"
	"github.com/aryan0dhankhar/coursehub/internal/service"
)

// RouterConfig carries everything the HTTP API is built from
type RouterConfig struct {
	Identity       *service.IdentityService
	Catalog        *service.CatalogService
	Broker         *service.Broker // nil disables the change feed
	Storage        Pinger
	StorageBackend string
	Limiter        *ratelimit.Limiter // nil disables rate limiting
	AllowedOrigins []string
	Featured       int
	Logger         *slog.Logger
}

// NewRouter builds the API mux wrapped in the middleware chain
// request id -> metrics -> CORS -> rate limit -> audit.
// The websocket feed sits outside the chain since the wrapped writers
// cannot be hijacked.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	authz := security.NewAuthorizationService(log)
	auditLog := audit.NewLogger(log)

	authHandler := NewAuthHandler(cfg.Identity, log)
	coursesHandler := NewCoursesHandler(cfg.Catalog, cfg.Identity, authz, cfg.Featured, log)
	dashboardHandler := NewDashboardHandler(cfg.Catalog)
	healthHandler := NewHealthHandler(cfg.Storage, cfg.StorageBackend, log)

	session := middleware.RequireSession(cfg.Identity, auditLog)
	guarded := func(perm security.Permission, h http.HandlerFunc) http.Handler {
		return session(middleware.RequirePermission(authz, perm, auditLog)(h))
	}

	api := http.NewServeMux()
	api.HandleFunc("POST /api/auth/login", authHandler.Login)
	api.HandleFunc("POST /api/auth/register", authHandler.Register)
	api.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	api.HandleFunc("GET /api/auth/session", authHandler.Session)

	api.HandleFunc("GET /api/courses", coursesHandler.List)
	api.HandleFunc("GET /api/courses/featured", coursesHandler.Featured)
	api.HandleFunc("GET /api/courses/{id}", coursesHandler.Get)
	api.Handle("POST /api/courses", guarded(security.PermCreateCourse, coursesHandler.Create))
	api.Handle("POST /api/courses/{id}/videos", guarded(security.PermAddVideo, coursesHandler.AddVideo))
	api.Handle("POST /api/courses/{id}/enroll", guarded(security.PermEnroll, coursesHandler.Enroll))

	api.Handle("GET /api/instructor/courses", guarded(security.PermViewInstructorDashboard, dashboardHandler.InstructorCourses))
	api.Handle("GET /api/student/courses", guarded(security.PermViewStudentDashboard, dashboardHandler.StudentCourses))

	api.HandleFunc("GET /healthz", healthHandler.Health)
	api.HandleFunc("GET /readyz", healthHandler.Ready)
	api.Handle("GET /metrics", promhttp.Handler())

	var chain http.Handler = middleware.ValidateJSONContentType(log)(api)
	chain = middleware.AuditMiddleware(auditLog, cfg.Identity)(chain)
	if cfg.Limiter != nil {
		chain = middleware.RateLimitMiddleware(cfg.Limiter, log)(chain)
	}
	chain = middleware.CORS(cfg.AllowedOrigins)(chain)
	chain = metrics.HTTPMetricsMiddleware(chain)
	chain = middleware.RequestID(log)(chain)

	root := http.NewServeMux()
	if cfg.Broker != nil {
		root.Handle("GET /ws/events", NewEventsHandler(cfg.Broker, log, cfg.AllowedOrigins))
	}
	root.Handle("/", chain)
	return root
}
