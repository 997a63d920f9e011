package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/coursehub/internal/domain"
	"github.com/aryan0dhankhar/coursehub/internal/security"
	"github.com/aryan0dhankhar/coursehub/internal/security/audit"
	"github.com/aryan0dhankhar/coursehub/internal/security/ratelimit"
)

type UserContextKey struct{}

// SessionSource reports the active session user
type SessionSource interface {
	CurrentUser() (domain.User, bool)
}

// RequestID tags every request with an id, echoed in X-Request-ID, and
// logs its completion.
func RequestID(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", reqID)

			start := time.Now()
			next.ServeHTTP(w, r.WithContext(audit.WithRequestID(r.Context(), reqID)))

			log.Info("request completed",
				slog.String("request_id", reqID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Duration("duration_ms", time.Since(start)),
			)
		})
	}
}

// CORS answers preflight requests and sets the allow headers for the
// configured origins.
func CORS(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if originAllowed(allowed, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			} else if len(allowed) > 0 {
				w.Header().Set("Access-Control-Allow-Origin", allowed[0])
			}
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}

// RateLimitMiddleware limits requests per client address. Probe and
// metrics endpoints are exempt.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbe(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			client := clientAddr(r)
			if !limiter.Allow(client) {
				log.Warn("rate limit exceeded", slog.String("client", client), slog.String("path", r.URL.Path))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isProbe(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics"
}

func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// AuditMiddleware records every mutating API call with the acting user
// and its outcome. Login and register are attributed to the user they
// leave in the session.
func AuditMiddleware(auditLog *audit.Logger, sessions SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			actor, ok := sessions.CurrentUser()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			status := "success"
			if rec.status >= http.StatusBadRequest {
				status = "failure"
			} else if !ok {
				actor, _ = sessions.CurrentUser()
			}
			auditLog.LogAction(r.Context(), actor.ID, string(actor.Role), actionFor(r.URL.Path), "api", r.URL.Path, status, strconv.Itoa(rec.status))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func actionFor(path string) string {
	switch {
	case path == "/api/auth/login":
		return "login"
	case path == "/api/auth/register":
		return "register"
	case path == "/api/auth/logout":
		return "logout"
	case path == "/api/courses":
		return "create_course"
	case strings.HasSuffix(path, "/videos"):
		return "add_video"
	case strings.HasSuffix(path, "/enroll"):
		return "enroll"
	default:
		return "post"
	}
}

// RequireSession rejects anonymous requests with 401 and stores the
// session user in the request context.
func RequireSession(sessions SessionSource, auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := sessions.CurrentUser()
			if !ok {
				auditLog.LogDenied(r.Context(), "", "", "no session for "+r.URL.Path)
				writeError(w, http.StatusUnauthorized, "login required")
				return
			}
			ctx := context.WithValue(r.Context(), UserContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission rejects session users whose role lacks perm with 403.
// It must run inside RequireSession.
func RequirePermission(authz *security.AuthorizationService, perm security.Permission, auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "login required")
				return
			}
			if err := authz.ValidatePermission(user.Role, perm); err != nil {
				auditLog.LogDenied(r.Context(), user.ID, string(user.Role), err.Error())
				writeError(w, http.StatusForbidden, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext returns the user stored by RequireSession
func UserFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(UserContextKey{}).(domain.User)
	return user, ok
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
