package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aryan0dhankhar/coursehub/internal/domain"
	"github.com/aryan0dhankhar/coursehub/internal/observability/metrics"
)

// ErrInvalidRole is returned by Register for a role other than instructor or student
var ErrInvalidRole = errors.New("invalid role")

// IdentityService owns the registered-user set and the single active session.
// Only the session is durable; registrations live as long as the process.
type IdentityService struct {
	mu         sync.RWMutex
	users      domain.UserRepository
	sessions   domain.SessionRepository
	current    *domain.User
	ids        IDGenerator
	events     Publisher
	revalidate bool
	logger     *slog.Logger
}

// IdentityOption configures an IdentityService
type IdentityOption func(*IdentityService)

// WithIdentityIDs overrides the id generator used by Register
func WithIdentityIDs(ids IDGenerator) IdentityOption {
	return func(s *IdentityService) { s.ids = ids }
}

// WithIdentityEvents publishes session changes to p
func WithIdentityEvents(p Publisher) IdentityOption {
	return func(s *IdentityService) { s.events = p }
}

// WithSessionRevalidation drops a restored session that does not match a
// registered user exactly.
func WithSessionRevalidation(enabled bool) IdentityOption {
	return func(s *IdentityService) { s.revalidate = enabled }
}

// NewIdentityService creates the identity store and restores the persisted session
func NewIdentityService(
	ctx context.Context,
	users domain.UserRepository,
	sessions domain.SessionRepository,
	logger *slog.Logger,
	opts ...IdentityOption,
) (*IdentityService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &IdentityService{
		users:    users,
		sessions: sessions,
		ids:      UUIDGenerator{},
		events:   noopPublisher{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.restore(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *IdentityService) restore(ctx context.Context) error {
	user, err := s.sessions.Load(ctx)
	if errors.Is(err, domain.ErrCorruptRecord) {
		s.logger.Warn("ignoring unreadable session record", slog.String("error", err.Error()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if user == nil {
		return nil
	}

	if s.revalidate && !s.matchesRegistered(user) {
		s.logger.Info("dropping restored session for unknown user", slog.String("user_id", user.ID))
		if err := s.sessions.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear stale session: %w", err)
		}
		return nil
	}

	s.current = user
	s.logger.Info("session restored", slog.String("user_id", user.ID), slog.String("role", string(user.Role)))
	return nil
}

func (s *IdentityService) matchesRegistered(user *domain.User) bool {
	registered, err := s.users.GetByID(user.ID)
	if err != nil {
		return false
	}
	return *registered == *user
}

// Login makes the user with exactly this email and password the session
// and returns it. It reports false, leaving the session unchanged, when no
// user matches.
func (s *IdentityService) Login(ctx context.Context, email, password string) (domain.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.users.GetByEmail(email)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && user.Password != password) {
		metrics.ObserveIdentity("login", "rejected")
		s.logger.Info("login rejected", slog.String("email", email))
		return domain.User{}, false, nil
	}
	if err != nil {
		metrics.ObserveIdentity("login", "error")
		return domain.User{}, false, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.sessions.Save(ctx, user); err != nil {
		metrics.ObserveIdentity("login", "error")
		return domain.User{}, false, err
	}
	s.current = user

	metrics.ObserveIdentity("login", "ok")
	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.events.Publish(domain.Event{Type: domain.EventSessionChanged, UserID: user.ID})
	return *user, true, nil
}

// Register creates a user, makes it the session and returns it. It reports
// false, changing nothing, when the email is already registered.
func (s *IdentityService) Register(ctx context.Context, name, email, password string, role domain.Role) (domain.User, bool, error) {
	if !role.Valid() {
		return domain.User{}, false, fmt.Errorf("register %q: %w", role, ErrInvalidRole)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.users.GetByEmail(email)
	if err == nil {
		metrics.ObserveIdentity("register", "rejected")
		s.logger.Info("registration rejected: email taken", slog.String("email", email))
		return domain.User{}, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		metrics.ObserveIdentity("register", "error")
		return domain.User{}, false, fmt.Errorf("failed to look up user: %w", err)
	}

	user := &domain.User{
		ID:       s.ids.NewID(),
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role,
	}

	if err := s.sessions.Save(ctx, user); err != nil {
		metrics.ObserveIdentity("register", "error")
		return domain.User{}, false, err
	}
	if err := s.users.Create(user); err != nil {
		s.rollbackSession(ctx)
		metrics.ObserveIdentity("register", "error")
		return domain.User{}, false, fmt.Errorf("failed to create user: %w", err)
	}
	s.current = user

	metrics.ObserveIdentity("register", "ok")
	s.logger.Info("user registered", slog.String("user_id", user.ID), slog.String("role", string(role)))
	s.events.Publish(domain.Event{Type: domain.EventSessionChanged, UserID: user.ID})
	return *user, true, nil
}

// rollbackSession puts the previous session record back after a failed
// registration. Caller holds mu.
func (s *IdentityService) rollbackSession(ctx context.Context) {
	var err error
	if s.current == nil {
		err = s.sessions.Clear(ctx)
	} else {
		err = s.sessions.Save(ctx, s.current)
	}
	if err != nil {
		s.logger.Error("failed to restore previous session record", slog.String("error", err.Error()))
	}
}

// Logout clears the session and its persisted record. Calling it while
// anonymous is fine.
func (s *IdentityService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Clear(ctx); err != nil {
		metrics.ObserveIdentity("logout", "error")
		return err
	}

	prev := s.current
	s.current = nil
	metrics.ObserveIdentity("logout", "ok")

	if prev != nil {
		s.logger.Info("user logged out", slog.String("user_id", prev.ID))
		s.events.Publish(domain.Event{Type: domain.EventSessionChanged, UserID: prev.ID})
	}
	return nil
}

// CurrentUser returns a copy of the session user, if any
func (s *IdentityService) CurrentUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return domain.User{}, false
	}
	return *s.current, true
}

// RegisteredUsers counts the registered-user set
func (s *IdentityService) RegisteredUsers() (int, error) {
	list, err := s.users.List()
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}
	return len(list), nil
}
