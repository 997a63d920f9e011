package repository

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/aryan0dhankhar/coursehub/internal/domain"
)

// MemoryUserRepository implements domain.UserRepository in process memory.
// The registered-user set is rebuilt from seed data on every start.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	users   []*domain.User          // registration order
	byEmail map[string]*domain.User // exact, case-sensitive
	logger  *slog.Logger
}

// NewMemoryUserRepository creates a user repository holding a copy of seed
func NewMemoryUserRepository(seed []domain.User, logger *slog.Logger) *MemoryUserRepository {
	if logger == nil {
		logger = slog.Default()
	}

	r := &MemoryUserRepository{
		byEmail: make(map[string]*domain.User, len(seed)),
		logger:  logger,
	}
	for i := range seed {
		if err := r.Create(&seed[i]); err != nil {
			logger.Warn("skipping seed user", slog.String("email", seed[i].Email), slog.String("error", err.Error()))
		}
	}
	return r
}

// Create adds a user; the email must not be taken
func (r *MemoryUserRepository) Create(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return fmt.Errorf("email %s: %w", user.Email, domain.ErrDuplicate)
	}

	stored := *user
	r.users = append(r.users, &stored)
	r.byEmail[stored.Email] = &stored

	r.logger.Debug("user created", slog.String("user_id", stored.ID), slog.String("role", string(stored.Role)))
	return nil
}

// GetByEmail retrieves a user by exact email
func (r *MemoryUserRepository) GetByEmail(email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.byEmail[email]
	if !exists {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	out := *user
	return &out, nil
}

// GetByID retrieves a user by ID
func (r *MemoryUserRepository) GetByID(id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.ID == id {
			out := *user
			return &out, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
}

// List returns copies of all users in registration order
func (r *MemoryUserRepository) List() ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		u := *user
		out = append(out, &u)
	}
	return out, nil
}
