package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/coursehub/internal/domain"
)

// SessionKey holds the JSON-encoded active user
const SessionKey = "currentUser"

// SessionRepository implements domain.SessionRepository on a key-value store
type SessionRepository struct {
	kv     domain.KeyValueStore
	logger *slog.Logger
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(kv domain.KeyValueStore, logger *slog.Logger) *SessionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionRepository{kv: kv, logger: logger}
}

// Load returns the persisted session user, or nil when there is none
func (r *SessionRepository) Load(ctx context.Context) (*domain.User, error) {
	data, ok, err := r.kv.Read(ctx, SessionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var user domain.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("session record: %w: %v", domain.ErrCorruptRecord, err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("session record without id: %w", domain.ErrCorruptRecord)
	}
	return &user, nil
}

// Save overwrites the session record
func (r *SessionRepository) Save(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.kv.Write(ctx, SessionKey, string(data)); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	r.logger.Debug("session saved", slog.String("user_id", user.ID))
	return nil
}

// Clear removes the session record
func (r *SessionRepository) Clear(ctx context.Context) error {
	if err := r.kv.Remove(ctx, SessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	r.logger.Debug("session cleared")
	return nil
}
