package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv_records (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)
`

// KVStore keeps durable key-value records in a Postgres table
type KVStore struct {
	pool   *ConnectionPool
	logger *slog.Logger
}

// NewKVStore creates the kv_records table if needed
func NewKVStore(ctx context.Context, pool *ConnectionPool, logger *slog.Logger) (*KVStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := pool.GetDB().ExecContext(ctx, kvSchema); err != nil {
		return nil, fmt.Errorf("failed to create kv_records: %w", err)
	}
	return &KVStore{pool: pool, logger: logger}, nil
}

// Read retrieves a value; a missing key is reported as ok=false
func (s *KVStore) Read(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.pool.GetDB().QueryRowContext(ctx,
		`SELECT value FROM kv_records WHERE key = $1`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.logger.Error("failed to read kv record",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Write upserts a value
func (s *KVStore) Write(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_records (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	if _, err := s.pool.GetDB().ExecContext(ctx, query, key, value); err != nil {
		s.logger.Error("failed to write kv record",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Remove deletes a key
func (s *KVStore) Remove(ctx context.Context, key string) error {
	if _, err := s.pool.GetDB().ExecContext(ctx, `DELETE FROM kv_records WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Ping checks the pool
func (s *KVStore) Ping(ctx context.Context) error {
	return s.pool.Health(ctx)
}

// Close closes the pool
func (s *KVStore) Close() error {
	return s.pool.Close()
}
