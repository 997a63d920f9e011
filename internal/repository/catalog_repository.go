package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/coursehub/internal/domain"
)

// CatalogKey holds the JSON array of all courses
const CatalogKey = "courses"

// CatalogRepository implements domain.CatalogRepository on a key-value store.
// The whole catalog is one record and every Save rewrites it.
type CatalogRepository struct {
	kv     domain.KeyValueStore
	logger *slog.Logger
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(kv domain.KeyValueStore, logger *slog.Logger) *CatalogRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogRepository{kv: kv, logger: logger}
}

// Load reads the catalog record. found is false when nothing has been stored.
func (r *CatalogRepository) Load(ctx context.Context) ([]domain.Course, bool, error) {
	data, ok, err := r.kv.Read(ctx, CatalogKey)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read catalog: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	var courses []domain.Course
	if err := json.Unmarshal([]byte(data), &courses); err != nil {
		return nil, false, fmt.Errorf("catalog record: %w: %v", domain.ErrCorruptRecord, err)
	}

	out := make([]domain.Course, len(courses))
	for i, c := range courses {
		out[i] = c.Clone()
	}
	return out, true, nil
}

// Save overwrites the catalog record with courses, in order
func (r *CatalogRepository) Save(ctx context.Context, courses []domain.Course) error {
	normalized := make([]domain.Course, len(courses))
	for i, c := range courses {
		normalized[i] = c.Clone()
	}

	data, err := json.Marshal(normalized)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := r.kv.Write(ctx, CatalogKey, string(data)); err != nil {
		return fmt.Errorf("failed to store catalog: %w", err)
	}

	r.logger.Debug("catalog saved", slog.Int("courses", len(courses)))
	return nil
}
