package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/coursehub/internal/observability/metrics"
	"github.com/aryan0dhankhar/coursehub/internal/service"
)

// StatsSource reports the current catalog size
type StatsSource interface {
	Stats() service.CatalogStats
}

// UserCounter reports the size of the registered-user set
type UserCounter interface {
	RegisteredUsers() (int, error)
}

// StatsWorker periodically refreshes the catalog size and user gauges
type StatsWorker struct {
	catalog  StatsSource
	users    UserCounter
	logger   *slog.Logger
	interval time.Duration
}

// NewStatsWorker creates a new stats worker
func NewStatsWorker(catalog StatsSource, users UserCounter, logger *slog.Logger, interval time.Duration) *StatsWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &StatsWorker{
		catalog:  catalog,
		users:    users,
		logger:   logger,
		interval: interval,
	}
}

// Start runs the refresh loop until ctx is cancelled. The gauges are
// refreshed once immediately so /metrics is populated before the first tick.
func (w *StatsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("stats worker started", slog.Duration("interval", w.interval))
	w.refresh()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stats worker stopped")
			return
		case <-ticker.C:
			w.refresh()
		}
	}
}

func (w *StatsWorker) refresh() {
	stats := w.catalog.Stats()
	metrics.SetCatalogSize(stats.Courses, stats.Videos, stats.Enrollments)

	users, err := w.users.RegisteredUsers()
	if err != nil {
		w.logger.Warn("failed to count registered users", slog.String("error", err.Error()))
	} else {
		metrics.SetRegisteredUsers(users)
	}

	w.logger.Debug("catalog stats refreshed",
		slog.Int("courses", stats.Courses),
		slog.Int("videos", stats.Videos),
		slog.Int("enrollments", stats.Enrollments),
		slog.Int("users", users),
	)
}
