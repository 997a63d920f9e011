// Package app assembles one instance of the platform: durable storage,
// the identity and catalog stores, and the change feed broker. The server
// and the CLI both start from here.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/coursehub/internal/featureflags"
	"github.com/aryan0dhankhar/coursehub/internal/infrastructure/storage"
	"github.com/aryan0dhankhar/coursehub/internal/repository"
	"github.com/aryan0dhankhar/coursehub/internal/service"
	"github.com/aryan0dhankhar/coursehub/pkg/config"
)

// App is a fully initialized instance
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Storage  storage.Backend
	Identity *service.IdentityService
	Catalog  *service.CatalogService
	Broker   *service.Broker // nil when the events feed is disabled
}

// New opens storage and builds both stores. The session is restored and
// the catalog loaded (or seeded) before New returns.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	kv, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	identityOpts := []service.IdentityOption{
		service.WithSessionRevalidation(featureflags.Enabled(featureflags.RevalidateSession)),
	}
	var catalogOpts []service.CatalogOption

	var broker *service.Broker
	if featureflags.EnabledDefault(featureflags.EventsFeed, true) {
		broker = service.NewBroker(logger)
		identityOpts = append(identityOpts, service.WithIdentityEvents(broker))
		catalogOpts = append(catalogOpts, service.WithCatalogEvents(broker))
	}

	identity, err := service.NewIdentityService(ctx,
		repository.NewMemoryUserRepository(service.DemoUsers(), logger),
		repository.NewSessionRepository(kv, logger),
		logger,
		identityOpts...,
	)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to restore session: %w", err), kv.Close())
	}

	catalog := service.NewCatalogService(repository.NewCatalogRepository(kv, logger), logger, catalogOpts...)
	if err := catalog.Initialize(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to initialize catalog: %w", err), kv.Close())
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Storage:  kv,
		Identity: identity,
		Catalog:  catalog,
		Broker:   broker,
	}, nil
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
