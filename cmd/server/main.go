package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aryan0dhankhar/coursehub/internal/app"
	"github.com/aryan0dhankhar/coursehub/internal/handler"
	"github.com/aryan0dhankhar/coursehub/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/coursehub/internal/observability/tracing"
	"github.com/aryan0dhankhar/coursehub/internal/security/ratelimit"
	"github.com/aryan0dhankhar/coursehub/internal/worker"
	"github.com/aryan0dhankhar/coursehub/pkg/config"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting CourseHub server",
		slog.String("environment", cfg.Environment),
		slog.String("storage", cfg.StorageBackend),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Tracing (no-op without an OTLP endpoint)
	shutdownTracing, err := tracing.Init(ctx, log, cfg.OTLPEndpoint, "coursehub", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Storage and stores
	instance, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize stores", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer instance.Close()

	// 5. Security components
	var limiter *ratelimit.Limiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
		defer limiter.Stop()
	}

	// 6. HTTP routes and middleware
	router := handler.NewRouter(handler.RouterConfig{
		Identity:       instance.Identity,
		Catalog:        instance.Catalog,
		Broker:         instance.Broker,
		Storage:        instance.Storage,
		StorageBackend: cfg.StorageBackend,
		Limiter:        limiter,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Featured:       cfg.FeaturedCourses,
		Logger:         log,
	})

	// 7. Start stats worker in background
	statsWorker := worker.NewStatsWorker(instance.Catalog, instance.Identity, log, time.Duration(cfg.StatsIntervalSeconds)*time.Second)
	go statsWorker.Start(ctx)

	// 8. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(router, "coursehub"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.Int("rate_limit_per_minute", cfg.RateLimitPerMinute),
		slog.Bool("events_feed", instance.Broker != nil),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
			sigChan <- syscall.SIGTERM
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop stats worker
	log.Info("server stopped")
}
