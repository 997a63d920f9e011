package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is a dependency that can report its health
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	storage Pinger
	backend string
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(storage Pinger, backend string, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthHandler{
		storage: storage,
		backend: backend,
		logger:  logger,
	}
}

// HealthResponse represents the health status response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health handles GET /healthz - Simple liveness check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// Ready handles GET /readyz - 200 only when durable storage answers
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string)
	status := "ready"
	statusCode := http.StatusOK

	if err := h.storage.Ping(ctx); err != nil {
		checks["storage"] = "error: " + err.Error()
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}
	checks["backend"] = h.backend

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ReadinessResponse{
		Status: status,
		Checks: checks,
	})

	h.logger.Debug("readiness check",
		slog.String("status", status),
		slog.String("storage", checks["storage"]),
	)
}
