package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/grand-tour/internal/storage"
)

// HealthResponse reports the service and its components.
type HealthResponse struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Service    string                 `json:"service"`
	Components map[string]interface{} `json:"components"`
}

// HealthHandler answers readiness checks.
type HealthHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(storage storage.Storage, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{storage: storage, logger: logger}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]interface{})
	overallStatus := "healthy"
	status := http.StatusOK

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("Storage health check failed", "error", err)
		components["storage"] = map[string]string{"status": "unhealthy", "error": err.Error()}
		overallStatus = "unhealthy"
		status = http.StatusServiceUnavailable
	} else {
		components["storage"] = map[string]string{"status": "healthy"}
	}

	writeJSON(w, h.logger, status, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "grand-tour-api",
		Components: components,
	})
}
