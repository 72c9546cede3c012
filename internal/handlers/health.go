package handlers

import (
	"context"
	"net/http"
	"time"

	"taskLists/internal/handlers/dto"
	"taskLists/internal/logger"

	"go.uber.org/zap"
)

const (
	ServiceName = "tasklists"
	APIVersion  = "1.0.0"

	healthTimeout = 2 * time.Second
)

type HealthHandler struct {
	checker HealthChecker
}

func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// HealthCheck reports 503 when the storage does not answer.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := dto.HealthResponse{
		Status:    "healthy",
		Service:   ServiceName,
		Timestamp: time.Now().UTC(),
	}

	if err := h.checker.HealthCheck(ctx); err != nil {
		logger.Warn("HTTP: health check failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Error = err.Error()
		responseWithBody(w, http.StatusServiceUnavailable, resp)
		return
	}
	responseWithBody(w, http.StatusOK, resp)
}

func Index(w http.ResponseWriter, r *http.Request) {
	responseWithBody(w, http.StatusOK, dto.IndexResponse{
		Message: "API Routes",
		Version: APIVersion,
		Endpoints: map[string]string{
			"lists": "/api/lists",
			"tasks": "/api/tasks",
		},
	})
}
