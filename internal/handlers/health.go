package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/nickfox/LLMCreativeStudio/internal/metrics"
	"github.com/nickfox/LLMCreativeStudio/internal/store"
)

const version = "0.1.0"

// Check represents the status of a health check.
type Check struct {
	Status  string `json:"status"`            // "pass" or "fail"
	Latency string `json:"latency,omitempty"` // e.g., "2ms"
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string           `json:"status"` // "healthy" or "degraded"
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	Timestamp string           `json:"timestamp"`
}

// Health handles the health check endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]Check)
	allHealthy := true

	// Check the project/character database
	if h.data != nil {
		dbStart := time.Now()
		if err := h.data.Ping(ctx); err != nil {
			checks["database"] = Check{Status: "fail", Message: "connection failed"}
			allHealthy = false
		} else {
			elapsed := time.Since(dbStart)
			if _, ok := h.data.(*store.PostgresStore); ok {
				metrics.PostgresLatency.Observe(elapsed.Seconds())
			}
			checks["database"] = Check{Status: "pass", Latency: elapsed.String()}
		}
	} else {
		checks["database"] = Check{Status: "fail", Message: "not configured"}
		allHealthy = false
	}

	// Check the message store
	if h.msgs != nil {
		msgStart := time.Now()
		if err := h.msgs.Ping(ctx); err != nil {
			checks["messages"] = Check{Status: "fail", Message: "connection failed"}
			allHealthy = false
		} else {
			elapsed := time.Since(msgStart)
			if _, ok := h.msgs.(*store.RedisStore); ok {
				metrics.RedisLatency.Observe(elapsed.Seconds())
			}
			checks["messages"] = Check{Status: "pass", Latency: elapsed.String()}
		}
	} else {
		checks["messages"] = Check{Status: "fail", Message: "not configured"}
		allHealthy = false
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	resp := HealthResponse{
		Status:    status,
		Version:   version,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	h.JSON(w, statusCode, resp)
}

// RootResponse represents the root endpoint response.
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Root handles the root endpoint.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, RootResponse{
		Name:    "LLMCreativeStudio",
		Version: version,
	})
}
